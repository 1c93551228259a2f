package repos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loanCols = []string{
	"id", "loan_ref", "item_id", "borrower_type", "borrower_id", "issued_at", "due_at", "returned_at",
	"state", "renewal_of", "fine_amount", "fine_state", "lost_reason", "lost_reported_at", "replacement_cost",
	"created_on", "updated_on",
}

func openLoanRow(id int32, loanRef string, itemID int32) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(loanCols).AddRow(
		id, loanRef, itemID, string(domain.BorrowerTypeStudent), "S1",
		now, now.AddDate(0, 0, 15), nil,
		string(domain.LoanStateOpen), nil, int32(0), string(domain.FineStateNone), "", nil, int32(0),
		now, now,
	)
}

func TestLoanRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	issuedAt := time.Now()

	t.Run("Assigns id from insert", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO loans").
			WithArgs("ref-1", int32(7), string(domain.BorrowerTypeStudent), "S1",
				issuedAt, issuedAt.AddDate(0, 0, 15), nil, string(domain.LoanStateOpen), nil,
				int32(0), string(domain.FineStateNone), sqlmock.AnyArg(), nil, int32(0),
				sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))

		loan := &domain.Loan{
			LoanRef:      "ref-1",
			ItemID:       7,
			BorrowerType: domain.BorrowerTypeStudent,
			BorrowerID:   "S1",
			IssuedAt:     issuedAt,
			DueAt:        issuedAt.AddDate(0, 0, 15),
			State:        domain.LoanStateOpen,
			FineState:    domain.FineStateNone,
		}
		err := repo.Create(context.Background(), loan)
		assert.NoError(t, err)
		assert.Equal(t, int32(100), loan.ID)
	})

	t.Run("Open-loan unique index violation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO loans").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "loans_open_unique"})

		loan := &domain.Loan{
			LoanRef:      "ref-2",
			ItemID:       7,
			BorrowerType: domain.BorrowerTypeStudent,
			BorrowerID:   "S1",
			IssuedAt:     issuedAt,
			DueAt:        issuedAt.AddDate(0, 0, 15),
			State:        domain.LoanStateOpen,
			FineState:    domain.FineStateNone,
		}
		err := repo.Create(context.Background(), loan)
		assert.ErrorIs(t, err, domain.ErrDuplicateActiveLoan)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	now := time.Now()

	t.Run("Transition from the expected state", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans").
			WithArgs(&now, string(domain.LoanStateReturned), int32(10), string(domain.FineStatePending),
				sqlmock.AnyArg(), nil, int32(0), sqlmock.AnyArg(), int32(100), string(domain.LoanStateOpen)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		loan := &domain.Loan{
			ID:         100,
			State:      domain.LoanStateReturned,
			ReturnedAt: &now,
			FineAmount: 10,
			FineState:  domain.FineStatePending,
		}
		err := repo.Update(context.Background(), loan, domain.LoanStateOpen)
		assert.NoError(t, err)
	})

	t.Run("Loan already left the expected state", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans").
			WillReturnResult(sqlmock.NewResult(0, 0))

		loan := &domain.Loan{ID: 100, State: domain.LoanStateReturned, ReturnedAt: &now}
		err := repo.Update(context.Background(), loan, domain.LoanStateOpen)
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_GetByRef(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewLoanRepository(db)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loans WHERE loan_ref = \\$1").
			WithArgs("ref-1").
			WillReturnRows(openLoanRow(100, "ref-1", 7))

		loan, err := repo.GetByRef(context.Background(), "ref-1")
		assert.NoError(t, err)
		assert.Equal(t, int32(100), loan.ID)
		assert.Equal(t, domain.LoanStateOpen, loan.State)
		assert.Nil(t, loan.ReturnedAt)
		assert.Nil(t, loan.RenewalOf)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loans WHERE loan_ref = \\$1").
			WithArgs("ref-missing").
			WillReturnError(sql.ErrNoRows)

		loan, err := repo.GetByRef(context.Background(), "ref-missing")
		assert.ErrorIs(t, err, domain.ErrLoanNotFound)
		assert.Nil(t, loan)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_FindOpen(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewLoanRepository(db)

	t.Run("Open loan exists", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loans").
			WithArgs(int32(7), string(domain.BorrowerTypeStudent), "S1").
			WillReturnRows(openLoanRow(100, "ref-1", 7))

		loan, err := repo.FindOpen(context.Background(), 7, domain.BorrowerTypeStudent, "S1")
		assert.NoError(t, err)
		require.NotNil(t, loan)
		assert.Equal(t, int32(100), loan.ID)
	})

	t.Run("No open loan yields nil without error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loans").
			WithArgs(int32(7), string(domain.BorrowerTypeStudent), "S2").
			WillReturnError(sql.ErrNoRows)

		loan, err := repo.FindOpen(context.Background(), 7, domain.BorrowerTypeStudent, "S2")
		assert.NoError(t, err)
		assert.Nil(t, loan)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_BorrowCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewLoanRepository(db)

	rows := sqlmock.NewRows([]string{"item_id", "accession_no", "title", "borrow_count"}).
		AddRow(int32(7), "ACC-1001", "The Go Programming Language", int32(9)).
		AddRow(int32(12), "ACC-2001", "Dune", int32(3))
	mock.ExpectQuery("SELECT (.+) FROM loans l").WillReturnRows(rows)

	counts, err := repo.BorrowCounts(context.Background())
	assert.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "ACC-1001", counts[0].AccessionNo)
	assert.Equal(t, int32(9), counts[0].Count)
	assert.GreaterOrEqual(t, counts[0].Count, counts[1].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
