package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository"

	"github.com/lib/pq"
)

type loanRepository struct {
	db DBTX
}

func NewLoanRepository(db DBTX) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, loan_ref, item_id, borrower_type, borrower_id, issued_at, due_at, returned_at, state, renewal_of,
	fine_amount, fine_state, COALESCE(lost_reason, ''), lost_reported_at, replacement_cost, created_on, updated_on`

// uniqueViolation is the postgres error code raised by the partial unique
// index on (item_id, borrower_type, borrower_id) WHERE state = 'OPEN'.
const uniqueViolation = "23505"

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `INSERT INTO loans (loan_ref, item_id, borrower_type, borrower_id, issued_at, due_at, returned_at, state, renewal_of,
	              fine_amount, fine_state, lost_reason, lost_reported_at, replacement_cost, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		loan.LoanRef, loan.ItemID, loan.BorrowerType, loan.BorrowerID,
		loan.IssuedAt, loan.DueAt, loan.ReturnedAt, loan.State, loan.RenewalOf,
		loan.FineAmount, loan.FineState, nullString(loan.LostReason), loan.LostReportedAt, loan.ReplacementCost,
		now, now,
	).Scan(&loan.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateActiveLoan
		}
		return err
	}
	loan.CreatedOn = now
	loan.UpdatedOn = now
	return nil
}

func (r *loanRepository) GetByRef(ctx context.Context, loanRef string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_ref = $1`
	return r.scanLoan(r.db.QueryRowContext(ctx, query, loanRef))
}

func (r *loanRepository) scanLoan(row *sql.Row) (*domain.Loan, error) {
	loan := &domain.Loan{}
	err := row.Scan(&loan.ID, &loan.LoanRef, &loan.ItemID, &loan.BorrowerType, &loan.BorrowerID,
		&loan.IssuedAt, &loan.DueAt, &loan.ReturnedAt, &loan.State, &loan.RenewalOf,
		&loan.FineAmount, &loan.FineState, &loan.LostReason, &loan.LostReportedAt, &loan.ReplacementCost,
		&loan.CreatedOn, &loan.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan, expectedState domain.LoanState) error {
	query := `UPDATE loans SET returned_at=$1, state=$2, fine_amount=$3, fine_state=$4,
	              lost_reason=$5, lost_reported_at=$6, replacement_cost=$7, updated_on=$8
	          WHERE id=$9 AND state=$10`
	res, err := r.db.ExecContext(ctx, query,
		loan.ReturnedAt, loan.State, loan.FineAmount, loan.FineState,
		nullString(loan.LostReason), loan.LostReportedAt, loan.ReplacementCost, time.Now(), loan.ID, expectedState)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

func (r *loanRepository) FindOpen(ctx context.Context, itemID int32, btype domain.BorrowerType, borrowerID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
	          WHERE item_id = $1 AND borrower_type = $2 AND borrower_id = $3 AND state = 'OPEN'`
	loan, err := r.scanLoan(r.db.QueryRowContext(ctx, query, itemID, btype, borrowerID))
	if errors.Is(err, domain.ErrLoanNotFound) {
		return nil, nil
	}
	return loan, err
}

const loanDetailQuery = `SELECT l.id, l.loan_ref, l.item_id, l.borrower_type, l.borrower_id, l.issued_at, l.due_at, l.returned_at,
	       l.state, l.renewal_of, l.fine_amount, l.fine_state, COALESCE(l.lost_reason, ''), l.lost_reported_at, l.replacement_cost,
	       l.created_on, l.updated_on,
	       i.accession_no, i.title, i.author, b.name, COALESCE(b.email, '')
	FROM loans l
	JOIN items i ON i.id = l.item_id
	JOIN borrowers b ON b.type = l.borrower_type AND b.borrower_id = l.borrower_id`

func (r *loanRepository) ListOpenByBorrower(ctx context.Context, btype domain.BorrowerType, borrowerID string) ([]domain.LoanDetail, error) {
	query := loanDetailQuery + `
	WHERE l.borrower_type = $1 AND l.borrower_id = $2 AND l.state = 'OPEN'
	ORDER BY l.due_at`
	rows, err := r.db.QueryContext(ctx, query, btype, borrowerID)
	if err != nil {
		return nil, err
	}
	return scanLoanDetails(rows)
}

func (r *loanRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.LoanDetail, error) {
	query := loanDetailQuery + `
	WHERE l.state = 'OPEN' AND l.due_at < $1
	ORDER BY l.due_at`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return scanLoanDetails(rows)
}

func scanLoanDetails(rows *sql.Rows) ([]domain.LoanDetail, error) {
	defer rows.Close()

	var details []domain.LoanDetail
	for rows.Next() {
		var d domain.LoanDetail
		if err := rows.Scan(&d.ID, &d.LoanRef, &d.ItemID, &d.BorrowerType, &d.BorrowerID, &d.IssuedAt, &d.DueAt, &d.ReturnedAt,
			&d.State, &d.RenewalOf, &d.FineAmount, &d.FineState, &d.LostReason, &d.LostReportedAt, &d.ReplacementCost,
			&d.CreatedOn, &d.UpdatedOn,
			&d.AccessionNo, &d.ItemTitle, &d.ItemAuthor, &d.BorrowerName, &d.BorrowerEmail); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *loanRepository) BorrowCounts(ctx context.Context) ([]domain.BorrowCount, error) {
	// Every transaction type is counted once, at issue time: renewals insert
	// a fresh loan row, so counting rows per item is exactly loans-ever-issued.
	query := `SELECT l.item_id, i.accession_no, i.title, count(*) AS borrow_count
	          FROM loans l
	          JOIN items i ON i.id = l.item_id
	          GROUP BY l.item_id, i.accession_no, i.title
	          ORDER BY borrow_count DESC, i.accession_no`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.BorrowCount
	for rows.Next() {
		var c domain.BorrowCount
		if err := rows.Scan(&c.ItemID, &c.AccessionNo, &c.Title, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
