package unit

import (
	"errors"
	"testing"
	"time"

	"libcirc-backend/internal/config"
	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/jobs"
	"libcirc-backend/internal/repository/postgres"
	"libcirc-backend/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJobRunner_MarkOverdueLoans(t *testing.T) {
	newRunner := func(t *testing.T, loanRepo *MockLoanRepo) (*jobs.JobRunner, sqlmock.Sqlmock) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		store := postgres.NewStore(db)
		reporting := service.NewReportingService(loanRepo, new(MockBorrowerRepo))
		cfg := &config.Config{}
		return jobs.NewJobRunner(db, store, &jobs.Services{Reporting: reporting}, cfg), dbMock
	}

	t.Run("Flags each overdue loan with a notification", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		runner, dbMock := newRunner(t, loanRepo)

		due := time.Now().AddDate(0, 0, -3)
		loanRepo.On("ListOverdue", mock.Anything, mock.Anything).Return([]domain.LoanDetail{
			{
				Loan: domain.Loan{
					ID: 100, LoanRef: "ref-1", ItemID: 7,
					BorrowerType: domain.BorrowerTypeStudent, BorrowerID: "S1",
					DueAt: due, State: domain.LoanStateOpen,
				},
				AccessionNo: "ACC-1001",
				ItemTitle:   "Dune",
			},
		}, nil)
		dbMock.ExpectQuery("INSERT INTO notifications").
			WithArgs(string(domain.BorrowerTypeStudent), "S1", "Item overdue", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(1, time.Now()))

		runner.MarkOverdueLoans()

		assert.NoError(t, dbMock.ExpectationsWereMet())
		loanRepo.AssertExpectations(t)
	})

	t.Run("Writes nothing when the overdue query fails", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		runner, dbMock := newRunner(t, loanRepo)

		loanRepo.On("ListOverdue", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		runner.MarkOverdueLoans()

		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
