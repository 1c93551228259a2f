package unit

import (
	"context"
	"testing"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCatalogService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("New item starts fully on the shelf", func(t *testing.T) {
		itemRepo := new(MockItemRepo)
		svc := service.NewCatalogService(itemRepo)

		itemRepo.On("Create", ctx, mock.AnythingOfType("*domain.Item")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Item).ID = 12
			}).Return(nil)

		item := &domain.Item{AccessionNo: "ACC-2001", Title: "Dune", TotalQuantity: 4}
		err := svc.AddItem(ctx, item)
		assert.NoError(t, err)
		assert.Equal(t, int32(12), item.ID)
		assert.Equal(t, int32(4), item.AvailableQuantity)
		assert.Equal(t, domain.ItemStatusAvailable, item.Status)
	})

	t.Run("Zero copies is a lost placeholder", func(t *testing.T) {
		itemRepo := new(MockItemRepo)
		svc := service.NewCatalogService(itemRepo)
		itemRepo.On("Create", ctx, mock.AnythingOfType("*domain.Item")).Return(nil)

		item := &domain.Item{AccessionNo: "ACC-2002", Title: "Dune", TotalQuantity: 0}
		err := svc.AddItem(ctx, item)
		assert.NoError(t, err)
		assert.Equal(t, domain.ItemStatusLost, item.Status)
	})

	t.Run("Rejects missing fields", func(t *testing.T) {
		itemRepo := new(MockItemRepo)
		svc := service.NewCatalogService(itemRepo)

		assert.Error(t, svc.AddItem(ctx, &domain.Item{Title: "No accession"}))
		assert.Error(t, svc.AddItem(ctx, &domain.Item{AccessionNo: "ACC-X"}))
		itemRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestReportingService_ActiveLoansByBorrower(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown borrower", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		borrowerRepo := new(MockBorrowerRepo)
		svc := service.NewReportingService(loanRepo, borrowerRepo)

		borrowerRepo.On("Resolve", ctx, domain.BorrowerTypeStudent, "S9").Return(nil, domain.ErrBorrowerNotFound)

		_, err := svc.ActiveLoansByBorrower(ctx, domain.BorrowerTypeStudent, "S9")
		assert.ErrorIs(t, err, domain.ErrBorrowerNotFound)
		loanRepo.AssertNotCalled(t, "ListOpenByBorrower", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Returns only open loans for the borrower", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		borrowerRepo := new(MockBorrowerRepo)
		svc := service.NewReportingService(loanRepo, borrowerRepo)

		borrowerRepo.On("Resolve", ctx, domain.BorrowerTypeStudent, "S1").Return(&domain.Borrower{}, nil)
		loanRepo.On("ListOpenByBorrower", ctx, domain.BorrowerTypeStudent, "S1").
			Return([]domain.LoanDetail{
				{Loan: domain.Loan{ID: 100, State: domain.LoanStateOpen}, AccessionNo: "ACC-1001", ItemTitle: "Dune"},
			}, nil)

		details, err := svc.ActiveLoansByBorrower(ctx, domain.BorrowerTypeStudent, "S1")
		assert.NoError(t, err)
		assert.Len(t, details, 1)
		assert.Equal(t, "ACC-1001", details[0].AccessionNo)
	})
}
