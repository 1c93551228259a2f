package unit

import (
	"context"
	"time"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// PassthroughTxRunner runs the callback directly against the mock
// repositories and counts attempts so retry behaviour can be asserted.
type PassthroughTxRunner struct {
	Repos repository.Repositories
	Calls int
}

func (r *PassthroughTxRunner) ExecTx(_ context.Context, fn func(repository.Repositories) error) error {
	r.Calls++
	return fn(r.Repos)
}

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) GetByAccessionNo(ctx context.Context, accessionNo string) (*domain.Item, error) {
	args := m.Called(ctx, accessionNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) UpdateStock(ctx context.Context, itemID int32, availableDelta, totalDelta int32, status domain.ItemStatus, expectedVersion int32) error {
	args := m.Called(ctx, itemID, availableDelta, totalDelta, status, expectedVersion)
	return args.Error(0)
}
func (m *MockItemRepo) List(ctx context.Context, page, pageSize int32) ([]domain.Item, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Item), args.Get(1).(int32), args.Error(2)
}

// MockBorrowerRepo
type MockBorrowerRepo struct {
	mock.Mock
}

func (m *MockBorrowerRepo) Create(ctx context.Context, b *domain.Borrower) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBorrowerRepo) Resolve(ctx context.Context, btype domain.BorrowerType, borrowerID string) (*domain.Borrower, error) {
	args := m.Called(ctx, btype, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}
func (m *MockBorrowerRepo) Update(ctx context.Context, b *domain.Borrower) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBorrowerRepo) ListByType(ctx context.Context, btype domain.BorrowerType, page, pageSize int32) ([]domain.Borrower, int32, error) {
	args := m.Called(ctx, btype, page, pageSize)
	return args.Get(0).([]domain.Borrower), args.Get(1).(int32), args.Error(2)
}

// MockLoanRepo
type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) GetByRef(ctx context.Context, loanRef string) (*domain.Loan, error) {
	args := m.Called(ctx, loanRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) Update(ctx context.Context, loan *domain.Loan, expectedState domain.LoanState) error {
	args := m.Called(ctx, loan, expectedState)
	return args.Error(0)
}
func (m *MockLoanRepo) FindOpen(ctx context.Context, itemID int32, btype domain.BorrowerType, borrowerID string) (*domain.Loan, error) {
	args := m.Called(ctx, itemID, btype, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) ListOpenByBorrower(ctx context.Context, btype domain.BorrowerType, borrowerID string) ([]domain.LoanDetail, error) {
	args := m.Called(ctx, btype, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanDetail), args.Error(1)
}
func (m *MockLoanRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.LoanDetail, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanDetail), args.Error(1)
}
func (m *MockLoanRepo) BorrowCounts(ctx context.Context) ([]domain.BorrowCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowCount), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, btype domain.BorrowerType, borrowerID string, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, btype, borrowerID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id int32, btype domain.BorrowerType, borrowerID string) error {
	args := m.Called(ctx, id, btype, borrowerID)
	return args.Error(0)
}
