package repository

import (
	"context"
	"time"

	"libcirc-backend/internal/domain"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByAccessionNo(ctx context.Context, accessionNo string) (*domain.Item, error)
	// Update writes descriptive fields only; stock counters go through
	// UpdateStock so every change is version-checked.
	Update(ctx context.Context, item *domain.Item) error
	// UpdateStock applies availableDelta/totalDelta and the new derived
	// status iff the row still carries expectedVersion, bumping the version.
	// Returns domain.ErrConcurrentModification when the row moved on.
	UpdateStock(ctx context.Context, itemID int32, availableDelta, totalDelta int32, status domain.ItemStatus, expectedVersion int32) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Item, int32, error)
}

type BorrowerRepository interface {
	Create(ctx context.Context, b *domain.Borrower) error
	// Resolve returns domain.ErrBorrowerNotFound when the reference does not
	// exist in the directory.
	Resolve(ctx context.Context, btype domain.BorrowerType, borrowerID string) (*domain.Borrower, error)
	Update(ctx context.Context, b *domain.Borrower) error
	ListByType(ctx context.Context, btype domain.BorrowerType, page, pageSize int32) ([]domain.Borrower, int32, error)
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByRef(ctx context.Context, loanRef string) (*domain.Loan, error)
	// Update writes the loan iff the row still carries expectedState, so a
	// transition read as OPEN cannot re-close a loan another transaction
	// already moved on. Returns domain.ErrConcurrentModification when the
	// guard misses; callers re-read and re-evaluate their preconditions.
	Update(ctx context.Context, loan *domain.Loan, expectedState domain.LoanState) error
	// FindOpen returns (nil, nil) when the pair has no open loan.
	FindOpen(ctx context.Context, itemID int32, btype domain.BorrowerType, borrowerID string) (*domain.Loan, error)
	ListOpenByBorrower(ctx context.Context, btype domain.BorrowerType, borrowerID string) ([]domain.LoanDetail, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.LoanDetail, error)
	BorrowCounts(ctx context.Context) ([]domain.BorrowCount, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, btype domain.BorrowerType, borrowerID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int32, btype domain.BorrowerType, borrowerID string) error
}

// Repositories bundles the repositories bound to one transaction for use
// inside a TxRunner callback.
type Repositories struct {
	Items         ItemRepository
	Borrowers     BorrowerRepository
	Loans         LoanRepository
	Notifications NotificationRepository
}

// TxRunner executes a callback with all repository writes in a single
// database transaction. The circulation engine relies on it to keep the
// duplicate-loan check, the stock compare-and-swap and the loan append
// atomic with respect to concurrent requests.
type TxRunner interface {
	ExecTx(ctx context.Context, fn func(Repositories) error) error
}
