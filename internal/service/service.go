package service

import (
	"context"
	"time"

	"libcirc-backend/internal/domain"
)

// IssueResult carries the created loan together with the post-update item
// projection (remaining quantity, derived status).
type IssueResult struct {
	Loan *domain.Loan `json:"loan"`
	Item *domain.Item `json:"item"`
}

// RenewResult carries the closed loan and its successor.
type RenewResult struct {
	ClosedLoan *domain.Loan `json:"closed_loan"`
	NewLoan    *domain.Loan `json:"new_loan"`
}

// CirculationService is the state machine over items and loans. Every write
// operation runs as one atomic unit: precondition checks, the stock
// compare-and-swap and the loan append either all commit or none do.
type CirculationService interface {
	Issue(ctx context.Context, accessionNo string, ref domain.BorrowerRef, requestedDueAt *time.Time) (*IssueResult, error)
	Renew(ctx context.Context, loanRef string, newDueAt time.Time) (*RenewResult, error)
	Return(ctx context.Context, accessionNo string, ref domain.BorrowerRef, returnedAt *time.Time) (*domain.Loan, *domain.Item, error)
	ReportLost(ctx context.Context, accessionNo string, ref domain.BorrowerRef, reason string, replacementCost int32) (*domain.Loan, error)
	ConfirmFinePayment(ctx context.Context, loanRef string) (*domain.Loan, error)
}

type CatalogService interface {
	AddItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, accessionNo string) (*domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	ListItems(ctx context.Context, page, pageSize int32) ([]domain.Item, int32, error)
}

type BorrowerService interface {
	Register(ctx context.Context, b *domain.Borrower) error
	Get(ctx context.Context, btype domain.BorrowerType, borrowerID string) (*domain.Borrower, error)
	UpdateProfile(ctx context.Context, b *domain.Borrower) error
	List(ctx context.Context, btype domain.BorrowerType, page, pageSize int32) ([]domain.Borrower, int32, error)
}

// ReportingService is the read-only projection surface over the loan ledger.
type ReportingService interface {
	ActiveLoansByBorrower(ctx context.Context, btype domain.BorrowerType, borrowerID string) ([]domain.LoanDetail, error)
	OverdueLoans(ctx context.Context, now time.Time) ([]domain.LoanDetail, error)
	BorrowCounts(ctx context.Context) ([]domain.BorrowCount, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, ref domain.BorrowerRef, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, ref domain.BorrowerRef, notificationID int32) error
}

type EmailService interface {
	SendOverdueReminder(ctx context.Context, email, name, itemTitle string, dueAt time.Time, daysLate, accruedFine int32) error
}
