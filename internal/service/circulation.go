package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libcirc-backend/internal/config"
	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/logger"
	"libcirc-backend/internal/metrics"
	"libcirc-backend/internal/repository"
	"libcirc-backend/internal/utils"

	"github.com/google/uuid"
)

const (
	// maxStockRetries bounds how often a lost compare-and-swap on item stock
	// is retried before ErrConcurrentModification reaches the caller.
	maxStockRetries = 3
	retryBackoff    = 25 * time.Millisecond
)

type circulationService struct {
	store          repository.TxRunner
	noteRepo       repository.NotificationRepository
	loanPeriodDays int
	fineRatePerDay int32
}

func NewCirculationService(store repository.TxRunner, noteRepo repository.NotificationRepository, cfg config.CirculationConfig) CirculationService {
	return &circulationService{
		store:          store,
		noteRepo:       noteRepo,
		loanPeriodDays: cfg.LoanPeriodDays,
		fineRatePerDay: cfg.FineRatePerDay,
	}
}

// execWithRetry runs fn in a transaction, retrying when the item stock
// compare-and-swap lost a race. Precondition failures are returned as-is.
func (s *circulationService) execWithRetry(ctx context.Context, fn func(repository.Repositories) error) error {
	var err error
	for attempt := 0; attempt < maxStockRetries; attempt++ {
		err = s.store.ExecTx(ctx, fn)
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
		metrics.StockConflicts.Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff << attempt):
		}
	}
	return err
}

func (s *circulationService) Issue(ctx context.Context, accessionNo string, ref domain.BorrowerRef, requestedDueAt *time.Time) (*IssueResult, error) {
	var result *IssueResult
	err := s.execWithRetry(ctx, func(repos repository.Repositories) error {
		result = nil

		item, err := repos.Items.GetByAccessionNo(ctx, accessionNo)
		if err != nil {
			return err
		}
		if item.AvailableQuantity < 1 {
			return fmt.Errorf("issue %s: %w", accessionNo, domain.ErrOutOfStock)
		}
		if _, err := repos.Borrowers.Resolve(ctx, ref.Type, ref.BorrowerID); err != nil {
			return err
		}
		// Checked inside the same transaction as the stock decrement; the
		// partial unique index on open loans backs this up under races.
		open, err := repos.Loans.FindOpen(ctx, item.ID, ref.Type, ref.BorrowerID)
		if err != nil {
			return err
		}
		if open != nil {
			return fmt.Errorf("issue %s to %s/%s: %w", accessionNo, ref.Type, ref.BorrowerID, domain.ErrDuplicateActiveLoan)
		}

		issuedAt := time.Now()
		dueAt := issuedAt.AddDate(0, 0, s.loanPeriodDays)
		if requestedDueAt != nil {
			dueAt = *requestedDueAt
		}

		newAvailable := item.AvailableQuantity - 1
		status := domain.DerivedStatus(newAvailable, item.TotalQuantity)
		if err := repos.Items.UpdateStock(ctx, item.ID, -1, 0, status, item.Version); err != nil {
			return err
		}

		loan := &domain.Loan{
			LoanRef:      uuid.NewString(),
			ItemID:       item.ID,
			BorrowerType: ref.Type,
			BorrowerID:   ref.BorrowerID,
			IssuedAt:     issuedAt,
			DueAt:        dueAt,
			State:        domain.LoanStateOpen,
			FineState:    domain.FineStateNone,
		}
		if err := repos.Loans.Create(ctx, loan); err != nil {
			return err
		}

		item.AvailableQuantity = newAvailable
		item.Status = status
		item.Version++
		result = &IssueResult{Loan: loan, Item: item}
		return nil
	})
	metrics.CirculationOps.WithLabelValues("issue", outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	logger.Info("item issued",
		"accession_no", accessionNo, "borrower_type", ref.Type, "borrower_id", ref.BorrowerID,
		"loan_ref", result.Loan.LoanRef, "due_at", result.Loan.DueAt, "available", result.Item.AvailableQuantity)
	s.notify(ctx, ref, "Item issued",
		fmt.Sprintf("%s is due back on %s", result.Item.Title, result.Loan.DueAt.Format("2006-01-02")),
		map[string]string{"type": "LOAN_ISSUED", "loan_ref": result.Loan.LoanRef})
	return result, nil
}

func (s *circulationService) Renew(ctx context.Context, loanRef string, newDueAt time.Time) (*RenewResult, error) {
	var result *RenewResult
	err := s.execWithRetry(ctx, func(repos repository.Repositories) error {
		result = nil

		loan, err := repos.Loans.GetByRef(ctx, loanRef)
		if err != nil {
			return err
		}
		if loan.State != domain.LoanStateOpen {
			return fmt.Errorf("renew %s: %w", loanRef, domain.ErrLoanNotOpen)
		}
		// A pending fine blocks renewal; merely being overdue does not.
		if loan.FineState == domain.FineStatePending {
			return fmt.Errorf("renew %s: %w", loanRef, domain.ErrRenewalBlockedByFine)
		}

		now := time.Now()
		loan.State = domain.LoanStateReturned
		loan.ReturnedAt = &now
		// The OPEN guard is the serialization point: a racing return or a
		// second renew of the same loan misses it, retries and re-reads.
		if err := repos.Loans.Update(ctx, loan, domain.LoanStateOpen); err != nil {
			return err
		}

		// The item stays checked out to the same borrower, so stock is
		// untouched: the successor loan replaces the closed one in place.
		successor := &domain.Loan{
			LoanRef:      uuid.NewString(),
			ItemID:       loan.ItemID,
			BorrowerType: loan.BorrowerType,
			BorrowerID:   loan.BorrowerID,
			IssuedAt:     now,
			DueAt:        newDueAt,
			State:        domain.LoanStateOpen,
			FineState:    domain.FineStateNone,
			RenewalOf:    &loan.ID,
		}
		if err := repos.Loans.Create(ctx, successor); err != nil {
			return err
		}

		result = &RenewResult{ClosedLoan: loan, NewLoan: successor}
		return nil
	})
	metrics.CirculationOps.WithLabelValues("renew", outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	logger.Info("loan renewed", "loan_ref", loanRef, "new_loan_ref", result.NewLoan.LoanRef, "due_at", newDueAt)
	return result, nil
}

func (s *circulationService) Return(ctx context.Context, accessionNo string, ref domain.BorrowerRef, returnedAt *time.Time) (*domain.Loan, *domain.Item, error) {
	var (
		resultLoan *domain.Loan
		resultItem *domain.Item
	)
	err := s.execWithRetry(ctx, func(repos repository.Repositories) error {
		resultLoan, resultItem = nil, nil

		item, err := repos.Items.GetByAccessionNo(ctx, accessionNo)
		if err != nil {
			return err
		}
		loan, err := repos.Loans.FindOpen(ctx, item.ID, ref.Type, ref.BorrowerID)
		if err != nil {
			return err
		}
		if loan == nil {
			return fmt.Errorf("return %s from %s/%s: %w", accessionNo, ref.Type, ref.BorrowerID, domain.ErrNoActiveLoan)
		}

		at := time.Now()
		if returnedAt != nil {
			at = *returnedAt
		}

		fine := utils.ComputeFine(loan.DueAt, at, s.fineRatePerDay)
		loan.State = domain.LoanStateReturned
		loan.ReturnedAt = &at
		loan.FineAmount = fine
		if fine > 0 {
			loan.FineState = domain.FineStatePending
		} else {
			loan.FineState = domain.FineStateNone
		}
		if err := repos.Loans.Update(ctx, loan, domain.LoanStateOpen); err != nil {
			return err
		}

		// Clamp so a return can never push available past total.
		newAvailable := item.AvailableQuantity + 1
		if newAvailable > item.TotalQuantity {
			newAvailable = item.TotalQuantity
		}
		delta := newAvailable - item.AvailableQuantity
		status := domain.DerivedStatus(newAvailable, item.TotalQuantity)
		if err := repos.Items.UpdateStock(ctx, item.ID, delta, 0, status, item.Version); err != nil {
			return err
		}

		item.AvailableQuantity = newAvailable
		item.Status = status
		item.Version++
		resultLoan, resultItem = loan, item
		return nil
	})
	metrics.CirculationOps.WithLabelValues("return", outcomeLabel(err)).Inc()
	if err != nil {
		return nil, nil, err
	}

	logger.Info("item returned",
		"accession_no", accessionNo, "borrower_type", ref.Type, "borrower_id", ref.BorrowerID,
		"loan_ref", resultLoan.LoanRef, "fine_amount", resultLoan.FineAmount, "available", resultItem.AvailableQuantity)
	if resultLoan.FineAmount > 0 {
		s.notify(ctx, ref, "Overdue fine due",
			fmt.Sprintf("A fine of %d is due for the late return of %s", resultLoan.FineAmount, resultItem.Title),
			map[string]string{"type": "FINE_PENDING", "loan_ref": resultLoan.LoanRef})
	}
	return resultLoan, resultItem, nil
}

func (s *circulationService) ReportLost(ctx context.Context, accessionNo string, ref domain.BorrowerRef, reason string, replacementCost int32) (*domain.Loan, error) {
	var result *domain.Loan
	err := s.execWithRetry(ctx, func(repos repository.Repositories) error {
		result = nil

		item, err := repos.Items.GetByAccessionNo(ctx, accessionNo)
		if err != nil {
			return err
		}
		loan, err := repos.Loans.FindOpen(ctx, item.ID, ref.Type, ref.BorrowerID)
		if err != nil {
			return err
		}
		if loan == nil {
			return fmt.Errorf("lost %s from %s/%s: %w", accessionNo, ref.Type, ref.BorrowerID, domain.ErrNoActiveLoan)
		}

		now := time.Now()
		loan.State = domain.LoanStateLost
		loan.ReturnedAt = &now
		loan.LostReason = reason
		loan.LostReportedAt = &now
		loan.ReplacementCost = replacementCost
		if err := repos.Loans.Update(ctx, loan, domain.LoanStateOpen); err != nil {
			return err
		}

		// The copy leaves the recoverable pool for good: total shrinks and
		// available stays, so later recounts cannot resurrect it.
		newTotal := item.TotalQuantity - 1
		status := domain.DerivedStatus(item.AvailableQuantity, newTotal)
		if err := repos.Items.UpdateStock(ctx, item.ID, 0, -1, status, item.Version); err != nil {
			return err
		}

		result = loan
		return nil
	})
	metrics.CirculationOps.WithLabelValues("report_lost", outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	logger.Warn("item reported lost",
		"accession_no", accessionNo, "borrower_type", ref.Type, "borrower_id", ref.BorrowerID,
		"loan_ref", result.LoanRef, "replacement_cost", replacementCost)
	return result, nil
}

func (s *circulationService) ConfirmFinePayment(ctx context.Context, loanRef string) (*domain.Loan, error) {
	var result *domain.Loan
	err := s.execWithRetry(ctx, func(repos repository.Repositories) error {
		result = nil

		loan, err := repos.Loans.GetByRef(ctx, loanRef)
		if err != nil {
			return err
		}
		if loan.FineAmount <= 0 || loan.FineState != domain.FineStatePending {
			return fmt.Errorf("confirm fine on %s: %w", loanRef, domain.ErrNoFineDue)
		}

		loan.FineState = domain.FineStatePaid
		if err := repos.Loans.Update(ctx, loan, loan.State); err != nil {
			return err
		}

		result = loan
		return nil
	})
	metrics.CirculationOps.WithLabelValues("confirm_fine", outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	logger.Info("fine payment confirmed", "loan_ref", loanRef, "fine_amount", result.FineAmount)
	return result, nil
}

// notify writes a borrower notification best-effort; failures are logged and
// never bubble into the circulation result.
func (s *circulationService) notify(ctx context.Context, ref domain.BorrowerRef, title, message string, attrs map[string]string) {
	note := &domain.Notification{
		BorrowerType: ref.Type,
		BorrowerID:   ref.BorrowerID,
		Title:        title,
		Message:      message,
		Attributes:   attrs,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("failed to write notification", "error", err, "borrower_id", ref.BorrowerID)
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, domain.ErrBorrowerNotFound):
		return "borrower_not_found"
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrDuplicateActiveLoan):
		return "duplicate_active_loan"
	case errors.Is(err, domain.ErrLoanNotFound):
		return "loan_not_found"
	case errors.Is(err, domain.ErrLoanNotOpen):
		return "loan_not_open"
	case errors.Is(err, domain.ErrRenewalBlockedByFine):
		return "renewal_blocked_by_fine"
	case errors.Is(err, domain.ErrNoActiveLoan):
		return "no_active_loan"
	case errors.Is(err, domain.ErrNoFineDue):
		return "no_fine_due"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "concurrent_modification"
	default:
		return "error"
	}
}
