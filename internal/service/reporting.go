package service

import (
	"context"
	"time"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository"
)

// reportingService reads the loan ledger only; no locking beyond the
// ledger's own consistency is needed for these projections.
type reportingService struct {
	loanRepo     repository.LoanRepository
	borrowerRepo repository.BorrowerRepository
}

func NewReportingService(loanRepo repository.LoanRepository, borrowerRepo repository.BorrowerRepository) ReportingService {
	return &reportingService{loanRepo: loanRepo, borrowerRepo: borrowerRepo}
}

func (s *reportingService) ActiveLoansByBorrower(ctx context.Context, btype domain.BorrowerType, borrowerID string) ([]domain.LoanDetail, error) {
	if _, err := s.borrowerRepo.Resolve(ctx, btype, borrowerID); err != nil {
		return nil, err
	}
	return s.loanRepo.ListOpenByBorrower(ctx, btype, borrowerID)
}

func (s *reportingService) OverdueLoans(ctx context.Context, now time.Time) ([]domain.LoanDetail, error) {
	if now.IsZero() {
		now = time.Now()
	}
	return s.loanRepo.ListOverdue(ctx, now)
}

func (s *reportingService) BorrowCounts(ctx context.Context) ([]domain.BorrowCount, error) {
	return s.loanRepo.BorrowCounts(ctx)
}
