package service

import (
	"context"
	"errors"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository"
)

type borrowerService struct {
	borrowerRepo repository.BorrowerRepository
}

func NewBorrowerService(borrowerRepo repository.BorrowerRepository) BorrowerService {
	return &borrowerService{borrowerRepo: borrowerRepo}
}

func (s *borrowerService) Register(ctx context.Context, b *domain.Borrower) error {
	if b.BorrowerID == "" {
		return errors.New("borrower id is required")
	}
	if b.Name == "" {
		return errors.New("name is required")
	}
	if b.Type != domain.BorrowerTypeStudent && b.Type != domain.BorrowerTypeStaff {
		return errors.New("borrower type must be STUDENT or STAFF")
	}
	return s.borrowerRepo.Create(ctx, b)
}

func (s *borrowerService) Get(ctx context.Context, btype domain.BorrowerType, borrowerID string) (*domain.Borrower, error) {
	return s.borrowerRepo.Resolve(ctx, btype, borrowerID)
}

func (s *borrowerService) UpdateProfile(ctx context.Context, b *domain.Borrower) error {
	if _, err := s.borrowerRepo.Resolve(ctx, b.Type, b.BorrowerID); err != nil {
		return err
	}
	return s.borrowerRepo.Update(ctx, b)
}

func (s *borrowerService) List(ctx context.Context, btype domain.BorrowerType, page, pageSize int32) ([]domain.Borrower, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.borrowerRepo.ListByType(ctx, btype, page, pageSize)
}
