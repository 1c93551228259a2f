package service

import (
	"context"
	"errors"
	"fmt"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository"
)

type catalogService struct {
	itemRepo repository.ItemRepository
}

func NewCatalogService(itemRepo repository.ItemRepository) CatalogService {
	return &catalogService{itemRepo: itemRepo}
}

func (s *catalogService) AddItem(ctx context.Context, item *domain.Item) error {
	if item.AccessionNo == "" {
		return errors.New("accession number is required")
	}
	if item.Title == "" {
		return errors.New("title is required")
	}
	if item.TotalQuantity < 0 {
		return fmt.Errorf("total quantity must not be negative: %d", item.TotalQuantity)
	}

	// A fresh item has every copy on the shelf.
	item.AvailableQuantity = item.TotalQuantity
	item.Status = domain.DerivedStatus(item.AvailableQuantity, item.TotalQuantity)
	return s.itemRepo.Create(ctx, item)
}

func (s *catalogService) GetItem(ctx context.Context, accessionNo string) (*domain.Item, error) {
	return s.itemRepo.GetByAccessionNo(ctx, accessionNo)
}

// UpdateItem writes descriptive fields only. Stock counters belong to the
// circulation engine and cannot be edited here.
func (s *catalogService) UpdateItem(ctx context.Context, item *domain.Item) error {
	existing, err := s.itemRepo.GetByAccessionNo(ctx, item.AccessionNo)
	if err != nil {
		return err
	}
	item.ID = existing.ID
	return s.itemRepo.Update(ctx, item)
}

func (s *catalogService) ListItems(ctx context.Context, page, pageSize int32) ([]domain.Item, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.itemRepo.List(ctx, page, pageSize)
}
