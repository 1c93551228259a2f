package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository"
)

type itemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, accession_no, title, author, publisher, category, total_quantity, available_quantity, status, version, created_on, updated_on`

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `INSERT INTO items (accession_no, title, author, publisher, category, total_quantity, available_quantity, status, version, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		item.AccessionNo, item.Title, item.Author, item.Publisher, item.Category,
		item.TotalQuantity, item.AvailableQuantity, item.Status, now, now,
	).Scan(&item.ID)
}

func (r *itemRepository) GetByAccessionNo(ctx context.Context, accessionNo string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE accession_no = $1`
	return r.scanItem(r.db.QueryRowContext(ctx, query, accessionNo))
}

func (r *itemRepository) scanItem(row *sql.Row) (*domain.Item, error) {
	item := &domain.Item{}
	var createdOn, updatedOn time.Time
	err := row.Scan(&item.ID, &item.AccessionNo, &item.Title, &item.Author, &item.Publisher, &item.Category,
		&item.TotalQuantity, &item.AvailableQuantity, &item.Status, &item.Version, &createdOn, &updatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	item.CreatedOn = createdOn.Format("2006-01-02")
	item.UpdatedOn = updatedOn.Format("2006-01-02")
	return item, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `UPDATE items SET title=$1, author=$2, publisher=$3, category=$4, updated_on=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query, item.Title, item.Author, item.Publisher, item.Category, time.Now(), item.ID)
	return err
}

func (r *itemRepository) UpdateStock(ctx context.Context, itemID int32, availableDelta, totalDelta int32, status domain.ItemStatus, expectedVersion int32) error {
	query := `UPDATE items
	          SET available_quantity = available_quantity + $1,
	              total_quantity = total_quantity + $2,
	              status = $3,
	              version = version + 1,
	              updated_on = $4
	          WHERE id = $5 AND version = $6`
	res, err := r.db.ExecContext(ctx, query, availableDelta, totalDelta, status, time.Now(), itemID, expectedVersion)
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

func (r *itemRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Item, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM items`).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY accession_no LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var createdOn, updatedOn time.Time
		if err := rows.Scan(&item.ID, &item.AccessionNo, &item.Title, &item.Author, &item.Publisher, &item.Category,
			&item.TotalQuantity, &item.AvailableQuantity, &item.Status, &item.Version, &createdOn, &updatedOn); err != nil {
			return nil, 0, err
		}
		item.CreatedOn = createdOn.Format("2006-01-02")
		item.UpdatedOn = updatedOn.Format("2006-01-02")
		items = append(items, item)
	}
	return items, count, rows.Err()
}
