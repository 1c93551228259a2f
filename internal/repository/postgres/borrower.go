package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository"
)

type borrowerRepository struct {
	db DBTX
}

func NewBorrowerRepository(db DBTX) repository.BorrowerRepository {
	return &borrowerRepository{db: db}
}

func (r *borrowerRepository) Create(ctx context.Context, b *domain.Borrower) error {
	query := `INSERT INTO borrowers (type, borrower_id, name, department, email, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, b.Type, b.BorrowerID, b.Name, b.Department, b.Email, time.Now()).Scan(&b.ID)
}

func (r *borrowerRepository) Resolve(ctx context.Context, btype domain.BorrowerType, borrowerID string) (*domain.Borrower, error) {
	b := &domain.Borrower{}
	var createdOn time.Time
	query := `SELECT id, type, borrower_id, name, COALESCE(department, ''), COALESCE(email, ''), created_on
	          FROM borrowers WHERE type = $1 AND borrower_id = $2`
	err := r.db.QueryRowContext(ctx, query, btype, borrowerID).
		Scan(&b.ID, &b.Type, &b.BorrowerID, &b.Name, &b.Department, &b.Email, &createdOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, err
	}
	b.CreatedOn = createdOn.Format("2006-01-02")
	return b, nil
}

func (r *borrowerRepository) Update(ctx context.Context, b *domain.Borrower) error {
	query := `UPDATE borrowers SET name=$1, department=$2, email=$3 WHERE type=$4 AND borrower_id=$5`
	_, err := r.db.ExecContext(ctx, query, b.Name, b.Department, b.Email, b.Type, b.BorrowerID)
	return err
}

func (r *borrowerRepository) ListByType(ctx context.Context, btype domain.BorrowerType, page, pageSize int32) ([]domain.Borrower, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM borrowers WHERE type = $1`, btype).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, type, borrower_id, name, COALESCE(department, ''), COALESCE(email, ''), created_on
	          FROM borrowers WHERE type = $1 ORDER BY borrower_id LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, btype, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var borrowers []domain.Borrower
	for rows.Next() {
		var b domain.Borrower
		var createdOn time.Time
		if err := rows.Scan(&b.ID, &b.Type, &b.BorrowerID, &b.Name, &b.Department, &b.Email, &createdOn); err != nil {
			return nil, 0, err
		}
		b.CreatedOn = createdOn.Format("2006-01-02")
		borrowers = append(borrowers, b)
	}
	return borrowers, count, rows.Err()
}
