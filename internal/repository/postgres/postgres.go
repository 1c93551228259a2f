package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"libcirc-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so every
// repository works both standalone and inside an ExecTx transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.ItemRepository
	repository.BorrowerRepository
	repository.LoanRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		ItemRepository:         NewItemRepository(db),
		BorrowerRepository:     NewBorrowerRepository(db),
		LoanRepository:         NewLoanRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// ExecTx runs fn with repositories bound to a single transaction. The
// transaction commits only if fn returns nil; any error rolls everything
// back so no partial circulation write is ever visible.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	repos := repository.Repositories{
		Items:         NewItemRepository(tx),
		Borrowers:     NewBorrowerRepository(tx),
		Loans:         NewLoanRepository(tx),
		Notifications: NewNotificationRepository(tx),
	}

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
