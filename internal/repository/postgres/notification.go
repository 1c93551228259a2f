package postgres

import (
	"context"
	"encoding/json"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/repository"
)

type notificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	attrs, err := json.Marshal(note.Attributes)
	if err != nil {
		return err
	}
	query := `INSERT INTO notifications (borrower_type, borrower_id, title, message, attributes, is_read, created_on)
	          VALUES ($1, $2, $3, $4, $5, false, NOW()) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query, note.BorrowerType, note.BorrowerID, note.Title, note.Message, attrs).
		Scan(&note.ID, &note.CreatedOn)
}

func (r *notificationRepository) List(ctx context.Context, btype domain.BorrowerType, borrowerID string, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE borrower_type = $1 AND borrower_id = $2`
	if err := r.db.QueryRowContext(ctx, countQuery, btype, borrowerID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, borrower_type, borrower_id, title, message, attributes, is_read, created_on
	          FROM notifications WHERE borrower_type = $1 AND borrower_id = $2
	          ORDER BY created_on DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, btype, borrowerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.BorrowerType, &n.BorrowerID, &n.Title, &n.Message, &attrs, &n.IsRead, &n.CreatedOn); err != nil {
			return nil, 0, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, err
			}
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id int32, btype domain.BorrowerType, borrowerID string) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND borrower_type = $2 AND borrower_id = $3`
	_, err := r.db.ExecContext(ctx, query, id, btype, borrowerID)
	return err
}
