package domain

import "time"

// Notification is a borrower-facing message row (issue receipts, overdue
// reminders). Written best-effort; a failed notification never fails the
// circulation operation that produced it.
type Notification struct {
	ID           int32             `json:"id"`
	BorrowerType BorrowerType      `json:"borrower_type"`
	BorrowerID   string            `json:"borrower_id"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	IsRead       bool              `json:"is_read"`
	CreatedOn    time.Time         `json:"created_on"`
}
