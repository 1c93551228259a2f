package domain

type BorrowerType string

const (
	BorrowerTypeStudent BorrowerType = "STUDENT"
	BorrowerTypeStaff   BorrowerType = "STAFF"
)

// Borrower is a directory entry for a student or staff member. The engine
// only uses it to check existence and to enrich loan records with display
// metadata; it never gates circulation beyond that.
type Borrower struct {
	ID         int32        `json:"id"`
	Type       BorrowerType `json:"type"`
	BorrowerID string       `json:"borrower_id"`
	Name       string       `json:"name"`
	Department string       `json:"department"`
	Email      string       `json:"email"`
	CreatedOn  string       `json:"created_on"`
}

// BorrowerRef identifies a borrower across the two directory populations.
type BorrowerRef struct {
	Type       BorrowerType `json:"type"`
	BorrowerID string       `json:"borrower_id"`
}
