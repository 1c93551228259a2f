package domain

import "time"

type LoanState string

const (
	LoanStateOpen     LoanState = "OPEN"
	LoanStateReturned LoanState = "RETURNED"
	LoanStateLost     LoanState = "LOST"
)

type FineState string

const (
	FineStateNone    FineState = "NONE"
	FineStatePending FineState = "PENDING"
	FineStatePaid    FineState = "PAID"
)

// Loan is one borrow transaction for one item by one borrower. Lifecycle:
// created OPEN by issue, closed RETURNED by return or renew (renewal opens a
// successor linked via RenewalOf), or closed LOST by a lost report. RETURNED
// and LOST are terminal.
type Loan struct {
	ID           int32        `json:"id"`
	LoanRef      string       `json:"loan_ref"`
	ItemID       int32        `json:"item_id"`
	BorrowerType BorrowerType `json:"borrower_type"`
	BorrowerID   string       `json:"borrower_id"`
	IssuedAt     time.Time    `json:"issued_at"`
	DueAt        time.Time    `json:"due_at"`
	ReturnedAt   *time.Time   `json:"returned_at,omitempty"`
	State        LoanState    `json:"state"`
	RenewalOf    *int32       `json:"renewal_of,omitempty"`
	FineAmount   int32        `json:"fine_amount"`
	FineState    FineState    `json:"fine_state"`
	// Populated only when State is LOST.
	LostReason      string     `json:"lost_reason,omitempty"`
	LostReportedAt  *time.Time `json:"lost_reported_at,omitempty"`
	ReplacementCost int32      `json:"replacement_cost,omitempty"`
	CreatedOn       time.Time  `json:"created_on"`
	UpdatedOn       time.Time  `json:"updated_on"`
}

// LoanDetail joins a loan with the display metadata callers render alongside
// it (borrower-facing views, overdue reports).
type LoanDetail struct {
	Loan
	AccessionNo   string `json:"accession_no"`
	ItemTitle     string `json:"item_title"`
	ItemAuthor    string `json:"item_author"`
	BorrowerName  string `json:"borrower_name,omitempty"`
	BorrowerEmail string `json:"borrower_email,omitempty"`
}

// BorrowCount is one row of the loans-ever-issued-per-item report.
type BorrowCount struct {
	ItemID      int32  `json:"item_id"`
	AccessionNo string `json:"accession_no"`
	Title       string `json:"title"`
	Count       int32  `json:"count"`
}
