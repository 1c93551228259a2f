package domain

import "errors"

// One sentinel per circulation precondition so callers can match with
// errors.Is and render an accurate message instead of a generic failure.
var (
	ErrItemNotFound         = errors.New("item not found")
	ErrBorrowerNotFound     = errors.New("borrower not found")
	ErrOutOfStock           = errors.New("no copies available")
	ErrDuplicateActiveLoan  = errors.New("borrower already holds an open loan for this item")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrLoanNotOpen          = errors.New("loan is not open")
	ErrRenewalBlockedByFine = errors.New("renewal blocked by pending fine")
	ErrNoActiveLoan         = errors.New("no open loan for this item and borrower")
	ErrNoFineDue            = errors.New("no pending fine on this loan")

	// ErrConcurrentModification means an optimistic stock update lost a race
	// and affected no rows. The engine retries a bounded number of times
	// before surfacing it.
	ErrConcurrentModification = errors.New("concurrent modification, no rows were affected")
)
