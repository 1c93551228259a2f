package domain

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "AVAILABLE"
	ItemStatusFullyIssued ItemStatus = "FULLY_ISSUED"
	ItemStatusLost        ItemStatus = "LOST"
	ItemStatusDamaged     ItemStatus = "DAMAGED"
)

// Item is one catalog record for a circulating title. AvailableQuantity is
// owned by the circulation engine: it always equals TotalQuantity minus the
// number of OPEN loans, and is only ever changed together with a loan-state
// transition.
type Item struct {
	ID                int32      `json:"id"`
	AccessionNo       string     `json:"accession_no"`
	Title             string     `json:"title"`
	Author            string     `json:"author"`
	Publisher         string     `json:"publisher"`
	Category          string     `json:"category"`
	TotalQuantity     int32      `json:"total_quantity"`
	AvailableQuantity int32      `json:"available_quantity"`
	Status            ItemStatus `json:"status"`
	// Version guards compare-and-swap stock updates.
	Version   int32  `json:"-"`
	CreatedOn string `json:"created_on"`
	UpdatedOn string `json:"updated_on"`
}

// DerivedStatus returns the status implied by the stock counters.
func DerivedStatus(available, total int32) ItemStatus {
	if total == 0 {
		return ItemStatusLost
	}
	if available > 0 {
		return ItemStatusAvailable
	}
	return ItemStatusFullyIssued
}
