package utils

import "time"

const hoursPerDay = 24

// DaysLate returns the number of chargeable late days between dueAt and
// returnedAt. Any partial day past the due date counts as a full day; zero
// when the return is on time or early.
func DaysLate(dueAt, returnedAt time.Time) int32 {
	if !returnedAt.After(dueAt) {
		return 0
	}
	late := returnedAt.Sub(dueAt)
	days := int32(late / (hoursPerDay * time.Hour))
	if late%(hoursPerDay*time.Hour) > 0 {
		days++
	}
	return days
}

// ComputeFine derives the overdue fine for a loan due at dueAt and returned
// at returnedAt. Pure and deterministic; the per-day rate comes from
// configuration so tests can use short deterministic values.
func ComputeFine(dueAt, returnedAt time.Time, ratePerDay int32) int32 {
	return DaysLate(dueAt, returnedAt) * ratePerDay
}
