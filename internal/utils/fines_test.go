package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeFine(t *testing.T) {
	due := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("No fine before due date", func(t *testing.T) {
		assert.Equal(t, int32(0), ComputeFine(due, due.Add(-48*time.Hour), 2))
	})

	t.Run("No fine exactly at due date", func(t *testing.T) {
		assert.Equal(t, int32(0), ComputeFine(due, due, 2))
	})

	t.Run("Partial day counts as full day", func(t *testing.T) {
		assert.Equal(t, int32(2), ComputeFine(due, due.Add(1*time.Hour), 2))
	})

	t.Run("Five days late at rate 2", func(t *testing.T) {
		assert.Equal(t, int32(10), ComputeFine(due, due.AddDate(0, 0, 5), 2))
	})

	t.Run("Rate is injected", func(t *testing.T) {
		assert.Equal(t, int32(15), ComputeFine(due, due.AddDate(0, 0, 3), 5))
	})
}

func TestComputeFine_Monotonic(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	prev := int32(0)
	for h := 0; h <= 24*10; h += 7 {
		fine := ComputeFine(due, due.Add(time.Duration(h)*time.Hour), 2)
		assert.GreaterOrEqual(t, fine, prev, "fine must never decrease as the return gets later")
		prev = fine
	}
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		returned time.Time
		expected int32
	}{
		{"on time", due, 0},
		{"one second late", due.Add(time.Second), 1},
		{"exactly one day", due.AddDate(0, 0, 1), 1},
		{"one day and one hour", due.Add(25 * time.Hour), 2},
		{"a week late", due.AddDate(0, 0, 7), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysLate(due, tt.returned))
		})
	}
}
