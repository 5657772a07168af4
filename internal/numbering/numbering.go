// Package numbering builds invoice identifiers of the form YYMMDD followed by
// a zero-padded, 1-based sequence scoped to the issue date.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const dayLayout = "060102"

// Sequencer hands out a monotonically increasing number per issue date.
// Numbers may be skipped but are never reused.
type Sequencer interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}

func DayKey(day time.Time) string {
	return day.Format(dayLayout)
}

// Format renders the identifier; sequences past 9999 simply grow wider.
func Format(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%04d", DayKey(day), seq)
}

// Parse splits an identifier back into its issue date (UTC midnight) and sequence.
func Parse(id string) (time.Time, int64, error) {
	if len(id) < len(dayLayout)+4 {
		return time.Time{}, 0, fmt.Errorf("invoice id %q too short", id)
	}
	day, err := time.Parse(dayLayout, id[:len(dayLayout)])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invoice id %q: %w", id, err)
	}
	seq, err := strconv.ParseInt(id[len(dayLayout):], 10, 64)
	if err != nil || seq < 1 {
		return time.Time{}, 0, fmt.Errorf("invoice id %q has invalid sequence", id)
	}
	return day, seq, nil
}
