package repository

import (
	"fmt"
	"time"
)

const (
	// storageTimestampLayout is fixed-width so text order matches time order.
	storageTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
	// legacyTimestampLayout is what SQLite's CURRENT_TIMESTAMP produces.
	legacyTimestampLayout = "2006-01-02 15:04:05"
)

// formatTimestamp renders t in UTC for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storageTimestampLayout)
}

// parseTimestamp accepts both the current layout and rows written by the
// legacy cache table.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(legacyTimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
