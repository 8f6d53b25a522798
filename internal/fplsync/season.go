package fplsync

import (
	"fmt"
	"time"
)

// CurrentSeason derives the season label for a point in time. Seasons roll
// over in July: June 2025 is "2024-25", August 2025 is "2025-26".
func CurrentSeason(now time.Time) string {
	now = now.UTC()
	year := now.Year()
	if now.Month() >= time.July {
		return fmt.Sprintf("%d-%02d", year, (year+1)%100)
	}
	return fmt.Sprintf("%d-%02d", year-1, year%100)
}
