package fplsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentSeason(t *testing.T) {
	cases := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2025, time.June, 30, 23, 59, 0, 0, time.UTC), "2024-25"},
		{time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2025, time.August, 31, 12, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2099, time.December, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CurrentSeason(tc.now), "at %s", tc.now)
	}
}
