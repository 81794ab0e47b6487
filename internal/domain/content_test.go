package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowSince(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2026, 3, 14, 1, 30, 0, 0, loc)

	t.Run("daily is midnight in the local zone", func(t *testing.T) {
		got := WindowDaily.Since(now)
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), got)
		assert.Equal(t, loc, got.Location())
	})

	t.Run("weekly", func(t *testing.T) {
		assert.Equal(t, now.AddDate(0, 0, -7), WindowWeekly.Since(now))
	})

	t.Run("monthly", func(t *testing.T) {
		assert.Equal(t, now.AddDate(0, -1, 0), WindowMonthly.Since(now))
	})

	t.Run("all does not constrain", func(t *testing.T) {
		assert.True(t, WindowAll.Since(now).IsZero())
	})
}
