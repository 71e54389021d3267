package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekdayNormalises(t *testing.T) {
	day, err := ParseWeekday("  MonDay ")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)
}

func TestParseWeekdayRejectsUnknown(t *testing.T) {
	_, err := ParseWeekday("funday")
	assert.Error(t, err)
}

func TestParseWeekdaysRejectsAnyInvalidToken(t *testing.T) {
	_, err := ParseWeekdays([]string{"monday", "nope", "friday"})
	assert.Error(t, err)
}

func TestParseWeekdaysDeduplicates(t *testing.T) {
	set, err := ParseWeekdays([]string{"monday", "Monday", "friday"})
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, Monday)
	assert.Contains(t, set, Friday)
}

func TestWeekdayOf(t *testing.T) {
	// 2025-08-04 is a Monday.
	d := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	for i, want := range []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday} {
		assert.Equal(t, want, WeekdayOf(d.AddDate(0, 0, i)))
	}
}
