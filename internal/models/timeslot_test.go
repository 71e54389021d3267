package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("07:30")
	require.NoError(t, err)
	assert.Equal(t, 450, minutes)

	_, err = ParseClock("25:00")
	assert.Error(t, err)

	_, err = ParseClock("9am")
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	base := TimeSlot{Start: 540, End: 600} // 09:00-10:00

	cases := []struct {
		name  string
		other TimeSlot
		want  bool
	}{
		{"identical", TimeSlot{540, 600}, true},
		{"contained", TimeSlot{550, 590}, true},
		{"containing", TimeSlot{500, 700}, true},
		{"partial front", TimeSlot{500, 560}, true},
		{"partial back", TimeSlot{590, 660}, true},
		{"touching before", TimeSlot{480, 540}, false},
		{"touching after", TimeSlot{600, 660}, false},
		{"disjoint", TimeSlot{700, 760}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, value := range []string{"00:00", "07:30", "13:05", "23:59"} {
		minutes, err := ParseClock(value)
		require.NoError(t, err)
		assert.Equal(t, value, FormatClock(minutes))
	}
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2025-08-04")
	assert.NoError(t, err)

	_, err = ParseDate("04-08-2025")
	assert.Error(t, err)
}
