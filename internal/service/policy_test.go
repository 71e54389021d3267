package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/room-booking-api/pkg/config"
)

func TestNewSchedulingPolicyDefaults(t *testing.T) {
	policy, err := NewSchedulingPolicy(config.BookingConfig{DayStart: "07:30", DayEnd: "19:30"})
	require.NoError(t, err)
	assert.Equal(t, 4, policy.DailyLimit)
	assert.Equal(t, 2*time.Hour, policy.MinCancelLead)
	assert.Equal(t, 30*time.Minute, policy.SlotInterval)
}

func TestNewSchedulingPolicyRejectsInvertedWindow(t *testing.T) {
	_, err := NewSchedulingPolicy(config.BookingConfig{DayStart: "19:30", DayEnd: "07:30"})
	assert.Error(t, err)
}

func TestValidateSlotBounds(t *testing.T) {
	policy := testPolicy(t)

	_, err := policy.validateSlot("07:30", "19:30")
	assert.NoError(t, err, "the full window is bookable")

	_, err = policy.validateSlot("07:00", "08:00")
	assert.Error(t, err, "starts before opening")

	_, err = policy.validateSlot("19:00", "20:00")
	assert.Error(t, err, "ends after closing")

	_, err = policy.validateSlot("10:00", "10:00")
	assert.Error(t, err, "zero-length slot")
}

func TestTimeSlotsEnumeration(t *testing.T) {
	policy := testPolicy(t)

	options := policy.TimeSlots()
	// 07:30 through 19:30 inclusive at 30-minute steps.
	require.Len(t, options, 25)
	assert.Equal(t, "07:30", options[0].Value)
	assert.Equal(t, "7:30 AM", options[0].Label)
	assert.Equal(t, "19:30", options[len(options)-1].Value)
	assert.Equal(t, "7:30 PM", options[len(options)-1].Label)
}
