package service

import (
	"fmt"
	"time"

	"github.com/campushub/room-booking-api/internal/models"
	"github.com/campushub/room-booking-api/pkg/config"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
)

// SchedulingPolicy is the parsed form of config.BookingConfig shared by the
// booking services.
type SchedulingPolicy struct {
	DailyLimit    int
	Window        models.TimeSlot
	MinCancelLead time.Duration
	SlotInterval  time.Duration
}

// NewSchedulingPolicy parses the configured operating window.
func NewSchedulingPolicy(cfg config.BookingConfig) (SchedulingPolicy, error) {
	window, err := models.NewTimeSlot(cfg.DayStart, cfg.DayEnd)
	if err != nil {
		return SchedulingPolicy{}, fmt.Errorf("booking day window: %w", err)
	}
	if window.Start >= window.End {
		return SchedulingPolicy{}, fmt.Errorf("booking day window: start %s is not before end %s", cfg.DayStart, cfg.DayEnd)
	}
	policy := SchedulingPolicy{
		DailyLimit:    cfg.DailyLimit,
		Window:        window,
		MinCancelLead: cfg.MinCancelLead,
		SlotInterval:  cfg.SlotInterval,
	}
	if policy.DailyLimit <= 0 {
		policy.DailyLimit = 4
	}
	if policy.MinCancelLead <= 0 {
		policy.MinCancelLead = 2 * time.Hour
	}
	if policy.SlotInterval <= 0 {
		policy.SlotInterval = 30 * time.Minute
	}
	return policy, nil
}

// validateSlot parses the HH:MM pair, requires start < end, and requires the
// interval to fall inside the operating window. All failures surface as
// VALIDATION_ERROR before any storage access.
func (p SchedulingPolicy) validateSlot(startTime, endTime string) (models.TimeSlot, error) {
	slot, err := models.NewTimeSlot(startTime, endTime)
	if err != nil {
		return models.TimeSlot{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if slot.Start >= slot.End {
		return models.TimeSlot{}, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if slot.Start < p.Window.Start || slot.End > p.Window.End {
		msg := fmt.Sprintf("bookings must fall between %s and %s",
			models.FormatClock(p.Window.Start), models.FormatClock(p.Window.End))
		return models.TimeSlot{}, appErrors.Clone(appErrors.ErrValidation, msg)
	}
	return slot, nil
}

// TimeSlotOption is one selectable boundary on the booking form.
type TimeSlotOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TimeSlots enumerates the operating window at the configured interval,
// inclusive of both boundaries.
func (p SchedulingPolicy) TimeSlots() []TimeSlotOption {
	step := int(p.SlotInterval.Minutes())
	if step <= 0 {
		step = 30
	}
	var options []TimeSlotOption
	for m := p.Window.Start; m <= p.Window.End; m += step {
		value := models.FormatClock(m)
		t, _ := time.Parse("15:04", value)
		options = append(options, TimeSlotOption{Value: value, Label: t.Format("3:04 PM")})
	}
	return options
}
