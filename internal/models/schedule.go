package models

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/softworkday/internal/constants"
)

var (
	// ErrInvalidTime is returned for a schedule time that is not a 24-hour HH:MM value.
	ErrInvalidTime = errors.New("invalid time (expected 24-hour HH:MM)")
	// ErrInvalidSchedule is returned when any field of a schedule is invalid.
	ErrInvalidSchedule = errors.New("invalid notification schedule")
)

// NotificationSchedule holds the wall-clock time of each daily notification.
type NotificationSchedule struct {
	Morning string `json:"morning"` // HH:MM
	Midday  string `json:"midday"`  // HH:MM
	Evening string `json:"evening"` // HH:MM
}

// DefaultSchedule returns the schedule written on first run and by reset.
func DefaultSchedule() NotificationSchedule {
	return NotificationSchedule{
		Morning: constants.DefaultMorning,
		Midday:  constants.DefaultMidday,
		Evening: constants.DefaultEvening,
	}
}

// Time returns the HH:MM value configured for a slot.
func (s NotificationSchedule) Time(slot Slot) string {
	switch slot {
	case SlotMorning:
		return s.Morning
	case SlotMidday:
		return s.Midday
	case SlotEvening:
		return s.Evening
	}
	return ""
}

// WithTime returns a copy of the schedule with one slot replaced.
func (s NotificationSchedule) WithTime(slot Slot, hhmm string) NotificationSchedule {
	switch slot {
	case SlotMorning:
		s.Morning = hhmm
	case SlotMidday:
		s.Midday = hhmm
	case SlotEvening:
		s.Evening = hhmm
	}
	return s
}

// Validate checks every slot. There is no ordering constraint between slots.
func (s NotificationSchedule) Validate() error {
	for _, slot := range Slots {
		if _, _, err := ParseClock(s.Time(slot)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSchedule, slot, err)
		}
	}
	return nil
}

// Normalize replaces every invalid slot with its default and reports which
// slots were replaced.
func (s NotificationSchedule) Normalize() (NotificationSchedule, []Slot) {
	defaults := DefaultSchedule()
	var replaced []Slot
	for _, slot := range Slots {
		if _, _, err := ParseClock(s.Time(slot)); err != nil {
			s = s.WithTime(slot, defaults.Time(slot))
			replaced = append(replaced, slot)
		}
	}
	return s, replaced
}

// ParseClock parses a strict two-digit HH:MM string.
func ParseClock(hhmm string) (hour, minute int, err error) {
	if len(hhmm) != 5 || hhmm[2] != ':' || !isDigits(hhmm[:2]) || !isDigits(hhmm[3:]) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	hour, err = strconv.Atoi(hhmm[:2])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q: hour out of range", ErrInvalidTime, hhmm)
	}
	minute, err = strconv.Atoi(hhmm[3:])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q: minute out of range", ErrInvalidTime, hhmm)
	}
	return hour, minute, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
