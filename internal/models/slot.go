package models

import (
	"fmt"

	"github.com/julianstephens/softworkday/internal/constants"
)

// Slot is one of the three named notification times.
type Slot string

const (
	SlotMorning Slot = "morning"
	SlotMidday  Slot = "midday"
	SlotEvening Slot = "evening"
)

// Slots lists every slot in the order alarms are registered.
var Slots = []Slot{SlotMorning, SlotMidday, SlotEvening}

func (s Slot) Valid() bool {
	switch s {
	case SlotMorning, SlotMidday, SlotEvening:
		return true
	}
	return false
}

// AlarmName returns the alarm identifier registered for the slot.
func (s Slot) AlarmName() string {
	switch s {
	case SlotMorning:
		return constants.AlarmMorning
	case SlotMidday:
		return constants.AlarmMidday
	case SlotEvening:
		return constants.AlarmEvening
	}
	return ""
}

// TimeOfDay returns the message tone for the slot.
func (s Slot) TimeOfDay() TimeOfDay {
	switch s {
	case SlotMidday:
		return TimeMidday
	case SlotEvening:
		return TimeEndOfDay
	default:
		return TimeMorning
	}
}

// SlotForAlarm resolves an alarm name back to its slot.
func SlotForAlarm(name string) (Slot, bool) {
	for _, s := range Slots {
		if s.AlarmName() == name {
			return s, true
		}
	}
	return "", false
}

// ParseSlot parses a slot name.
func ParseSlot(s string) (Slot, error) {
	slot := Slot(s)
	if !slot.Valid() {
		return "", fmt.Errorf("invalid slot %q (expected morning, midday or evening)", s)
	}
	return slot, nil
}
