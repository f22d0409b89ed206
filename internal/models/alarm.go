package models

import "time"

// Alarm is a registered recurring trigger.
type Alarm struct {
	Name   string        `json:"name"`
	When   time.Time     `json:"when"`   // next fire instant
	Period time.Duration `json:"period"` // zero for one-shot alarms
}

// Fired is emitted by the alarm engine when an alarm goes off.
type Fired struct {
	Name        string
	ScheduledAt time.Time
	FiredAt     time.Time
}
