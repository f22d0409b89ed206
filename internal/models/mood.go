package models

import (
	"fmt"
	"strings"
)

// Mood is the user-selected emotional state a message is tailored to.
type Mood string

const (
	MoodCalm    Mood = "calm"
	MoodAnxious Mood = "anxious"
	MoodTired   Mood = "tired"
	MoodNeutral Mood = "neutral"
)

// Moods lists the moods in picker order.
var Moods = []Mood{MoodCalm, MoodAnxious, MoodTired, MoodNeutral}

func (m Mood) Valid() bool {
	switch m {
	case MoodCalm, MoodAnxious, MoodTired, MoodNeutral:
		return true
	}
	return false
}

// Label returns the display name of the mood.
func (m Mood) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// ParseMood parses a mood name, case-insensitively.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("invalid mood %q (expected calm, anxious, tired or neutral)", s)
	}
	return m, nil
}

// TimeOfDay sets the tone of a generated message.
type TimeOfDay string

const (
	TimeMorning  TimeOfDay = "morning"
	TimeMidday   TimeOfDay = "midday"
	TimeEndOfDay TimeOfDay = "end_of_day"
)

var TimesOfDay = []TimeOfDay{TimeMorning, TimeMidday, TimeEndOfDay}

func (t TimeOfDay) Valid() bool {
	switch t {
	case TimeMorning, TimeMidday, TimeEndOfDay:
		return true
	}
	return false
}

// Label is the human form used in prompts and on the share card ("end of day").
func (t TimeOfDay) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// Title is the label with a leading capital, for table columns and headings.
func (t TimeOfDay) Title() string {
	l := t.Label()
	if l == "" {
		return ""
	}
	return strings.ToUpper(l[:1]) + l[1:]
}

// ParseTimeOfDay accepts both the stored form ("end_of_day") and the label
// form ("end of day").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	t := TimeOfDay(norm)
	if !t.Valid() {
		return "", fmt.Errorf("invalid time of day %q (expected morning, midday or end_of_day)", s)
	}
	return t, nil
}

// TimeOfDayForHour maps a wall-clock hour to a time of day.
func TimeOfDayForHour(hour int) TimeOfDay {
	switch {
	case hour < 12:
		return TimeMorning
	case hour < 17:
		return TimeMidday
	default:
		return TimeEndOfDay
	}
}
