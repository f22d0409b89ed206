package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/softworkday/internal/constants"
)

// StoredMessage is an archived generated message.
type StoredMessage struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Mood       Mood      `json:"mood"`
	TimeOfDay  TimeOfDay `json:"timeOfDay"`
	Timestamp  int64     `json:"timestamp"`            // epoch milliseconds
	Reflection string    `json:"reflection,omitempty"` // user note, optional
}

// CreatedAt returns the archive timestamp as a time.Time.
func (m StoredMessage) CreatedAt() time.Time {
	return time.UnixMilli(m.Timestamp)
}

func (m *StoredMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message id cannot be empty")
	}
	if m.Mood != "" && !m.Mood.Valid() {
		return fmt.Errorf("invalid mood %q", m.Mood)
	}
	if m.TimeOfDay != "" && !m.TimeOfDay.Valid() {
		return fmt.Errorf("invalid time of day %q", m.TimeOfDay)
	}
	return nil
}

// NewGeneratedID returns the id of a message generated from the main view.
func NewGeneratedID(now time.Time) string {
	return fmt.Sprintf("%s%d", constants.GeneratedIDPrefix, now.UnixMilli())
}

// NewNotificationID returns the identifier of a notification fired for a slot.
func NewNotificationID(slot Slot, now time.Time) string {
	return fmt.Sprintf("%s%s_%d", constants.NotificationIDPrefix, slot, now.UnixMilli())
}

// ParseNotificationID extracts the slot and timestamp from a note_<slot>_<ms>
// identifier. ok is false for anything else.
func ParseNotificationID(id string) (slot Slot, millis int64, ok bool) {
	rest, found := strings.CutPrefix(id, constants.NotificationIDPrefix)
	if !found {
		return "", 0, false
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", 0, false
	}
	slot = Slot(rest[:i])
	if !slot.Valid() {
		return "", 0, false
	}
	millis, err := strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil || millis < 0 {
		return "", 0, false
	}
	return slot, millis, true
}

// IsNotificationID reports whether id carries the notification prefix.
func IsNotificationID(id string) bool {
	return strings.HasPrefix(id, constants.NotificationIDPrefix)
}
