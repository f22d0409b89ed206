package analytics

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/softworkday/internal/logger"
)

// Event names emitted by the view controller and outer surfaces.
const (
	EventPageView            = "page_view"
	EventMessageGeneration   = "message_generation"
	EventMessageRegeneration = "message_regeneration"
	EventViewChanged         = "view_changed"
	EventResetState          = "reset_state"
	EventSettingsSaved       = "settings_saved"
	EventSettingsReset       = "settings_reset"
	EventShareCardGenerated  = "share_card_generated"
	EventShareButtonClick    = "share_button_click"
)

// Params carries event attributes.
type Params map[string]any

// Tracker records usage events. Implementations must not block or fail.
type Tracker interface {
	Track(name string, params Params)
}

// LogTracker writes events to the structured log at debug level.
type LogTracker struct {
	log *log.Logger
}

func NewLogTracker() *LogTracker {
	return &LogTracker{log: logger.Component("analytics")}
}

// NewLogTrackerWith writes events to l instead of the global logger.
func NewLogTrackerWith(l *log.Logger) *LogTracker {
	return &LogTracker{log: l}
}

func (t *LogTracker) Track(name string, params Params) {
	if t == nil || t.log == nil {
		return
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]any, 0, 2+2*len(keys))
	keyvals = append(keyvals, "event", name)
	for _, k := range keys {
		keyvals = append(keyvals, k, params[k])
	}
	t.log.Debug("Event", keyvals...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Track(string, Params) {}

// Recorder keeps events in memory; tests use it to assert emissions.
type Recorder struct {
	Events []Recorded
}

// Recorded is one tracked event.
type Recorded struct {
	Name   string
	Params Params
}

func (r *Recorder) Track(name string, params Params) {
	r.Events = append(r.Events, Recorded{Name: name, Params: params})
}

// Count returns how many events with name were recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, e := range r.Events {
		if e.Name == name {
			n++
		}
	}
	return n
}
