package analytics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/julianstephens/softworkday/internal/logger"
)

func TestLogTracker_WritesDebugLine(t *testing.T) {
	var buf bytes.Buffer
	tr := NewLogTrackerWith(logger.New(&buf, true))

	tr.Track(EventMessageGeneration, Params{"mood": "calm", "has_context": true})

	out := buf.String()
	for _, want := range []string{"event=message_generation", "mood=calm", "has_context=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
	if strings.Index(out, "has_context") > strings.Index(out, "mood") {
		t.Errorf("params should be logged in key order: %q", out)
	}
}

func TestLogTracker_SilentAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	tr := NewLogTrackerWith(logger.New(&buf, false))
	tr.Track(EventPageView, Params{"source": "icon"})
	if buf.Len() != 0 {
		t.Errorf("expected no output at warn level, got %q", buf.String())
	}
}

func TestLogTracker_NilSafe(t *testing.T) {
	var tr *LogTracker
	tr.Track(EventResetState, nil)
}

func TestRecorder_Count(t *testing.T) {
	r := &Recorder{}
	r.Track(EventViewChanged, Params{"view": "settings"})
	r.Track(EventViewChanged, Params{"view": "main"})
	r.Track(EventResetState, nil)
	if got := r.Count(EventViewChanged); got != 2 {
		t.Errorf("Count(view_changed) = %d, want 2", got)
	}
}
