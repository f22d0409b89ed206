package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/models"
)

func fakeAnthropic(t *testing.T, status int, text string, seen *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			return
		}
		content := `[]`
		if text != "" {
			b, _ := json.Marshal(text)
			content = `[{"type":"text","text":` + string(b) + `}]`
		}
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",` +
			`"content":` + content + `,"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClaude(server *httptest.Server) *Claude {
	return NewClaude("test-key", "claude-test", 2*time.Second,
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
}

func TestClaudeGenerate(t *testing.T) {
	var req map[string]any
	server := fakeAnthropic(t, http.StatusOK, "  Take the next hour one task at a time.  ", &req)

	got := newTestClaude(server).Generate(context.Background(), models.MoodAnxious, models.TimeMidday, "deadline at 3")
	if got != "Take the next hour one task at a time." {
		t.Errorf("Generate() = %q", got)
	}

	if req["temperature"] != 0.9 || req["top_p"] != 0.95 {
		t.Errorf("sampling params = %v / %v, want 0.9 / 0.95", req["temperature"], req["top_p"])
	}
	raw, _ := json.Marshal(req["messages"])
	if !strings.Contains(string(raw), "deadline at 3") || !strings.Contains(string(raw), "Anxious") {
		t.Errorf("prompt does not carry mood and context: %s", raw)
	}
}

func TestClaudeGenerate_EmptyResponse(t *testing.T) {
	server := fakeAnthropic(t, http.StatusOK, "   ", nil)
	got := newTestClaude(server).Generate(context.Background(), models.MoodCalm, models.TimeMorning, "")
	if got != constants.FallbackEmpty {
		t.Errorf("Generate() = %q, want empty fallback", got)
	}
}

func TestClaudeGenerate_ErrorFallsBack(t *testing.T) {
	server := fakeAnthropic(t, http.StatusInternalServerError, "", nil)
	got := newTestClaude(server).Generate(context.Background(), models.MoodTired, models.TimeEndOfDay, "")
	if got != constants.FallbackError {
		t.Errorf("Generate() = %q, want error fallback", got)
	}
}

func TestOffline(t *testing.T) {
	g := Offline{}
	for _, tod := range models.TimesOfDay {
		a := g.Generate(context.Background(), models.MoodCalm, tod, "x")
		b := g.Generate(context.Background(), models.MoodCalm, tod, "x")
		if a == "" || a != b {
			t.Errorf("%s: Generate() = %q then %q, want stable non-empty text", tod, a, b)
		}
	}
}

func TestNew(t *testing.T) {
	if _, ok := New("", "m", time.Second).(Offline); !ok {
		t.Error("New without key should return Offline")
	}
	if _, ok := New("k", "m", time.Second).(*Claude); !ok {
		t.Error("New with key should return Claude")
	}
}

func TestBuildPrompt_DefaultContext(t *testing.T) {
	p := buildPrompt(models.MoodNeutral, models.TimeEndOfDay, "")
	if !strings.Contains(p, defaultContext) || !strings.Contains(p, "end of day") {
		t.Errorf("prompt = %q", p)
	}
}
