package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/softworkday/internal/models"
)

type fakeSink struct {
	mu     sync.Mutex
	sent   []Notification
	err    error
	clicks chan string
}

func newFakeSink() *fakeSink {
	return &fakeSink{clicks: make(chan string, 1)}
}

func (s *fakeSink) Send(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *fakeSink) Clicks() <-chan string { return s.clicks }
func (s *fakeSink) Close() error          { return nil }

func (s *fakeSink) Sent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.sent...)
}

func TestFire(t *testing.T) {
	now := time.UnixMilli(1714815000000)
	sink := newFakeSink()
	d := NewDispatcher(sink, clockwork.NewFakeClockAt(now), nil)

	tests := []struct {
		alarm string
		id    string
		title string
	}{
		{"morning_steady", "note_morning_1714815000000", "Good Morning, SoftWorkday."},
		{"midday_steady", "note_midday_1714815000000", "SoftWorkday Pause."},
		{"evening_steady", "note_evening_1714815000000", "End of Day, SoftWorkday."},
	}
	for _, tt := range tests {
		t.Run(tt.alarm, func(t *testing.T) {
			id, err := d.Fire(context.Background(), tt.alarm)
			if err != nil {
				t.Fatalf("Fire failed: %v", err)
			}
			if id != tt.id {
				t.Errorf("id = %q, want %q", id, tt.id)
			}
			sent := sink.Sent()
			last := sent[len(sent)-1]
			if last.ID != tt.id || last.Title != tt.title || last.Message == "" {
				t.Errorf("sent %+v", last)
			}
		})
	}
}

func TestFire_ClickableOnlyWithHandler(t *testing.T) {
	oneShot := newFakeSink()
	if _, err := NewDispatcher(oneShot, nil, nil).Fire(context.Background(), "morning_steady"); err != nil {
		t.Fatal(err)
	}
	n := oneShot.Sent()[0]
	if n.Clickable || len(actionsFor(n)) != 0 {
		t.Errorf("one-shot notification offers a click action: %+v", n)
	}

	daemon := newFakeSink()
	d := NewDispatcher(daemon, nil, func(context.Context, string) {})
	if _, err := d.Fire(context.Background(), "morning_steady"); err != nil {
		t.Fatal(err)
	}
	n = daemon.Sent()[0]
	if !n.Clickable {
		t.Errorf("notification with a click handler is not clickable: %+v", n)
	}
	if actions := actionsFor(n); len(actions) != 2 || actions[0] != defaultAction {
		t.Errorf("actions = %v", actions)
	}
}

func TestFire_UnknownAlarm(t *testing.T) {
	sink := newFakeSink()
	d := NewDispatcher(sink, nil, nil)
	if _, err := d.Fire(context.Background(), "lunch_steady"); !errors.Is(err, ErrUnknownAlarm) {
		t.Errorf("Fire() = %v, want ErrUnknownAlarm", err)
	}
	if len(sink.Sent()) != 0 {
		t.Error("unknown alarm produced a notification")
	}
}

func TestRun_FiresAndForwardsClicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := newFakeSink()
	clicked := make(chan string, 1)
	d := NewDispatcher(sink, nil, func(_ context.Context, id string) { clicked <- id })

	fired := make(chan models.Fired, 2)
	done := make(chan struct{})
	go func() {
		d.Run(ctx, fired)
		close(done)
	}()

	fired <- models.Fired{Name: "unknown_alarm"}
	fired <- models.Fired{Name: "midday_steady"}

	deadline := time.Now().Add(time.Second)
	for len(sink.Sent()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	sent := sink.Sent()
	if len(sent) != 1 || !strings.HasPrefix(sent[0].ID, "note_midday_") {
		t.Fatalf("sent = %+v", sent)
	}

	sink.clicks <- sent[0].ID
	select {
	case id := <-clicked:
		if id != sent[0].ID {
			t.Errorf("click handler got %q, want the identifier untouched %q", id, sent[0].ID)
		}
	case <-time.After(time.Second):
		t.Fatal("click was not forwarded")
	}

	close(fired)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}
}

func TestRun_SinkFailureDoesNotStopLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := newFakeSink()
	sink.err = errors.New("bus gone")
	d := NewDispatcher(sink, nil, nil)

	fired := make(chan models.Fired, 2)
	fired <- models.Fired{Name: "morning_steady"}
	done := make(chan struct{})
	go func() {
		d.Run(ctx, fired)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Run exited after a sink failure")
	default:
	}
	cancel()
	<-done
}

func TestDetailURL(t *testing.T) {
	got := DetailURL("http://127.0.0.1:7431", "note_morning_1714815000000")
	want := "http://127.0.0.1:7431/?m=note_morning_1714815000000&utm_source=notification"
	if got != want {
		t.Errorf("DetailURL() = %q, want %q", got, want)
	}
}

func TestOpenDetail(t *testing.T) {
	var opened string
	old := openURLFunc
	openURLFunc = func(_ context.Context, target string) error {
		opened = target
		return nil
	}
	t.Cleanup(func() { openURLFunc = old })

	OpenDetail("http://localhost:1")(context.Background(), "note_evening_5")
	if opened != "http://localhost:1/?m=note_evening_5&utm_source=notification" {
		t.Errorf("opened %q", opened)
	}
}

func TestLogSink(t *testing.T) {
	s := NewLogSink()
	if err := s.Send(context.Background(), Notification{ID: "note_morning_1", Title: "t"}); err != nil {
		t.Errorf("Send failed: %v", err)
	}
	if s.Clicks() != nil {
		t.Error("log sink should not report clicks")
	}
}
