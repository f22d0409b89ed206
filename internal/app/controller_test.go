package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/softworkday/internal/analytics"
	"github.com/julianstephens/softworkday/internal/archive"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/generator"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/schedule"
	"github.com/julianstephens/softworkday/internal/storage"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls []models.TimeOfDay
	moods []models.Mood
	ctxs  []string
	text  string
}

func (g *countingGenerator) Generate(_ context.Context, mood models.Mood, tod models.TimeOfDay, userContext string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, tod)
	g.moods = append(g.moods, mood)
	g.ctxs = append(g.ctxs, userContext)
	return g.text
}

func (g *countingGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// signalingKV reports every archive write on a channel.
type signalingKV struct {
	*storage.MemoryStore
	writes chan []byte
}

func (s *signalingKV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.MemoryStore.Set(ctx, key, value); err != nil {
		return err
	}
	if key == constants.ArchiveStorageKey {
		s.writes <- value
	}
	return nil
}

type fixture struct {
	ctrl    *Controller
	archive *archive.Archive
	gen     *countingGenerator
	clock   *clockwork.FakeClock
	tracker *analytics.Recorder
	kv      storage.Provider
}

func newFixture(t *testing.T, kv storage.Provider) *fixture {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemoryStore()
	}
	f := &fixture{
		archive: archive.New(kv),
		gen:     &countingGenerator{text: "Breathe, then begin."},
		clock:   clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)),
		tracker: &analytics.Recorder{},
		kv:      kv,
	}
	f.ctrl = New(Options{
		Archive:   f.archive,
		Schedule:  schedule.NewStore(kv, nil),
		Generator: f.gen,
		Tracker:   f.tracker,
		Clock:     f.clock,
		Debounce:  time.Second,
	})
	return f
}

func TestLoad_NoMessageShowsWelcome(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.ctrl.Load(context.Background(), url.Values{}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	st := f.ctrl.State()
	if st.View != constants.StateMain || st.Message != constants.WelcomeMessage {
		t.Errorf("state = %+v", st)
	}
	if st.TimeOfDay != models.TimeMorning {
		t.Errorf("TimeOfDay at 10:00 = %s, want morning", st.TimeOfDay)
	}
	if st.Source != "icon" || f.tracker.Count(analytics.EventPageView) != 1 {
		t.Errorf("page view not tracked with icon source: %+v", f.tracker.Events)
	}
	if f.gen.count() != 0 {
		t.Error("welcome load should not generate")
	}
}

func TestLoad_NotificationIDGeneratesOnce(t *testing.T) {
	kv := storage.NewMemoryStore()
	ctx := context.Background()
	query := url.Values{"m": {"note_morning_1700000000000"}, "utm_source": {"notification"}}

	f := newFixture(t, kv)
	if err := f.ctrl.Load(ctx, query); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.gen.count() != 1 {
		t.Fatalf("generator calls = %d, want 1", f.gen.count())
	}
	if f.gen.calls[0] != models.TimeMorning || f.gen.moods[0] != models.MoodNeutral || f.gen.ctxs[0] != constants.CheckInContext {
		t.Errorf("generated with (%s, %s, %q)", f.gen.moods[0], f.gen.calls[0], f.gen.ctxs[0])
	}

	st := f.ctrl.State()
	if st.View != constants.StateDetail || st.ActiveID != "note_morning_1700000000000" || st.Message != "Breathe, then begin." {
		t.Errorf("state after load = %+v", st)
	}
	if st.Source != constants.SourceNotify {
		t.Errorf("Source = %q, want notification", st.Source)
	}

	stored, err := f.archive.GetMessageByID(ctx, "note_morning_1700000000000")
	if err != nil || stored == nil {
		t.Fatalf("message not archived under notification id: %v", err)
	}
	if stored.TimeOfDay != models.TimeMorning || stored.Text != "Breathe, then begin." {
		t.Errorf("stored = %+v", stored)
	}

	// A second identical load hits the archive.
	again := newFixture(t, kv)
	if err := again.ctrl.Load(ctx, query); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if again.gen.count() != 0 {
		t.Errorf("second load regenerated %d time(s)", again.gen.count())
	}
	if again.ctrl.State().Message != "Breathe, then begin." {
		t.Errorf("second load message = %q", again.ctrl.State().Message)
	}
}

func TestLoad_ArchivedMessageHydrates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	msg := models.StoredMessage{
		ID: "gen_5", Text: "Slow is fine.", Mood: models.MoodTired,
		TimeOfDay: models.TimeEndOfDay, Timestamp: 5, Reflection: "long day",
	}
	if err := f.archive.ArchiveMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}

	if err := f.ctrl.Load(ctx, url.Values{"m": {"gen_5"}}); err != nil {
		t.Fatal(err)
	}
	st := f.ctrl.State()
	if st.View != constants.StateDetail || st.Reflection != "long day" || st.Mood != models.MoodTired || st.TimeOfDay != models.TimeEndOfDay {
		t.Errorf("state = %+v", st)
	}
}

func TestLoad_MalformedIDStaysOnMain(t *testing.T) {
	f := newFixture(t, nil)
	for _, id := range []string{"note_night_1", "note_morning_x", "whatever"} {
		if err := f.ctrl.Load(context.Background(), url.Values{"m": {id}}); err != nil {
			t.Fatalf("Load(%q) error = %v", id, err)
		}
		if st := f.ctrl.State(); st.View != constants.StateMain || st.ActiveID != "" {
			t.Errorf("Load(%q) state = %+v", id, st)
		}
	}
	if f.gen.count() != 0 {
		t.Errorf("malformed ids triggered %d generation(s)", f.gen.count())
	}
}

func TestSubmit_ArchivesUnderGeneratedID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.ctrl.SetMood(models.MoodCalm)
	f.ctrl.SetContext("standup")

	f.ctrl.Submit(ctx)

	st := f.ctrl.State()
	wantID := models.NewGeneratedID(f.clock.Now())
	if !st.HasGenerated || st.View != constants.StateMain || st.ActiveID != wantID {
		t.Fatalf("state = %+v, want generated main view with id %s", st, wantID)
	}
	stored, err := f.archive.GetMessageByID(ctx, wantID)
	if err != nil || stored == nil {
		t.Fatalf("message not archived: %v", err)
	}
	if stored.Mood != models.MoodCalm || stored.Text != "Breathe, then begin." {
		t.Errorf("stored = %+v", stored)
	}
	if f.tracker.Count(analytics.EventMessageGeneration) != 1 {
		t.Error("generation not tracked")
	}

	f.clock.Advance(time.Millisecond)
	f.ctrl.Regenerate(ctx)
	if f.tracker.Count(analytics.EventMessageRegeneration) != 1 {
		t.Error("regeneration not tracked")
	}
	if f.ctrl.State().ActiveID == wantID {
		t.Error("regeneration should archive under a new id")
	}
}

func TestSubmit_GenerationFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer server.Close()

	f := newFixture(t, nil)
	f.ctrl.generator = generator.NewClaude("test-key", "claude-test", 2*time.Second,
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)

	f.ctrl.Submit(context.Background())

	st := f.ctrl.State()
	if !st.HasGenerated || st.Loading {
		t.Fatalf("view not usable after failure: %+v", st)
	}
	if st.Message != constants.FallbackError && st.Message != constants.FallbackEmpty {
		t.Errorf("Message = %q, want a fallback sentence", st.Message)
	}
}

func TestReflectionDebounceCoalesces(t *testing.T) {
	kv := &signalingKV{MemoryStore: storage.NewMemoryStore(), writes: make(chan []byte, 16)}
	f := newFixture(t, kv)
	ctx := context.Background()

	if err := f.archive.ArchiveMessage(ctx, models.StoredMessage{
		ID: "gen_1", Text: "Steady.", Mood: models.MoodCalm, TimeOfDay: models.TimeMorning, Timestamp: 1,
	}); err != nil {
		t.Fatal(err)
	}
	<-kv.writes

	if err := f.ctrl.Load(ctx, url.Values{"m": {"gen_1"}}); err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"f", "fi", "fin", "fine", "fine."} {
		f.ctrl.SetReflection(text)
		f.clock.Advance(40 * time.Millisecond)
	}
	select {
	case <-kv.writes:
		t.Fatal("reflection written before the debounce window elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	f.clock.Advance(time.Second)
	select {
	case <-kv.writes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced write")
	}
	select {
	case <-kv.writes:
		t.Fatal("expected exactly one reflection write")
	case <-time.After(100 * time.Millisecond):
	}

	stored, err := f.archive.GetMessageByID(ctx, "gen_1")
	if err != nil || stored == nil {
		t.Fatal("message lost")
	}
	if stored.Reflection != "fine." || stored.Text != "Steady." || stored.Mood != models.MoodCalm {
		t.Errorf("stored = %+v", stored)
	}
}

func TestReflectionKeystrokeAfterTimerExpiryWaitsFullWindow(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		kv := &signalingKV{MemoryStore: storage.NewMemoryStore(), writes: make(chan []byte, 16)}
		f := newFixture(t, kv)
		if err := f.archive.ArchiveMessage(ctx, models.StoredMessage{
			ID: "gen_1", Text: "Steady.", TimeOfDay: models.TimeMorning, Timestamp: 1,
		}); err != nil {
			t.Fatal(err)
		}
		<-kv.writes
		if err := f.ctrl.Load(ctx, url.Values{"m": {"gen_1"}}); err != nil {
			t.Fatal(err)
		}

		// The first timer expires; its callback may still be waiting for the
		// controller lock when the next keystroke lands.
		f.ctrl.SetReflection("a")
		f.clock.Advance(time.Second)
		f.ctrl.SetReflection("ab")

		drain := time.After(50 * time.Millisecond)
	settle:
		for {
			select {
			case <-kv.writes:
			case <-drain:
				break settle
			}
		}
		if got := reflectionOf(t, f, "gen_1"); got == "ab" {
			t.Fatalf("run %d: latest keystroke written before its debounce window elapsed", i)
		}

		f.clock.Advance(time.Second)
		deadline := time.After(2 * time.Second)
		for reflectionOf(t, f, "gen_1") != "ab" {
			select {
			case <-kv.writes:
			case <-deadline:
				t.Fatalf("run %d: latest keystroke never written", i)
			}
		}
	}
}

func reflectionOf(t *testing.T, f *fixture, id string) string {
	t.Helper()
	stored, err := f.archive.GetMessageByID(context.Background(), id)
	if err != nil || stored == nil {
		t.Fatalf("message %s lost: %v", id, err)
	}
	return stored.Reflection
}

func TestReflectionWithoutActiveMessageIsNotPersisted(t *testing.T) {
	kv := &signalingKV{MemoryStore: storage.NewMemoryStore(), writes: make(chan []byte, 4)}
	f := newFixture(t, kv)

	f.ctrl.SetReflection("nothing to attach to")
	f.clock.Advance(2 * time.Second)

	select {
	case <-kv.writes:
		t.Fatal("reflection written without an active message")
	case <-time.After(50 * time.Millisecond):
	}
	if f.ctrl.State().Reflection != "nothing to attach to" {
		t.Error("reflection text should still be kept in view state")
	}
}

func TestFlushWritesPendingReflection(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.ctrl.Submit(ctx)
	id := f.ctrl.State().ActiveID

	f.ctrl.SetReflection("noted")
	if err := f.ctrl.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	stored, _ := f.archive.GetMessageByID(ctx, id)
	if stored == nil || stored.Reflection != "noted" {
		t.Errorf("stored = %+v", stored)
	}
	if err := f.ctrl.Flush(ctx); err != nil {
		t.Errorf("second Flush() should be a no-op, got %v", err)
	}
}

func TestNavigation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if err := f.ctrl.Load(ctx, url.Values{"m": {"note_midday_42"}, "utm_source": {"notification"}}); err != nil {
		t.Fatal(err)
	}
	if f.ctrl.State().View != constants.StateDetail {
		t.Fatal("expected detail view")
	}

	if next := f.ctrl.ToggleSettings(); next != constants.StateMain {
		t.Errorf("toggle from detail = %s, want main", next)
	}
	if next := f.ctrl.ToggleSettings(); next != constants.StateSettings {
		t.Errorf("toggle from main = %s, want settings", next)
	}

	f.ctrl.Home(ctx)
	st := f.ctrl.State()
	if st.View != constants.StateMain || st.HasGenerated || st.ActiveID != "" {
		t.Errorf("state after Home = %+v", st)
	}
	addr, _ := url.ParseQuery(f.ctrl.encodedAddress())
	if addr.Has("m") || addr.Get("utm_source") != "notification" {
		t.Errorf("address = %q, want m stripped", f.ctrl.encodedAddress())
	}

	f.ctrl.Submit(ctx)
	f.ctrl.StartOver()
	if f.ctrl.State().HasGenerated {
		t.Error("StartOver should clear HasGenerated")
	}
	if f.tracker.Count(analytics.EventResetState) != 1 {
		t.Error("reset_state not tracked")
	}
}

func TestSettingsSaveAndReset(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	want := models.NotificationSchedule{Morning: "08:00", Midday: "12:30", Evening: "18:15"}
	if err := f.ctrl.SaveSchedule(ctx, want); err != nil {
		t.Fatalf("SaveSchedule() error = %v", err)
	}
	got, err := f.ctrl.Schedule(ctx)
	if err != nil || got != want {
		t.Errorf("Schedule() = %+v, %v", got, err)
	}

	if err := f.ctrl.SaveSchedule(ctx, want.WithTime(models.SlotMidday, "99:99")); err == nil {
		t.Error("expected invalid schedule to be rejected")
	}

	reset, err := f.ctrl.ResetSchedule(ctx)
	if err != nil || reset != models.DefaultSchedule() {
		t.Errorf("ResetSchedule() = %+v, %v", reset, err)
	}
	if f.tracker.Count(analytics.EventSettingsSaved) != 1 || f.tracker.Count(analytics.EventSettingsReset) != 1 {
		t.Errorf("settings events = %+v", f.tracker.Events)
	}
}

func TestShare(t *testing.T) {
	f := newFixture(t, nil)
	dir := t.TempDir()

	if _, err := f.ctrl.Share(dir); err == nil {
		t.Error("sharing before generation should fail")
	}

	f.ctrl.Submit(context.Background())
	path, err := f.ctrl.Share(dir)
	if err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("card written to %s, want %s", path, dir)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("card missing: %v", err)
	}
	if f.tracker.Count(analytics.EventShareCardGenerated) != 1 {
		t.Error("share_card_generated not tracked")
	}
}
