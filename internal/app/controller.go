package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/softworkday/internal/analytics"
	"github.com/julianstephens/softworkday/internal/archive"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/generator"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/share"
)

// flushTimeout bounds a debounced reflection write, which has no caller context.
const flushTimeout = 5 * time.Second

// MessageArchive is the subset of the archive the controller needs.
type MessageArchive interface {
	ArchiveMessage(ctx context.Context, msg models.StoredMessage) error
	GetMessageByID(ctx context.Context, id string) (*models.StoredMessage, error)
	UpdateReflection(ctx context.Context, id, reflection string) error
}

// ScheduleStore is the subset of the schedule store used by the settings view.
type ScheduleStore interface {
	Get(ctx context.Context) (models.NotificationSchedule, error)
	Save(ctx context.Context, s models.NotificationSchedule) error
	Reset(ctx context.Context) (models.NotificationSchedule, error)
}

// State is a snapshot of everything a view renders.
type State struct {
	View         constants.SessionState
	Mood         models.Mood
	TimeOfDay    models.TimeOfDay
	Context      string
	Reflection   string
	Message      string
	ActiveID     string
	HasGenerated bool
	Loading      bool
	Source       string
	CreatedAt    time.Time
}

// Options configures a Controller. Tracker, Clock and Debounce are optional.
type Options struct {
	Archive   MessageArchive
	Schedule  ScheduleStore
	Generator generator.Generator
	Tracker   analytics.Tracker
	Clock     clockwork.Clock
	Debounce  time.Duration
}

type pendingReflection struct {
	id   string
	text string
}

// Controller owns the view state shared by the TUI and the HTTP shell.
type Controller struct {
	archive   MessageArchive
	schedule  ScheduleStore
	generator generator.Generator
	tracker   analytics.Tracker
	clock     clockwork.Clock
	debounce  time.Duration
	log       *log.Logger

	mu      sync.Mutex
	state   State
	address url.Values
	pending *pendingReflection
	timer   clockwork.Timer

	// flushGen identifies the newest debounce timer; older callbacks that
	// lost the race with a later keystroke see a stale value and do nothing.
	flushGen uint64
}

func New(opts Options) *Controller {
	c := &Controller{
		archive:   opts.Archive,
		schedule:  opts.Schedule,
		generator: opts.Generator,
		tracker:   opts.Tracker,
		clock:     opts.Clock,
		debounce:  opts.Debounce,
		log:       logger.Component("app"),
		address:   url.Values{},
	}
	if c.generator == nil {
		c.generator = generator.Offline{}
	}
	if c.tracker == nil {
		c.tracker = analytics.Nop{}
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.debounce <= 0 {
		c.debounce = constants.DefaultReflectionDebounce
	}
	c.state = State{
		View:      constants.StateMain,
		Mood:      models.MoodNeutral,
		TimeOfDay: models.TimeOfDayForHour(c.clock.Now().Hour()),
		Message:   constants.WelcomeMessage,
	}
	return c
}

// State returns a copy of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// encodedAddress returns the encoded query of the current view address.
func (c *Controller) encodedAddress() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address.Encode()
}

// Load initializes the view from address query parameters. With a message id
// it routes to the detail view, synthesizing and archiving a message for an
// unknown notification id. A malformed id keeps the main view.
func (c *Controller) Load(ctx context.Context, query url.Values) error {
	source := "icon"
	if query.Get(constants.QuerySource) == constants.SourceNotify {
		source = constants.SourceNotify
	}
	id := query.Get(constants.QueryMessageID)

	c.mu.Lock()
	c.address = cloneValues(query)
	c.state.Source = source
	c.state.View = constants.StateMain
	c.state.TimeOfDay = models.TimeOfDayForHour(c.clock.Now().Hour())
	c.state.Message = constants.WelcomeMessage
	c.state.HasGenerated = false
	c.state.ActiveID = ""
	c.mu.Unlock()

	c.tracker.Track(analytics.EventPageView, analytics.Params{"source": source})

	if id == "" {
		return nil
	}

	stored, err := c.archive.GetMessageByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up message %s: %w", id, err)
	}
	if stored != nil {
		c.hydrate(*stored)
		return nil
	}

	slot, _, ok := models.ParseNotificationID(id)
	if !ok {
		c.log.Warn("Ignoring malformed message id", "id", id)
		return nil
	}

	tod := slot.TimeOfDay()
	c.setLoading(true)
	text := c.generator.Generate(ctx, models.MoodNeutral, tod, constants.CheckInContext)
	c.setLoading(false)

	msg := models.StoredMessage{
		ID:        id,
		Text:      text,
		Mood:      models.MoodNeutral,
		TimeOfDay: tod,
		Timestamp: c.clock.Now().UnixMilli(),
	}
	if err := c.archive.ArchiveMessage(ctx, msg); err != nil {
		c.log.Error("Failed to archive notification message", "id", id, "error", err)
	}
	c.tracker.Track(analytics.EventMessageGeneration, analytics.Params{
		"mood":        msg.Mood,
		"time_of_day": tod,
		"has_context": true,
		"source":      source,
	})
	c.hydrate(msg)
	return nil
}

func (c *Controller) hydrate(msg models.StoredMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.View = constants.StateDetail
	c.state.ActiveID = msg.ID
	c.state.Message = msg.Text
	c.state.Reflection = msg.Reflection
	c.state.HasGenerated = true
	c.state.CreatedAt = msg.CreatedAt()
	if msg.Mood.Valid() {
		c.state.Mood = msg.Mood
	}
	if msg.TimeOfDay.Valid() {
		c.state.TimeOfDay = msg.TimeOfDay
	}
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.state.Loading = v
	c.mu.Unlock()
}

// SetMood selects the mood used for the next generation.
func (c *Controller) SetMood(m models.Mood) {
	if !m.Valid() {
		return
	}
	c.mu.Lock()
	c.state.Mood = m
	c.mu.Unlock()
}

// SetContext sets the optional free-text context.
func (c *Controller) SetContext(text string) {
	c.mu.Lock()
	c.state.Context = text
	c.mu.Unlock()
}

// SetTimeOfDay overrides the clock-derived time of day.
func (c *Controller) SetTimeOfDay(t models.TimeOfDay) {
	if !t.Valid() {
		return
	}
	c.mu.Lock()
	c.state.TimeOfDay = t
	c.mu.Unlock()
}

// Submit generates a message for the current mood and context, archives it
// under a fresh id and marks the main view as generated.
func (c *Controller) Submit(ctx context.Context) {
	c.generate(ctx, false)
}

// Regenerate produces another perspective for the same inputs.
func (c *Controller) Regenerate(ctx context.Context) {
	c.generate(ctx, true)
}

func (c *Controller) generate(ctx context.Context, again bool) {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return
	}
	c.state.Loading = true
	mood, tod, userContext := c.state.Mood, c.state.TimeOfDay, c.state.Context
	c.mu.Unlock()

	// Reflections belong to the message being replaced.
	c.flushPending(ctx, 0)

	text := c.generator.Generate(ctx, mood, tod, userContext)
	now := c.clock.Now()

	c.mu.Lock()
	c.state.Loading = false
	c.state.HasGenerated = true
	if text == "" {
		c.mu.Unlock()
		c.log.Warn("Generator returned no text, keeping previous message")
		return
	}
	msg := models.StoredMessage{
		ID:        models.NewGeneratedID(now),
		Text:      text,
		Mood:      mood,
		TimeOfDay: tod,
		Timestamp: now.UnixMilli(),
	}
	c.state.Message = text
	c.state.ActiveID = msg.ID
	c.state.Reflection = ""
	c.state.CreatedAt = now
	c.mu.Unlock()

	if err := c.archive.ArchiveMessage(ctx, msg); err != nil {
		c.log.Error("Failed to archive message", "id", msg.ID, "error", err)
	}

	event := analytics.EventMessageGeneration
	if again {
		event = analytics.EventMessageRegeneration
	}
	c.tracker.Track(event, analytics.Params{
		"mood":        mood,
		"time_of_day": tod,
		"has_context": userContext != "",
	})
}

// StartOver returns the main view to its input form.
func (c *Controller) StartOver() {
	c.mu.Lock()
	c.state.HasGenerated = false
	c.mu.Unlock()
	c.tracker.Track(analytics.EventResetState, nil)
}

// Home returns to the main view from anywhere, dropping the active message
// and the message id from the address.
func (c *Controller) Home(ctx context.Context) {
	c.flushPending(ctx, 0)

	c.mu.Lock()
	prev := c.state.View
	c.state.View = constants.StateMain
	c.state.HasGenerated = false
	c.state.ActiveID = ""
	c.state.Reflection = ""
	c.state.Message = constants.WelcomeMessage
	c.address.Del(constants.QueryMessageID)
	c.mu.Unlock()

	if prev != constants.StateMain {
		c.tracker.Track(analytics.EventViewChanged, analytics.Params{"view": constants.StateMain.String()})
	}
}

// ToggleSettings switches to settings from main and back to main from
// any other view.
func (c *Controller) ToggleSettings() constants.SessionState {
	c.mu.Lock()
	next := constants.StateSettings
	if c.state.View != constants.StateMain {
		next = constants.StateMain
	}
	c.state.View = next
	c.mu.Unlock()

	c.tracker.Track(analytics.EventViewChanged, analytics.Params{"view": next.String()})
	return next
}

// SetReflection records the reflection text and, when a message is active,
// schedules a debounced write. Each call restarts the debounce window.
func (c *Controller) SetReflection(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Reflection = text
	if c.state.ActiveID == "" {
		return
	}
	c.pending = &pendingReflection{id: c.state.ActiveID, text: text}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.flushGen++
	gen := c.flushGen
	c.timer = c.clock.AfterFunc(c.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		c.flushPending(ctx, gen)
	})
}

// Flush writes a pending reflection immediately.
func (c *Controller) Flush(ctx context.Context) error {
	return c.flushPending(ctx, 0)
}

// flushPending writes the pending reflection. A zero gen forces the write;
// otherwise it only proceeds for the newest debounce timer.
func (c *Controller) flushPending(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	if gen != 0 && gen != c.flushGen {
		c.mu.Unlock()
		return nil
	}
	p := c.pending
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if p == nil {
		return nil
	}
	err := c.archive.UpdateReflection(ctx, p.id, p.text)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			c.log.Warn("Reflection target is not archived", "id", p.id)
		} else {
			c.log.Error("Failed to save reflection", "id", p.id, "error", err)
		}
		return err
	}
	c.log.Debug("Reflection saved", "id", p.id)
	return nil
}

// Share exports the current message as a PNG card in dir.
func (c *Controller) Share(dir string) (string, error) {
	st := c.State()
	c.tracker.Track(analytics.EventShareButtonClick, analytics.Params{"time_of_day": st.TimeOfDay})

	if !st.HasGenerated {
		return "", share.ErrEmptyMessage
	}
	path, err := share.Export(dir, st.Message, st.TimeOfDay, c.clock.Now())
	if err != nil {
		c.log.Error("Failed to export share card", "error", err)
		return "", err
	}
	c.tracker.Track(analytics.EventShareCardGenerated, analytics.Params{"time_of_day": st.TimeOfDay})
	return path, nil
}

// Schedule returns the stored notification schedule for the settings view.
func (c *Controller) Schedule(ctx context.Context) (models.NotificationSchedule, error) {
	return c.schedule.Get(ctx)
}

// SaveSchedule validates and stores a schedule, re-registering alarms.
func (c *Controller) SaveSchedule(ctx context.Context, s models.NotificationSchedule) error {
	if err := c.schedule.Save(ctx, s); err != nil {
		return err
	}
	c.tracker.Track(analytics.EventSettingsSaved, analytics.Params{
		"morning": s.Morning,
		"midday":  s.Midday,
		"evening": s.Evening,
	})
	return nil
}

// ResetSchedule restores the default schedule.
func (c *Controller) ResetSchedule(ctx context.Context) (models.NotificationSchedule, error) {
	s, err := c.schedule.Reset(ctx)
	if err != nil {
		return s, err
	}
	c.tracker.Track(analytics.EventSettingsReset, nil)
	return s, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
