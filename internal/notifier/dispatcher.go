package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/models"
)

// ErrUnknownAlarm is returned by Fire for alarms that carry no copy.
var ErrUnknownAlarm = errors.New("unknown alarm")

// Notification is one desktop notification.
type Notification struct {
	ID      string
	Title   string
	Message string

	// Clickable is set when a click handler is listening for this
	// notification. Sinks only offer an action for clickable ones.
	Clickable bool
}

// Sink delivers notifications and reports which ones the user clicked.
type Sink interface {
	Send(ctx context.Context, n Notification) error
	// Clicks yields the ID of each clicked notification. It may be nil.
	Clicks() <-chan string
	Close() error
}

// ClickHandler receives the identifier of a clicked notification.
type ClickHandler func(ctx context.Context, id string)

// Dispatcher turns fired alarms into notifications.
type Dispatcher struct {
	sink    Sink
	clock   clockwork.Clock
	onClick ClickHandler
	log     *log.Logger
}

func NewDispatcher(sink Sink, clock clockwork.Clock, onClick ClickHandler) *Dispatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dispatcher{
		sink:    sink,
		clock:   clock,
		onClick: onClick,
		log:     logger.Component("notifier"),
	}
}

// Fire sends the notification for alarmName and returns its identifier.
func (d *Dispatcher) Fire(ctx context.Context, alarmName string) (string, error) {
	content, ok := constants.NotificationContent[alarmName]
	slot, slotOK := models.SlotForAlarm(alarmName)
	if !ok || !slotOK {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlarm, alarmName)
	}

	n := Notification{
		ID:        models.NewNotificationID(slot, d.clock.Now()),
		Title:     content.Title,
		Message:   content.Message,
		Clickable: d.onClick != nil,
	}
	if err := d.sink.Send(ctx, n); err != nil {
		return "", fmt.Errorf("failed to send notification %s: %w", n.ID, err)
	}
	d.log.Info("Notification sent", "id", n.ID, "alarm", alarmName)
	return n.ID, nil
}

// Run fires a notification for every alarm on fired and forwards clicks to
// the click handler until ctx is cancelled or fired is closed. Failures are
// logged and never stop the loop.
func (d *Dispatcher) Run(ctx context.Context, fired <-chan models.Fired) {
	clicks := d.sink.Clicks()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fired:
			if !ok {
				return
			}
			if _, err := d.Fire(ctx, ev.Name); err != nil {
				if errors.Is(err, ErrUnknownAlarm) {
					d.log.Warn("Ignoring alarm without notification copy", "alarm", ev.Name)
					continue
				}
				d.log.Error("Notification failed", "alarm", ev.Name, "error", err)
			}
		case id, ok := <-clicks:
			if !ok {
				clicks = nil
				continue
			}
			d.log.Debug("Notification clicked", "id", id)
			if d.onClick != nil {
				d.onClick(ctx, id)
			}
		}
	}
}
