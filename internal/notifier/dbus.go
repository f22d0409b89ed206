package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
)

const (
	notifyDest      = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyInterface = "org.freedesktop.Notifications"
	notifyMethod    = notifyInterface + ".Notify"
	actionInvoked   = notifyInterface + ".ActionInvoked"
	notifyClosed    = notifyInterface + ".NotificationClosed"
	defaultAction   = "default"
)

// DBusSink shows notifications through the freedesktop notification
// service on the session bus and maps ActionInvoked signals back to
// notification identifiers.
type DBusSink struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
	clicks  chan string
	log     *log.Logger

	mu      sync.Mutex
	pending map[uint32]string
	done    chan struct{}
}

func NewDBusSink() (*DBusSink, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to D-Bus session bus: %w", err)
	}

	for _, member := range []string{"ActionInvoked", "NotificationClosed"} {
		if err := conn.AddMatchSignal(
			dbus.WithMatchObjectPath(notifyPath),
			dbus.WithMatchInterface(notifyInterface),
			dbus.WithMatchMember(member),
		); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", member, err)
		}
	}

	s := &DBusSink{
		conn:    conn,
		signals: make(chan *dbus.Signal, 16),
		clicks:  make(chan string, 8),
		log:     logger.Component("dbus"),
		pending: make(map[uint32]string),
		done:    make(chan struct{}),
	}
	conn.Signal(s.signals)
	go s.watch()
	return s, nil
}

func (s *DBusSink) Send(ctx context.Context, n Notification) error {
	obj := s.conn.Object(notifyDest, notifyPath)
	call := obj.CallWithContext(ctx,
		notifyMethod,
		0,
		constants.Wordmark,
		uint32(0),
		constants.NotificationIcon,
		n.Title,
		n.Message,
		actionsFor(n),
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(constants.NotificationUrgency)),
		},
		int32(constants.NotificationTimeoutMs),
	)
	if call.Err != nil {
		return call.Err
	}

	var serverID uint32
	if err := call.Store(&serverID); err != nil {
		return fmt.Errorf("unexpected Notify reply: %w", err)
	}

	s.mu.Lock()
	s.pending[serverID] = n.ID
	s.mu.Unlock()
	return nil
}

// actionsFor returns the Notify action list. One-shot sends have nobody to
// handle a click, so they get no action.
func actionsFor(n Notification) []string {
	if !n.Clickable {
		return []string{}
	}
	return []string{defaultAction, "Open"}
}

func (s *DBusSink) Clicks() <-chan string {
	return s.clicks
}

func (s *DBusSink) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	s.conn.RemoveSignal(s.signals)
	return s.conn.Close()
}

func (s *DBusSink) watch() {
	defer close(s.clicks)
	for {
		select {
		case <-s.done:
			return
		case sig, ok := <-s.signals:
			if !ok {
				return
			}
			s.handle(sig)
		}
	}
}

func (s *DBusSink) handle(sig *dbus.Signal) {
	if len(sig.Body) < 1 {
		return
	}
	serverID, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}

	switch sig.Name {
	case actionInvoked:
		s.mu.Lock()
		id, known := s.pending[serverID]
		s.mu.Unlock()
		if !known {
			return
		}
		select {
		case s.clicks <- id:
		default:
			s.log.Warn("Dropping notification click, handler is busy", "id", id)
		}
	case notifyClosed:
		s.mu.Lock()
		delete(s.pending, serverID)
		s.mu.Unlock()
	}
}
