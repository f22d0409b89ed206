package notifier

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/softworkday/internal/logger"
)

// LogSink writes notifications to the log. It never reports clicks.
type LogSink struct {
	log *log.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{log: logger.Component("notification")}
}

func (s *LogSink) Send(_ context.Context, n Notification) error {
	s.log.Info(n.Title, "message", n.Message, "id", n.ID)
	return nil
}

func (s *LogSink) Clicks() <-chan string { return nil }
func (s *LogSink) Close() error          { return nil }
