package system

import (
	"context"
	"fmt"
	"io"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/notifier"
)

// openSink returns the configured notification sink. A missing session bus
// degrades to the log sink so the daemon keeps its alarms running.
func openSink(ctx *cli.Context) notifier.Sink {
	if ctx.Config.Notifier.Sink != constants.SinkDBus {
		return notifier.NewLogSink()
	}
	sink, err := newDBusSink()
	if err != nil {
		logger.Warn("D-Bus notifications unavailable, logging them instead", "error", err)
		return notifier.NewLogSink()
	}
	return sink
}

// printSink writes notifications to a terminal for --dry-run.
type printSink struct {
	w io.Writer
}

func (s printSink) Send(_ context.Context, n notifier.Notification) error {
	_, err := fmt.Fprintf(s.w, "[DryRun] %s %s (%s)\n", n.Title, n.Message, n.ID)
	return err
}

func (printSink) Clicks() <-chan string { return nil }
func (printSink) Close() error          { return nil }
