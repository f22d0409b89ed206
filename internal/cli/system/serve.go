package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/daemon"
	"github.com/julianstephens/softworkday/internal/errors"
)

// ServeCmd runs the background daemon: alarms, notifications and the
// loopback HTTP shell that notification clicks open.
type ServeCmd struct {
	Addr string `help:"Listen address for the HTTP shell (overrides server.addr)." placeholder:"HOST:PORT"`
	Sink string `help:"Notification sink, dbus or log (overrides notifier.sink)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	switch c.Sink {
	case "":
	case constants.SinkDBus, constants.SinkLog:
		ctx.Config.Notifier.Sink = c.Sink
	default:
		return errors.Usagef("--sink must be dbus or log (got %q)", c.Sink)
	}
	addr := ctx.Config.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := openSink(ctx)
	defer sink.Close()

	d := daemon.New(daemon.Options{
		DataDir:         ctx.Config.DataDir,
		Addr:            addr,
		ShutdownTimeout: ctx.Config.Server.ShutdownTimeout,
		Debounce:        ctx.Config.ReflectionDebounce,
		Store:           ctx.Store,
		Sink:            sink,
		Generator:       ctx.MessageGenerator(),
		Tracker:         ctx.Tracker,
		Clock:           ctx.Clock,
		Ready: func(baseURL string) {
			ctx.Printf("%s is running at %s (Ctrl+C to stop)\n", constants.AppName, baseURL)
		},
	})
	return d.Run(sigCtx)
}
