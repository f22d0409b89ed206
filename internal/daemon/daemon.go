package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/softworkday/internal/alarm"
	"github.com/julianstephens/softworkday/internal/analytics"
	"github.com/julianstephens/softworkday/internal/archive"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/generator"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/notifier"
	"github.com/julianstephens/softworkday/internal/schedule"
	"github.com/julianstephens/softworkday/internal/scheduler"
	"github.com/julianstephens/softworkday/internal/server"
	"github.com/julianstephens/softworkday/internal/storage"
)

// firedBuffer is how many fired alarms may wait for the dispatcher.
const firedBuffer = 8

// Options configures a daemon run.
type Options struct {
	DataDir         string
	Addr            string
	ShutdownTimeout time.Duration
	Debounce        time.Duration

	Store     storage.Provider
	Sink      notifier.Sink
	Generator generator.Generator
	Tracker   analytics.Tracker
	Clock     clockwork.Clock
	// OnClick overrides opening the detail view in the browser.
	OnClick notifier.ClickHandler
	// Ready is called with the shell's base URL once the lockfile exists.
	Ready func(baseURL string)
}

// Daemon owns the alarm engine, the notification dispatcher and the HTTP
// shell for the lifetime of one `softworkday serve`.
type Daemon struct {
	opts Options
	log  *log.Logger
}

func New(opts Options) *Daemon {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Tracker == nil {
		opts.Tracker = analytics.Nop{}
	}
	if opts.Generator == nil {
		opts.Generator = generator.Offline{}
	}
	if opts.Addr == "" {
		opts.Addr = constants.DefaultListenAddr
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	return &Daemon{
		opts: opts,
		log:  logger.Component("daemon"),
	}
}

// Run installs the schedule, registers alarms and serves until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	engine := alarm.NewEngine(d.opts.Clock, firedBuffer)
	sched := scheduler.New(engine, d.opts.Clock)
	schedules := schedule.NewStore(d.opts.Store, sched)

	if _, err := schedules.EnsureDefaults(ctx); err != nil {
		return err
	}
	current, err := schedules.Get(ctx)
	if err != nil {
		return err
	}
	if err := sched.Reconcile(ctx, current); err != nil {
		return fmt.Errorf("failed to register alarms: %w", err)
	}
	engine.Start()
	defer engine.Stop()

	ln, err := net.Listen("tcp", d.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.opts.Addr, err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	host := DialHost(addr.IP)
	baseURL := Info{Host: host, Port: addr.Port}.BaseURL()

	onClick := d.opts.OnClick
	if onClick == nil {
		onClick = notifier.OpenDetail(baseURL)
	}

	secret := NewSecret()
	srv := server.New(server.Deps{
		Archive:    archive.New(d.opts.Store),
		Schedule:   schedules,
		Generator:  d.opts.Generator,
		Reconciler: sched,
		Tracker:    d.opts.Tracker,
		Clock:      d.opts.Clock,
		Secret:     secret,
		Debounce:   d.opts.Debounce,
	})

	lockfile, err := WriteLockfile(d.opts.DataDir, host, addr.Port, secret)
	if err != nil {
		ln.Close()
		return err
	}
	defer func() {
		if err := RemoveLockfile(lockfile); err != nil {
			d.log.Warn("Failed to remove lockfile", "path", lockfile, "error", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	runCtx, cancel := context.WithCancel(ctx)
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		notifier.NewDispatcher(d.opts.Sink, d.opts.Clock, onClick).Run(runCtx, engine.C())
	}()

	d.log.Info("Daemon is online", "url", baseURL, "alarms", len(engine.List()))
	if d.opts.Ready != nil {
		d.opts.Ready(baseURL)
	}

	select {
	case <-ctx.Done():
		err = nil
	case err = <-serveErr:
	}
	cancel()
	<-dispatched

	shutdownCtx, stop := context.WithTimeout(context.Background(), d.opts.ShutdownTimeout)
	defer stop()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) {
		d.log.Warn("HTTP shell did not shut down cleanly", "error", shutdownErr)
	}
	d.log.Info("Daemon has shut down", "dropped_alarms", engine.Dropped())
	return err
}
