package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/gosuri/uitable"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/softworkday/internal/analytics"
	"github.com/julianstephens/softworkday/internal/app"
	"github.com/julianstephens/softworkday/internal/archive"
	"github.com/julianstephens/softworkday/internal/config"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/daemon"
	"github.com/julianstephens/softworkday/internal/generator"
	"github.com/julianstephens/softworkday/internal/keyring"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/schedule"
	"github.com/julianstephens/softworkday/internal/storage"
	"github.com/julianstephens/softworkday/internal/storage/filestore"
	"github.com/julianstephens/softworkday/internal/storage/postgres"
	"github.com/julianstephens/softworkday/internal/storage/sqlite"
)

// Context is handed to every command's Run method.
type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Clock   clockwork.Clock
	Tracker analytics.Tracker
	Out     io.Writer

	// Reconciler overrides the daemon client as the schedule side effect.
	Reconciler schedule.Reconciler
	// Generator overrides the generator resolved from config and keyring.
	Generator generator.Generator
}

// NewContext builds the command context for cfg.
func NewContext(cfg *config.Config) (*Context, error) {
	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}
	return &Context{
		Config:  cfg,
		Store:   store,
		Clock:   clockwork.NewRealClock(),
		Tracker: analytics.NewLogTracker(),
		Out:     os.Stdout,
	}, nil
}

// NewStore returns the storage backend selected by cfg.
func NewStore(cfg *config.Config) (storage.Provider, error) {
	switch cfg.Storage.Backend {
	case constants.BackendPostgres:
		if err := postgres.ValidateConnString(cfg.Storage.DSN); err != nil {
			return nil, err
		}
		return postgres.New(cfg.Storage.DSN), nil
	case constants.BackendFile:
		return filestore.NewStore(cfg.StoragePath()), nil
	case constants.BackendMemory:
		return storage.NewMemoryStore(), nil
	case constants.BackendSQLite, "":
		return sqlite.NewStore(cfg.StoragePath()), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// PrintTable writes rows as aligned columns.
func (c *Context) PrintTable(header []any, rows [][]any) {
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow(header...)
	for _, row := range rows {
		table.AddRow(row...)
	}
	fmt.Fprintln(c.out(), table)
}

// RenderMarkdown renders md for the command output. Styles apply only when
// the output is a terminal; pipes and files get plain text.
func (c *Context) RenderMarkdown(md string) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if f, ok := c.out().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func (c *Context) clock() clockwork.Clock {
	if c.Clock == nil {
		return clockwork.NewRealClock()
	}
	return c.Clock
}

// Now reads the context clock.
func (c *Context) Now() time.Time {
	return c.clock().Now()
}

// Track records a usage event.
func (c *Context) Track(name string, params analytics.Params) {
	c.tracker().Track(name, params)
}

func (c *Context) tracker() analytics.Tracker {
	if c.Tracker == nil {
		return analytics.Nop{}
	}
	return c.Tracker
}

// Archive returns the message archive over the loaded store.
func (c *Context) Archive() *archive.Archive {
	return archive.New(c.Store)
}

// Schedules returns the schedule store. Saves are pushed to a running
// daemon so its alarms follow the new times.
func (c *Context) Schedules() *schedule.Store {
	r := c.Reconciler
	if r == nil {
		r = daemon.NewClient(c.Config.DataDir)
	}
	return schedule.NewStore(c.Store, r)
}

// MessageGenerator returns the configured generator. Without an API key in
// config or the keyring, messages come from the offline pool.
func (c *Context) MessageGenerator() generator.Generator {
	if c.Generator != nil {
		return c.Generator
	}
	key, err := keyring.ResolveAPIKey(c.Config.LLM.APIKey)
	if err != nil {
		logger.Warn("Keyring unavailable, generating messages offline", "error", err)
	}
	return generator.New(key, c.Config.LLM.Model, c.Config.LLM.Timeout)
}

// Controller builds the view controller shared by the TUI and the commands.
func (c *Context) Controller() *app.Controller {
	return app.New(app.Options{
		Archive:   c.Archive(),
		Schedule:  c.Schedules(),
		Generator: c.MessageGenerator(),
		Tracker:   c.tracker(),
		Clock:     c.clock(),
		Debounce:  c.Config.ReflectionDebounce,
	})
}
