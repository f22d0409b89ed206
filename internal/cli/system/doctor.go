package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/daemon"
	"github.com/julianstephens/softworkday/internal/keyring"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/notifier"
)

// newDBusSink is swapped in tests so doctor never touches the session bus.
var newDBusSink = func() (notifier.Sink, error) { return notifier.NewDBusSink() }

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	bg := context.Background()
	hasError := false

	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}
	warn := func(name string, err error) {
		ctx.Printf("⚠ %s: WARNING\n", name)
		ctx.Printf("   %v\n", err)
	}
	ok := func(name string) {
		ctx.Printf("✓ %s: OK\n", name)
	}
	skip := func(name, reason string) {
		ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, reason)
	}

	// Check 1: Data directory writable
	if err := checkDataDir(ctx.Config.DataDir); err != nil {
		fail("Data directory", err)
	} else {
		ok("Data directory")
	}

	// Check 2: Storage reachable, schema current
	storeReady := false
	if err := ctx.Store.Load(bg); err != nil {
		fail("Storage reachable", err)
	} else {
		ok("Storage reachable")
		storeReady = true
	}

	// Check 3: Schedule valid
	if storeReady {
		if err := checkSchedule(bg, ctx); err != nil {
			warn("Notification schedule", err)
		} else {
			ok("Notification schedule")
		}
	} else {
		skip("Notification schedule", "storage not reachable")
	}

	// Check 4: Archive readable
	if storeReady {
		if msgs, err := ctx.Archive().List(bg); err != nil {
			fail("Message archive", err)
		} else {
			ctx.Printf("✓ Message archive: OK (%d messages)\n", len(msgs))
		}
	} else {
		skip("Message archive", "storage not reachable")
	}

	// Check 5: Keyring and API key (warnings only)
	if !keyring.IsAvailable() {
		warn("OS keyring", keyring.ErrKeyringUnavailable)
	} else {
		ok("OS keyring")
	}
	if key, err := keyring.ResolveAPIKey(ctx.Config.LLM.APIKey); err != nil || key == "" {
		warn("Message generation", errors.New("no API key configured, messages come from the offline pool"))
	} else {
		ok("Message generation")
	}

	// Check 6: Daemon running (warning only)
	if info, err := daemon.Find(ctx.Config.DataDir); err != nil {
		warn("Daemon", err)
	} else {
		ctx.Printf("✓ Daemon: OK (pid %d, port %d)\n", info.PID, info.Port)
	}

	// Check 7: Notification service (warning only)
	if ctx.Config.Notifier.Sink == constants.SinkDBus {
		if sink, err := newDBusSink(); err != nil {
			warn("Notification service", err)
		} else {
			sink.Close()
			ok("Notification service")
		}
	} else {
		skip("Notification service", "notifier.sink is "+ctx.Config.Notifier.Sink)
	}

	// Check 8: Clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fail("Clock/timezone", err)
	} else {
		ok("Clock/timezone")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Some checks failed. Please review the errors above.")
		return fmt.Errorf("diagnostics failed")
	}
	ctx.Println("All critical checks passed!")
	return nil
}

func checkDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// checkSchedule reports stored times that would be replaced by defaults.
func checkSchedule(ctx context.Context, c *cli.Context) error {
	raw, found, err := c.Store.Get(ctx, constants.ScheduleStorageKey)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("no schedule stored yet, defaults apply (run 'softworkday init')")
	}
	var sched models.NotificationSchedule
	if err := json.Unmarshal(raw, &sched); err != nil {
		return fmt.Errorf("stored schedule is unreadable: %w", err)
	}
	if _, replaced := sched.Normalize(); len(replaced) > 0 {
		return fmt.Errorf("invalid times for %v, defaults apply", replaced)
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset%(15*60) != 0 {
		return fmt.Errorf("unusual timezone offset %ds", offset)
	}
	return nil
}
