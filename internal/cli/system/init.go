package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/storage"
	"github.com/julianstephens/softworkday/internal/storage/postgres"
	"github.com/julianstephens/softworkday/internal/storage/sqlite"
)

// copiedKeys are the blobs carried over by init --source.
var copiedKeys = []string{constants.ScheduleStorageKey, constants.ArchiveStorageKey}

type InitCmd struct {
	Force  bool   `help:"Delete the existing SQLite database before initialization."`
	Source string `help:"SQLite path or PostgreSQL connection string to copy the schedule and archive from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(bg); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.Location())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(bg, ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}

	created, err := ctx.Schedules().EnsureDefaults(bg)
	if err != nil {
		return err
	}
	if created {
		ctx.Println("Default notification schedule installed.")
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	if ctx.Config.Storage.Backend != constants.BackendSQLite {
		return fmt.Errorf("--force only supports the sqlite backend")
	}
	dbPath := ctx.Store.Location()
	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSource, errSource := filepath.Abs(c.Source)
		if errDB == nil && errSource == nil && absDB == absSource {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(bg context.Context, ctx *cli.Context, source string) error {
	var src storage.Provider
	if isPostgresSource(source) {
		if err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use PGPASSWORD or .pgpass instead")
			}
			return err
		}
		src = postgres.New(source)
	} else {
		src = sqlite.NewStore(source)
	}

	if err := src.Load(bg); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	for _, key := range copiedKeys {
		value, ok, err := src.Get(bg, key)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Printf("  Skipped %s (not present)\n", key)
			continue
		}
		if err := ctx.Store.Set(bg, key, value); err != nil {
			return fmt.Errorf("failed to copy %s: %w", key, err)
		}
		ctx.Printf("  Copied %s\n", key)
	}
	return nil
}

func isPostgresSource(source string) bool {
	return strings.HasPrefix(source, "postgres://") ||
		strings.HasPrefix(source, "postgresql://") ||
		strings.Contains(source, "host=")
}
