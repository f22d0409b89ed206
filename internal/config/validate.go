package config

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/softworkday/internal/constants"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case constants.BackendSQLite, constants.BackendFile, constants.BackendMemory:
	case constants.BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of sqlite, file, postgres, memory (got %q)", c.Storage.Backend)
	}

	switch c.Notifier.Sink {
	case constants.SinkDBus, constants.SinkLog:
	default:
		return fmt.Errorf("notifier.sink must be dbus or log (got %q)", c.Notifier.Sink)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.ReflectionDebounce <= 0 {
		return fmt.Errorf("reflection_debounce must be > 0 (got %v)", c.ReflectionDebounce)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be > 0 (got %v)", c.LLM.Timeout)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	return nil
}

// StoragePath returns the location handed to the storage backend.
func (c *Config) StoragePath() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	switch c.Storage.Backend {
	case constants.BackendFile:
		return filepath.Join(c.DataDir, "store")
	default:
		return filepath.Join(c.DataDir, constants.AppName+".db")
	}
}
