package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/softworkday/internal/constants"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// An empty path falls back to the default location; a missing default file
// is not an error, a missing explicit file is.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = constants.DefaultConfigPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: expand %s: %w", path, err)
	}

	if _, err := os.Stat(expanded); err == nil {
		if err := cleanenv.ReadConfig(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", expanded, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", expanded, err)
	} else {
		// No file, load from ENV + defaults only.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Usage returns the environment variable help text for the config.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

func (c *Config) expandPaths() error {
	var err error
	if c.DataDir, err = homedir.Expand(c.DataDir); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	if c.ExportDir, err = homedir.Expand(c.ExportDir); err != nil {
		return fmt.Errorf("export_dir: %w", err)
	}
	if c.Storage.Backend == constants.BackendSQLite && c.Storage.DSN != "" {
		if c.Storage.DSN, err = homedir.Expand(c.Storage.DSN); err != nil {
			return fmt.Errorf("storage.dsn: %w", err)
		}
	}
	return nil
}
