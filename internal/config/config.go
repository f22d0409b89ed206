package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	DataDir            string        `yaml:"data_dir"            env:"SOFTWORKDAY_DATA_DIR"            env-default:"~/.config/softworkday"`
	ExportDir          string        `yaml:"export_dir"          env:"SOFTWORKDAY_EXPORT_DIR"          env-default:"~/Downloads"`
	ReflectionDebounce time.Duration `yaml:"reflection_debounce" env:"SOFTWORKDAY_REFLECTION_DEBOUNCE" env-default:"1s"`

	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Notifier NotifierConfig `yaml:"notifier"`
	LLM      LLMConfig      `yaml:"llm"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"SOFTWORKDAY_STORAGE_BACKEND" env-default:"sqlite"`
	// DSN is the sqlite file path or the Postgres connection string.
	// Empty means <data_dir>/softworkday.db for sqlite.
	DSN string `yaml:"dsn" env:"SOFTWORKDAY_STORAGE_DSN"`
}

// ServerConfig holds the loopback HTTP shell settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"SOFTWORKDAY_SERVER_ADDR"             env-default:"127.0.0.1:7431"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SOFTWORKDAY_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// NotifierConfig selects where notifications are delivered.
type NotifierConfig struct {
	Sink string `yaml:"sink" env:"SOFTWORKDAY_NOTIFIER_SINK" env-default:"dbus"`
}

// LLMConfig holds message generation settings.
type LLMConfig struct {
	Model   string        `yaml:"model"   env:"SOFTWORKDAY_LLM_MODEL"   env-default:"claude-3-5-haiku-latest"`
	APIKey  string        `yaml:"api_key" env:"SOFTWORKDAY_LLM_API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"SOFTWORKDAY_LLM_TIMEOUT" env-default:"20s"`
}
