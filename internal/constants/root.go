package constants

import "time"

const (
	AppName            = "softworkday"
	Wordmark           = "SoftWorkday"
	Tagline            = "A mindful baseline for your workday"
	DefaultKeyringUser = "llm-api-key"
	DefaultConfigPath  = "~/.config/softworkday/config.yaml"
	DefaultDataDir     = "~/.config/softworkday"
	Version            = "v0.3.0"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Storage keys. Both backends keep one serialized blob per key.
	ScheduleStorageKey = "softworkday_notification_schedule"
	ArchiveStorageKey  = "softworkday_message_archive"

	// Storage backends
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	// Notification sinks
	SinkDBus = "dbus"
	SinkLog  = "log"

	// Identifier prefixes
	NotificationIDPrefix = "note_"
	GeneratedIDPrefix    = "gen_"

	// Query parameters understood by the detail route
	QueryMessageID = "m"
	QuerySource    = "utm_source"
	SourceNotify   = "notification"

	// Alarms recur once per wall-clock day
	AlarmPeriod = 1440 * time.Minute

	// Reflection edits are persisted after this much inactivity
	DefaultReflectionDebounce = time.Second

	// Daemon lockfile
	DaemonLockfileName = "softworkday-daemon.lock"
	DaemonSecretHeader = "X-SoftWorkday-Secret"
	DaemonExecutable   = "softworkday"
	DaemonMaxRetries   = 3
	DaemonRetryDelay   = 100 * time.Millisecond
	DefaultListenAddr  = "127.0.0.1:7431"

	// Notification display
	NotificationIcon      = "dialog-information"
	NotificationUrgency   = 2
	NotificationTimeoutMs = 10000

	// Share card
	CardSize       = 1080
	CardFilePrefix = "SoftWorkday-"
	CardFileSuffix = ".png"

	WelcomeMessage = "Welcome. How are you approaching things today?"

	// CheckInContext is the context used when a notification id is
	// resolved without an archived message.
	CheckInContext = "Checking in during the workday"
)

// SessionState represents the current view of the application shell
type SessionState int

const (
	StateMain SessionState = iota
	StateSettings
	StateDetail
)

func (s SessionState) String() string {
	switch s {
	case StateMain:
		return "main"
	case StateSettings:
		return "settings"
	case StateDetail:
		return "detail"
	default:
		return "unknown"
	}
}
