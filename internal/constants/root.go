package constants

import "time"

// SessionState represents the current screen of the TUI application
type SessionState int

const (
	AppName            = "famtrack"
	DefaultKeyringUser = "session"
	DefaultConfigDir   = "~/.config/famtrack"
	DatabaseFileName   = "famtrack.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is the local date-time layout the backend exchanges (no zone)
	DateTimeFormat = "2006-01-02T15:04:05"

	// Backend defaults
	DefaultAPIURL         = "http://localhost:8080/api"
	DefaultWSURL          = "ws://localhost:8080/ws"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultPollInterval   = 30 * time.Second
	DefaultReconnectDelay = 5 * time.Second

	// Persisted client state keys
	KeyUser           = "user"
	KeyLastEventColor = "lastEventColor"
	KeyLastHabitColor = "lastHabitColor"
	KeyTheme          = "theme"

	DefaultEventColor = "#3843FF"
	DefaultHabitColor = "#007bff"
	ThemeLight        = "light"
	ThemeDark         = "dark"

	// Session backends
	SessionBackendFile    = "file"
	SessionBackendKeyring = "keyring"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "famtrack-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.famtrack"
	TrayExecutablePrefix   = "famtrack-tray"

	// Calendar form defaults for all-day events
	DefaultEventStartTime = "09:00"
	DefaultEventEndTime   = "10:00"
	AllDayStartTime       = "00:00:00"
	AllDayEndTime         = "23:59:59"

	// Session States
	StateDashboard SessionState = iota
	StateNote
	StateComments
	StateAddHabit
	StateConfirmDelete
)
