package constants

import "time"

// Mode is a named pomodoro work/break preset
type Mode string

const (
	AppName    = "deeply"
	Version    = "v0.1.0"
	ConfigFile = "deeply.conf"
	LogFile    = "deeply.log"
	LockFile   = "deeply.lock"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is used for created_at / completed_at stamps
	TimestampFormat = time.RFC3339Nano

	// Server defaults
	DefaultAddr        = "127.0.0.1:5000"
	DefaultDataDirName = "data"
	DefaultDataFile    = "sessions.json"
	DefaultLogLevel    = "warn"
	ReadTimeout        = 10 * time.Second
	WriteTimeout       = 10 * time.Second
	IdleTimeout        = 60 * time.Second
	ShutdownTimeout    = 5 * time.Second
	MaxBodyBytes       = 1 << 20

	// Keyring
	DefaultKeyringUser = "database-connection"
	KeyringPrefix      = "keyring:"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "deeply-"

	// Todos completed longer ago than this are removed by `todo prune`
	DefaultPruneAge = 7 * 24 * time.Hour

	// NoTaskSelected is what clients send as the task of an unlinked session
	NoTaskSelected = "No task selected"

	// Modes
	ModeLight  Mode = "light"
	ModeMedium Mode = "medium"
	ModeDeep   Mode = "deep"

	// Allocation categories
	CategoryUniversity = "university"
	CategoryCareer     = "career"
	CategoryOther      = "other"
)

// ModeConfig holds the work and break lengths of a mode, in minutes
type ModeConfig struct {
	Work  int `json:"work"`
	Break int `json:"break"`
}

// Modes lists the presets in display order
var Modes = []Mode{ModeLight, ModeMedium, ModeDeep}

// ModeConfigs maps each mode to its durations
var ModeConfigs = map[Mode]ModeConfig{
	ModeLight:  {Work: 25, Break: 5},
	ModeMedium: {Work: 35, Break: 7},
	ModeDeep:   {Work: 50, Break: 10},
}
