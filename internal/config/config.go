package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/storage"
)

// Environment and config file keys
const (
	EnvData      = "DEEPLY_DATA"
	EnvAddr      = "DEEPLY_ADDR"
	EnvLogLevel  = "DEEPLY_LOG_LEVEL"
	EnvLogDir    = "DEEPLY_LOG_DIR"
	EnvTelemetry = "DEEPLY_TELEMETRY"
)

var (
	userConfigDirFunc = os.UserConfigDir
	executableFunc    = os.Executable
)

type Config struct {
	// Data is a JSON/SQLite file path, a PostgreSQL URL or "keyring:"
	Data      string
	Addr      string
	LogLevel  string
	LogDir    string
	Telemetry bool
	Debug     bool

	// Path of the config file that was consulted, whether or not it exists
	Path string
}

// Flags are command-line values; empty strings defer to lower layers
type Flags struct {
	Config string
	Data   string
	Addr   string
	Debug  bool
}

// ConfigDir returns <user config dir>/deeply
func ConfigDir() (string, error) {
	dir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, constants.AppName), nil
}

// DefaultPath returns the default config file location
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFile), nil
}

// DefaultDataPath returns <dir of executable>/data/sessions.json
func DefaultDataPath() string {
	exe, err := executableFunc()
	if err != nil {
		return filepath.Join(constants.DefaultDataDirName, constants.DefaultDataFile)
	}
	return filepath.Join(filepath.Dir(exe), constants.DefaultDataDirName, constants.DefaultDataFile)
}

// Load merges defaults, the config file, the environment and flags. For each
// setting the first non-empty value in flags, env, file, defaults wins.
func Load(flags Flags) (*Config, error) {
	path := flags.Config
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	defaultLogDir := filepath.Join(filepath.Dir(path), "logs")

	cfg := &Config{
		Data:     coalesce(flags.Data, os.Getenv(EnvData), file[EnvData], DefaultDataPath()),
		Addr:     coalesce(flags.Addr, os.Getenv(EnvAddr), file[EnvAddr], constants.DefaultAddr),
		LogLevel: coalesce(os.Getenv(EnvLogLevel), file[EnvLogLevel], constants.DefaultLogLevel),
		LogDir:   coalesce(os.Getenv(EnvLogDir), file[EnvLogDir], defaultLogDir),
		Debug:    flags.Debug,
		Path:     path,
	}

	telemetry := coalesce(os.Getenv(EnvTelemetry), file[EnvTelemetry], "false")
	if cfg.Telemetry, err = strconv.ParseBool(telemetry); err != nil {
		return nil, fmt.Errorf("invalid %s value %q", EnvTelemetry, telemetry)
	}

	if flags.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// readFile parses a dotenv config file. A missing file is not an error.
func readFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return values, nil
}

// WriteDefault writes cfg as a dotenv file at cfg.Path unless one exists.
// It reports whether a file was written.
func WriteDefault(cfg *Config) (bool, error) {
	if _, err := os.Stat(cfg.Path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	values := map[string]string{
		EnvData:      cfg.Data,
		EnvAddr:      cfg.Addr,
		EnvLogLevel:  cfg.LogLevel,
		EnvTelemetry: strconv.FormatBool(cfg.Telemetry),
	}
	if err := godotenv.Write(values, cfg.Path); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// DataDir is where the lockfile and backups live. File-backed targets use
// their own directory; database targets fall back to the config directory.
func (c *Config) DataDir() string {
	if storage.IsPostgresURL(c.Data) || strings.HasPrefix(c.Data, constants.KeyringPrefix) {
		return filepath.Dir(c.Path)
	}
	return filepath.Dir(c.Data)
}

func coalesce(args ...string) string {
	for _, s := range args {
		if s != "" {
			return s
		}
	}
	return ""
}
