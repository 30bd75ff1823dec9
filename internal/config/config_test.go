package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/deeply/internal/constants"
)

func setupTestConfigDir(t *testing.T) (string, func()) {
	t.Helper()
	dir := t.TempDir()

	oldConfigDir := userConfigDirFunc
	oldExecutable := executableFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	executableFunc = func() (string, error) { return filepath.Join(dir, "bin", "deeply"), nil }

	for _, key := range []string{EnvData, EnvAddr, EnvLogLevel, EnvLogDir, EnvTelemetry} {
		t.Setenv(key, "")
	}

	return dir, func() {
		userConfigDirFunc = oldConfigDir
		executableFunc = oldExecutable
	}
}

func TestLoadDefaults(t *testing.T) {
	dir, cleanup := setupTestConfigDir(t)
	defer cleanup()

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if want := filepath.Join(dir, "bin", "data", "sessions.json"); cfg.Data != want {
		t.Errorf("Data = %q, want %q", cfg.Data, want)
	}
	if cfg.Addr != constants.DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, constants.DefaultAddr)
	}
	if cfg.LogLevel != constants.DefaultLogLevel {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if want := filepath.Join(dir, "deeply", "deeply.conf"); cfg.Path != want {
		t.Errorf("Path = %q, want %q", cfg.Path, want)
	}
	if want := filepath.Join(dir, "deeply", "logs"); cfg.LogDir != want {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, want)
	}
	if cfg.Telemetry {
		t.Error("Telemetry should default to false")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir, cleanup := setupTestConfigDir(t)
	defer cleanup()

	confPath := filepath.Join(dir, "custom.conf")
	content := "DEEPLY_DATA=/file/data.json\nDEEPLY_ADDR=127.0.0.1:6000\nDEEPLY_LOG_LEVEL=info\nDEEPLY_TELEMETRY=true\n"
	if err := os.WriteFile(confPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAddr, "127.0.0.1:7000")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(Flags{Config: confPath, Addr: "127.0.0.1:8000"})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Data != "/file/data.json" {
		t.Errorf("Data = %q, want value from file", cfg.Data)
	}
	if cfg.Addr != "127.0.0.1:8000" {
		t.Errorf("Addr = %q, want flag value", cfg.Addr)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want env value", cfg.LogLevel)
	}
	if !cfg.Telemetry {
		t.Error("Telemetry = false, want true from file")
	}
}

func TestLoadDebugForcesLevel(t *testing.T) {
	_, cleanup := setupTestConfigDir(t)
	defer cleanup()

	cfg, err := Load(Flags{Debug: true})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.LogLevel != "debug" || !cfg.Debug {
		t.Errorf("LogLevel = %q Debug = %v", cfg.LogLevel, cfg.Debug)
	}
}

func TestLoadInvalidTelemetry(t *testing.T) {
	_, cleanup := setupTestConfigDir(t)
	defer cleanup()

	t.Setenv(EnvTelemetry, "sometimes")
	if _, err := Load(Flags{}); err == nil {
		t.Error("expected error for invalid telemetry flag")
	}
}

func TestWriteDefault(t *testing.T) {
	_, cleanup := setupTestConfigDir(t)
	defer cleanup()

	cfg, err := Load(Flags{Data: "/tmp/x.db"})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	written, err := WriteDefault(cfg)
	if err != nil || !written {
		t.Fatalf("WriteDefault() = %v, %v", written, err)
	}
	written, err = WriteDefault(cfg)
	if err != nil || written {
		t.Errorf("second WriteDefault() = %v, %v; want false, nil", written, err)
	}

	reloaded, err := Load(Flags{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if reloaded.Data != "/tmp/x.db" {
		t.Errorf("Data = %q, want value written to file", reloaded.Data)
	}
}

func TestDataDir(t *testing.T) {
	cfg := &Config{Path: "/home/u/.config/deeply/deeply.conf"}

	tests := []struct {
		data string
		want string
	}{
		{"/srv/deeply/data/sessions.json", "/srv/deeply/data"},
		{"/srv/deeply/deeply.db", "/srv/deeply"},
		{"postgres://deeply@localhost/deeply", "/home/u/.config/deeply"},
		{"keyring:", "/home/u/.config/deeply"},
	}
	for _, tt := range tests {
		cfg.Data = tt.data
		if got := cfg.DataDir(); got != tt.want {
			t.Errorf("DataDir() for %q = %q, want %q", tt.data, got, tt.want)
		}
	}
}
