package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/deeply/internal/constants"
)

func TestInit(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	err := Init(Config{
		Level:  "info",
		LogDir: logDir,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if Logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want %v", Logger.GetLevel(), log.InfoLevel)
	}

	Info("Test info message", "key", "value")
	if _, err := os.Stat(filepath.Join(logDir, constants.LogFile)); err != nil {
		t.Errorf("log file was not written: %v", err)
	}
}

func TestInitDebugOverridesLevel(t *testing.T) {
	err := Init(Config{
		Debug:  true,
		Level:  "error",
		LogDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want %v", Logger.GetLevel(), log.DebugLevel)
	}
}

func TestInitInvalidLevelFallsBackToWarn(t *testing.T) {
	if err := Init(Config{Level: "chatty", LogDir: t.TempDir()}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Logger.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want %v", Logger.GetLevel(), log.WarnLevel)
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
