package pomodoro

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/deeply/internal/service"
)

func testModes() []service.ModeInfo {
	return []service.ModeInfo{
		{Name: "light", Work: 25, Break: 5},
		{Name: "deep", Work: 90, Break: 20},
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewStartsIdleInWorkPhase(t *testing.T) {
	m := New(testModes())

	if m.Phase() != PhaseWork {
		t.Errorf("expected work phase, got %s", m.Phase())
	}
	if m.Running() {
		t.Error("expected timer to be idle")
	}
	if m.timer.Timeout != 25*time.Minute {
		t.Errorf("expected 25m timeout, got %s", m.timer.Timeout)
	}
}

func TestModeCycling(t *testing.T) {
	m := New(testModes())

	m, _ = m.Update(keyPress("m"))
	if m.Mode().Name != "deep" {
		t.Fatalf("expected deep mode, got %s", m.Mode().Name)
	}
	if m.timer.Timeout != 90*time.Minute {
		t.Errorf("expected 90m timeout, got %s", m.timer.Timeout)
	}

	m, _ = m.Update(keyPress("m"))
	if m.Mode().Name != "light" {
		t.Errorf("expected mode to wrap to light, got %s", m.Mode().Name)
	}
}

func TestModeLockedWhileStarted(t *testing.T) {
	m := New(testModes())

	m, cmd := m.Update(keyPress("s"))
	if cmd == nil {
		t.Fatal("expected start to return a tick command")
	}
	m, _ = m.Update(keyPress("m"))
	if m.Mode().Name != "light" {
		t.Errorf("expected mode to stay light while started, got %s", m.Mode().Name)
	}
}

func TestWorkTimeoutReportsCompletion(t *testing.T) {
	m := New(testModes())
	m.SetTask("Write essay")
	m, _ = m.Update(keyPress("s"))

	m, cmd := m.Update(timer.TimeoutMsg{ID: m.timer.ID()})
	if cmd == nil {
		t.Fatal("expected a command after work timeout")
	}

	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) == 0 {
		t.Fatalf("expected batch message, got %T", cmd())
	}
	done, ok := batch[0]().(CompletedMsg)
	if !ok {
		t.Fatalf("expected CompletedMsg first in batch")
	}
	if done.Mode != "light" || done.Task != "Write essay" || done.Minutes != 25 {
		t.Errorf("unexpected completion: %+v", done)
	}

	if m.Phase() != PhaseBreak {
		t.Errorf("expected break phase, got %s", m.Phase())
	}
	if m.timer.Timeout != 5*time.Minute {
		t.Errorf("expected 5m break, got %s", m.timer.Timeout)
	}
}

func TestBreakTimeoutWaitsForUser(t *testing.T) {
	m := New(testModes())
	m, _ = m.Update(keyPress("n"))
	if m.Phase() != PhaseBreak {
		t.Fatalf("expected skip to move to break, got %s", m.Phase())
	}

	m, cmd := m.Update(timer.TimeoutMsg{ID: m.timer.ID()})
	if cmd != nil {
		t.Error("expected no command after break timeout")
	}
	if m.Phase() != PhaseWork {
		t.Errorf("expected work phase, got %s", m.Phase())
	}
	if m.Running() {
		t.Error("expected timer to wait for the user")
	}
}

func TestStaleTimeoutIgnored(t *testing.T) {
	m := New(testModes())

	m, cmd := m.Update(timer.TimeoutMsg{ID: m.timer.ID() + 1000})
	if cmd != nil || m.Phase() != PhaseWork {
		t.Error("expected timeout from another timer to be ignored")
	}
}
