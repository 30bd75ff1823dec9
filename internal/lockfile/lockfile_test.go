package lockfile

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func setupTestProcess(t *testing.T, executable string) func() {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
	return func() { findProcessFunc = old }
}

func writeLock(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(Path(dir), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write lockfile: %v", err)
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", "1234|127.0.0.1:5000", false},
		{"trailing newline", "1234|127.0.0.1:5000\n", false},
		{"missing addr", "1234|", true},
		{"bad pid", "abc|127.0.0.1:5000", true},
		{"negative pid", "-1|127.0.0.1:5000", true},
		{"too many parts", "1|2|3", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeLock(t, dir, tt.content)

			owner, err := Read(Path(dir))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Read() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (owner.PID != 1234 || owner.Addr != "127.0.0.1:5000") {
				t.Errorf("Read() = %+v", owner)
			}
		})
	}
}

func TestAcquireFresh(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir, "127.0.0.1:5000")
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	owner, err := Read(Path(dir))
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if owner.PID != os.Getpid() {
		t.Errorf("owner pid = %d, want %d", owner.PID, os.Getpid())
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
	if _, err := os.Stat(Path(dir)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("lockfile still present after Release: %v", err)
	}
}

func TestAcquireRefusesLiveOwner(t *testing.T) {
	defer setupTestProcess(t, "deeply")()

	dir := t.TempDir()
	writeLock(t, dir, fmt.Sprintf("%d|127.0.0.1:5000", os.Getpid()+1))

	_, err := Acquire(dir, "127.0.0.1:5001")
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("Acquire() error = %v, want ErrLocked", err)
	}
}

func TestAcquireReplacesStale(t *testing.T) {
	tests := []struct {
		name       string
		executable string
	}{
		{"process gone", ""},
		{"pid reused by other program", "bash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer setupTestProcess(t, tt.executable)()

			dir := t.TempDir()
			writeLock(t, dir, fmt.Sprintf("%d|127.0.0.1:5000", os.Getpid()+1))

			lock, err := Acquire(dir, "127.0.0.1:5001")
			if err != nil {
				t.Fatalf("Acquire() failed: %v", err)
			}
			defer lock.Release()

			owner, err := Read(Path(dir))
			if err != nil {
				t.Fatalf("Read() failed: %v", err)
			}
			if owner.PID != os.Getpid() || owner.Addr != "127.0.0.1:5001" {
				t.Errorf("owner = %+v, want this process", owner)
			}
		})
	}
}

func TestAcquireRefusesHeldLock(t *testing.T) {
	dir := t.TempDir()
	lock, err := Acquire(dir, "127.0.0.1:5000")
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	defer lock.Release()

	if _, err := Acquire(dir, "127.0.0.1:5001"); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire() error = %v, want ErrLocked", err)
	}
	owner, err := Read(Path(dir))
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if owner.Addr != "127.0.0.1:5000" {
		t.Errorf("lockfile overwritten: %+v", owner)
	}
}

func TestAcquireConcurrent(t *testing.T) {
	defer setupTestProcess(t, "")()

	dir := t.TempDir()
	const racers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		won   int
		locks []*Lock
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lock, err := Acquire(dir, fmt.Sprintf("127.0.0.1:%d", 5000+i))
			if err != nil {
				if !errors.Is(err, ErrLocked) {
					t.Errorf("Acquire() error = %v, want ErrLocked", err)
				}
				return
			}
			mu.Lock()
			won++
			locks = append(locks, lock)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if won != 1 {
		t.Errorf("%d callers acquired the lock, want 1", won)
	}
	for _, lock := range locks {
		lock.Release()
	}
}

func TestReleaseKeepsForeignLock(t *testing.T) {
	dir := t.TempDir()
	lock, err := Acquire(dir, "127.0.0.1:5000")
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	writeLock(t, dir, fmt.Sprintf("%d|127.0.0.1:5002", os.Getpid()+1))
	if err := lock.Release(); err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
	if _, err := os.Stat(Path(dir)); err != nil {
		t.Errorf("foreign lockfile removed: %v", err)
	}
}
