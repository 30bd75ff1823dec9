// Package lockfile guards a data directory against two servers at once.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/deeply/internal/constants"
)

var (
	// ErrLocked is returned when a live server already owns the lock
	ErrLocked = errors.New("data directory is locked by a running server")

	findProcessFunc = ps.FindProcess
)

// Owner is the content of a lockfile
type Owner struct {
	PID  int
	Addr string
}

// Lock is a held lockfile
type Lock struct {
	path string
}

// Path returns the lockfile path for a data directory
func Path(dataDir string) string {
	return filepath.Join(dataDir, constants.LockFile)
}

// Read parses the lockfile at path
func Read(path string) (*Owner, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return nil, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return nil, errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return nil, errors.New("address in lockfile is empty")
	}

	return &Owner{PID: pid, Addr: parts[1]}, nil
}

// Active returns the owner of the lockfile when it belongs to a live deeply
// process other than this one. A missing, malformed or stale lockfile yields nil.
func Active(path string) *Owner {
	owner, err := Read(path)
	if err != nil {
		return nil
	}
	if owner.PID == os.Getpid() {
		return nil
	}

	process, err := findProcessFunc(owner.PID)
	if err != nil || process == nil {
		return nil
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return nil
	}
	return owner
}

// Acquire creates a lockfile for this process. The file is created
// exclusively so of two servers racing for one data directory only one
// wins. An existing lockfile is replaced only when its owner is gone.
func Acquire(dataDir, addr string) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := Path(dataDir)
	content := fmt.Sprintf("%d|%s", os.Getpid(), addr)
	for attempt := 0; ; attempt++ {
		err := create(path, content)
		if err == nil {
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to write lockfile: %w", err)
		}

		if owner, held := holder(path); held || attempt > 0 {
			if owner == nil {
				return nil, ErrLocked
			}
			return nil, fmt.Errorf("%w (pid %d, %s)", ErrLocked, owner.PID, owner.Addr)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
}

// holder reports whether the existing lockfile at path is held by a live
// server, this process included.
func holder(path string) (*Owner, bool) {
	if owner, err := Read(path); err == nil && owner.PID == os.Getpid() {
		return owner, true
	}
	if owner := Active(path); owner != nil {
		return owner, true
	}
	return nil, false
}

// create publishes content at path only if nothing is there yet. The file
// is written in full before it is linked into place, so readers never see a
// partial lockfile.
func create(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), constants.LockFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Link(tmp.Name(), path)
}

// Release removes the lockfile if this process still owns it
func (l *Lock) Release() error {
	owner, err := Read(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if owner.PID != os.Getpid() {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}
