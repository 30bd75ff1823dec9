package backup

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/logger"
)

const (
	minuteFormat = "20060102-1504"
	secondFormat = "20060102-150405"
)

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager keeps timestamped copies of a JSON or SQLite data file
type Manager struct {
	dataPath  string
	backupDir string
	suffix    string
	sqlite    bool
	now       func() time.Time
}

// NewManager creates a backup manager for the data file at dataPath.
// Backups live in a "backups" directory next to it.
func NewManager(dataPath string) *Manager {
	suffix := strings.ToLower(filepath.Ext(dataPath))
	sqlite := suffix == ".db" || suffix == ".sqlite"
	if suffix == "" {
		suffix = ".json"
	}
	return &Manager{
		dataPath:  dataPath,
		backupDir: filepath.Join(filepath.Dir(dataPath), constants.BackupDirName),
		suffix:    suffix,
		sqlite:    sqlite,
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// DataExists reports whether there is a data file to back up
func (m *Manager) DataExists() bool {
	_, err := os.Stat(m.dataPath)
	return err == nil
}

// CreateBackup copies the data file into the backup directory and prunes
// backups beyond the retention limit.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// createBackup skips rotation when called from a restore
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if !m.DataExists() {
		return "", fmt.Errorf("data file does not exist: %s", m.dataPath)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	if m.sqlite {
		err = m.backupDatabase(backupPath)
	} else {
		err = m.backupJSON(backupPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to back up data: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("failed to rotate old backups", "error", err)
		}
	}

	logger.Info("created backup", "path", backupPath)
	return backupPath, nil
}

// nextBackupPath prefers minute precision, then seconds, then a counter
func (m *Manager) nextBackupPath() (string, error) {
	now := m.now()
	path := m.backupName(now.Format(minuteFormat))
	if !exists(path) {
		return path, nil
	}

	stamp := now.Format(secondFormat)
	path = m.backupName(stamp)
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = m.backupName(fmt.Sprintf("%s-%d", stamp, counter))
	}
	return path, nil
}

func (m *Manager) backupName(stamp string) string {
	return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+m.suffix)
}

// backupDatabase writes a clean copy of the SQLite database with VACUUM INTO
func (m *Manager) backupDatabase(destPath string) error {
	srcDB, err := sql.Open("sqlite", m.dataPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := srcDB.Exec("VACUUM INTO ?", destPath); err != nil {
		srcDB.Close()
		return copyFile(m.dataPath, destPath)
	}
	return nil
}

// backupJSON refuses to copy a document that does not parse
func (m *Manager) backupJSON(destPath string) error {
	if err := verifyJSON(m.dataPath); err != nil {
		return fmt.Errorf("source data appears to be corrupted: %w", err)
	}
	return copyFile(m.dataPath, destPath)
}

// ListBackups returns all backups, newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.suffix) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), m.suffix)
		counter := 0
		// YYYYMMDD-HHMMSS-N carries a collision counter
		if parts := strings.Split(stamp, "-"); len(parts) == 3 {
			stamp = parts[0] + "-" + parts[1]
			if _, err := fmt.Sscanf(parts[2], "%d", &counter); err != nil {
				continue
			}
		}

		timestamp, err := time.ParseInLocation(minuteFormat, stamp, time.Local)
		if err != nil {
			if timestamp, err = time.ParseInLocation(secondFormat, stamp, time.Local); err != nil {
				continue
			}
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: timestamp.Add(time.Duration(counter) * time.Nanosecond),
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// rotateBackups removes backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the data file with a verified backup. The current
// data file is backed up first. It returns the path of that safety backup,
// or "" when there was no data to save.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if !exists(backupPath) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := m.verifyBackup(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety string
	if m.DataExists() {
		var err error
		if safety, err = m.createBackup(true); err != nil {
			return "", fmt.Errorf("failed to back up current data before restore: %w", err)
		}
	}

	tempPath := m.dataPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return "", fmt.Errorf("failed to copy backup file: %w", err)
	}

	if err := os.Rename(tempPath, m.dataPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("failed to remove temporary file", "path", tempPath, "error", removeErr)
		}
		return "", fmt.Errorf("failed to restore data: %w", err)
	}

	logger.Info("restored backup", "from", backupPath, "to", m.dataPath)
	return safety, nil
}

func (m *Manager) verifyBackup(path string) error {
	if !m.sqlite {
		return verifyJSON(path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

// verifyJSON checks that path holds a document with todo and session arrays
func verifyJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc struct {
		Todos    []json.RawMessage `json:"todos"`
		Sessions []json.RawMessage `json:"sessions"`
	}
	return json.Unmarshal(data, &doc)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// copyFile copies src to dst and syncs it to disk
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
