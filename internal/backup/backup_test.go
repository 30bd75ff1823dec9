package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/models"
	"github.com/julianstephens/deeply/internal/storage"
)

const testDocument = `{"todos":[{"id":1,"name":"A","completed":false,"created_at":"2024-03-13T10:00:00Z"}],"sessions":[]}`

func setupTestJSON(t *testing.T) (string, *Manager, func(d time.Duration)) {
	t.Helper()
	dataPath := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(dataPath, []byte(testDocument), 0600); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}

	mgr := NewManager(dataPath)
	now := time.Date(2024, time.March, 13, 10, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return now }
	advance := func(d time.Duration) { now = now.Add(d) }
	return dataPath, mgr, advance
}

func setupTestDB(t *testing.T) (string, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "deeply.db")

	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	doc := storage.NewDocument()
	doc.Todos = append(doc.Todos, models.Todo{ID: 1, Name: "A", CreatedAt: "2024-03-13T10:00:00Z"})
	if err := store.Save(context.Background(), doc); err != nil {
		t.Fatalf("failed to save test data: %v", err)
	}

	return dbPath, func() { store.Close() }
}

func TestCreateBackupJSON(t *testing.T) {
	_, mgr, _ := setupTestJSON(t)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if want := filepath.Join(mgr.GetBackupDir(), "deeply-20240313-1000.json"); backupPath != want {
		t.Errorf("backup path = %s, want %s", backupPath, want)
	}
	data, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(data) != testDocument {
		t.Errorf("backup content = %s", data)
	}
}

func TestCreateBackupRefusesCorruptJSON(t *testing.T) {
	dataPath, mgr, _ := setupTestJSON(t)
	if err := os.WriteFile(dataPath, []byte("{nope"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error backing up corrupt data")
	}
}

func TestBackupWithNoData(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error when data file does not exist")
	}
	if mgr.DataExists() {
		t.Error("DataExists() = true for missing file")
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	_, mgr, _ := setupTestJSON(t)

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
		if seen[path] {
			t.Errorf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 4 {
		t.Errorf("expected 4 backups, got %d", len(backups))
	}
}

func TestListBackupsNewestFirst(t *testing.T) {
	_, mgr, advance := setupTestJSON(t)

	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
		advance(time.Hour)
	}
	// Unrelated files are ignored
	if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i-1].Timestamp.After(backups[i].Timestamp) {
			t.Errorf("backups not sorted newest first: %v then %v", backups[i-1].Timestamp, backups[i].Timestamp)
		}
	}
	if !strings.HasSuffix(backups[0].Path, "deeply-20240313-1200.json") {
		t.Errorf("newest backup = %s", backups[0].Path)
	}
}

func TestListBackupsMissingDir(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "sessions.json"))
	backups, err := mgr.ListBackups()
	if err != nil || len(backups) != 0 {
		t.Errorf("ListBackups() = %v, %v; want empty", backups, err)
	}
}

func TestBackupRotation(t *testing.T) {
	_, mgr, advance := setupTestJSON(t)

	for i := 0; i < constants.MaxBackups+2; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
		advance(time.Minute)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups, got %d", constants.MaxBackups, len(backups))
	}
	if strings.HasSuffix(backups[len(backups)-1].Path, "deeply-20240313-1000.json") {
		t.Error("oldest backup should have been rotated out")
	}
}

func TestRestoreBackupJSON(t *testing.T) {
	dataPath, mgr, advance := setupTestJSON(t)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	modified := `{"todos":[],"sessions":[]}`
	if err := os.WriteFile(dataPath, []byte(modified), 0600); err != nil {
		t.Fatal(err)
	}
	advance(time.Minute)

	safety, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	data, err := os.ReadFile(dataPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != testDocument {
		t.Errorf("restored content = %s", data)
	}

	saved, err := os.ReadFile(safety)
	if err != nil {
		t.Fatalf("pre-restore backup missing: %v", err)
	}
	if string(saved) != modified {
		t.Errorf("pre-restore backup = %s, want modified data", saved)
	}
	if _, err := os.Stat(dataPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreWithCorruptedBackup(t *testing.T) {
	dataPath, mgr, _ := setupTestJSON(t)

	bad := filepath.Join(t.TempDir(), "deeply-20240101-0000.json")
	if err := os.WriteFile(bad, []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.RestoreBackup(bad); err == nil {
		t.Fatal("expected error restoring corrupt backup")
	}
	data, _ := os.ReadFile(dataPath)
	if string(data) != testDocument {
		t.Error("data changed after failed restore")
	}

	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error restoring missing backup")
	}
}

func TestCreateAndRestoreBackupSQLite(t *testing.T) {
	dbPath, cleanup := setupTestDB(t)
	defer cleanup()

	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if !strings.HasSuffix(backupPath, ".db") {
		t.Errorf("backup path %s should keep the .db suffix", backupPath)
	}

	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup database: %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM todos").Scan(&count); err != nil {
		t.Fatalf("failed to query backup database: %v", err)
	}
	db.Close()
	if count != 1 {
		t.Errorf("backup todo count = %d, want 1", count)
	}

	if err := mgr.verifyBackup(backupPath); err != nil {
		t.Errorf("verifyBackup failed: %v", err)
	}

	notDB := filepath.Join(t.TempDir(), "deeply-20240101-0000.db")
	if err := os.WriteFile(notDB, []byte("this is not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(notDB); err == nil {
		t.Error("expected error restoring a non-database file")
	}
}
