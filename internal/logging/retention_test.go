package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadbenchakroun/auto-video-generator/internal/logging"
)

func writeAgedFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("log"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("age %s: %v", name, err)
	}
	return path
}

func TestCleanupOldLogsPrunesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	old := writeAgedFile(t, dir, "autovideo-old.log", 72*time.Hour)
	fresh := writeAgedFile(t, dir, "autovideo-fresh.log", time.Hour)
	unrelated := writeAgedFile(t, dir, "notes.txt", 72*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 2, logging.RetentionTarget{Dir: dir, Pattern: "autovideo-*.log"})

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err = %v", err)
	}
	for _, path := range []string{fresh, unrelated} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", filepath.Base(path), err)
		}
	}
}

func TestCleanupOldLogsHonorsExclusions(t *testing.T) {
	dir := t.TempDir()
	current := writeAgedFile(t, dir, "autovideo-current.log", 72*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 2, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "autovideo-*.log",
		Exclude: []string{current},
	})

	if _, err := os.Stat(current); err != nil {
		t.Fatalf("excluded file should survive: %v", err)
	}
}

func TestCleanupOldLogsDisabledByZeroRetention(t *testing.T) {
	dir := t.TempDir()
	old := writeAgedFile(t, dir, "autovideo-old.log", 240*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 0, logging.RetentionTarget{Dir: dir, Pattern: "autovideo-*.log"})

	if _, err := os.Stat(old); err != nil {
		t.Fatalf("zero retention must not prune: %v", err)
	}
}
