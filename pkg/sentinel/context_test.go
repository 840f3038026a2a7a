package sentinel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sentinelfs/sentinelfs/pkg/logging"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel/backup"
)

func TestNewCreatesBackupDirectory(t *testing.T) {
	storageRoot := t.TempDir()
	ctx, err := New(storageRoot, logging.NewLogger(logging.LevelDisabled))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	wantBackupRoot := filepath.Join(storageRoot, backup.DirName)
	if ctx.BackupRoot != wantBackupRoot {
		t.Fatalf("unexpected backup root: got %s, want %s", ctx.BackupRoot, wantBackupRoot)
	}

	info, err := os.Stat(ctx.BackupRoot)
	if err != nil {
		t.Fatalf("backup directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("backup root is not a directory")
	}
	if info.Mode().Perm() != 0700 {
		t.Fatalf("expected owner-only permissions, got %v", info.Mode().Perm())
	}
}

func TestNewIsIdempotent(t *testing.T) {
	storageRoot := t.TempDir()
	logger := logging.NewLogger(logging.LevelDisabled)
	if _, err := New(storageRoot, logger); err != nil {
		t.Fatalf("first New failed: %v", err)
	}
	if _, err := New(storageRoot, logger); err != nil {
		t.Fatalf("second New on an already-initialized storage root failed: %v", err)
	}
}

func TestBackupRootContainedInStorageRoot(t *testing.T) {
	storageRoot := t.TempDir()
	ctx, err := New(storageRoot, logging.NewLogger(logging.LevelDisabled))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if filepath.Dir(ctx.BackupRoot) != ctx.StorageRoot {
		t.Fatalf("backup root %s is not a direct child of storage root %s", ctx.BackupRoot, ctx.StorageRoot)
	}
}

func TestShutdownDoesNotPanicOnZeroWrites(t *testing.T) {
	storageRoot := t.TempDir()
	ctx, err := New(storageRoot, logging.NewLogger(logging.LevelDisabled))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx.Shutdown()
	if ctx.Classifier != nil {
		t.Fatal("expected classifier to be released after shutdown")
	}
}
