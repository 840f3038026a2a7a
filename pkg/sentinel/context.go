// Package sentinel owns the global process context for SentinelFS: the
// storage and backup roots, the content classifier, the activity counters,
// and the init/shutdown lifecycle hooks. It is deliberately a plain,
// explicitly-constructed value rather than a package-level singleton, so
// that it can be threaded through the filesystem façade as an ordinary
// function argument.
package sentinel

import (
	"fmt"
	"path/filepath"

	"github.com/sentinelfs/sentinelfs/pkg/logging"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel/backup"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel/classify"
)

// Context is the global, process-wide state created at startup and
// destroyed at shutdown. StorageRoot, BackupRoot, and Classifier are
// immutable after New returns and may be shared freely across concurrently
// invoked operations; Counters is mutated on every write using atomic
// operations.
type Context struct {
	// StorageRoot is the absolute path of the directory exposed through the
	// mount.
	StorageRoot string
	// BackupRoot is storage_root + "/.sentinelfs_backups". It lies inside
	// StorageRoot, so backups appear under the mount; a write whose
	// translated path resolves inside BackupRoot is still subject to the
	// write gate like any other path.
	BackupRoot string
	// Classifier answers safe-list queries for write payloads.
	Classifier *classify.Classifier
	// Backup creates JIT backups on first overwrite.
	Backup *backup.Manager
	// Counters are the three process-wide activity counters.
	Counters Counters
	// Logger is the root diagnostics logger for the process.
	Logger *logging.Logger
}

// New constructs the global context: it resolves storageRoot to an absolute
// path, creates the backup directory (idempotent, owner-only permissions),
// and initializes the classifier. No filesystem operation should be served
// before New returns successfully.
func New(storageRoot string, logger *logging.Logger) (*Context, error) {
	absStorageRoot, err := filepath.Abs(storageRoot)
	if err != nil {
		return nil, fmt.Errorf("unable to canonicalize storage path: %w", err)
	}

	backupRoot := filepath.Join(absStorageRoot, backup.DirName)
	if err := backup.EnsureDir(backupRoot); err != nil {
		return nil, fmt.Errorf("unable to initialize backup directory: %w", err)
	}

	return &Context{
		StorageRoot: absStorageRoot,
		BackupRoot:  backupRoot,
		Classifier:  classify.New(logger),
		Backup:      backup.New(backupRoot, logger),
		Logger:      logger,
	}, nil
}

// Shutdown emits the summary report — total writes, blocked writes with
// percentage (0.00% when total is zero), and backups created — and releases
// the classifier resource. The classifier in this implementation is a pure
// function over a byte buffer with no native handle to release, so release
// here is limited to making the context's classifier field unusable; the
// call is kept as an explicit step so the lifecycle hook survives a future
// classifier backend that does own a real resource (e.g. an external
// libmagic handle).
func (c *Context) Shutdown() {
	total, blocked, backups := c.Counters.Snapshot()

	var percentage float64
	if total > 0 {
		percentage = float64(blocked) / float64(total) * 100
	}

	c.Logger.Printf(
		"shutdown summary: %d total writes, %d blocked (%.2f%%), %d backups created",
		total, blocked, percentage, backups,
	)

	c.Classifier = nil
}
