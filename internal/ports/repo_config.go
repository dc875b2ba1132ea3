package ports

import (
	"context"

	"avular-upgrade/internal/types"
)

// RepoConfigPort reads and writes the repository source definitions: the
// root sources file plus the drop-in directory. It is the only component
// besides the rewriter that may touch them, and only under the
// orchestrator's control.
type RepoConfigPort interface {
	// Load parses the root file and every drop-in file, preserving line
	// order and raw lines. Missing drop-in files are skipped.
	Load() ([]types.SourceFile, error)

	// Save atomically replaces one file with the formatted content.
	Save(file types.SourceFile) error

	// Snapshot copies the current configuration into a fresh timestamp-
	// named backup directory. Failure to copy the root file is fatal;
	// drop-in copy failures are recorded in the backup and non-fatal.
	Snapshot(ctx context.Context) (types.Backup, error)

	// Restore replaces the root file from the backup and repopulates the
	// drop-in directory after clearing it. Best-effort: a root restore
	// failure is reported but does not abort the drop-in restore. Restore
	// never touches anything outside the configuration locations and
	// never runs the package manager.
	Restore(ctx context.Context, backup types.Backup) error
}
