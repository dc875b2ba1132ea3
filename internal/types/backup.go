package types

import "time"

// Backup is a point-in-time copy of the repository configuration, one per
// transition attempt. Backups are never deleted automatically.
type Backup struct {
	ID        string    `yaml:"id"`
	Dir       string    `yaml:"dir"`
	CreatedAt time.Time `yaml:"created_at"`
	// RootCopied records that the root sources file made it into the
	// backup. A backup without the root file is not usable for rollback.
	RootCopied bool `yaml:"root_copied"`
	// DropInFailures lists drop-in files that could not be copied.
	// Partial drop-in backups are allowed.
	DropInFailures []string `yaml:"drop_in_failures,omitempty"`
}
