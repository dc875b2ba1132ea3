package types

import "time"

// Stage is one discrete package-manager operation within an upgrade run.
type Stage struct {
	Name    string
	Command []string
	// ContinueOnFailure marks cleanup-style stages whose failure must not
	// stop the run.
	ContinueOnFailure bool
	// Weight sets the stage's share of the reported progress percentage.
	Weight int
}

// StageResult is the outcome of one pipeline stage.
type StageResult struct {
	Name       string
	Status     StageStatus
	ExitCode   int
	OutputPath string
	Advisories []string
	Duration   time.Duration
}

// ProgressEvent is an observational progress sample. It never affects
// control flow.
type ProgressEvent struct {
	Percent int
	Label   string
}

// RewriteReport aggregates the outcome of one rewrite pass. Failed paths
// did not persist; the files listed in Changed were replaced atomically.
type RewriteReport struct {
	Changed []string
	Failed  []string
}

// PreviewChange describes one entry a rewrite would touch, without writing.
type PreviewChange struct {
	Path string
	From Codename
	To   Codename
	URI  string
}
