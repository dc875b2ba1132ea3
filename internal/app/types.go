package app

import (
	"avular-upgrade/internal/core"
	"avular-upgrade/internal/types"
)

type RefreshRequest struct{}

type RefreshResult struct {
	Stages []types.StageResult
}

type TransitionRequest struct {
	// DryRun resolves the target and reports what would change without
	// confirming, backing up, or mutating anything.
	DryRun bool
}

type TransitionResult struct {
	Target  types.Codename
	Preview []types.PreviewChange
	// Outcome is nil for a dry run.
	Outcome *core.TransitionOutcome
}
