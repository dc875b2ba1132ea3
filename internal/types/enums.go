package types

type CatalogSource string

const (
	CatalogSourceReleaseFeed CatalogSource = "release-feed"
	CatalogSourceMirror      CatalogSource = "mirror"
)

type EntryKind string

const (
	EntryKindBinary EntryKind = "deb"
	EntryKindSource EntryKind = "deb-src"
)

type StageStatus string

const (
	StageStatusPending        StageStatus = "pending"
	StageStatusOK             StageStatus = "ok"
	StageStatusWarning        StageStatus = "warning"
	StageStatusFailed         StageStatus = "failed"
	StageStatusFailedNonFatal StageStatus = "failed-non-fatal"
	StageStatusSkipped        StageStatus = "skipped"
)

type TransitionPhase string

const (
	PhaseIdle            TransitionPhase = "idle"
	PhaseResolving       TransitionPhase = "resolving"
	PhaseAwaitingConfirm TransitionPhase = "awaiting-confirmation"
	PhaseBackingUp       TransitionPhase = "backing-up"
	PhaseRewriting       TransitionPhase = "rewriting"
	PhaseExecuting       TransitionPhase = "executing"
	PhaseSucceeded       TransitionPhase = "succeeded"
	PhaseFailedAwaiting  TransitionPhase = "failed-awaiting-rollback-decision"
	PhaseRolledBack      TransitionPhase = "rolled-back"
	PhaseFailedTerminal  TransitionPhase = "failed-terminal"
)

// Terminal reports whether no further transition out of the phase exists.
func (p TransitionPhase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseRolledBack, PhaseFailedTerminal:
		return true
	default:
		return false
	}
}
