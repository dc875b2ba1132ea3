package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/types"
)

// TransitionOrchestrator coordinates one release transition: resolve the
// target, confirm, back up, rewrite, execute, and on failure offer a
// configuration rollback. One orchestrator instance runs exactly once; a
// fresh run starts from a fresh instance in Idle.
type TransitionOrchestrator struct {
	Primary   ports.CatalogPort
	Secondary ports.CatalogPort
	Store     ports.RepoConfigPort
	Resolver  ReleaseResolver
	Rewriter  SourceRewriter
	Pipeline  UpgradePipeline
	Presenter ports.PresenterPort

	// Stages is the upgrade stage list; ResyncStage re-synchronizes the
	// package index after a configuration restore.
	Stages      []types.Stage
	ResyncStage types.Stage

	phase types.TransitionPhase
}

// TransitionOutcome reports everything a caller needs to present or act on
// after a run, including partial results of a failed run.
type TransitionOutcome struct {
	Phase     types.TransitionPhase
	Target    types.Codename
	Cancelled bool
	Backup    types.Backup
	Rewrite   types.RewriteReport
	Stages    []types.StageResult
	// RollbackResync holds the result of the post-restore index
	// re-synchronization, when a rollback ran. Its failure never changes
	// the terminal classification.
	RollbackResync *types.StageResult
}

func NewTransitionOrchestrator(
	primary ports.CatalogPort,
	secondary ports.CatalogPort,
	store ports.RepoConfigPort,
	pipeline UpgradePipeline,
	presenter ports.PresenterPort,
	stages []types.Stage,
	resync types.Stage,
) *TransitionOrchestrator {
	return &TransitionOrchestrator{
		Primary:     primary,
		Secondary:   secondary,
		Store:       store,
		Resolver:    NewReleaseResolver(),
		Rewriter:    NewSourceRewriter(store),
		Pipeline:    pipeline,
		Presenter:   presenter,
		Stages:      stages,
		ResyncStage: resync,
		phase:       types.PhaseIdle,
	}
}

// Run drives the state machine to a terminal phase. The outcome is valid
// even when the returned error is non-nil: a rolled-back or declined run
// still reports its partial results. A cancelled confirmation returns a
// nil error with Cancelled set and no side effects performed.
func (o *TransitionOrchestrator) Run(ctx context.Context) (TransitionOutcome, error) {
	outcome := TransitionOutcome{Phase: types.PhaseIdle}
	if o.phase != types.PhaseIdle {
		return outcome, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("transition already ran: a fresh run starts from a fresh orchestrator")
	}
	presenter := o.Presenter
	if presenter == nil {
		presenter = nopPresenter{}
	}

	// Resolving
	o.setPhase(presenter, types.PhaseResolving, &outcome)
	target, known, err := o.resolveTarget(ctx)
	if err != nil {
		// terminal abort; nothing was mutated
		o.setPhase(presenter, types.PhaseFailedTerminal, &outcome)
		return outcome, err
	}
	outcome.Target = target

	// AwaitingConfirmation gates every mutation that follows.
	o.setPhase(presenter, types.PhaseAwaitingConfirm, &outcome)
	preview, err := o.Rewriter.Preview(target, known)
	if err == nil {
		presenter.Info(previewSummary(target, preview))
	} else {
		log.Warn().Err(err).Msg("dry-run preview unavailable")
	}
	confirmed, err := presenter.Confirm(ctx, fmt.Sprintf("Transition this system to %q?", target))
	if err != nil || !confirmed {
		outcome.Phase = types.PhaseIdle
		outcome.Cancelled = true
		o.phase = types.PhaseIdle
		presenter.Info("transition cancelled, nothing was changed")
		return outcome, nil
	}

	// BackingUp
	o.setPhase(presenter, types.PhaseBackingUp, &outcome)
	backup, err := o.Store.Snapshot(ctx)
	if err != nil {
		// terminal abort; no rewrite was attempted
		o.setPhase(presenter, types.PhaseFailedTerminal, &outcome)
		return outcome, err
	}
	outcome.Backup = backup

	// Rewriting. Never rewrite without a verified backup of the root file.
	assert.NotEmpty(ctx, backup.ID, "backup id must be set before rewriting")
	if !backup.RootCopied {
		o.setPhase(presenter, types.PhaseFailedTerminal, &outcome)
		return outcome, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("backup is missing the root sources file, refusing to rewrite")
	}
	o.setPhase(presenter, types.PhaseRewriting, &outcome)
	report, rewriteErr := o.Rewriter.Rewrite(target, known)
	outcome.Rewrite = report
	for _, path := range report.Failed {
		presenter.Info(fmt.Sprintf("could not rewrite %s, continuing with remaining files", path))
	}
	if rewriteErr != nil {
		// a backup exists, so offer the rollback path instead of aborting
		return o.failAwaitingRollback(ctx, presenter, outcome, rewriteErr)
	}

	// Executing
	o.setPhase(presenter, types.PhaseExecuting, &outcome)
	stageResults, execErr := o.Pipeline.Run(ctx, "transition", o.Stages)
	outcome.Stages = stageResults
	if execErr != nil {
		return o.failAwaitingRollback(ctx, presenter, outcome, execErr)
	}

	o.setPhase(presenter, types.PhaseSucceeded, &outcome)
	return outcome, nil
}

func (o *TransitionOrchestrator) resolveTarget(ctx context.Context) (types.Codename, types.Catalog, error) {
	primary, err := o.Primary.Fetch(ctx)
	if err != nil {
		return "", types.Catalog{}, err
	}
	secondary, err := o.Secondary.Fetch(ctx)
	if err != nil {
		return "", types.Catalog{}, err
	}
	target, err := o.Resolver.Resolve(primary, secondary)
	if err != nil {
		return "", types.Catalog{}, err
	}
	return target, primary, nil
}

// failAwaitingRollback parks the run until the caller decides whether to
// restore the repository configuration. The decision is never taken
// automatically.
func (o *TransitionOrchestrator) failAwaitingRollback(ctx context.Context, presenter ports.PresenterPort, outcome TransitionOutcome, cause error) (TransitionOutcome, error) {
	o.setPhase(presenter, types.PhaseFailedAwaiting, &outcome)
	presenter.Info(fmt.Sprintf(
		"the transition failed; repository configuration can be restored from backup at %s (already-installed packages are not rolled back)",
		outcome.Backup.Dir,
	))
	restore, confirmErr := presenter.Confirm(ctx, "Restore repository configuration from the backup?")
	if confirmErr != nil || !restore {
		o.setPhase(presenter, types.PhaseFailedTerminal, &outcome)
		presenter.Info(fmt.Sprintf(
			"system left in an inconsistent state: repository configuration points at %q and packages may be partially upgraded; backup remains at %s",
			outcome.Target, outcome.Backup.Dir,
		))
		return outcome, cause
	}

	if err := o.Store.Restore(ctx, outcome.Backup); err != nil {
		// best-effort: report and keep going with the re-sync
		log.Error().Err(err).Str("backup", outcome.Backup.Dir).Msg("configuration restore reported errors")
		presenter.Info("configuration restore reported errors, check the backup directory")
	}
	resyncResults, resyncErr := o.Pipeline.Run(context.WithoutCancel(ctx), "rollback-resync", []types.Stage{o.ResyncStage})
	if len(resyncResults) > 0 {
		outcome.RollbackResync = &resyncResults[0]
	}
	if resyncErr != nil {
		log.Warn().Err(resyncErr).Msg("post-restore index re-synchronization failed")
	}
	o.setPhase(presenter, types.PhaseRolledBack, &outcome)
	return outcome, cause
}

func (o *TransitionOrchestrator) setPhase(presenter ports.PresenterPort, phase types.TransitionPhase, outcome *TransitionOutcome) {
	o.phase = phase
	outcome.Phase = phase
	presenter.PhaseChanged(phase)
}

func previewSummary(target types.Codename, changes []types.PreviewChange) string {
	if len(changes) == 0 {
		return fmt.Sprintf("no repository entries need rewriting for %q", target)
	}
	return fmt.Sprintf("%d repository entr%s would be retargeted to %q",
		len(changes), pluralY(len(changes)), target)
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
