package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-upgrade/internal/core"
)

// Transition runs the major release transition end to end: preflight,
// resolve, confirm, back up, rewrite, execute, and on failure offer a
// configuration rollback.
func (s Service) Transition(ctx context.Context, request TransitionRequest) (TransitionResult, error) {
	if request.DryRun {
		return s.transitionDryRun(ctx)
	}
	if err := s.runPreflight(ctx); err != nil {
		return TransitionResult{}, err
	}
	if err := s.Lock.Acquire(); err != nil {
		return TransitionResult{}, err
	}
	defer func() {
		if err := s.Lock.Release(); err != nil {
			log.Warn().Err(err).Msg("transition lock not released")
		}
	}()

	pipeline := core.NewUpgradePipeline(s.Runner, s.Presenter, s.Config.CaptureDir)
	orchestrator := core.NewTransitionOrchestrator(
		s.Primary,
		s.Secondary,
		s.Store,
		pipeline,
		s.Presenter,
		transitionStages(),
		resyncStage(),
	)
	outcome, err := orchestrator.Run(ctx)
	return TransitionResult{Target: outcome.Target, Outcome: &outcome}, err
}

// transitionDryRun resolves the target and previews the rewrite with no
// side effects: no lock, no backup, no writes.
func (s Service) transitionDryRun(ctx context.Context) (TransitionResult, error) {
	primary, err := s.Primary.Fetch(ctx)
	if err != nil {
		return TransitionResult{}, err
	}
	secondary, err := s.Secondary.Fetch(ctx)
	if err != nil {
		return TransitionResult{}, err
	}
	target, err := core.NewReleaseResolver().Resolve(primary, secondary)
	if err != nil {
		return TransitionResult{}, err
	}
	preview, err := core.NewSourceRewriter(s.Store).Preview(target, primary)
	if err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{Target: target, Preview: preview}, nil
}

func (s Service) runPreflight(ctx context.Context) error {
	if err := s.Preflight.CheckPermissions(); err != nil {
		return err
	}
	if err := s.Preflight.CheckDependencies(); err != nil {
		return err
	}
	if err := s.Preflight.CheckConnectivity(ctx); err != nil {
		return err
	}

	health, err := s.Preflight.CheckPackageManagerHealth(ctx)
	if err != nil {
		return err
	}
	if health.BrokenDeps {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("precondition failed: package manager reports broken dependencies, run apt-get -f install first")
	}
	if len(health.HeldPackages) > 0 {
		s.Presenter.Advisory("preflight", "packages on hold will not be upgraded: "+strings.Join(health.HeldPackages, ", "))
	}

	estimate, err := s.Preflight.EstimateRequiredSpace(ctx)
	if err != nil {
		return err
	}
	if estimate.RequiredBytes > estimate.AvailableBytes {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf(
				"precondition failed: insufficient disk space, need about %d MB but only %d MB free",
				estimate.RequiredBytes/1_000_000, estimate.AvailableBytes/1_000_000,
			))
	}
	if estimate.Heuristic {
		s.Presenter.Advisory("preflight", "disk space requirement could not be computed, using a fixed assumption")
	}

	power, err := s.Preflight.CheckPowerState()
	if err != nil {
		return err
	}
	if power.OnBattery && power.Percentage < s.Config.MinBatteryPercent {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf(
				"precondition failed: on battery at %d%%, connect a charger before a release transition",
				power.Percentage,
			))
	}
	if power.OnBattery {
		s.Presenter.Advisory("preflight", fmt.Sprintf("running on battery (%d%%), a charger is strongly recommended", power.Percentage))
	}

	thirdParty, err := s.Preflight.DetectThirdPartyRepos()
	if err != nil {
		return err
	}
	for _, path := range thirdParty {
		s.Presenter.Advisory("preflight", "third-party repository configured in "+path+", it may not support the new release")
	}
	return nil
}
