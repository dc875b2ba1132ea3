package app

import (
	"context"

	"avular-upgrade/internal/core"
)

// Refresh runs the in-place package refresh: no release change, no
// rewrite, no backup.
func (s Service) Refresh(ctx context.Context, _ RefreshRequest) (RefreshResult, error) {
	if err := s.Preflight.CheckPermissions(); err != nil {
		return RefreshResult{}, err
	}
	if err := s.Preflight.CheckDependencies(); err != nil {
		return RefreshResult{}, err
	}
	if err := s.Preflight.CheckConnectivity(ctx); err != nil {
		return RefreshResult{}, err
	}
	health, err := s.Preflight.CheckPackageManagerHealth(ctx)
	if err != nil {
		return RefreshResult{}, err
	}
	if health.BrokenDeps {
		s.Presenter.Advisory("preflight", "package manager reports broken dependencies, the upgrade may repair or refuse them")
	}
	for _, name := range health.HeldPackages {
		s.Presenter.Advisory("preflight", "package on hold: "+name)
	}

	pipeline := core.NewUpgradePipeline(s.Runner, s.Presenter, s.Config.CaptureDir)
	results, err := pipeline.Run(ctx, "refresh", refreshStages())
	return RefreshResult{Stages: results}, err
}
