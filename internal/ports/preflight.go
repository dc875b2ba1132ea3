package ports

import (
	"context"

	"avular-upgrade/internal/types"
)

// PreflightPort runs the environment checks that gate an upgrade. The core
// consumes the structured results only; how a check is performed is the
// adapter's business.
type PreflightPort interface {
	CheckPermissions() error
	CheckDependencies() error
	CheckConnectivity(ctx context.Context) error
	EstimateRequiredSpace(ctx context.Context) (types.SpaceEstimate, error)
	CheckPackageManagerHealth(ctx context.Context) (types.PackageManagerHealth, error)
	CheckPowerState() (types.PowerState, error)
	DetectThirdPartyRepos() ([]string, error)
}
