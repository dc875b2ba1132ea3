package ports

import (
	"context"

	"avular-upgrade/internal/types"
)

// PresenterPort receives orchestrator state changes, stage results, and
// progress samples, and asks the operator for decisions. The core must
// behave identically whether the presenter renders a console UI or only
// logs.
type PresenterPort interface {
	PhaseChanged(phase types.TransitionPhase)
	StageStarted(name string)
	StageFinished(result types.StageResult)
	Progress(event types.ProgressEvent)
	Advisory(stage string, message string)
	Info(message string)

	// Confirm asks a yes/no question. A false answer or an error both
	// count as a declined confirmation.
	Confirm(ctx context.Context, prompt string) (bool, error)
}
