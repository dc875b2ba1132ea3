package ports

import (
	"context"
	"io"

	"avular-upgrade/internal/types"
)

// StageRunnerPort executes one stage command to completion. Combined
// stdout and stderr go to sink. The command is never killed mid-flight;
// cancellation is a pipeline concern honored only at stage boundaries.
type StageRunnerPort interface {
	Run(ctx context.Context, stage types.Stage, sink io.Writer) (exitCode int, err error)
}
