package adapters

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/types"
)

// stageEnv pins the invocation locale so the output markers the pipeline
// scans for stay stable, and keeps the package manager non-interactive.
var stageEnv = []string{
	"LC_ALL=C",
	"LANG=C",
	"DEBIAN_FRONTEND=noninteractive",
}

// StageExecAdapter runs one stage command to completion. It deliberately
// does not tie the process to the context: an in-progress package-manager
// mutation must not be interrupted. The pipeline honors cancellation at
// stage boundaries instead.
type StageExecAdapter struct{}

func NewStageExecAdapter() StageExecAdapter {
	return StageExecAdapter{}
}

func (a StageExecAdapter) Run(_ context.Context, stage types.Stage, sink io.Writer) (int, error) {
	if len(stage.Command) == 0 {
		return -1, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("stage has no command: " + stage.Name)
	}
	cmd := exec.Command(stage.Command[0], stage.Command[1:]...)
	cmd.Env = append(os.Environ(), stageEnv...)
	cmd.Stdout = sink
	cmd.Stderr = sink
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to run stage command: " + stage.Name).
			WithCause(err)
	}
	return 0, nil
}

var _ ports.StageRunnerPort = StageExecAdapter{}
