package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/types"
)

// ConsolePresenter renders phases, stage results, and progress as colored
// terminal lines and asks decisions through interactive prompts. With
// AssumeYes set every confirmation is answered affirmatively, for
// unattended runs.
type ConsolePresenter struct {
	AssumeYes bool
}

func NewConsolePresenter(assumeYes bool) ConsolePresenter {
	return ConsolePresenter{AssumeYes: assumeYes}
}

var (
	phaseColor    = color.New(color.FgCyan, color.Bold)
	okColor       = color.New(color.FgGreen)
	warnColor     = color.New(color.FgYellow)
	failColor     = color.New(color.FgRed, color.Bold)
	progressColor = color.New(color.Faint)
)

func (p ConsolePresenter) PhaseChanged(phase types.TransitionPhase) {
	phaseColor.Printf("==> %s\n", phase)
}

func (p ConsolePresenter) StageStarted(name string) {
	fmt.Printf("  - %s...\n", name)
}

func (p ConsolePresenter) StageFinished(result types.StageResult) {
	switch result.Status {
	case types.StageStatusOK:
		okColor.Printf("  - %s: ok (%.1fs)\n", result.Name, result.Duration.Seconds())
	case types.StageStatusWarning:
		warnColor.Printf("  - %s: completed with warnings (%.1fs)\n", result.Name, result.Duration.Seconds())
	case types.StageStatusFailedNonFatal:
		warnColor.Printf("  - %s: failed (non-fatal, exit %d)\n", result.Name, result.ExitCode)
	case types.StageStatusFailed:
		failColor.Printf("  - %s: failed (exit %d), output at %s\n", result.Name, result.ExitCode, result.OutputPath)
	case types.StageStatusSkipped:
		progressColor.Printf("  - %s: skipped\n", result.Name)
	}
}

func (p ConsolePresenter) Progress(event types.ProgressEvent) {
	progressColor.Printf("  [%3d%%] %s\n", event.Percent, event.Label)
}

func (p ConsolePresenter) Advisory(stage string, message string) {
	warnColor.Printf("  ! %s: %s\n", stage, message)
}

func (p ConsolePresenter) Info(message string) {
	fmt.Println(message)
}

func (p ConsolePresenter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if p.AssumeYes {
		log.Info().Str("prompt", prompt).Msg("confirmation assumed yes")
		return true, nil
	}
	value := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Value(&value),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return value, nil
}

var _ ports.PresenterPort = ConsolePresenter{}
