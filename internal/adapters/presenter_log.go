package adapters

import (
	"context"

	"github.com/rs/zerolog/log"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/types"
)

// LogPresenter absorbs presentation into the structured log. The
// orchestrator behaves identically with this stub and the console
// presenter; ConfirmAnswer supplies the decision interactive prompts would
// have asked for.
type LogPresenter struct {
	ConfirmAnswer bool
}

func NewLogPresenter(confirmAnswer bool) LogPresenter {
	return LogPresenter{ConfirmAnswer: confirmAnswer}
}

func (p LogPresenter) PhaseChanged(phase types.TransitionPhase) {
	log.Info().Str("phase", string(phase)).Msg("phase changed")
}

func (p LogPresenter) StageStarted(name string) {
	log.Info().Str("stage", name).Msg("stage started")
}

func (p LogPresenter) StageFinished(result types.StageResult) {
	log.Info().
		Str("stage", result.Name).
		Str("status", string(result.Status)).
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("stage finished")
}

func (p LogPresenter) Progress(event types.ProgressEvent) {
	log.Debug().Int("percent", event.Percent).Str("label", event.Label).Msg("progress")
}

func (p LogPresenter) Advisory(stage string, message string) {
	log.Warn().Str("stage", stage).Msg(message)
}

func (p LogPresenter) Info(message string) {
	log.Info().Msg(message)
}

func (p LogPresenter) Confirm(_ context.Context, prompt string) (bool, error) {
	log.Info().Str("prompt", prompt).Bool("answer", p.ConfirmAnswer).Msg("non-interactive confirmation")
	return p.ConfirmAnswer, nil
}

var _ ports.PresenterPort = LogPresenter{}
