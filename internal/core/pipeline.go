package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/types"
)

// UpgradePipeline runs a named ordered sequence of package-manager stages.
// Stages execute strictly sequentially; package-manager state mutation is
// not safely concurrent. A cancellation request is honored only at the next
// stage boundary, never by killing a running stage.
type UpgradePipeline struct {
	Runner     ports.StageRunnerPort
	Presenter  ports.PresenterPort
	Markers    MarkerSet
	CaptureDir string
	Clock      func() time.Time
}

func NewUpgradePipeline(runner ports.StageRunnerPort, presenter ports.PresenterPort, captureDir string) UpgradePipeline {
	return UpgradePipeline{
		Runner:     runner,
		Presenter:  presenter,
		Markers:    AptMarkersV1,
		CaptureDir: captureDir,
		Clock:      time.Now,
	}
}

// Run executes the stages in order and returns one result per stage. The
// returned error is non-nil when a fatal stage failed or the run was
// canceled at a boundary; the results still cover every stage, with
// unexecuted ones reported skipped.
func (p UpgradePipeline) Run(ctx context.Context, runName string, stages []types.Stage) ([]types.StageResult, error) {
	if p.Runner == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pipeline requires a stage runner")
	}
	presenter := p.Presenter
	if presenter == nil {
		presenter = nopPresenter{}
	}
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}

	results := make([]types.StageResult, len(stages))
	for i, stage := range stages {
		results[i] = types.StageResult{Name: stage.Name, Status: types.StageStatusPending}
	}

	capturePath, capture, err := p.openCapture(runName, clock())
	if err != nil {
		return results, err
	}
	defer capture.Close()

	total := 0
	for _, stage := range stages {
		total += stageWeight(stage)
	}
	done := 0

	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			skipFrom(results, i)
			return results, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("run canceled at stage boundary").
				WithCause(err)
		}

		presenter.Progress(types.ProgressEvent{Percent: percent(done, total), Label: stage.Name})
		presenter.StageStarted(stage.Name)
		fmt.Fprintf(capture, "=== stage %s ===\n", stage.Name)

		var buf bytes.Buffer
		started := clock()
		exitCode, runErr := p.Runner.Run(ctx, stage, io.MultiWriter(capture, &buf))
		result := types.StageResult{
			Name:       stage.Name,
			ExitCode:   exitCode,
			OutputPath: capturePath,
			Duration:   clock().Sub(started),
		}

		result.Advisories = p.Markers.Scan(buf.String())
		for _, advisory := range result.Advisories {
			presenter.Advisory(stage.Name, advisory)
		}

		failed := runErr != nil || exitCode != 0
		switch {
		case failed && stage.ContinueOnFailure:
			result.Status = types.StageStatusFailedNonFatal
		case failed:
			result.Status = types.StageStatusFailed
		case len(result.Advisories) > 0:
			result.Status = types.StageStatusWarning
		default:
			result.Status = types.StageStatusOK
		}
		results[i] = result
		presenter.StageFinished(result)

		done += stageWeight(stage)
		presenter.Progress(types.ProgressEvent{Percent: percent(done, total), Label: stage.Name})

		if result.Status == types.StageStatusFailed {
			skipFrom(results, i+1)
			log.Error().Str("stage", stage.Name).Int("exit_code", exitCode).Msg("fatal stage failure, halting run")
			return results, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("stage failed: " + stage.Name).
				WithCause(runErr)
		}
		if result.Status == types.StageStatusFailedNonFatal {
			log.Warn().Str("stage", stage.Name).Int("exit_code", exitCode).Msg("non-fatal stage failure, continuing")
		}
	}

	presenter.Progress(types.ProgressEvent{Percent: 100, Label: "done"})
	return results, nil
}

func (p UpgradePipeline) openCapture(runName string, now time.Time) (string, *os.File, error) {
	dir := p.CaptureDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create capture directory").
			WithCause(err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.log", runName, now.UTC().Format("20060102-150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return "", nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open capture file").
			WithCause(err)
	}
	return path, file, nil
}

func stageWeight(stage types.Stage) int {
	if stage.Weight <= 0 {
		return 1
	}
	return stage.Weight
}

func percent(done int, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}

func skipFrom(results []types.StageResult, start int) {
	for i := start; i < len(results); i++ {
		if results[i].Status == types.StageStatusPending {
			results[i].Status = types.StageStatusSkipped
		}
	}
}

// nopPresenter absorbs presentation when no collaborator is wired.
type nopPresenter struct{}

func (nopPresenter) PhaseChanged(types.TransitionPhase) {}
func (nopPresenter) StageStarted(string)                {}
func (nopPresenter) StageFinished(types.StageResult)    {}
func (nopPresenter) Progress(types.ProgressEvent)       {}
func (nopPresenter) Advisory(string, string)            {}
func (nopPresenter) Info(string)                        {}
func (nopPresenter) Confirm(context.Context, string) (bool, error) { return false, nil }

var _ ports.PresenterPort = nopPresenter{}
