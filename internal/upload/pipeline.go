package upload

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tumorvision/tumorvision/internal/clockx"
	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/notifications"
	"github.com/tumorvision/tumorvision/internal/observability"
	"github.com/tumorvision/tumorvision/internal/store"
)

// Cosmetic upload stepping. Not tied to real bytes; no transfer occurs.
const (
	progressStep    = 5
	stepDelayEarly  = 100 * time.Millisecond // below 50%
	stepDelayLate   = 150 * time.Millisecond // at/above 50%
	stepDelaySwitch = 50
)

// Pipeline runs the full upload/analysis sequence:
// idle -> validating -> uploading -> analyzing -> displaying_results -> idle.
// Validation failure or any later error drops straight back to idle. Exactly
// one run may be active at a time.
type Pipeline struct {
	provider Provider
	store    store.Store
	clock    clockx.Clock
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger

	inProgress atomic.Bool
}

func NewPipeline(provider Provider, st store.Store, clock clockx.Clock, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Pipeline {
	return &Pipeline{
		provider: provider,
		store:    st,
		clock:    clock,
		notifier: notifier,
		prom:     prom,
		log:      log,
	}
}

// Run executes one upload/analysis attempt. userID may be empty: the result is
// still produced but no history record is written. onProgress may be nil.
func (p *Pipeline) Run(ctx context.Context, userID string, file analysis.FileMeta, onProgress ProgressFunc) (analysis.AnalysisResult, error) {
	if !p.inProgress.CompareAndSwap(false, true) {
		return analysis.AnalysisResult{}, analysis.ErrUploadInProgress
	}
	defer p.inProgress.Store(false)

	if p.prom != nil {
		p.prom.UploadsInFlight.Inc()
		defer p.prom.UploadsInFlight.Dec()
	}

	report := func(state State, percent int) {
		if onProgress != nil {
			onProgress(Progress{State: state, Percent: percent})
		}
	}

	start := p.clock.Now()

	report(StateValidating, 0)

	if err := ValidateFile(file); err != nil {
		report(StateIdle, 0)
		return analysis.AnalysisResult{}, err
	}

	if err := p.simulateUpload(ctx, report); err != nil {
		report(StateIdle, 0)
		return analysis.AnalysisResult{}, err
	}

	report(StateAnalyzing, 100)

	result, err := p.provider.Analyze(ctx, file)
	if err != nil {
		p.log.ErrorContext(ctx, "analysis failed", "file_name", file.Name, "err", err)
		report(StateIdle, 0)
		return analysis.AnalysisResult{}, err
	}

	report(StateDisplayingResults, 100)

	if userID != "" {
		item := analysis.HistoryItem{
			AnalysisResult: result,
			UserID:         userID,
			Timestamp:      p.clock.Now(),
		}

		if err := p.store.AppendHistory(ctx, userID, item); err != nil {
			p.log.ErrorContext(ctx, "history append failed", "user_id", userID, "err", err)
			report(StateIdle, 0)
			return analysis.AnalysisResult{}, err
		}
	}

	if p.notifier != nil {
		_ = p.notifier.AnalysisCompleted(ctx, notifications.AnalysisCompletedInput{
			UserID:     userID,
			ResultID:   result.ID,
			FileName:   result.FileName,
			Scenario:   string(result.Result),
			Confidence: result.Confidence,
		})
	}

	if p.prom != nil {
		p.prom.AnalysisResults.WithLabelValues(string(result.Result)).Inc()
		p.prom.AnalysisDuration.WithLabelValues(string(result.Result)).Observe(p.clock.Now().Sub(start).Seconds())
	}

	report(StateIdle, 0)
	return result, nil
}

// InProgress reports whether a run is currently active.
func (p *Pipeline) InProgress() bool {
	return p.inProgress.Load()
}

func (p *Pipeline) simulateUpload(ctx context.Context, report func(State, int)) error {
	for percent := 0; percent <= 100; percent += progressStep {
		delay := stepDelayEarly
		if percent >= stepDelaySwitch {
			delay = stepDelayLate
		}

		if err := p.clock.Sleep(ctx, delay); err != nil {
			return err
		}

		report(StateUploading, percent)
	}
	return nil
}
