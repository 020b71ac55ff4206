package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tumorvision/tumorvision/internal/clockx"
	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/store/memory"
)

type fakeProvider struct {
	analyzeFn func(ctx context.Context, file analysis.FileMeta) (analysis.AnalysisResult, error)
}

func (f *fakeProvider) Analyze(ctx context.Context, file analysis.FileMeta) (analysis.AnalysisResult, error) {
	return f.analyzeFn(ctx, file)
}

func okProvider(result analysis.AnalysisResult) *fakeProvider {
	return &fakeProvider{
		analyzeFn: func(_ context.Context, file analysis.FileMeta) (analysis.AnalysisResult, error) {
			result.FileName = file.Name
			result.FileSize = file.Size
			return result, nil
		},
	}
}

func newPipeline(t *testing.T, provider Provider) (*Pipeline, *memory.Store, *clockx.Fake) {
	t.Helper()

	st := memory.New()
	clock := clockx.NewFake(time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewPipeline(provider, st, clock, nil, nil, log), st, clock
}

func collectProgress() (ProgressFunc, *[]Progress) {
	var mu sync.Mutex
	var seen []Progress

	return func(p Progress) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}, &seen
}

func TestRunHappyPathProgressSequence(t *testing.T) {
	result := analysis.AnalysisResult{ID: "r1", Result: analysis.ScenarioNoTumor, Confidence: 0.95}
	p, st, clock := newPipeline(t, okProvider(result))

	onProgress, seen := collectProgress()

	got, err := p.Run(context.Background(), "u1", testFile, onProgress)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.ID != "r1" || got.FileName != "scan.png" {
		t.Fatalf("result = %+v", got)
	}

	// validating, 21 upload steps (0..100 by 5), analyzing,
	// displaying_results, then back to idle
	steps := *seen
	if len(steps) != 25 {
		t.Fatalf("got %d progress reports, want 25", len(steps))
	}

	if steps[0].State != StateValidating {
		t.Fatalf("first report = %+v", steps[0])
	}
	for i := 0; i <= 20; i++ {
		s := steps[1+i]
		if s.State != StateUploading || s.Percent != i*progressStep {
			t.Fatalf("upload step %d = %+v", i, s)
		}
	}
	if steps[22].State != StateAnalyzing || steps[22].Percent != 100 {
		t.Fatalf("step 22 = %+v", steps[22])
	}
	if steps[23].State != StateDisplayingResults {
		t.Fatalf("step 23 = %+v", steps[23])
	}
	if steps[24].State != StateIdle || steps[24].Percent != 0 {
		t.Fatalf("final report = %+v", steps[24])
	}

	// 10 steps below 50% at 100ms, 11 at/above at 150ms
	slept := clock.Slept()
	if len(slept) != 21 {
		t.Fatalf("slept %d times, want 21", len(slept))
	}
	wantTotal := 10*stepDelayEarly + 11*stepDelayLate
	if clock.TotalSlept() != wantTotal {
		t.Fatalf("total slept = %v, want %v", clock.TotalSlept(), wantTotal)
	}

	items, err := st.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 1 || items[0].ID != "r1" || items[0].UserID != "u1" {
		t.Fatalf("history = %+v", items)
	}

	if p.InProgress() {
		t.Fatal("pipeline still marked in progress")
	}
}

func TestRunAnonymousSkipsHistory(t *testing.T) {
	p, st, _ := newPipeline(t, okProvider(analysis.AnalysisResult{ID: "r1"}))

	if _, err := p.Run(context.Background(), "", testFile, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	items, _ := st.History(context.Background(), "")
	if len(items) != 0 {
		t.Fatalf("anonymous run wrote history: %+v", items)
	}
}

func TestRunRejectsInvalidFile(t *testing.T) {
	p, st, clock := newPipeline(t, okProvider(analysis.AnalysisResult{ID: "r1"}))

	onProgress, seen := collectProgress()

	bad := analysis.FileMeta{Name: "doc.pdf", Size: 1024, ContentType: "application/pdf"}
	_, err := p.Run(context.Background(), "u1", bad, onProgress)
	if !errors.Is(err, analysis.ErrUnsupportedFileType) {
		t.Fatalf("err = %v, want ErrUnsupportedFileType", err)
	}

	// validation fails before any simulated waiting
	if len(clock.Slept()) != 0 {
		t.Fatalf("slept %v before validation failure", clock.Slept())
	}

	steps := *seen
	if len(steps) != 2 || steps[0].State != StateValidating || steps[1].State != StateIdle {
		t.Fatalf("progress = %+v", steps)
	}

	items, _ := st.History(context.Background(), "u1")
	if len(items) != 0 {
		t.Fatal("rejected file produced a history entry")
	}
}

func TestRunProviderErrorResetsToIdle(t *testing.T) {
	boom := errors.New("model offline")
	p, st, _ := newPipeline(t, &fakeProvider{
		analyzeFn: func(context.Context, analysis.FileMeta) (analysis.AnalysisResult, error) {
			return analysis.AnalysisResult{}, boom
		},
	})

	onProgress, seen := collectProgress()

	_, err := p.Run(context.Background(), "u1", testFile, onProgress)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	steps := *seen
	last := steps[len(steps)-1]
	if last.State != StateIdle {
		t.Fatalf("final report = %+v", last)
	}

	items, _ := st.History(context.Background(), "u1")
	if len(items) != 0 {
		t.Fatal("failed analysis produced a history entry")
	}
	if p.InProgress() {
		t.Fatal("pipeline still marked in progress")
	}
}

func TestRunRejectsConcurrentAttempt(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once

	p, _, _ := newPipeline(t, &fakeProvider{
		analyzeFn: func(context.Context, analysis.FileMeta) (analysis.AnalysisResult, error) {
			startedOnce.Do(func() { close(started) })
			<-release
			return analysis.AnalysisResult{ID: "r1"}, nil
		},
	})

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(context.Background(), "u1", testFile, nil)
		done <- err
	}()

	<-started

	if !p.InProgress() {
		t.Fatal("expected an active run")
	}

	_, err := p.Run(context.Background(), "u1", testFile, nil)
	if !errors.Is(err, analysis.ErrUploadInProgress) {
		t.Fatalf("err = %v, want ErrUploadInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}

	// once released, a fresh run is accepted again
	if _, err := p.Run(context.Background(), "u1", testFile, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestRunCanceledContextStopsUpload(t *testing.T) {
	p, st, _ := newPipeline(t, okProvider(analysis.AnalysisResult{ID: "r1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "u1", testFile, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	items, _ := st.History(context.Background(), "u1")
	if len(items) != 0 {
		t.Fatal("canceled run produced a history entry")
	}
}
