package upload

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tumorvision/tumorvision/internal/clockx"
	"github.com/tumorvision/tumorvision/internal/domain/analysis"
)

// Provider produces an analysis result for an uploaded file. The production
// implementation is simulated; tests script their own.
type Provider interface {
	Analyze(ctx context.Context, file analysis.FileMeta) (analysis.AnalysisResult, error)
}

const ModelVersion = "TumorVision AI v2.1.0"

// Analysis wait bounds: one opaque uniform wait in [2000, 4000) ms.
const (
	minAnalysisDelay = 2000 * time.Millisecond
	analysisJitter   = 2000 // extra milliseconds, exclusive upper bound
)

type scenarioSpec struct {
	scenario       analysis.Scenario
	weight         float64
	confidenceLo   float64
	confidenceHi   float64
	description    string
	recommendation string
}

// Cumulative-weight draw order matters: one uniform sample walks this list.
var scenarioSpecs = []scenarioSpec{
	{
		scenario:       analysis.ScenarioNoTumor,
		weight:         0.60,
		confidenceLo:   0.92,
		confidenceHi:   0.99,
		description:    "No signs of tumor detected in the uploaded scan. Brain tissue appears within normal parameters.",
		recommendation: "Continue with routine checkups as advised by your healthcare provider.",
	},
	{
		scenario:       analysis.ScenarioTumorDetected,
		weight:         0.25,
		confidenceLo:   0.82,
		confidenceHi:   0.97,
		description:    "Abnormal mass detected in the uploaded scan. The highlighted region shows characteristics consistent with a tumor.",
		recommendation: "Consult a specialist immediately for further evaluation and additional imaging.",
	},
	{
		scenario:       analysis.ScenarioInconclusive,
		weight:         0.15,
		confidenceLo:   0.55,
		confidenceHi:   0.75,
		description:    "The analysis could not produce a definitive result. Image quality or positioning may have affected the assessment.",
		recommendation: "Consider re-uploading a clearer image or consult your healthcare provider for a professional review.",
	},
}

// SimulatedProvider fabricates results by weighted-random draw. The outcome is
// entirely independent of the uploaded bytes.
type SimulatedProvider struct {
	clock clockx.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedProvider(clock clockx.Clock, rng *rand.Rand) *SimulatedProvider {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SimulatedProvider{clock: clock, rng: rng}
}

func (p *SimulatedProvider) Analyze(ctx context.Context, file analysis.FileMeta) (analysis.AnalysisResult, error) {
	delay, spec, confidence := p.draw()

	if err := p.clock.Sleep(ctx, delay); err != nil {
		return analysis.AnalysisResult{}, err
	}

	return analysis.AnalysisResult{
		ID:             uuid.NewString(),
		FileName:       file.Name,
		FileSize:       file.Size,
		UploadDate:     p.clock.Now(),
		Result:         spec.scenario,
		Confidence:     confidence,
		Description:    spec.description,
		Recommendation: spec.recommendation,
		ProcessingTime: delay.Milliseconds(),
		ModelVersion:   ModelVersion,
	}, nil
}

func (p *SimulatedProvider) draw() (time.Duration, scenarioSpec, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delay := minAnalysisDelay + time.Duration(p.rng.Intn(analysisJitter))*time.Millisecond

	spec := scenarioSpecs[len(scenarioSpecs)-1]
	u := p.rng.Float64()
	cumulative := 0.0

	for _, s := range scenarioSpecs {
		cumulative += s.weight
		if u < cumulative {
			spec = s
			break
		}
	}

	confidence := spec.confidenceLo + p.rng.Float64()*(spec.confidenceHi-spec.confidenceLo)

	return delay, spec, confidence
}
