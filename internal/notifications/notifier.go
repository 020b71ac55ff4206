package notifications

import "context"

type AnalysisCompletedInput struct {
	UserID     string
	ResultID   string
	FileName   string
	Scenario   string
	Confidence float64
}

type Notifier interface {
	AnalysisCompleted(ctx context.Context, input AnalysisCompletedInput) error
}
