package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier is the only delivery channel: completions are announced in the
// log, the service equivalent of the source system's toast banner.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) AnalysisCompleted(ctx context.Context, in AnalysisCompletedInput) error {
	n.log.InfoContext(ctx, "notification.analysis_completed",
		"user_id", in.UserID,
		"result_id", in.ResultID,
		"file_name", in.FileName,
		"scenario", in.Scenario,
		"confidence", in.Confidence,
	)
	return nil
}
