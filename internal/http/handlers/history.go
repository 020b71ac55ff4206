package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/http/middlewares"
)

// HistoryReader lists a user's persisted analyses, newest first. Caching, if
// any, lives behind this interface so appends can invalidate it.
type HistoryReader interface {
	History(ctx context.Context, userID string) ([]analysis.HistoryItem, error)
}

type HistoryHandler struct {
	reader HistoryReader
}

func NewHistoryHandler(reader HistoryReader) *HistoryHandler {
	return &HistoryHandler{reader: reader}
}

// List returns the authenticated user's stored history.
func (h *HistoryHandler) List(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "auth_required", "Please sign in to view your history")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.reader.History(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not load history")
		return
	}

	if items == nil {
		items = []analysis.HistoryItem{}
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Sample returns the fixed three-item demo list. It is intentionally distinct
// from the per-user stored history; the source system always rendered this
// sample in the history section regardless of who was signed in.
func (h *HistoryHandler) Sample(ctx *gin.Context) {
	items := sampleHistory()
	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func sampleHistory() []analysis.HistoryItem {
	return []analysis.HistoryItem{
		{
			AnalysisResult: analysis.AnalysisResult{
				ID:             "sample-1",
				FileName:       "brain_scan_001.jpg",
				FileSize:       2457600,
				UploadDate:     time.Date(2024, time.March, 12, 14, 30, 0, 0, time.UTC),
				Result:         analysis.ScenarioNoTumor,
				Confidence:     0.96,
				Description:    "No signs of tumor detected in the uploaded scan. Brain tissue appears within normal parameters.",
				Recommendation: "Continue with routine checkups as advised by your healthcare provider.",
				ProcessingTime: 2840,
				ModelVersion:   "TumorVision AI v2.1.0",
			},
			UserID:    "sample",
			Timestamp: time.Date(2024, time.March, 12, 14, 30, 0, 0, time.UTC),
		},
		{
			AnalysisResult: analysis.AnalysisResult{
				ID:             "sample-2",
				FileName:       "mri_frontal.png",
				FileSize:       4812800,
				UploadDate:     time.Date(2024, time.February, 28, 9, 15, 0, 0, time.UTC),
				Result:         analysis.ScenarioTumorDetected,
				Confidence:     0.89,
				Description:    "Abnormal mass detected in the uploaded scan. The highlighted region shows characteristics consistent with a tumor.",
				Recommendation: "Consult a specialist immediately for further evaluation and additional imaging.",
				ProcessingTime: 3210,
				ModelVersion:   "TumorVision AI v2.1.0",
			},
			UserID:    "sample",
			Timestamp: time.Date(2024, time.February, 28, 9, 15, 0, 0, time.UTC),
		},
		{
			AnalysisResult: analysis.AnalysisResult{
				ID:             "sample-3",
				FileName:       "ct_axial_12.png",
				FileSize:       1843200,
				UploadDate:     time.Date(2024, time.February, 10, 17, 45, 0, 0, time.UTC),
				Result:         analysis.ScenarioInconclusive,
				Confidence:     0.64,
				Description:    "The analysis could not produce a definitive result. Image quality or positioning may have affected the assessment.",
				Recommendation: "Consider re-uploading a clearer image or consult your healthcare provider for a professional review.",
				ProcessingTime: 2530,
				ModelVersion:   "TumorVision AI v2.1.0",
			},
			UserID:    "sample",
			Timestamp: time.Date(2024, time.February, 10, 17, 45, 0, 0, time.UTC),
		},
	}
}
