package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/http/middlewares"
	"github.com/tumorvision/tumorvision/internal/upload"
)

// Analyzer runs one upload/analysis attempt to completion.
type Analyzer interface {
	Run(ctx context.Context, userID string, file analysis.FileMeta, onProgress upload.ProgressFunc) (analysis.AnalysisResult, error)
}

type AnalysesHandler struct {
	pipeline Analyzer
}

func NewAnalysesHandler(pipeline Analyzer) *AnalysesHandler {
	return &AnalysesHandler{pipeline: pipeline}
}

// ScenarioPresentation is the icon/color/title triple the result view renders.
type ScenarioPresentation struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Title string `json:"title"`
}

var scenarioPresentations = map[analysis.Scenario]ScenarioPresentation{
	analysis.ScenarioNoTumor: {
		Icon:  "check-circle",
		Color: "#10b981",
		Title: "No Tumor Detected",
	},
	analysis.ScenarioTumorDetected: {
		Icon:  "alert-triangle",
		Color: "#ef4444",
		Title: "Tumor Detected",
	},
	analysis.ScenarioInconclusive: {
		Icon:  "help-circle",
		Color: "#f59e0b",
		Title: "Analysis Inconclusive",
	},
}

// worst case: full simulated upload + analysis wait, with margin
const analysisTimeout = 30 * time.Second

func (h *AnalysesHandler) Create(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	header, err := ctx.FormFile("file")
	if err != nil {
		// a body over the router cap fails multipart parsing before the
		// size check ever runs; it is still an oversize file to the caller
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			RespondBadRequest(ctx, "file_too_large", "File size must be less than 10MB.", nil)
			return
		}

		RespondBadRequest(ctx, "missing_file", "Please attach an image file.", nil)
		return
	}

	file := analysis.FileMeta{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), analysisTimeout)
	defer cancel()

	result, err := h.pipeline.Run(cctx, userID, file, nil)
	if err != nil {
		respondPipelineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"result":       result,
		"presentation": scenarioPresentations[result.Result],
	})
}

func respondPipelineError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, analysis.ErrUnsupportedFileType):
		RespondBadRequest(ctx, "unsupported_file_type", "Please upload a valid image file (PNG, JPEG, GIF, BMP, TIFF or WebP).", nil)
	case errors.Is(err, analysis.ErrFileTooLarge):
		RespondBadRequest(ctx, "file_too_large", "File size must be less than 10MB.", nil)
	case errors.Is(err, analysis.ErrUploadInProgress):
		RespondConflict(ctx, "upload_in_progress", "An analysis is already running. Please wait for it to finish.")
	default:
		// Every unexpected failure is terminal for the attempt; the pipeline
		// has already reset itself.
		RespondInternal(ctx, "Analysis failed. Please try again.")
	}
}
