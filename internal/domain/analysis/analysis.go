package analysis

import (
	"errors"
	"time"
)

type Scenario string

const (
	ScenarioNoTumor       Scenario = "no_tumor"
	ScenarioTumorDetected Scenario = "tumor_detected"
	ScenarioInconclusive  Scenario = "inconclusive"
)

func (s Scenario) IsValid() bool {
	switch s {
	case ScenarioNoTumor, ScenarioTumorDetected, ScenarioInconclusive:
		return true
	default:
		return false
	}
}

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUploadInProgress    = errors.New("upload already in progress")
)

// AnalysisResult is immutable once created. It is synthesized from a canned
// scenario, never computed from the uploaded bytes.
type AnalysisResult struct {
	ID             string    `json:"id"`
	FileName       string    `json:"fileName"`
	FileSize       int64     `json:"fileSize"`
	UploadDate     time.Time `json:"uploadDate"`
	Result         Scenario  `json:"result"`
	Confidence     float64   `json:"confidence"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
	ProcessingTime int64     `json:"processingTime"` // milliseconds
	ModelVersion   string    `json:"modelVersion"`
}

// HistoryItem ties a result to the user it was produced for. History lists are
// stored newest first under history_<userID>, capped at MaxHistoryItems.
type HistoryItem struct {
	AnalysisResult
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

const MaxHistoryItems = 50

// FileMeta is everything validation and result synthesis look at. The actual
// file contents are never inspected.
type FileMeta struct {
	Name        string
	Size        int64
	ContentType string
}
