package upload

type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateUploading         State = "uploading"
	StateAnalyzing         State = "analyzing"
	StateDisplayingResults State = "displaying_results"
)

func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateValidating, StateUploading, StateAnalyzing, StateDisplayingResults:
		return true
	default:
		return false
	}
}

// Progress is pushed to the caller at every transition and upload step.
// Percent is only meaningful while uploading.
type Progress struct {
	State   State `json:"state"`
	Percent int   `json:"percent"`
}

type ProgressFunc func(Progress)
