package types

import "time"

// PipelineRun aggregates everything one topic submission produced. Success
// stays true even when individual assets failed; it flips only when the run
// itself could not finish (in practice: video assembly).
type PipelineRun struct {
	Topic      string           `json:"topic"`
	Script     *Script          `json:"script"`
	Voiceovers []GeneratedAsset `json:"voiceovers"`
	Images     []GeneratedAsset `json:"images"`
	VideoPath  string           `json:"video_path,omitempty"`
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// RunState represents the lifecycle of a run inside the service.
type RunState string

const (
	StatePending    RunState = "pending"
	StateScripting  RunState = "scripting"
	StateGenerating RunState = "generating"
	StateAssembling RunState = "assembling"
	StateComplete   RunState = "complete"
	StateFailed     RunState = "failed"
)

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// StageProgress is a point-in-time completion snapshot for one stage.
type StageProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// RunStatus is the JSON shape served for a single run by the HTTP API.
type RunStatus struct {
	ID        string        `json:"id"`
	Topic     string        `json:"topic"`
	State     RunState      `json:"state"`
	Voiceover StageProgress `json:"voiceover"`
	Image     StageProgress `json:"image"`
	Logs      []LogEntry    `json:"logs"`
	Result    *PipelineRun  `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
}

// RunSummary is the compact listing shape for GET /api/runs.
type RunSummary struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	State     RunState  `json:"state"`
	Success   bool      `json:"success"`
	VideoPath string    `json:"video_path,omitempty"`
	StartedAt time.Time `json:"started_at"`
}
