package events

import "time"

// RunRequest asks the daemon to produce one video. It arrives on the
// request topic from schedulers or other services.
type RunRequest struct {
	RequestID   string    `json:"request_id,omitempty"`
	Topic       string    `json:"topic"`
	SourceURL   string    `json:"source_url,omitempty"`
	Publish     bool      `json:"publish,omitempty"`
	RequestedAt time.Time `json:"requested_at,omitempty"`
}

// RunResult announces a finished run on the result topic.
type RunResult struct {
	RunID      string    `json:"run_id"`
	Topic      string    `json:"topic"`
	Success    bool      `json:"success"`
	VideoPath  string    `json:"video_path,omitempty"`
	VideoURL   string    `json:"video_url,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}
