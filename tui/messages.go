package tui

import (
	"time"

	"github.com/mycguo/autogen-multi-agent-workflow/topics"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// Messages for the tea program (polling-based)

// SubmittedMsg is sent when a run submission returns.
type SubmittedMsg struct {
	Status *types.RunStatus
	Err    error
}

// RunUpdateMsg is sent when a poll of the watched run returns.
type RunUpdateMsg struct {
	Status *types.RunStatus
	Err    error
}

// SuggestionsMsg is sent when the suggestions fetch returns.
type SuggestionsMsg struct {
	Suggestions []topics.Suggestion
	Err         error
}

// TickMsg is sent periodically to trigger polling.
type TickMsg struct {
	Time time.Time
}
