package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mycguo/autogen-multi-agent-workflow/topics"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// phase is the local UI state machine.
type phase int

const (
	phaseInput phase = iota
	phaseSubmitting
	phaseWatching
	phaseDone
)

// Model is a thin client over the daemon API: it submits runs and watches
// their progress by polling.
type Model struct {
	Client *APIClient

	Input   textinput.Model
	Spin    spinner.Model
	Publish bool

	phase       phase
	run         *types.RunStatus
	suggestions []topics.Suggestion
	showPicker  bool
	err         error
}

// NewModel creates the TUI model pointed at the daemon.
func NewModel(baseURL string, publish bool) Model {
	input := textinput.New()
	input.Placeholder = "topic for the next short..."
	input.CharLimit = 120
	input.Width = 48
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = StatusStyle

	return Model{
		Client:  NewAPIClient(baseURL),
		Input:   input,
		Spin:    spin,
		Publish: publish,
		phase:   phaseInput,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.Spin.Tick)
}

// watching reports whether the model is polling a live run.
func (m Model) watching() bool {
	return m.phase == phaseWatching && m.run != nil
}

// terminal reports whether a run state is final.
func terminal(s types.RunState) bool {
	return s == types.StateComplete || s == types.StateFailed
}
