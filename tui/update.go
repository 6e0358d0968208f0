package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case SubmittedMsg:
		return m.handleSubmitted(msg)
	case RunUpdateMsg:
		return m.handleRunUpdate(msg)
	case SuggestionsMsg:
		return m.handleSuggestions(msg)
	case TickMsg:
		if m.watching() {
			return m, tea.Batch(pollRun(m.Client, m.run.ID), tickCmd())
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spin, cmd = m.Spin.Update(msg)
		return m, cmd
	}

	return m.updateInput(msg)
}

// handleKeyPress processes keyboard input.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.showPicker {
			m.showPicker = false
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		if m.phase == phaseInput && !m.showPicker {
			topic := strings.TrimSpace(m.Input.Value())
			if topic == "" {
				return m, nil
			}
			m.phase = phaseSubmitting
			m.err = nil
			return m, submitRun(m.Client, topic, "", m.Publish)
		}
	case "tab":
		if m.phase == phaseInput {
			m.showPicker = true
			return m, fetchSuggestions(m.Client)
		}
	case "q":
		// 'q' quits unless the user is typing a topic.
		if m.phase != phaseInput {
			return m, tea.Quit
		}
	case "n":
		if m.phase == phaseDone {
			return m.reset(), nil
		}
	}

	if m.showPicker {
		if idx, err := strconv.Atoi(msg.String()); err == nil {
			return m.pickSuggestion(idx)
		}
		return m, nil
	}

	return m.updateInput(msg)
}

// pickSuggestion submits the 1-based suggestion the user selected.
func (m Model) pickSuggestion(idx int) (tea.Model, tea.Cmd) {
	if idx < 1 || idx > len(m.suggestions) {
		return m, nil
	}
	s := m.suggestions[idx-1]
	m.showPicker = false
	m.phase = phaseSubmitting
	m.err = nil
	return m, submitRun(m.Client, s.Title, s.URL, m.Publish)
}

// handleSubmitted processes the submission response.
func (m Model) handleSubmitted(msg SubmittedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// Conflict or validation error: stay on the input screen.
		m.phase = phaseInput
		m.err = msg.Err
		return m, nil
	}
	m.run = msg.Status
	m.phase = phaseWatching
	m.err = nil
	return m, tea.Batch(pollRun(m.Client, m.run.ID), tickCmd())
}

// handleRunUpdate processes a run status poll.
func (m Model) handleRunUpdate(msg RunUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = msg.Err
		return m, nil
	}
	m.run = msg.Status
	m.err = nil
	if terminal(m.run.State) {
		m.phase = phaseDone
	}
	return m, nil
}

// handleSuggestions processes the suggestions fetch.
func (m Model) handleSuggestions(msg SuggestionsMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.showPicker = false
		m.err = msg.Err
		return m, nil
	}
	m.suggestions = msg.Suggestions
	return m, nil
}

// updateInput forwards messages to the topic input while it has focus.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase != phaseInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// reset returns to a fresh input screen after a finished run.
func (m Model) reset() Model {
	m.phase = phaseInput
	m.run = nil
	m.err = nil
	m.showPicker = false
	m.Input.SetValue("")
	m.Input.Focus()
	return m
}
