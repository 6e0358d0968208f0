package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const suggestionCount = 8

// submitRun creates a command that posts a new run.
func submitRun(client *APIClient, topic, sourceURL string, publish bool) tea.Cmd {
	return func() tea.Msg {
		status, err := client.Submit(topic, sourceURL, publish)
		return SubmittedMsg{Status: status, Err: err}
	}
}

// pollRun creates a command that fetches the watched run's status.
func pollRun(client *APIClient, id string) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetRun(id)
		return RunUpdateMsg{Status: status, Err: err}
	}
}

// fetchSuggestions creates a command that loads feed suggestions.
func fetchSuggestions(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		suggestions, err := client.Suggestions(suggestionCount)
		return SuggestionsMsg{Suggestions: suggestions, Err: err}
	}
}

// tickCmd creates a command that ticks every 500ms for polling.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
