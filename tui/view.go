package tui

import (
	"fmt"
	"strings"

	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

const logTail = 8

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎬 Shorts Studio"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseInput:
		b.WriteString(m.viewInput())
	case phaseSubmitting:
		b.WriteString(m.Spin.View())
		b.WriteString(StatusStyle.Render(" Submitting run..."))
		b.WriteString("\n")
	case phaseWatching:
		b.WriteString(m.viewRun())
	case phaseDone:
		b.WriteString(m.viewRun())
		b.WriteString("\n")
		b.WriteString(m.viewResult())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("❌ %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(InfoStyle.Render("What should the next short cover?"))
	b.WriteString("\n\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n")

	if m.showPicker {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("📰 Suggestions from the feed:"))
		b.WriteString("\n")
		if len(m.suggestions) == 0 {
			b.WriteString(m.Spin.View())
			b.WriteString(InfoStyle.Render(" loading..."))
			b.WriteString("\n")
		}
		for i, s := range m.suggestions {
			b.WriteString(InfoStyle.Render(fmt.Sprintf("   %d. %s", i+1, s.Title)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) viewRun() string {
	if m.run == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.stateText())
	b.WriteString("\n\n")

	if m.run.Voiceover.Total > 0 || m.run.Image.Total > 0 {
		progress := fmt.Sprintf("🎙 voiceovers %d/%d  •  🖼 images %d/%d",
			m.run.Voiceover.Completed, m.run.Voiceover.Total,
			m.run.Image.Completed, m.run.Image.Total)
		b.WriteString(InfoStyle.Render(progress))
		b.WriteString("\n\n")
	}

	if len(m.run.Logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		logs := m.run.Logs
		if len(logs) > logTail {
			logs = logs[len(logs)-logTail:]
		}
		for _, entry := range logs {
			b.WriteString(InfoStyle.Render("   " + entry.Message))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) viewResult() string {
	if m.run == nil {
		return ""
	}

	var b strings.Builder

	if m.run.State == types.StateComplete && m.run.Result != nil {
		b.WriteString(HighlightStyle.Render("✅ COMPLETE"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Topic: %s\n", m.run.Topic))
		b.WriteString(fmt.Sprintf("Video: %s\n", m.run.Result.VideoPath))
	} else {
		errMsg := m.run.Error
		if errMsg == "" {
			errMsg = "unknown error"
		}
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("❌ Run failed: %s", errMsg)))
		b.WriteString("\n")
	}

	return BoxStyle.Render(b.String())
}

func (m Model) stateText() string {
	switch m.run.State {
	case types.StatePending:
		return m.Spin.View() + StatusStyle.Render(" Queued...")
	case types.StateScripting:
		return StatusStyle.Render("✍️ Writing the script...")
	case types.StateGenerating:
		return StatusStyle.Render("🎨 Generating voiceovers and images...")
	case types.StateAssembling:
		return StatusStyle.Render("🎬 Assembling the video...")
	case types.StateComplete:
		return HighlightStyle.Render("✅ Done")
	case types.StateFailed:
		return ErrorStyle.Render("❌ Failed")
	default:
		return ""
	}
}

func (m Model) footer() string {
	switch m.phase {
	case phaseInput:
		if m.showPicker {
			return InfoStyle.Render(TextFooterPicker)
		}
		return InfoStyle.Render(TextFooterInput)
	case phaseDone:
		return InfoStyle.Render(TextFooterDone)
	default:
		return InfoStyle.Render(TextFooterRunning)
	}
}
