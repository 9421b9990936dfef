package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/nucleus/internal/model"
)

// View renders the dashboard
func (m *DashboardModel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return "Initializing dashboard..."
	}
	if m.engine() == nil {
		return renderLoadingPlaceholder("", width, height)
	}
	sw, sh := m.stageSize()
	if sw <= 0 || sh <= 0 || !m.started {
		return "Terminal too small."
	}

	th := m.opts.Theme.Read()

	var stage string
	if m.showHelp {
		stage = m.renderHelp(width, sh, th)
	} else {
		stage = m.renderStage(th)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(width, th),
		stage,
		m.tk.View(width, th),
		m.renderStatusLine(width),
	)
}

// renderStage frames the surface with the prev/next controls on its
// middle row.
func (m *DashboardModel) renderStage(th model.Theme) string {
	lines := strings.Split(m.dst.String(), "\n")
	blank := strings.Repeat(" ", stageMargin)

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Border.Hex())).Bold(true)
	if m.engine().Hovered() {
		style = style.Foreground(lipgloss.Color(th.Accent.Hex()))
	}
	prev := style.Render(" ◀ ")
	next := style.Render(" ▶ ")

	mid := len(lines) / 2
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i == mid {
			b.WriteString(prev + line + next)
		} else {
			b.WriteString(blank + line + blank)
		}
	}
	return b.String()
}

// renderHelp renders the key reference over the stage area.
func (m *DashboardModel) renderHelp(width, height int, th model.Theme) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color(th.Accent.Hex())).
		Bold(true).
		Render("Keys")

	body := lipgloss.JoinVertical(lipgloss.Left, title, "", m.help.View(m.keys))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(th.Border.Hex())).
		Padding(0, 2).
		Render(body)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
