package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tinytelemetry/nucleus/internal/model"
)

// Chrome colours. Slide content uses the theme tokens instead.
var (
	ColorAccent = lipgloss.Color(model.DefaultAccent)
	ColorMuted  = lipgloss.Color("#64748b")
	ColorText   = lipgloss.Color("#e2e8f0")
	ColorBar    = lipgloss.Color("#0f172a")
)

// renderBranding renders "NUCLEUS" with a blue to violet gradient.
func renderBranding() string {
	from, _ := colorful.Hex("#38bdf8")
	to, _ := colorful.Hex("#a78bfa")
	word := []rune("NUCLEUS")

	var b strings.Builder
	for i, r := range word {
		c := from.BlendLuv(to, float64(i)/float64(len(word)-1)).Clamped()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Bold(true).Render(string(r)))
	}
	return b.String()
}

// renderDots shows the active slide among all slides.
func renderDots(active, total int, th model.Theme) string {
	if total <= 1 {
		return ""
	}
	on := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Accent.Hex()))
	off := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Border.Hex()))
	dots := make([]string, total)
	for i := range dots {
		if i == active {
			dots[i] = on.Render("●")
		} else {
			dots[i] = off.Render("·")
		}
	}
	return strings.Join(dots, " ")
}

// renderHeader renders the top line: branding on the left, the slide
// label and progress dots on the right.
func (m *DashboardModel) renderHeader(width int, th model.Theme) string {
	e := m.engine()
	left := " " + renderBranding()
	right := ""
	if e != nil {
		s := e.ActiveSlide()
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Accent.Hex())).Bold(true).Render(strings.ToUpper(s.Label))
		if s.Detail != "" {
			label += lipgloss.NewStyle().Foreground(ColorMuted).Render(" " + s.Detail)
		}
		right = label
		if dots := renderDots(e.Active(), len(e.Slides()), th); dots != "" {
			right += "  " + dots
		}
		right += " "
	}
	return joinEnds(left, right, width)
}

// renderStatusLine renders the status/help line at the bottom of the screen.
func (m *DashboardModel) renderStatusLine(width int) string {
	baseStyle := lipgloss.NewStyle().
		Background(ColorBar).
		Foreground(ColorText)
	mutedStyle := baseStyle.Foreground(ColorMuted)

	veryNarrow := width < 60

	var parts []string
	if e := m.engine(); e != nil {
		parts = append(parts, strings.ToUpper(e.State().String()))
		parts = append(parts, fmt.Sprintf("%d/%d", e.Active()+1, len(e.Slides())))
		if e.Hovered() {
			parts = append(parts, "PAUSED")
		}
	}
	if m.ReducedMotion() {
		parts = append(parts, "REDUCED MOTION")
	}
	if m.skins != nil && !veryNarrow {
		parts = append(parts, "skin "+m.skins.Current().Name)
	}
	left := baseStyle.Render(" " + strings.Join(parts, " · "))

	hint := "?: help  q: quit "
	if !veryNarrow {
		hint = "←/→: navigate  enter: open  t: skin  m: motion  " + hint
	}
	right := mutedStyle.Render(hint)

	line := joinEnds(left, right, width)
	return baseStyle.Width(width).Render(line)
}

// joinEnds places left and right on one line of width cells, truncating the
// left part first.
func joinEnds(left, right string, width int) string {
	if width <= 0 {
		return ""
	}
	rw := lipgloss.Width(right)
	if rw >= width {
		return ansi.Truncate(right, width, "")
	}
	room := width - rw
	if lipgloss.Width(left) > room {
		left = ansi.Truncate(left, room, "…")
	}
	return left + strings.Repeat(" ", room-lipgloss.Width(left)) + right
}
