package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// viewStatusBar renders the single-line footer: connection state,
// stage, fps sparkline, tuning values, transient notices, and key
// help.
func (m Model) viewStatusBar() string {
	status, _ := m.transport.Status()
	connStyle := lipgloss.NewStyle().
		Foreground(m.theme.ConnectionColor(status.String())).
		Bold(true)
	conn := connStyle.Render("● " + status.String())

	stage := lipgloss.NewStyle().Foreground(m.theme.NormalText).
		Render("  " + m.machine.Stage().String())

	fps := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(
		fmt.Sprintf("  %s %4.1f fps", sparkline(m.store.FPSHistory, 16), m.store.FPS))

	tuning := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(
		fmt.Sprintf("  smooth %.0f · click %.0f", m.smoothing, m.clickDistance))

	left := conn + stage + fps + tuning

	right := lipgloss.NewStyle().Foreground(m.theme.HelpText).
		Render("q quit · r reconnect · +/- [/] tune")
	if m.notice != "" {
		right = lipgloss.NewStyle().Foreground(m.theme.StatusError).Render(m.notice)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return lipgloss.NewStyle().MaxWidth(m.width).Render(bar)
}
