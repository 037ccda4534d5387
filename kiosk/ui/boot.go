package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var bootLogo = strings.TrimLeft(`
 █████╗ ██╗██████╗ ██╗  ██╗██╗ ██████╗ ███████╗██╗  ██╗
██╔══██╗██║██╔══██╗██║ ██╔╝██║██╔═══██╗██╔════╝██║ ██╔╝
███████║██║██████╔╝█████╔╝ ██║██║   ██║███████╗█████╔╝
██╔══██║██║██╔══██╗██╔═██╗ ██║██║   ██║╚════██║██╔═██╗
██║  ██║██║██║  ██║██║  ██╗██║╚██████╔╝███████║██║  ██╗
╚═╝  ╚═╝╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝ ╚═════╝ ╚══════╝╚═╝  ╚═╝
`, "\n")

// bootChecklist lines appear one by one as the intro progresses.
var bootChecklist = []string{
	"loading gesture profiles",
	"calibrating landmark renderer",
	"arming biometric gate",
	"waiting for telemetry backend",
}

// viewBoot renders the boot sequence: logo, a progress bar driven by
// the intro timer, and a fake checklist. Purely decorative: the only
// thing that matters is that its completion raises the intro-finished
// event.
func (m Model) viewBoot() string {
	fraction := float64(m.introElapsed) / float64(m.cfg.IntroDuration)
	if fraction > 1 {
		fraction = 1
	}

	logo := lipgloss.NewStyle().Foreground(m.theme.Accent).Render(bootLogo)

	barWidth := lipgloss.Width(bootLogo) - 2
	if barWidth > m.width-4 {
		barWidth = m.width - 4
	}
	if barWidth < 10 {
		barWidth = 10
	}
	m.gauge.Width = barWidth
	bar := m.gauge.ViewAs(fraction)

	visible := int(fraction * float64(len(bootChecklist)+1))
	if visible > len(bootChecklist) {
		visible = len(bootChecklist)
	}
	lines := make([]string, 0, len(bootChecklist))
	doneStyle := lipgloss.NewStyle().Foreground(m.theme.DistanceGood)
	pendingStyle := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	for i, item := range bootChecklist {
		if i < visible {
			lines = append(lines, doneStyle.Render("  ✓ "+item))
		} else {
			lines = append(lines, pendingStyle.Render("  · "+item))
		}
	}

	hint := lipgloss.NewStyle().Foreground(m.theme.HelpText).
		Render("press any key to skip")

	return lipgloss.JoinVertical(lipgloss.Center,
		logo,
		"",
		bar,
		"",
		lipgloss.JoinVertical(lipgloss.Left, lines...),
		"",
		hint,
	)
}
