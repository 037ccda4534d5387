package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"airkiosk/kiosk/gate"
	"airkiosk/protocol"
)

// viewReport renders the scan report panel with the gate's progress
// through its dwell and result phases.
func (m Model) viewReport() string {
	report := m.gate.Report()
	if m.store.Report != nil {
		report = *m.store.Report
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).
		Render("SCAN REPORT")

	scoreColor := m.theme.GateSuccess
	if report.Total < m.gate.Threshold() {
		scoreColor = m.theme.GateFailure
	}
	score := lipgloss.JoinHorizontal(lipgloss.Bottom,
		lipgloss.NewStyle().Foreground(scoreColor).Bold(true).
			Render(fmt.Sprintf("%3.0f", report.Total)),
		lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(" / 100   "),
		lipgloss.NewStyle().Foreground(scoreColor).Bold(true).
			Render("RANK "+report.Rank),
	)

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			score, "", m.viewMetricTable(report.Details)))

	return lipgloss.JoinVertical(lipgloss.Center,
		header,
		"",
		panel,
		"",
		m.viewGateStatus(),
	)
}

// viewMetricTable lists the per-metric breakdown in a stable order.
func (m Model) viewMetricTable(details map[string]protocol.MetricScore) string {
	if len(details) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("no metric breakdown")
	}

	names := make([]string, 0, len(details))
	for name := range details {
		names = append(names, name)
	}
	sort.Strings(names)

	nameStyle := lipgloss.NewStyle().Foreground(m.theme.NormalText).Width(14)
	valStyle := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	rows := make([]string, 0, len(details))
	for _, name := range names {
		metric := details[name]
		bar := metricBar(metric.Score, 12)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(name),
			lipgloss.NewStyle().Foreground(m.theme.Accent).Render(bar),
			valStyle.Render(fmt.Sprintf(" %5.1f  (%.2f)", metric.Score, metric.Val)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// metricBar renders a 0-100 score as a fixed-width block bar.
func metricBar(score float64, width int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	filled := int(score / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// viewGateStatus describes where the gate is within the current
// cycle.
func (m Model) viewGateStatus() string {
	switch m.gate.State() {
	case gate.Checking:
		return lipgloss.JoinHorizontal(lipgloss.Center,
			m.spin.View(),
			lipgloss.NewStyle().Foreground(m.theme.NormalText).
				Render(" verifying identity..."),
		)
	case gate.Success:
		return lipgloss.NewStyle().Foreground(m.theme.GateSuccess).Bold(true).
			Render("✓ VERIFIED — entering gesture control")
	case gate.Failed:
		return lipgloss.NewStyle().Foreground(m.theme.GateFailure).Bold(true).
			Render("✗ NOT RECOGNIZED — returning to scan")
	case gate.Committed:
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("switching...")
	default:
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("waiting for report")
	}
}
