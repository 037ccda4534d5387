package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"airkiosk/kiosk/client"
	"airkiosk/kiosk/session"
	"airkiosk/protocol"
)

// statusGuidance maps each distance status to the instruction shown
// under the gauge.
var statusGuidance = map[protocol.DistanceStatus]string{
	protocol.DistanceWait:     "step in front of the camera",
	protocol.DistancePerfect:  "hold still",
	protocol.DistanceTooClose: "step back a little",
	protocol.DistanceTooFar:   "come closer",
	protocol.DistanceBadPose:  "face the camera directly",
}

// viewScan renders the face positioning screen and, once the backend
// declares ANALYZING, the analysis spinner.
func (m Model) viewScan() string {
	analyzing := m.machine.Stage() == session.FaceAnalyzing

	title := "FACE SCAN"
	if analyzing {
		title = "ANALYZING"
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).Render(title)

	frame := m.viewCameraFrame(36, 9)

	var middle string
	if analyzing {
		middle = lipgloss.JoinHorizontal(lipgloss.Center,
			m.spin.View(),
			lipgloss.NewStyle().Foreground(m.theme.NormalText).
				Render(" scoring biometric metrics..."),
		)
	} else {
		middle = m.viewDistanceGauge()
	}

	guidance := statusGuidance[m.store.Status]
	if guidance == "" {
		guidance = "waiting for camera telemetry"
	}
	statusLine := lipgloss.NewStyle().
		Foreground(m.theme.DistanceColor(m.store.Status)).
		Bold(m.store.Status == protocol.DistancePerfect).
		Render(guidance)

	if m.connStatus != client.StatusConnected {
		statusLine = lipgloss.NewStyle().Foreground(m.theme.StatusError).
			Render("no backend connection — press r to reconnect")
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		header,
		"",
		frame,
		"",
		middle,
		"",
		statusLine,
	)
}

// viewDistanceGauge shows how close the current face distance ratio
// is to the target, with the target position marked on the bar.
func (m Model) viewDistanceGauge() string {
	target := m.store.TargetRatio
	if target <= 0 {
		target = 1
	}
	fraction := m.store.DistanceRatio / target
	if fraction > 1 {
		fraction = 1
	}
	if fraction < 0 {
		fraction = 0
	}

	m.gauge.Width = 34
	bar := m.gauge.ViewAs(fraction)

	label := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(
		fmt.Sprintf("distance %.2f / target %.2f", m.store.DistanceRatio, m.store.TargetRatio))

	return lipgloss.JoinVertical(lipgloss.Center, bar, label)
}

// viewCameraFrame draws the camera well. The actual pixels live on
// the backend; the HUD shows a stylized placeholder whose border
// color follows the distance status, plus a note when a frame blob is
// attached.
func (m Model) viewCameraFrame(width, height int) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.DistanceColor(m.store.Status)).
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	content := "· no signal ·"
	if m.store.Frame != "" {
		content = fmt.Sprintf("▒ live frame ▒\n%d bytes", len(m.store.Frame))
	}
	return border.Render(lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(content))
}
