package ui

import (
	"github.com/charmbracelet/lipgloss"

	"airkiosk/protocol"
)

// Theme defines the HUD palette. All colors use lipgloss ANSI
// 256-color codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color

	// Connection lifecycle.
	StatusDisconnected lipgloss.Color
	StatusConnecting   lipgloss.Color
	StatusConnected    lipgloss.Color
	StatusError        lipgloss.Color

	// Distance guidance.
	DistanceGood lipgloss.Color
	DistanceWarn lipgloss.Color
	DistanceBad  lipgloss.Color

	// Gate results.
	GateSuccess lipgloss.Color
	GateFailure lipgloss.Color

	// Landmark canvas.
	LandmarkDot lipgloss.Color
	Fingertip   lipgloss.Color

	BorderColor lipgloss.Color
	HelpText    lipgloss.Color
}

// DefaultTheme is the stock palette.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),
	Accent:     lipgloss.Color("45"),

	StatusDisconnected: lipgloss.Color("243"),
	StatusConnecting:   lipgloss.Color("220"),
	StatusConnected:    lipgloss.Color("42"),
	StatusError:        lipgloss.Color("196"),

	DistanceGood: lipgloss.Color("42"),
	DistanceWarn: lipgloss.Color("220"),
	DistanceBad:  lipgloss.Color("203"),

	GateSuccess: lipgloss.Color("42"),
	GateFailure: lipgloss.Color("203"),

	LandmarkDot: lipgloss.Color("45"),
	Fingertip:   lipgloss.Color("213"),

	BorderColor: lipgloss.Color("240"),
	HelpText:    lipgloss.Color("240"),
}

// DistanceColor maps a distance status to its guidance color.
func (t Theme) DistanceColor(status protocol.DistanceStatus) lipgloss.Color {
	switch status {
	case protocol.DistancePerfect:
		return t.DistanceGood
	case protocol.DistanceTooClose, protocol.DistanceTooFar:
		return t.DistanceWarn
	case protocol.DistanceBadPose:
		return t.DistanceBad
	default:
		return t.FaintText
	}
}

// ConnectionColor maps a connection status string to a color by the
// lifecycle it denotes.
func (t Theme) ConnectionColor(status string) lipgloss.Color {
	switch status {
	case "connected":
		return t.StatusConnected
	case "connecting":
		return t.StatusConnecting
	case "error":
		return t.StatusError
	default:
		return t.StatusDisconnected
	}
}
