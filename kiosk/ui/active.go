package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"airkiosk/protocol"
)

// Landmark canvas dimensions in terminal cells. Terminal cells are
// roughly twice as tall as wide, so the canvas is wider than tall to
// keep hand proportions recognizable.
const (
	canvasWidth  = 48
	canvasHeight = 16
)

// fingertipIDs per the standard 21-point hand model: thumb, index,
// middle, ring, pinky tips.
var fingertipIDs = map[int]bool{4: true, 8: true, 12: true, 16: true, 20: true}

// gestureLabels give each recognized gesture a display name.
var gestureLabels = map[protocol.Gesture]string{
	protocol.GestureNone:       "tracking",
	protocol.GestureClick:      "CLICK",
	protocol.GestureDrag:       "DRAG",
	protocol.GestureZoom:       "ZOOM",
	protocol.GestureSwipeLeft:  "◀ SWIPE",
	protocol.GestureSwipeRight: "SWIPE ▶",
	protocol.GesturePalmOpen:   "PALM OPEN",
}

// viewActive renders the gesture control mode: the landmark canvas,
// the recognized gesture, and the cursor target.
func (m Model) viewActive() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).
		Render("GESTURE CONTROL")

	canvas := m.viewLandmarkCanvas()

	label := gestureLabels[m.store.Gesture]
	if label == "" {
		label = string(m.store.Gesture)
	}
	gestureStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Fingertip)
	if m.store.Gesture == protocol.GestureNone {
		gestureStyle = lipgloss.NewStyle().Foreground(m.theme.FaintText)
	}

	details := lipgloss.JoinHorizontal(lipgloss.Top,
		gestureStyle.Render(label),
		lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(
			fmt.Sprintf("   cursor %.0f,%.0f", m.store.MousePosition.X, m.store.MousePosition.Y)),
		m.palmIndicator(),
	)

	return lipgloss.JoinVertical(lipgloss.Center,
		header,
		"",
		canvas,
		"",
		details,
	)
}

func (m Model) palmIndicator() string {
	if !m.store.IsPalmOpen {
		return ""
	}
	return lipgloss.NewStyle().Foreground(m.theme.DistanceWarn).
		Render("   ✋ swipe mode")
}

// viewLandmarkCanvas plots the normalized landmark points into a
// character grid. Fingertips render brighter than the rest of the
// hand skeleton.
func (m Model) viewLandmarkCanvas() string {
	type cell struct {
		set       bool
		fingertip bool
	}
	grid := make([][]cell, canvasHeight)
	for row := range grid {
		grid[row] = make([]cell, canvasWidth)
	}

	for _, lm := range m.store.Landmarks {
		col := int(lm.X * float64(canvasWidth-1))
		row := int(lm.Y * float64(canvasHeight-1))
		if col < 0 || col >= canvasWidth || row < 0 || row >= canvasHeight {
			continue
		}
		grid[row][col].set = true
		if fingertipIDs[lm.ID] {
			grid[row][col].fingertip = true
		}
	}

	dotStyle := lipgloss.NewStyle().Foreground(m.theme.LandmarkDot)
	tipStyle := lipgloss.NewStyle().Foreground(m.theme.Fingertip).Bold(true)

	var b strings.Builder
	for row := 0; row < canvasHeight; row++ {
		for col := 0; col < canvasWidth; col++ {
			switch {
			case grid[row][col].fingertip:
				b.WriteString(tipStyle.Render("●"))
			case grid[row][col].set:
				b.WriteString(dotStyle.Render("•"))
			default:
				b.WriteString(" ")
			}
		}
		if row < canvasHeight-1 {
			b.WriteString("\n")
		}
	}

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor)

	if len(m.store.Landmarks) == 0 {
		empty := lipgloss.Place(canvasWidth, canvasHeight, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("no hand in view"))
		return frame.Render(empty)
	}
	return frame.Render(b.String())
}
