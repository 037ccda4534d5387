package ui

import (
	"log/slog"
	"os"
)

// CuePlayer plays the approval cues. Implementations must not block
// the event loop; a playback failure is logged, never surfaced.
type CuePlayer interface {
	Success()
	Failure()
}

// BellCues signals through the terminal bell: one ring for approval,
// two for retry. The bell is written straight to the controlling
// terminal; like other invisible sequences it is safe alongside the
// alt-screen renderer.
type BellCues struct {
	logger *slog.Logger
}

// NewBellCues creates a bell-backed cue player.
func NewBellCues(logger *slog.Logger) *BellCues {
	return &BellCues{logger: logger}
}

func (c *BellCues) Success() { c.ring(1) }
func (c *BellCues) Failure() { c.ring(2) }

func (c *BellCues) ring(count int) {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		c.logger.Warn("cue playback failed", "error", err)
		return
	}
	defer tty.Close()
	for i := 0; i < count; i++ {
		if _, err := tty.WriteString("\a"); err != nil {
			c.logger.Warn("cue playback failed", "error", err)
			return
		}
	}
}

// NopCues discards all cues.
type NopCues struct{}

func (NopCues) Success() {}
func (NopCues) Failure() {}
