// The kiosk command runs the touchless kiosk controller: a terminal
// HUD that connects to the tracking backend, walks the operator
// through the face scan and approval gate, then displays live gesture
// telemetry.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"airkiosk/kiosk/client"
	"airkiosk/kiosk/config"
	"airkiosk/kiosk/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("kiosk starting",
		"session", cfg.SessionID,
		"stream", cfg.StreamURL,
		"approval", cfg.ApprovalURL,
		"threshold", cfg.Threshold,
	)

	transport := client.New(logger)
	// The connection is acquired by the intro-finished event and must
	// be released on every exit path, including panics in the TUI.
	defer transport.Disconnect()

	model := ui.New(cfg, logger, transport)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run HUD: %w", err)
	}

	logger.Info("kiosk stopped")
	return nil
}

// openLogger builds the kiosk's JSON file logger. Records cannot go
// to stderr while the alt-screen HUD owns the terminal, so without a
// configured file they are discarded.
func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		handler := slog.NewJSONHandler(io.Discard, nil)
		return slog.New(handler), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), func() { file.Close() }, nil
}
