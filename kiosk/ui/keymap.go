package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the operator key bindings.
type KeyMap struct {
	Quit          key.Binding
	Reconnect     key.Binding
	Override      key.Binding
	SmoothingUp   key.Binding
	SmoothingDown key.Binding
	ClickWider    key.Binding
	ClickTighter  key.Binding
}

// DefaultKeyMap is the standard binding set.
var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Reconnect: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reconnect"),
	),
	// Supervisor override: forces approval while a report is being
	// checked. Deliberately an awkward chord so it is never hit by
	// accident.
	Override: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "override"),
	),
	SmoothingUp: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+/-", "smoothing"),
	),
	SmoothingDown: key.NewBinding(
		key.WithKeys("-", "_"),
	),
	ClickWider: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("[/]", "click distance"),
	),
	ClickTighter: key.NewBinding(
		key.WithKeys("["),
	),
}
