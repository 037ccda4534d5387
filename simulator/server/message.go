package server

// Message is the generic envelope for frames the kiosk sends upstream.
type Message struct {
	Type          string   `json:"type"`
	Smoothing     *float64 `json:"smoothing,omitempty"`
	ClickDistance *float64 `json:"click_distance,omitempty"`
}

// ConfigMessage represents a config message.
type ConfigMessage struct {
	Smoothing     *float64 `json:"smoothing,omitempty"`
	ClickDistance *float64 `json:"click_distance,omitempty"`
}

// Validate validates a ConfigMessage.
func (m *ConfigMessage) Validate() error {
	if m.Smoothing == nil && m.ClickDistance == nil {
		return &ValidationError{Field: "smoothing", Message: "config carries no values"}
	}
	if m.Smoothing != nil && *m.Smoothing <= 0 {
		return &ValidationError{Field: "smoothing", Message: "smoothing must be greater than 0"}
	}
	if m.ClickDistance != nil && *m.ClickDistance <= 0 {
		return &ValidationError{Field: "click_distance", Message: "click_distance must be greater than 0"}
	}
	return nil
}

// ValidationError represents a message validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
