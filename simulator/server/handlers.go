package server

import (
	"encoding/json"
	"log"
)

// safeMarshal marshals a value to JSON, logging errors and returning nil on failure
func safeMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling JSON: %v", err)
		return nil
	}
	return data
}

// MessageHandler defines the interface for handling kiosk messages
type MessageHandler interface {
	// Validate validates the message before handling
	Validate(msg Message) error
	// Handle processes the validated message
	Handle(s *Server, msg Message) error
}

// ConfigHandler handles config messages
type ConfigHandler struct{}

func (h *ConfigHandler) Validate(msg Message) error {
	typedMsg := ConfigMessage{
		Smoothing:     msg.Smoothing,
		ClickDistance: msg.ClickDistance,
	}
	return typedMsg.Validate()
}

func (h *ConfigHandler) Handle(s *Server, msg Message) error {
	s.feed.Configure(msg.Smoothing, msg.ClickDistance)
	status := s.feed.Status()
	log.Printf("Config applied: smoothing=%.0f click_distance=%.0f",
		status.Smoothing, status.ClickDistance)
	return nil
}
