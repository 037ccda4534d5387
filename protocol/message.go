// Package protocol defines the wire messages exchanged with the kiosk
// backend and the codec that turns raw frames into typed values. Both
// the kiosk controller and the simulator build on this package, so the
// JSON shapes live in exactly one place.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Message type tags carried in the "type" field of every frame.
const (
	TypeHandData = "hand_data"
	TypeFaceData = "face_data"
	TypeConfig   = "config"
)

// LandmarkCount is the size of a complete hand landmark set. The
// tracker emits either no landmarks or all of them, never a partial
// list.
const LandmarkCount = 21

// Gesture is a discrete recognized hand pose or motion.
type Gesture string

const (
	GestureNone       Gesture = "none"
	GestureClick      Gesture = "click"
	GestureDrag       Gesture = "drag"
	GestureZoom       Gesture = "zoom"
	GestureSwipeLeft  Gesture = "swipe_left"
	GestureSwipeRight Gesture = "swipe_right"
	GesturePalmOpen   Gesture = "palm_open"
)

// DistanceStatus reports how well the face is positioned for scanning.
type DistanceStatus string

const (
	DistanceWait     DistanceStatus = "WAIT"
	DistancePerfect  DistanceStatus = "PERFECT"
	DistanceTooClose DistanceStatus = "TOO_CLOSE"
	DistanceTooFar   DistanceStatus = "TOO_FAR"
	DistanceBadPose  DistanceStatus = "BAD_POSE"
)

// FaceState is the backend-declared stage of the face pipeline. The
// client mirrors it instead of recomputing gating logic of its own.
type FaceState string

const (
	FaceWaiting   FaceState = "WAITING_FACE"
	FaceAnalyzing FaceState = "ANALYZING"
	FaceReport    FaceState = "REPORT"
)

// Landmark is one tracked hand point in normalized [0,1] coordinates.
type Landmark struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Point is a 2D position in backend coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MetricScore is one entry of a scan report's per-metric breakdown.
type MetricScore struct {
	Score float64 `json:"score"`
	Val   float64 `json:"val"`
}

// ScanReport is the aggregate result of one completed face-analysis
// pass. Present on face_data frames only while the backend is in the
// REPORT state.
type ScanReport struct {
	Total   float64                `json:"total"`
	Rank    string                 `json:"rank"`
	Details map[string]MetricScore `json:"details"`
}

// HandData carries one frame of hand tracking telemetry. Image is an
// opaque encoded blob passed through as received.
type HandData struct {
	Type          string     `json:"type"`
	Image         string     `json:"image,omitempty"`
	Landmarks     []Landmark `json:"landmarks"`
	Gesture       Gesture    `json:"gesture"`
	MousePosition Point      `json:"mouse_position"`
	IsPalmOpen    bool       `json:"is_palm_open"`
	FPS           float64    `json:"fps"`
	Timestamp     int64      `json:"timestamp"`
}

// FaceData carries one frame of face pipeline telemetry.
type FaceData struct {
	Type          string         `json:"type"`
	Image         string         `json:"image,omitempty"`
	State         FaceState      `json:"state"`
	Status        DistanceStatus `json:"status"`
	DistanceRatio float64        `json:"distance_ratio"`
	TargetRatio   float64        `json:"target_ratio"`
	FaceResults   *ScanReport    `json:"face_results,omitempty"`
	FPS           float64        `json:"fps"`
}

// Config is the outbound tuning message sent over the persistent
// channel. Both fields are latest-value state; the backend applies
// whatever arrives last.
type Config struct {
	Type          string   `json:"type"`
	Smoothing     *float64 `json:"smoothing,omitempty"`
	ClickDistance *float64 `json:"click_distance,omitempty"`
}

// NewConfig builds a config message carrying both tuning values.
func NewConfig(smoothing, clickDistance float64) Config {
	return Config{
		Type:          TypeConfig,
		Smoothing:     &smoothing,
		ClickDistance: &clickDistance,
	}
}

// Decision is the body of the one-shot approval request. It travels
// over a separate HTTP call, not the persistent channel.
type Decision struct {
	Approved bool `json:"approved"`
}

// Message is implemented by every decoded inbound frame.
type Message interface {
	messageType() string
}

func (m *HandData) messageType() string { return TypeHandData }
func (m *FaceData) messageType() string { return TypeFaceData }

type envelope struct {
	Type string `json:"type"`
}

// Decode parses one inbound frame. A frame with an unrecognized tag
// decodes to (nil, nil): such frames are dropped, not errors. A frame
// that fails to parse or violates the landmark contract returns an
// error; callers log it and discard the frame without touching the
// connection.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("frame envelope: %w", err)
	}

	switch env.Type {
	case TypeHandData:
		var m HandData
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("hand_data frame: %w", err)
		}
		if err := validateLandmarks(m.Landmarks); err != nil {
			return nil, fmt.Errorf("hand_data frame: %w", err)
		}
		if m.Gesture == "" {
			m.Gesture = GestureNone
		}
		return &m, nil

	case TypeFaceData:
		var m FaceData
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("face_data frame: %w", err)
		}
		return &m, nil

	default:
		return nil, nil
	}
}

// validateLandmarks enforces the all-or-nothing landmark contract and
// the fixed ID range.
func validateLandmarks(landmarks []Landmark) error {
	if len(landmarks) != 0 && len(landmarks) != LandmarkCount {
		return fmt.Errorf("landmark count %d: want 0 or %d", len(landmarks), LandmarkCount)
	}
	for _, lm := range landmarks {
		if lm.ID < 0 || lm.ID >= LandmarkCount {
			return fmt.Errorf("landmark id %d out of range", lm.ID)
		}
	}
	return nil
}
