// Package telemetry reduces the inbound message stream to the latest
// snapshot the HUD renders from. Values are overwritten wholesale per
// message; there is no field-level merging across messages of the
// same kind.
package telemetry

import "airkiosk/protocol"

// fpsHistoryLen bounds the display ring behind the status sparkline.
const fpsHistoryLen = 48

// Snapshot holds the latest-known telemetry. Exactly one kind is
// displayed at a time: every hand frame clears the face fields and
// every face frame clears the hand fields. The snapshot is owned by
// the event loop and must only be mutated from it.
type Snapshot struct {
	// Frame is the last camera image, base64 as received. An absent
	// image on a message means "no update", not "clear".
	Frame string

	// Hand telemetry.
	Landmarks     []protocol.Landmark
	Gesture       protocol.Gesture
	MousePosition protocol.Point
	IsPalmOpen    bool
	Timestamp     int64

	// Face telemetry.
	FaceState     protocol.FaceState
	Status        protocol.DistanceStatus
	DistanceRatio float64
	TargetRatio   float64
	Report        *protocol.ScanReport

	FPS        float64
	FPSHistory []float64
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{Gesture: protocol.GestureNone}
}

// Apply folds one inbound message into the snapshot.
func (s *Snapshot) Apply(msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.HandData:
		s.applyHand(m)
	case *protocol.FaceData:
		s.applyFace(m)
	}
}

func (s *Snapshot) applyHand(m *protocol.HandData) {
	if m.Image != "" {
		s.Frame = m.Image
	}
	s.Landmarks = m.Landmarks
	s.Gesture = m.Gesture
	s.MousePosition = m.MousePosition
	s.IsPalmOpen = m.IsPalmOpen
	s.Timestamp = m.Timestamp

	s.FaceState = ""
	s.Status = ""
	s.DistanceRatio = 0
	s.TargetRatio = 0
	s.Report = nil

	s.pushFPS(m.FPS)
}

func (s *Snapshot) applyFace(m *protocol.FaceData) {
	if m.Image != "" {
		s.Frame = m.Image
	}
	s.FaceState = m.State
	s.Status = m.Status
	s.DistanceRatio = m.DistanceRatio
	s.TargetRatio = m.TargetRatio
	// A report is only meaningful while the backend declares the
	// report state; anything else clears it.
	if m.State == protocol.FaceReport {
		s.Report = m.FaceResults
	} else {
		s.Report = nil
	}

	s.Landmarks = nil
	s.Gesture = protocol.GestureNone
	s.MousePosition = protocol.Point{}
	s.IsPalmOpen = false

	s.pushFPS(m.FPS)
}

func (s *Snapshot) pushFPS(fps float64) {
	s.FPS = fps
	s.FPSHistory = append(s.FPSHistory, fps)
	if len(s.FPSHistory) > fpsHistoryLen {
		s.FPSHistory = s.FPSHistory[len(s.FPSHistory)-fpsHistoryLen:]
	}
}

// HasHand reports whether the snapshot currently shows hand telemetry.
func (s *Snapshot) HasHand() bool {
	return len(s.Landmarks) > 0
}
