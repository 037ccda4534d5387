// Package session owns the client-visible stage of the kiosk flow.
// Most transitions mirror the backend-declared face pipeline state so
// the client stays an eventually-consistent view of backend truth; the
// only client-owned, timed decision is the approval gate, which
// reports its outcome here through ResolveGate.
package session

import "airkiosk/protocol"

// Stage is the kiosk's top-level UI mode. Exactly one is active.
type Stage int

const (
	BootSequence Stage = iota
	FaceScanning
	FaceAnalyzing
	FaceReport
	ActiveMode
)

func (s Stage) String() string {
	switch s {
	case BootSequence:
		return "BOOT_SEQUENCE"
	case FaceScanning:
		return "FACE_SCANNING"
	case FaceAnalyzing:
		return "FACE_ANALYZING"
	case FaceReport:
		return "FACE_REPORT"
	case ActiveMode:
		return "ACTIVE_MODE"
	default:
		return "UNKNOWN"
	}
}

// FaceGated reports whether the stage belongs to the scan/approval
// leg of the flow.
func (s Stage) FaceGated() bool {
	return s == FaceScanning || s == FaceAnalyzing || s == FaceReport
}

// Machine derives the stage from backend telemetry and local events.
// The zero value starts in BootSequence. Every method returns whether
// the stage changed.
type Machine struct {
	stage Stage
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage { return m.stage }

// FinishIntro ends the boot sequence. The caller connects the
// transport on the transition.
func (m *Machine) FinishIntro() bool {
	if m.stage != BootSequence {
		return false
	}
	m.stage = FaceScanning
	return true
}

// ObserveFaceState mirrors the backend-declared face pipeline state.
// The backend is trusted verbatim on every message; the client does no
// timing of its own for this leg. While a report is on screen the
// stage is pinned: only the approval gate moves it off FaceReport, so
// a backend regression to WAITING_FACE mid-gate cannot yank the report
// away from the operator. ActiveMode has no modeled exit.
func (m *Machine) ObserveFaceState(state protocol.FaceState) bool {
	if m.stage != FaceScanning && m.stage != FaceAnalyzing {
		return false
	}

	var next Stage
	switch state {
	case protocol.FaceWaiting:
		next = FaceScanning
	case protocol.FaceAnalyzing:
		next = FaceAnalyzing
	case protocol.FaceReport:
		next = FaceReport
	default:
		return false
	}
	if next == m.stage {
		return false
	}
	m.stage = next
	return true
}

// ObserveHand applies the resilience fallback: a non-empty landmark
// list observed outside the face-gated stages forces ActiveMode. Any
// detected hand frame is sufficient to advance, which guards against
// lost report/approval messages.
func (m *Machine) ObserveHand(landmarkCount int) bool {
	if landmarkCount == 0 || m.stage.FaceGated() || m.stage == ActiveMode {
		return false
	}
	m.stage = ActiveMode
	return true
}

// ResolveGate applies the approval gate's decision: approved enters
// ActiveMode, retry returns to FaceScanning. Only meaningful while a
// report is on screen.
func (m *Machine) ResolveGate(approved bool) bool {
	if m.stage != FaceReport {
		return false
	}
	if approved {
		m.stage = ActiveMode
	} else {
		m.stage = FaceScanning
	}
	return true
}
