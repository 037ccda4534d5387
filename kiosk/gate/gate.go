// Package gate converts one scan report into an approve/retry outcome
// after a fixed on-screen dwell. The gate itself is a plain state
// machine; the event loop owns the two presentation-hold timers and
// tags them with the cycle number returned by Begin, so a timer fired
// against a superseded report is simply ignored.
package gate

import "airkiosk/protocol"

// State is the gate's position within one report cycle.
type State int

const (
	// Idle means no report is being evaluated.
	Idle State = iota
	// Checking means the report is on screen and the classification
	// timer is running.
	Checking
	// Success means the report classified as approve; the result hold
	// is running.
	Success
	// Failed means the report classified as retry; the result hold is
	// running.
	Failed
	// Committed means the decision was issued. Terminal for the cycle.
	Committed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Checking:
		return "checking"
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}

// Gate evaluates scan reports against a score threshold. Each report
// gets exactly one cycle; a report arriving mid-cycle does not start a
// new one, and the cycle counter makes timers from abandoned cycles
// inert.
type Gate struct {
	threshold float64
	cycle     int
	state     State
	report    protocol.ScanReport
}

// New creates an idle gate with the given approval threshold.
func New(threshold float64) *Gate {
	return &Gate{threshold: threshold}
}

// State returns the current cycle state.
func (g *Gate) State() State { return g.state }

// Cycle returns the current cycle number.
func (g *Gate) Cycle() int { return g.cycle }

// Report returns the report under evaluation.
func (g *Gate) Report() protocol.ScanReport { return g.report }

// Threshold returns the configured approval threshold.
func (g *Gate) Threshold() float64 { return g.threshold }

// Busy reports whether a cycle is in flight (between Begin and
// Commit).
func (g *Gate) Busy() bool {
	return g.state == Checking || g.state == Success || g.state == Failed
}

// Begin starts a new cycle for the given report and returns the cycle
// number its timers must carry. Any previous cycle is abandoned.
func (g *Gate) Begin(report protocol.ScanReport) int {
	g.cycle++
	g.state = Checking
	g.report = report
	return g.cycle
}

// Stale reports whether a timer tagged with cycle belongs to a
// superseded report.
func (g *Gate) Stale(cycle int) bool { return cycle != g.cycle }

// Classify resolves the checking phase: success iff the aggregate
// score reached the threshold. Returns false when the gate is not
// checking, which happens when the override already resolved the
// cycle before the natural timer fired.
func (g *Gate) Classify() (State, bool) {
	if g.state != Checking {
		return g.state, false
	}
	if g.report.Total >= g.threshold {
		g.state = Success
	} else {
		g.state = Failed
	}
	return g.state, true
}

// Override forces a success classification regardless of score,
// bypassing the remaining dwell. Only honored while checking.
func (g *Gate) Override() bool {
	if g.state != Checking {
		return false
	}
	g.state = Success
	return true
}

// Commit is the exactly-once point for the cycle's side effects. The
// first call after classification reports the decision and moves the
// gate to Committed; every later call returns ok=false. This keeps the
// decision request and the stage transition single-shot even when the
// override races the natural timer.
func (g *Gate) Commit() (approved, ok bool) {
	switch g.state {
	case Success:
		g.state = Committed
		return true, true
	case Failed:
		g.state = Committed
		return false, true
	default:
		return false, false
	}
}

// Reset abandons the current cycle without committing. Timers from
// the abandoned cycle become stale.
func (g *Gate) Reset() {
	g.cycle++
	g.state = Idle
	g.report = protocol.ScanReport{}
}
