package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airkiosk/protocol"
)

func TestPassingScoreClassifiesSuccess(t *testing.T) {
	g := New(70)
	cycle := g.Begin(protocol.ScanReport{Total: 85, Rank: "A"})
	require.Equal(t, Checking, g.State())
	require.False(t, g.Stale(cycle))

	state, changed := g.Classify()
	assert.True(t, changed)
	assert.Equal(t, Success, state)

	approved, ok := g.Commit()
	assert.True(t, ok)
	assert.True(t, approved)
	assert.Equal(t, Committed, g.State())
}

func TestFailingScoreClassifiesFailed(t *testing.T) {
	g := New(70)
	g.Begin(protocol.ScanReport{Total: 40, Rank: "D"})

	state, changed := g.Classify()
	assert.True(t, changed)
	assert.Equal(t, Failed, state)

	approved, ok := g.Commit()
	assert.True(t, ok)
	assert.False(t, approved)
}

func TestThresholdBoundaryIsInclusive(t *testing.T) {
	g := New(70)
	g.Begin(protocol.ScanReport{Total: 70})
	state, _ := g.Classify()
	assert.Equal(t, Success, state, "score equal to threshold passes")
}

func TestCommitIsExactlyOnce(t *testing.T) {
	g := New(70)
	g.Begin(protocol.ScanReport{Total: 90})
	g.Classify()

	_, ok := g.Commit()
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		_, ok := g.Commit()
		assert.False(t, ok, "commit %d must be rejected", i+2)
	}
}

func TestCommitBeforeClassification(t *testing.T) {
	g := New(70)
	g.Begin(protocol.ScanReport{Total: 90})

	_, ok := g.Commit()
	assert.False(t, ok, "cannot commit while still checking")

	var idle Gate
	_, ok = idle.Commit()
	assert.False(t, ok)
}

func TestOverrideForcesSuccessRegardlessOfScore(t *testing.T) {
	g := New(70)
	g.Begin(protocol.ScanReport{Total: 12, Rank: "F"})

	assert.True(t, g.Override())
	assert.Equal(t, Success, g.State())

	approved, ok := g.Commit()
	assert.True(t, ok)
	assert.True(t, approved)
}

func TestOverrideRacingNaturalTimer(t *testing.T) {
	g := New(70)
	g.Begin(protocol.ScanReport{Total: 40})

	// Operator hits the override first.
	require.True(t, g.Override())

	// The natural classification timer fires afterwards: no effect,
	// so the caller schedules no second result hold.
	state, changed := g.Classify()
	assert.False(t, changed)
	assert.Equal(t, Success, state)

	// Exactly one decision comes out of the cycle.
	approved, ok := g.Commit()
	require.True(t, ok)
	assert.True(t, approved)
	_, ok = g.Commit()
	assert.False(t, ok)
}

func TestOverrideOnlyWhileChecking(t *testing.T) {
	g := New(70)
	assert.False(t, g.Override(), "idle gate ignores override")

	g.Begin(protocol.ScanReport{Total: 90})
	g.Classify()
	assert.False(t, g.Override(), "classified gate ignores override")

	g.Commit()
	assert.False(t, g.Override(), "committed gate ignores override")
}

func TestNewReportSupersedesTimers(t *testing.T) {
	g := New(70)
	first := g.Begin(protocol.ScanReport{Total: 90})
	second := g.Begin(protocol.ScanReport{Total: 40})

	assert.True(t, g.Stale(first), "first cycle's timers are stale")
	assert.False(t, g.Stale(second))

	// The live cycle evaluates the second report.
	state, _ := g.Classify()
	assert.Equal(t, Failed, state)
}

func TestResetAbandonsCycle(t *testing.T) {
	g := New(70)
	cycle := g.Begin(protocol.ScanReport{Total: 90})
	g.Reset()

	assert.Equal(t, Idle, g.State())
	assert.True(t, g.Stale(cycle))
	_, ok := g.Commit()
	assert.False(t, ok)
}

func TestBusy(t *testing.T) {
	g := New(70)
	assert.False(t, g.Busy())

	g.Begin(protocol.ScanReport{Total: 90})
	assert.True(t, g.Busy())

	g.Classify()
	assert.True(t, g.Busy())

	g.Commit()
	assert.False(t, g.Busy())
}
