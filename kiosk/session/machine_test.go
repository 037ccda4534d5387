package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airkiosk/protocol"
)

func TestZeroValueStartsInBoot(t *testing.T) {
	var m Machine
	assert.Equal(t, BootSequence, m.Stage())
}

func TestFinishIntro(t *testing.T) {
	var m Machine
	assert.True(t, m.FinishIntro())
	assert.Equal(t, FaceScanning, m.Stage())

	// Only valid out of the boot sequence.
	assert.False(t, m.FinishIntro())
	assert.Equal(t, FaceScanning, m.Stage())
}

func TestBackendStateMirroring(t *testing.T) {
	var m Machine
	require.True(t, m.FinishIntro())

	steps := []struct {
		state protocol.FaceState
		want  Stage
	}{
		{protocol.FaceWaiting, FaceScanning},
		{protocol.FaceAnalyzing, FaceAnalyzing},
		{protocol.FaceWaiting, FaceScanning}, // backend may regress
		{protocol.FaceAnalyzing, FaceAnalyzing},
		{protocol.FaceReport, FaceReport},
	}
	for _, step := range steps {
		m.ObserveFaceState(step.state)
		assert.Equal(t, step.want, m.Stage(), "after state %s", step.state)
	}
}

func TestUnknownBackendStateIgnored(t *testing.T) {
	var m Machine
	m.FinishIntro()
	assert.False(t, m.ObserveFaceState("CALIBRATING"))
	assert.Equal(t, FaceScanning, m.Stage())
}

func TestReportStagePinnedAgainstBackendStates(t *testing.T) {
	var m Machine
	m.FinishIntro()
	m.ObserveFaceState(protocol.FaceAnalyzing)
	m.ObserveFaceState(protocol.FaceReport)
	require.Equal(t, FaceReport, m.Stage())

	// Backend states cannot move the stage off the report; only the
	// gate decision can.
	assert.False(t, m.ObserveFaceState(protocol.FaceWaiting))
	assert.False(t, m.ObserveFaceState(protocol.FaceAnalyzing))
	assert.Equal(t, FaceReport, m.Stage())
}

func TestGateResolution(t *testing.T) {
	var approved Machine
	approved.FinishIntro()
	approved.ObserveFaceState(protocol.FaceReport)
	require.Equal(t, FaceReport, approved.Stage())
	assert.True(t, approved.ResolveGate(true))
	assert.Equal(t, ActiveMode, approved.Stage())

	var retried Machine
	retried.FinishIntro()
	retried.ObserveFaceState(protocol.FaceReport)
	assert.True(t, retried.ResolveGate(false))
	assert.Equal(t, FaceScanning, retried.Stage())
}

func TestGateResolutionOnlyFromReport(t *testing.T) {
	var m Machine
	m.FinishIntro()
	assert.False(t, m.ResolveGate(true))
	assert.Equal(t, FaceScanning, m.Stage())
}

func TestHandFallbackForcesActiveMode(t *testing.T) {
	var m Machine
	assert.True(t, m.ObserveHand(protocol.LandmarkCount))
	assert.Equal(t, ActiveMode, m.Stage())
}

func TestHandFallbackRespectsFaceGatedStages(t *testing.T) {
	for _, state := range []protocol.FaceState{
		protocol.FaceWaiting, protocol.FaceAnalyzing, protocol.FaceReport,
	} {
		var m Machine
		m.FinishIntro()
		m.ObserveFaceState(state)
		before := m.Stage()
		assert.False(t, m.ObserveHand(protocol.LandmarkCount), "stage %s", before)
		assert.Equal(t, before, m.Stage())
	}
}

func TestEmptyHandFrameNeverAdvances(t *testing.T) {
	var m Machine
	assert.False(t, m.ObserveHand(0))
	assert.Equal(t, BootSequence, m.Stage())
}

func TestNoExitFromActiveMode(t *testing.T) {
	var m Machine
	m.FinishIntro()
	m.ObserveFaceState(protocol.FaceReport)
	m.ResolveGate(true)
	require.Equal(t, ActiveMode, m.Stage())

	assert.False(t, m.ObserveFaceState(protocol.FaceWaiting))
	assert.False(t, m.FinishIntro())
	assert.False(t, m.ResolveGate(false))
	assert.False(t, m.ObserveHand(protocol.LandmarkCount))
	assert.Equal(t, ActiveMode, m.Stage())
}
