package ui

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airkiosk/kiosk/client"
	"airkiosk/kiosk/config"
	"airkiosk/kiosk/gate"
	"airkiosk/kiosk/session"
	"airkiosk/protocol"
)

// decisionRecorder stands in for the approval call and counts the
// decisions the model issues.
type decisionRecorder struct {
	mu    sync.Mutex
	calls []bool
	err   error
}

func (r *decisionRecorder) decide(approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, approved)
	return r.err
}

func (r *decisionRecorder) decisions() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.calls...)
}

// cueRecorder counts audio cues instead of ringing the terminal bell.
type cueRecorder struct {
	successes int
	failures  int
}

func (c *cueRecorder) Success() { c.successes++ }
func (c *cueRecorder) Failure() { c.failures++ }

func testConfig() config.Config {
	return config.Config{
		StreamURL:     "ws://127.0.0.1:1/ws",
		ApprovalURL:   "http://127.0.0.1:1/approve",
		Threshold:     70,
		ReportHold:    3 * time.Second,
		ResultHold:    3 * time.Second,
		IntroDuration: 200 * time.Millisecond,
		Smoothing:     10,
		ClickDistance: 30,
		SessionID:     "test-session",
	}
}

func newTestModel(t *testing.T) (Model, *decisionRecorder, *cueRecorder) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	transport := client.New(logger)
	t.Cleanup(transport.Disconnect)

	model := New(testConfig(), logger, transport)
	decisions := &decisionRecorder{}
	cues := &cueRecorder{}
	model.decide = decisions.decide
	model.cues = cues
	return model, decisions, cues
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

// skipIntro presses a key to jump past the boot sequence.
func skipIntro(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, session.FaceScanning, m.Stage())
	return m
}

func faceFrame(state protocol.FaceState, report *protocol.ScanReport) tea.Msg {
	return transportEventMsg{event: client.Event{
		Kind: client.EventMessage,
		Message: &protocol.FaceData{
			Type:        protocol.TypeFaceData,
			State:       state,
			Status:      protocol.DistancePerfect,
			FaceResults: report,
		},
	}}
}

func TestApprovedReportReachesActiveMode(t *testing.T) {
	m, decisions, cues := newTestModel(t)
	m = skipIntro(t, m)

	report := &protocol.ScanReport{Total: 85, Rank: "A"}
	m, _ = step(t, m, faceFrame(protocol.FaceReport, report))
	require.Equal(t, session.FaceReport, m.Stage())
	require.Equal(t, gate.Checking, m.gate.State())
	cycle := m.gate.Cycle()

	m, cmd := step(t, m, classifyTickMsg{cycle: cycle})
	assert.Equal(t, gate.Success, m.gate.State())
	assert.Equal(t, 1, cues.successes)
	require.NotNil(t, cmd)

	m, cmd = step(t, m, commitTickMsg{cycle: cycle})
	assert.Equal(t, session.ActiveMode, m.Stage())
	require.NotNil(t, cmd)

	result, ok := cmd().(decisionResultMsg)
	require.True(t, ok)
	assert.True(t, result.approved)
	assert.NoError(t, result.err)
	assert.Equal(t, []bool{true}, decisions.decisions())

	// A duplicate commit timer must not issue a second decision.
	m, cmd = step(t, m, commitTickMsg{cycle: cycle})
	assert.Nil(t, cmd)
	assert.Equal(t, []bool{true}, decisions.decisions())
	assert.Equal(t, session.ActiveMode, m.Stage())
}

func TestRejectedReportReturnsToScanning(t *testing.T) {
	m, decisions, cues := newTestModel(t)
	m = skipIntro(t, m)

	report := &protocol.ScanReport{Total: 40, Rank: "D"}
	m, _ = step(t, m, faceFrame(protocol.FaceReport, report))
	cycle := m.gate.Cycle()

	m, _ = step(t, m, classifyTickMsg{cycle: cycle})
	assert.Equal(t, gate.Failed, m.gate.State())
	assert.Equal(t, 1, cues.failures)
	assert.Zero(t, cues.successes)

	m, cmd := step(t, m, commitTickMsg{cycle: cycle})
	assert.Equal(t, session.FaceScanning, m.Stage())
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []bool{false}, decisions.decisions())

	// The gate is free again for the next report.
	assert.False(t, m.gate.Busy())
}

func TestThresholdBoundaryApproves(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = skipIntro(t, m)

	m, _ = step(t, m, faceFrame(protocol.FaceReport, &protocol.ScanReport{Total: 70}))
	m, _ = step(t, m, classifyTickMsg{cycle: m.gate.Cycle()})
	assert.Equal(t, gate.Success, m.gate.State())
}

func TestOverrideBeatsNaturalTimer(t *testing.T) {
	m, decisions, cues := newTestModel(t)
	m = skipIntro(t, m)

	m, _ = step(t, m, faceFrame(protocol.FaceReport, &protocol.ScanReport{Total: 40}))
	cycle := m.gate.Cycle()

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, gate.Success, m.gate.State())
	assert.Equal(t, 1, cues.successes)
	require.NotNil(t, cmd)

	// The natural timer still fires, but the cycle is already
	// resolved: no second cue, no second hold.
	m, cmd = step(t, m, classifyTickMsg{cycle: cycle})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, cues.successes)
	assert.Zero(t, cues.failures)

	m, cmd = step(t, m, commitTickMsg{cycle: cycle})
	assert.Equal(t, session.ActiveMode, m.Stage())
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []bool{true}, decisions.decisions())
}

func TestOverrideOutsideCheckingIgnored(t *testing.T) {
	m, _, cues := newTestModel(t)
	m = skipIntro(t, m)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Nil(t, cmd)
	assert.Zero(t, cues.successes)
	assert.Equal(t, session.FaceScanning, m.Stage())
}

func TestStaleTimersAreInert(t *testing.T) {
	m, decisions, _ := newTestModel(t)
	m = skipIntro(t, m)

	m, _ = step(t, m, faceFrame(protocol.FaceReport, &protocol.ScanReport{Total: 40}))
	stale := m.gate.Cycle()
	m, _ = step(t, m, classifyTickMsg{cycle: stale})
	m, cmd := step(t, m, commitTickMsg{cycle: stale})
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, session.FaceScanning, m.Stage())

	// A fresh report starts the next cycle.
	m, _ = step(t, m, faceFrame(protocol.FaceReport, &protocol.ScanReport{Total: 90}))
	require.Equal(t, gate.Checking, m.gate.State())
	require.NotEqual(t, stale, m.gate.Cycle())

	// Leftover timers from the committed cycle change nothing.
	m, cmd = step(t, m, classifyTickMsg{cycle: stale})
	assert.Nil(t, cmd)
	assert.Equal(t, gate.Checking, m.gate.State())

	m, cmd = step(t, m, commitTickMsg{cycle: stale})
	assert.Nil(t, cmd)
	assert.Equal(t, []bool{false}, decisions.decisions())
}

func TestReportDuringCycleIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = skipIntro(t, m)

	m, _ = step(t, m, faceFrame(protocol.FaceReport, &protocol.ScanReport{Total: 85}))
	cycle := m.gate.Cycle()

	m, _ = step(t, m, faceFrame(protocol.FaceReport, &protocol.ScanReport{Total: 10}))
	assert.Equal(t, cycle, m.gate.Cycle())
	assert.InDelta(t, 85, m.gate.Report().Total, 0.001)
}

func TestDecisionFailureKeepsStage(t *testing.T) {
	m, decisions, _ := newTestModel(t)
	decisions.err = errors.New("backend unreachable")
	m = skipIntro(t, m)

	m, _ = step(t, m, faceFrame(protocol.FaceReport, &protocol.ScanReport{Total: 85}))
	cycle := m.gate.Cycle()
	m, _ = step(t, m, classifyTickMsg{cycle: cycle})
	m, cmd := step(t, m, commitTickMsg{cycle: cycle})
	require.NotNil(t, cmd)

	result, ok := cmd().(decisionResultMsg)
	require.True(t, ok)
	require.Error(t, result.err)

	m, _ = step(t, m, result)
	assert.Equal(t, session.ActiveMode, m.Stage())
	assert.NotEmpty(t, m.notice)
}

func TestBackendStateMirroring(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = skipIntro(t, m)

	m, _ = step(t, m, faceFrame(protocol.FaceAnalyzing, nil))
	assert.Equal(t, session.FaceAnalyzing, m.Stage())

	m, _ = step(t, m, faceFrame(protocol.FaceWaiting, nil))
	assert.Equal(t, session.FaceScanning, m.Stage())

	// A report frame without results moves the stage but cannot start
	// a gate cycle.
	m, _ = step(t, m, faceFrame(protocol.FaceReport, nil))
	assert.Equal(t, session.FaceReport, m.Stage())
	assert.False(t, m.gate.Busy())
}

func TestIntroTimerFinishesBoot(t *testing.T) {
	m, _, _ := newTestModel(t)
	require.Equal(t, session.BootSequence, m.Stage())

	for i := 0; i < 3 && m.Stage() == session.BootSequence; i++ {
		m, _ = step(t, m, introTickMsg{})
	}
	assert.Equal(t, session.FaceScanning, m.Stage())
}

func TestBootSkipConnectsTransport(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = skipIntro(t, m)

	status, _ := m.transport.Status()
	assert.NotEqual(t, client.StatusDisconnected, status)
}

func TestHandFrameDoesNotEscapeFaceStages(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = skipIntro(t, m)

	hand := transportEventMsg{event: client.Event{
		Kind: client.EventMessage,
		Message: &protocol.HandData{
			Type:      protocol.TypeHandData,
			Landmarks: fullLandmarks(),
			Gesture:   protocol.GestureNone,
		},
	}}
	m, _ = step(t, m, hand)
	assert.Equal(t, session.FaceScanning, m.Stage())
}

func TestTuningKeysStayInBounds(t *testing.T) {
	m, _, _ := newTestModel(t)

	for i := 0; i < 30; i++ {
		m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	}
	assert.InDelta(t, smoothingMax, m.smoothing, 0.001)

	for i := 0; i < 30; i++ {
		m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})
	}
	assert.InDelta(t, clickDistMin, m.clickDistance, 0.001)
}

func TestViewPerStage(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Equal(t, "Initializing...", m.View())

	m, _ = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	assert.Contains(t, m.View(), "press any key to skip")

	m = skipIntro(t, m)
	assert.Contains(t, m.View(), session.FaceScanning.String())

	m, _ = step(t, m, faceFrame(protocol.FaceReport, &protocol.ScanReport{
		Total: 85,
		Rank:  "A",
		Details: map[string]protocol.MetricScore{
			"symmetry": {Score: 90, Val: 0.94},
		},
	}))
	view := m.View()
	assert.Contains(t, view, "85")
	assert.Contains(t, view, "symmetry")

	m, _ = step(t, m, classifyTickMsg{cycle: m.gate.Cycle()})
	m, _ = step(t, m, commitTickMsg{cycle: m.gate.Cycle()})
	require.Equal(t, session.ActiveMode, m.Stage())
	assert.True(t, strings.Contains(m.View(), "no hand in view"))
}

func fullLandmarks() []protocol.Landmark {
	marks := make([]protocol.Landmark, protocol.LandmarkCount)
	for i := range marks {
		marks[i] = protocol.Landmark{ID: i, X: 0.5, Y: 0.5}
	}
	return marks
}
