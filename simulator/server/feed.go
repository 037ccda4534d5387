package server

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"airkiosk/protocol"
)

// Phase is the feed's position in the scripted session.
type Phase int

const (
	// PhaseScanning emits WAITING_FACE frames while the simulated
	// subject drifts into position.
	PhaseScanning Phase = iota
	// PhaseAnalyzing emits ANALYZING frames for a fixed dwell.
	PhaseAnalyzing
	// PhaseReport emits REPORT frames carrying the scan result until a
	// decision arrives.
	PhaseReport
	// PhaseActive emits hand telemetry frames.
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseReport:
		return "report"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

const (
	targetRatio  = 0.28
	approachTime = 3 * time.Second
	perfectDwell = 1200 * time.Millisecond
	analyzeDwell = 2400 * time.Millisecond
	screenWidth  = 1920.0
	screenHeight = 1080.0
	smoothingMin = 1
	smoothingMax = 50
	clickDistMin = 5
	clickDistMax = 200
)

// metricWeights defines the scan report breakdown. Per-metric scores
// are jittered around the session score so the totals stay coherent.
var metricWeights = map[string]float64{
	"symmetry":     0.30,
	"golden_ratio": 0.25,
	"eye_spacing":  0.15,
	"jawline":      0.15,
	"skin_clarity": 0.15,
}

// gestureScript cycles while the feed is in the active phase.
var gestureScript = []protocol.Gesture{
	protocol.GestureNone,
	protocol.GestureClick,
	protocol.GestureDrag,
	protocol.GesturePalmOpen,
	protocol.GestureSwipeLeft,
	protocol.GestureNone,
	protocol.GestureZoom,
	protocol.GestureSwipeRight,
}

// handShape holds normalized offsets from the wrist for all 21
// landmarks, roughly an open right hand.
var handShape = [protocol.LandmarkCount][2]float64{
	{0.00, 0.00},                                                              // wrist
	{-0.05, -0.03}, {-0.09, -0.07}, {-0.12, -0.10}, {-0.14, -0.13}, // thumb
	{-0.04, -0.12}, {-0.05, -0.18}, {-0.05, -0.22}, {-0.05, -0.25}, // index
	{0.00, -0.13}, {0.00, -0.20}, {0.00, -0.24}, {0.00, -0.27}, // middle
	{0.04, -0.12}, {0.05, -0.18}, {0.05, -0.22}, {0.05, -0.25}, // ring
	{0.08, -0.10}, {0.10, -0.14}, {0.11, -0.17}, {0.12, -0.19}, // pinky
}

// Feed produces the scripted telemetry stream. One Feed is shared by
// every connection; all of its state lives behind the mutex because
// frames are pulled from the broadcast ticker while decisions and
// config updates land from HTTP and websocket readers.
type Feed struct {
	mu         sync.Mutex
	phase      Phase
	phaseStart time.Time
	perfectAt  time.Time
	tick       int
	rng        *rand.Rand

	fixedScore float64
	report     *protocol.ScanReport

	smoothing     float64
	clickDistance float64
	mouse         protocol.Point

	sessions  int
	approvals int
	retries   int
}

// NewFeed creates a feed at the start of the scanning phase. A
// fixedScore below zero means each session draws a random score.
func NewFeed(fixedScore float64) *Feed {
	return &Feed{
		phase:         PhaseScanning,
		phaseStart:    time.Now(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		fixedScore:    fixedScore,
		smoothing:     10,
		clickDistance: 30,
		mouse:         protocol.Point{X: screenWidth / 2, Y: screenHeight / 2},
	}
}

// Next produces the next outbound frame.
func (f *Feed) Next() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tick++

	switch f.phase {
	case PhaseScanning:
		return f.scanFrame()
	case PhaseAnalyzing:
		return f.analyzeFrame()
	case PhaseReport:
		return f.reportFrame()
	default:
		return f.handFrame()
	}
}

func (f *Feed) scanFrame() *protocol.FaceData {
	elapsed := time.Since(f.phaseStart)
	progress := float64(elapsed) / float64(approachTime)
	if progress > 1 {
		progress = 1
	}

	// The subject walks up: the face ratio grows toward the target
	// with a little wobble.
	ratio := targetRatio * (0.45 + 0.55*progress)
	ratio += 0.004 * math.Sin(float64(f.tick)/3)

	status := classifyDistance(ratio)
	if status == protocol.DistancePerfect {
		if f.perfectAt.IsZero() {
			f.perfectAt = time.Now()
		} else if time.Since(f.perfectAt) >= perfectDwell {
			f.enterPhase(PhaseAnalyzing)
			return f.analyzeFrame()
		}
	} else {
		f.perfectAt = time.Time{}
	}

	return &protocol.FaceData{
		Type:          protocol.TypeFaceData,
		State:         protocol.FaceWaiting,
		Status:        status,
		DistanceRatio: ratio,
		TargetRatio:   targetRatio,
		FPS:           f.fps(),
	}
}

func classifyDistance(ratio float64) protocol.DistanceStatus {
	switch {
	case ratio < targetRatio*0.6:
		return protocol.DistanceWait
	case ratio < targetRatio*0.92:
		return protocol.DistanceTooFar
	case ratio > targetRatio*1.12:
		return protocol.DistanceTooClose
	default:
		return protocol.DistancePerfect
	}
}

func (f *Feed) analyzeFrame() *protocol.FaceData {
	if time.Since(f.phaseStart) >= analyzeDwell {
		f.report = f.buildReport()
		f.sessions++
		f.enterPhase(PhaseReport)
		return f.reportFrame()
	}
	return &protocol.FaceData{
		Type:          protocol.TypeFaceData,
		State:         protocol.FaceAnalyzing,
		Status:        protocol.DistancePerfect,
		DistanceRatio: targetRatio,
		TargetRatio:   targetRatio,
		FPS:           f.fps(),
	}
}

func (f *Feed) reportFrame() *protocol.FaceData {
	return &protocol.FaceData{
		Type:          protocol.TypeFaceData,
		State:         protocol.FaceReport,
		Status:        protocol.DistancePerfect,
		DistanceRatio: targetRatio,
		TargetRatio:   targetRatio,
		FaceResults:   f.report,
		FPS:           f.fps(),
	}
}

// buildReport synthesizes one scan result. The per-metric scores are
// drawn around the session total so the breakdown looks plausible.
func (f *Feed) buildReport() *protocol.ScanReport {
	total := f.fixedScore
	if total < 0 {
		total = 55 + f.rng.Float64()*40
	}

	details := make(map[string]protocol.MetricScore, len(metricWeights))
	for name := range metricWeights {
		score := total + f.rng.Float64()*16 - 8
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		details[name] = protocol.MetricScore{
			Score: math.Round(score*10) / 10,
			Val:   math.Round(f.rng.Float64()*1000) / 1000,
		}
	}

	return &protocol.ScanReport{
		Total:   math.Round(total*10) / 10,
		Rank:    rankFor(total),
		Details: details,
	}
}

func rankFor(total float64) string {
	switch {
	case total >= 90:
		return "S"
	case total >= 80:
		return "A"
	case total >= 70:
		return "B"
	case total >= 55:
		return "C"
	default:
		return "D"
	}
}

func (f *Feed) handFrame() *protocol.HandData {
	t := float64(f.tick) / 30

	// The wrist traces a slow lissajous figure across the view.
	wristX := 0.5 + 0.22*math.Sin(0.9*t)
	wristY := 0.55 + 0.16*math.Sin(1.3*t+0.7)

	marks := make([]protocol.Landmark, protocol.LandmarkCount)
	for i, offset := range handShape {
		jx := 0.003 * math.Sin(float64(f.tick+i*7)/4)
		jy := 0.003 * math.Cos(float64(f.tick+i*5)/4)
		marks[i] = protocol.Landmark{
			ID: i,
			X:  clampUnit(wristX + offset[0] + jx),
			Y:  clampUnit(wristY + offset[1] + jy),
		}
	}

	gesture := gestureScript[(f.tick/60)%len(gestureScript)]

	// Cursor follows the index fingertip with the configured
	// smoothing, the same filter the real tracker applies.
	targetX := marks[8].X * screenWidth
	targetY := marks[8].Y * screenHeight
	f.mouse.X += (targetX - f.mouse.X) / f.smoothing
	f.mouse.Y += (targetY - f.mouse.Y) / f.smoothing

	return &protocol.HandData{
		Type:          protocol.TypeHandData,
		Landmarks:     marks,
		Gesture:       gesture,
		MousePosition: protocol.Point{X: math.Round(f.mouse.X), Y: math.Round(f.mouse.Y)},
		IsPalmOpen:    gesture == protocol.GesturePalmOpen,
		FPS:           f.fps(),
		Timestamp:     time.Now().UnixMilli(),
	}
}

// fps jitters around the nominal camera rate. Callers hold f.mu.
func (f *Feed) fps() float64 {
	return math.Round((29+2*f.rng.Float64())*10) / 10
}

func (f *Feed) enterPhase(phase Phase) {
	f.phase = phase
	f.phaseStart = time.Now()
	f.perfectAt = time.Time{}
}

// Resolve applies the kiosk's approval decision. Only meaningful while
// a report is on offer; decisions arriving in any other phase are
// ignored.
func (f *Feed) Resolve(approved bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseReport {
		return false
	}
	f.report = nil
	if approved {
		f.approvals++
		f.enterPhase(PhaseActive)
	} else {
		f.retries++
		f.enterPhase(PhaseScanning)
	}
	return true
}

// Configure applies tuning values pushed by the kiosk. Out-of-range
// values are clamped rather than rejected.
func (f *Feed) Configure(smoothing, clickDistance *float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if smoothing != nil {
		f.smoothing = clampRange(*smoothing, smoothingMin, smoothingMax)
	}
	if clickDistance != nil {
		f.clickDistance = clampRange(*clickDistance, clickDistMin, clickDistMax)
	}
}

// FeedStatus is the feed half of the status endpoint payload.
type FeedStatus struct {
	Phase         string  `json:"phase"`
	Sessions      int     `json:"sessions"`
	Approvals     int     `json:"approvals"`
	Retries       int     `json:"retries"`
	Smoothing     float64 `json:"smoothing"`
	ClickDistance float64 `json:"click_distance"`
}

// Status reports the feed's current phase and counters.
func (f *Feed) Status() FeedStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FeedStatus{
		Phase:         f.phase.String(),
		Sessions:      f.sessions,
		Approvals:     f.approvals,
		Retries:       f.retries,
		Smoothing:     f.smoothing,
		ClickDistance: f.clickDistance,
	}
}

// Phase returns the current phase.
func (f *Feed) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func clampUnit(v float64) float64 { return clampRange(v, 0, 1) }

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
