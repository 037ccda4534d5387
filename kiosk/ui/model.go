// Package ui implements the kiosk HUD as a bubbletea program. The
// Update loop is the single thread of control: every state change is
// a reaction to an inbound transport event, a fired timer, or a key
// press, processed strictly in arrival order.
package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"airkiosk/kiosk/client"
	"airkiosk/kiosk/config"
	"airkiosk/kiosk/gate"
	"airkiosk/kiosk/session"
	"airkiosk/kiosk/telemetry"
	"airkiosk/protocol"
)

// introTickInterval drives the boot sequence animation.
const introTickInterval = 100 * time.Millisecond

// noticeFadeDelay is how long a transient status-bar notice stays
// visible.
const noticeFadeDelay = 4 * time.Second

// Tuning bounds for the runtime-adjustable backend settings.
const (
	smoothingMin, smoothingMax = 1.0, 20.0
	clickDistMin, clickDistMax = 10.0, 100.0
	clickDistStep              = 5.0
)

// transportEventMsg wraps one transport event for delivery through
// the bubbletea message loop.
type transportEventMsg struct {
	event client.Event
}

// introTickMsg advances the boot sequence animation.
type introTickMsg struct{}

// classifyTickMsg fires when a report's on-screen dwell elapses. The
// cycle tag makes ticks from superseded reports inert.
type classifyTickMsg struct {
	cycle int
}

// commitTickMsg fires when the post-classification hold elapses.
type commitTickMsg struct {
	cycle int
}

// decisionResultMsg reports the outcome of the asynchronous approval
// call. A failure is logged and shown in the status bar; it never
// reverts the stage transition already promised to the user.
type decisionResultMsg struct {
	approved bool
	err      error
}

// noticeFadeMsg clears the transient status-bar notice.
type noticeFadeMsg struct{}

// Model is the top-level bubbletea model for the kiosk HUD.
type Model struct {
	cfg       config.Config
	logger    *slog.Logger
	transport *client.Client
	store     *telemetry.Snapshot
	machine   *session.Machine
	gate      *gate.Gate
	cues      CuePlayer
	keys      KeyMap
	theme     Theme

	// decide performs the one-shot approval call. Swapped out in
	// tests.
	decide func(approved bool) error

	width  int
	height int
	ready  bool

	introElapsed time.Duration

	connStatus client.Status
	connErr    error
	notice     string

	smoothing     float64
	clickDistance float64

	spin  spinner.Model
	gauge progress.Model
}

// New creates the HUD model around an existing transport client.
func New(cfg config.Config, logger *slog.Logger, transport *client.Client) Model {
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	gauge := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	model := Model{
		cfg:           cfg,
		logger:        logger,
		transport:     transport,
		store:         telemetry.New(),
		machine:       &session.Machine{},
		gate:          gate.New(cfg.Threshold),
		cues:          NewBellCues(logger),
		keys:          DefaultKeyMap,
		theme:         DefaultTheme,
		smoothing:     cfg.Smoothing,
		clickDistance: cfg.ClickDistance,
		spin:          spin,
		gauge:         gauge,
	}
	model.decide = func(approved bool) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return client.SendDecision(ctx, cfg.ApprovalURL, cfg.SessionID, approved)
	}
	return model
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenTransport(m.transport.Events()),
		introTick(),
		m.spin.Tick,
	)
}

// listenTransport returns a command that blocks until the next
// transport event and redelivers it as a bubbletea message. Re-issued
// after every delivery so events are consumed one at a time, in order.
func listenTransport(events <-chan client.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return transportEventMsg{event: event}
	}
}

func introTick() tea.Cmd {
	return tea.Tick(introTickInterval, func(time.Time) tea.Msg {
		return introTickMsg{}
	})
}

func classifyTick(after time.Duration, cycle int) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return classifyTickMsg{cycle: cycle}
	})
}

func commitTick(after time.Duration, cycle int) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return commitTickMsg{cycle: cycle}
	})
}

func noticeFade() tea.Cmd {
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(message)

	case transportEventMsg:
		return m.handleTransportEvent(message.event)

	case introTickMsg:
		return m.handleIntroTick()

	case classifyTickMsg:
		if m.gate.Stale(message.cycle) {
			return m, nil
		}
		state, changed := m.gate.Classify()
		if !changed {
			// The override already resolved this cycle; its own
			// commit timer is running.
			return m, nil
		}
		m.playCue(state)
		return m, commitTick(m.cfg.ResultHold, message.cycle)

	case commitTickMsg:
		if m.gate.Stale(message.cycle) {
			return m, nil
		}
		approved, ok := m.gate.Commit()
		if !ok {
			return m, nil
		}
		// Local transition and decision call are issued together but
		// independently: the call failing cannot take the stage back.
		m.machine.ResolveGate(approved)
		m.logger.Info("gate decision", "approved", approved,
			"score", m.gate.Report().Total, "threshold", m.gate.Threshold())
		return m, m.decisionCmd(approved)

	case decisionResultMsg:
		if message.err != nil {
			m.logger.Error("approval request failed",
				"approved", message.approved, "error", message.err)
			m.notice = "approval request failed (stage kept)"
			return m, noticeFade()
		}
		m.logger.Info("approval request delivered", "approved", message.approved)
		return m, nil

	case noticeFadeMsg:
		m.notice = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(message)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Quit):
		m.transport.Disconnect()
		return m, tea.Quit

	case key.Matches(message, m.keys.Override):
		if m.gate.Override() {
			m.logger.Info("supervisor override", "score", m.gate.Report().Total)
			m.playCue(gate.Success)
			return m, commitTick(m.cfg.ResultHold, m.gate.Cycle())
		}
		return m, nil

	case key.Matches(message, m.keys.Reconnect):
		m.transport.Connect(m.cfg.StreamEndpoint())
		return m, nil

	case key.Matches(message, m.keys.SmoothingUp):
		m.smoothing = clamp(m.smoothing+1, smoothingMin, smoothingMax)
		return m, m.pushConfig()

	case key.Matches(message, m.keys.SmoothingDown):
		m.smoothing = clamp(m.smoothing-1, smoothingMin, smoothingMax)
		return m, m.pushConfig()

	case key.Matches(message, m.keys.ClickWider):
		m.clickDistance = clamp(m.clickDistance+clickDistStep, clickDistMin, clickDistMax)
		return m, m.pushConfig()

	case key.Matches(message, m.keys.ClickTighter):
		m.clickDistance = clamp(m.clickDistance-clickDistStep, clickDistMin, clickDistMax)
		return m, m.pushConfig()
	}

	// Any other key skips the remainder of the boot sequence.
	if m.machine.Stage() == session.BootSequence {
		m.finishIntro()
	}
	return m, nil
}

func (m Model) handleTransportEvent(event client.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenTransport(m.transport.Events())}

	switch event.Kind {
	case client.EventStatus:
		m.connStatus = event.Status
		m.connErr = event.Err
		if event.Status == client.StatusError && event.Err != nil {
			m.notice = "connection lost — press r to reconnect"
			cmds = append(cmds, noticeFade())
		}

	case client.EventMessage:
		m.store.Apply(event.Message)

		switch payload := event.Message.(type) {
		case *protocol.HandData:
			m.machine.ObserveHand(len(payload.Landmarks))

		case *protocol.FaceData:
			m.machine.ObserveFaceState(payload.State)
			// A report starts one gate cycle. Reports arriving while
			// a cycle is in flight are ignored: the cycle in progress
			// owns the screen until it commits.
			if m.machine.Stage() == session.FaceReport &&
				payload.FaceResults != nil && !m.gate.Busy() {
				cycle := m.gate.Begin(*payload.FaceResults)
				m.logger.Info("report received",
					"score", payload.FaceResults.Total, "rank", payload.FaceResults.Rank)
				cmds = append(cmds, classifyTick(m.cfg.ReportHold, cycle))
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleIntroTick() (tea.Model, tea.Cmd) {
	if m.machine.Stage() != session.BootSequence {
		return m, nil
	}
	m.introElapsed += introTickInterval
	if m.introElapsed >= m.cfg.IntroDuration {
		m.finishIntro()
		return m, nil
	}
	return m, introTick()
}

// finishIntro raises the intro-finished event: the stage leaves the
// boot sequence and the transport connects.
func (m *Model) finishIntro() {
	if m.machine.FinishIntro() {
		m.transport.Connect(m.cfg.StreamEndpoint())
	}
}

func (m Model) playCue(state gate.State) {
	if state == gate.Success {
		m.cues.Success()
	} else {
		m.cues.Failure()
	}
}

// decisionCmd wraps the one-shot approval call in a command.
func (m Model) decisionCmd(approved bool) tea.Cmd {
	decide := m.decide
	return func() tea.Msg {
		return decisionResultMsg{approved: approved, err: decide(approved)}
	}
}

// pushConfig sends the current tuning values over the persistent
// channel. Dropped silently while disconnected; the next adjustment
// resends the full latest-value state anyway.
func (m Model) pushConfig() tea.Cmd {
	msg := protocol.NewConfig(m.smoothing, m.clickDistance)
	return func() tea.Msg {
		m.transport.Send(msg)
		return nil
	}
}

// Stage exposes the current stage for the views and tests.
func (m Model) Stage() session.Stage { return m.machine.Stage() }

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	switch m.machine.Stage() {
	case session.BootSequence:
		body = m.viewBoot()
	case session.FaceScanning, session.FaceAnalyzing:
		body = m.viewScan()
	case session.FaceReport:
		body = m.viewReport()
	case session.ActiveMode:
		body = m.viewActive()
	}

	bodyHeight := m.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.viewStatusBar())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
