package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/binding"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/checklist"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/control"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/countdown"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/prefs"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewChecklist
	ViewLogs
)

var viewOrder = []View{ViewDashboard, ViewChecklist, ViewLogs}

// String returns the name persisted in preferences.
func (v View) String() string {
	switch v {
	case ViewChecklist:
		return "checklist"
	case ViewLogs:
		return "logs"
	default:
		return "dashboard"
	}
}

func parseView(name string) View {
	for _, v := range viewOrder {
		if v.String() == strings.ToLower(strings.TrimSpace(name)) {
			return v
		}
	}
	return ViewDashboard
}

// Binding is one running device binding as the UI sees it.
// *app.Session implements it.
type Binding interface {
	Name() string
	Snapshot() state.Snapshot
	Do(intent control.Intent) bool
	Restart(ctx context.Context)
}

// Checklist is the shopping list backing the checklist view.
// *checklist.Store implements it.
type Checklist interface {
	Subscribe(ctx context.Context) (<-chan []checklist.Item, func(), error)
	Add(ctx context.Context, text string) (checklist.Item, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
}

// Options configures the UI.
type Options struct {
	Context       context.Context
	Lights        Binding
	Timer         Binding
	Checklist     Checklist
	TimerDuration time.Duration
	LogPath       string
	ThemeName     string
	ViewName      string
	PrefsPath     string
	RefreshEvery  time.Duration
	Logger        *logger.Logger
}

const defaultRefresh = 250 * time.Millisecond

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	lights       Binding
	timer        Binding
	checklist    Checklist
	logPath      string
	prefsPath    string
	refreshEvery time.Duration
	log          *logger.Logger

	// UI state
	keys        keyMap
	help        help.Model
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	notice      string

	// Device state
	lightsSnap  state.Snapshot
	timerSnap   state.Snapshot
	hasSnapshot bool
	lastUpdated time.Time
	countdown   *countdown.Countdown

	checklistState checklistState

	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.RefreshEvery
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	if refresh > time.Second {
		refresh = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	input := textinput.New()
	input.Placeholder = "Add an item..."
	input.CharLimit = 200

	return Model{
		ctx:          ctx,
		lights:       opts.Lights,
		timer:        opts.Timer,
		checklist:    opts.Checklist,
		logPath:      opts.LogPath,
		prefsPath:    opts.PrefsPath,
		refreshEvery: refresh,
		log:          log.Named("ui"),

		keys:        DefaultKeyMap(),
		help:        help.New(),
		theme:       GetTheme(themeName),
		currentView: parseView(opts.ViewName),
		countdown:   countdown.New(opts.TimerDuration),

		checklistState: checklistState{input: input},
		logState:       logState{follow: true},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.refreshEvery),
		fetchSnapshotsCmd(m.lights, m.timer, time.Now()),
	}
	if m.checklist != nil {
		cmds = append(cmds, subscribeChecklistCmd(m.ctx, m.checklist))
	}
	if m.logPath != "" {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.resizeLogViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotsMsg:
		return m.handleSnapshots(msg)

	case intentMsg:
		if !msg.ok {
			m.notice = msg.binding + ": " + string(msg.intent) + " not allowed now"
		} else {
			m.notice = ""
		}
		return m, fetchSnapshotsCmd(m.lights, m.timer, time.Now())

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case checklistSubscribedMsg:
		m.checklistState.updates = msg.updates
		m.checklistState.unsubscribe = msg.unsubscribe
		return m, waitForItemsCmd(msg.updates)

	case checklistItemsMsg:
		m.setChecklistItems(msg)
		return m, waitForItemsCmd(m.checklistState.updates)

	case checklistErrMsg:
		m.notice = "checklist: " + msg.err.Error()
		m.log.Warnw("checklist operation failed", "err", msg.err)
		return m, nil

	case logLinesMsg:
		m.logState.lines = msg
		m.logState.err = nil
		m.logState.lastRefresh = time.Now()
		m.updateLogViewport()
		return m, nil

	case logErrMsg:
		m.logState.err = msg.err
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// Text entry owns the keyboard
	if m.currentView == ViewChecklist && m.checklistState.input.Focused() {
		return m.handleChecklistInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.cycleView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.cycleView(-1))

	case key.Matches(msg, m.keys.ViewDashboard):
		return m.switchView(ViewDashboard)

	case key.Matches(msg, m.keys.ViewChecklist):
		return m.switchView(ViewChecklist)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Reconnect):
		m.notice = "Reconnecting..."
		return m, reconnectCmd(m.ctx, m.lights, m.timer)
	}

	switch m.currentView {
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewChecklist:
		return m.handleChecklistKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.checklistState.unsubscribe != nil {
		m.checklistState.unsubscribe()
		m.checklistState.unsubscribe = nil
	}
	return m, tea.Quit
}

func (m Model) cycleView(step int) View {
	n := len(viewOrder)
	return viewOrder[((int(m.currentView)+step)%n+n)%n]
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.savePrefs()
	if v == ViewLogs && m.logPath != "" {
		// Fetch immediately when entering logs
		return m, readLogsCmd(m.logPath)
	}
	return m, nil
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, View: m.currentView.String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warnw("save preferences failed", "err", err)
	}
}

// handleTick processes the refresh tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotsCmd(m.lights, m.timer, now)}

	if m.currentView == ViewLogs && m.logState.follow && m.logPath != "" &&
		now.Sub(m.logState.lastRefresh) >= logRefreshInterval {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}

	// Schedule next tick
	cmds = append(cmds, tickCmd(m.refreshEvery))
	return m, tea.Batch(cmds...)
}

// handleSnapshots stores fresh binding snapshots and advances the countdown.
// When the countdown runs out the timer is completed.
func (m Model) handleSnapshots(msg snapshotsMsg) (tea.Model, tea.Cmd) {
	m.lightsSnap = msg.lights
	m.timerSnap = msg.timer
	m.hasSnapshot = true
	m.lastUpdated = msg.at

	if m.countdown.Observe(m.timerSnap.Display, msg.at) {
		m.log.Infow("countdown expired", "duration", m.countdown.Duration().String())
		return m, intentCmd(m.timer, binding.Complete)
	}
	return m, nil
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewChecklist:
		return m.renderChecklist()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderDashboard()
	}
}

// Messages

type tickMsg time.Time

type snapshotsMsg struct {
	lights state.Snapshot
	timer  state.Snapshot
	at     time.Time
}

type intentMsg struct {
	binding string
	intent  control.Intent
	ok      bool
}

type noticeMsg string

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotsCmd(lights, timer Binding, at time.Time) tea.Cmd {
	return func() tea.Msg {
		return snapshotsMsg{
			lights: lights.Snapshot(),
			timer:  timer.Snapshot(),
			at:     at,
		}
	}
}

func intentCmd(b Binding, intent control.Intent) tea.Cmd {
	return func() tea.Msg {
		return intentMsg{binding: b.Name(), intent: intent, ok: b.Do(intent)}
	}
}

func reconnectCmd(ctx context.Context, bindings ...Binding) tea.Cmd {
	return func() tea.Msg {
		for _, b := range bindings {
			b.Restart(ctx)
		}
		return noticeMsg("Reconnected; waiting for the device")
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context ends.
func Run(opts Options) error {
	if opts.Lights == nil || opts.Timer == nil {
		return errors.New("ui requires the lights and timer bindings")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.checklistState.unsubscribe != nil {
		fm.checklistState.unsubscribe()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
