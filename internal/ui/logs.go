package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logtail"
)

// Log refresh constants
const (
	logRefreshInterval = time.Second
	logFetchLimit      = 500
)

// levelFilters is the cycle for the level filter; "" shows everything.
var levelFilters = []string{"", "INFO", "WARN", "ERROR"}

// logState holds all log-related state.
type logState struct {
	lines       []string
	minLevel    string
	follow      bool
	lastRefresh time.Time
	err         error
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 10), max(m.height-6, 3))
}

func (m *Model) resizeLogViewport() {
	m.logViewport.Width = max(m.width-4, 10)
	m.logViewport.Height = max(m.height-6, 3)
}

// updateLogViewport re-renders the filtered log lines into the viewport.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	styles := m.theme.Styles()
	entries := logtail.Filter(m.logState.lines, m.logState.minLevel)

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatEntry(styles, e))
	}
	m.logViewport.SetContent(b.String())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// formatEntry colors one parsed log line.
func formatEntry(styles Styles, e logtail.Entry) string {
	if e.Level == "" {
		return styles.Text.Render(e.Raw)
	}
	var parts []string
	if e.Time != "" {
		ts := e.Time
		if t, err := time.Parse(time.RFC3339, e.Time); err == nil {
			ts = t.Format("15:04:05")
		}
		parts = append(parts, styles.FaintText.Render(ts))
	}
	parts = append(parts, styles.LevelStyle(e.Level).Render(fmt.Sprintf("%-5s", e.Level)))
	if e.Logger != "" {
		parts = append(parts, styles.AccentText.Render(e.Logger))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	if e.Fields != "" {
		parts = append(parts, styles.MutedText.Render(e.Fields))
	}
	return strings.Join(parts, " ")
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.minLevel = nextLevelFilter(m.logState.minLevel)
		m.updateLogViewport()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if m.logViewport.AtBottom() {
		m.logState.follow = true
	}
	return m, cmd
}

func nextLevelFilter(current string) string {
	for i, lvl := range levelFilters {
		if lvl == current {
			return levelFilters[(i+1)%len(levelFilters)]
		}
	}
	return levelFilters[0]
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Render("Logging to a file is disabled")
	}
	if m.logState.err != nil {
		return styles.DangerText.Render("Cannot read " + m.logPath + ": " + m.logState.err.Error())
	}
	if len(m.logState.lines) == 0 {
		return styles.MutedText.Render("No log entries yet")
	}
	return m.logViewport.View()
}

// Messages

type logLinesMsg []string

type logErrMsg struct{ err error }

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, logFetchLimit)
		if err != nil {
			return logErrMsg{err}
		}
		return logLinesMsg(lines)
	}
}
