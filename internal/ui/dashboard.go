package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/binding"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/control"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/countdown"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

const cardWidth = 36

// handleDashboardKey maps dashboard keys to binding intents.
func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleLights):
		return m.doIntent(m.lights, m.lightsSnap, binding.Toggle)
	case key.Matches(msg, m.keys.StartTimer):
		return m.doIntent(m.timer, m.timerSnap, binding.Start)
	case key.Matches(msg, m.keys.PauseTimer):
		return m.doIntent(m.timer, m.timerSnap, binding.Pause)
	case key.Matches(msg, m.keys.ResetTimer):
		return m.doIntent(m.timer, m.timerSnap, binding.Reset)
	}
	return m, nil
}

// doIntent forwards intent unless the binding is offline, in which case its
// controls are disabled.
func (m Model) doIntent(b Binding, snap state.Snapshot, intent control.Intent) (tea.Model, tea.Cmd) {
	if snap.IsOffline() {
		m.notice = b.Name() + " is offline"
		return m, nil
	}
	return m, intentCmd(b, intent)
}

// renderDashboard renders the lights and timer cards side by side.
func (m Model) renderDashboard() string {
	lights := m.renderLightsCard()
	timer := m.renderTimerCard()

	if m.width > 0 && m.width < 2*(cardWidth+6) {
		return lipgloss.JoinVertical(lipgloss.Left, lights, timer)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, lights, "  ", timer)
}

func (m Model) renderLightsCard() string {
	styles := m.theme.Styles()
	snap := m.lightsSnap

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Dishwasher"))
	b.WriteString("\n\n")

	if !m.hasSnapshot {
		b.WriteString(styles.MutedText.Render("Connecting..."))
		return styles.Card.Width(cardWidth).Render(b.String())
	}

	b.WriteString(styles.StatusStyle(string(snap.Display)).Render(strings.ToUpper(string(snap.Display))))
	b.WriteString("\n\n")
	b.WriteString(m.renderLightsLEDs(snap.Display))
	b.WriteString("\n\n")

	if snap.IsOffline() {
		b.WriteString(m.renderOffline(snap))
	} else {
		action := "Mark clean"
		if snap.Display == binding.Clean {
			action = "Mark dirty"
		}
		b.WriteString(renderAction(styles, "l", action))
	}
	return styles.Card.Width(cardWidth).Render(b.String())
}

// renderLightsLEDs shows which LED the display state corresponds to.
func (m Model) renderLightsLEDs(d state.Display) string {
	styles := m.theme.Styles()
	red := styles.FaintText.Render("○ red")
	green := styles.FaintText.Render("○ green")
	switch d {
	case binding.Dirty:
		red = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColors["dirty"])).Render("● red")
	case binding.Clean:
		green = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColors["clean"])).Render("● green")
	}
	return red + "   " + green
}

func (m Model) renderTimerCard() string {
	styles := m.theme.Styles()
	snap := m.timerSnap

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Timer"))
	b.WriteString("\n\n")

	if !m.hasSnapshot {
		b.WriteString(styles.MutedText.Render("Connecting..."))
		return styles.Card.Width(cardWidth).Render(b.String())
	}

	b.WriteString(styles.StatusStyle(string(snap.Display)).Render(strings.ToUpper(string(snap.Display))))
	b.WriteString("\n\n")

	remaining := m.countdown.Remaining()
	if snap.Display == binding.Finished {
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.CountdownColors[countdown.StageDone])).
			Bold(true).
			Render("Time's Up!"))
	} else {
		stage := countdown.StageFor(remaining)
		clock := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.CountdownColors[stage])).
			Bold(true).
			Render(countdown.Format(remaining))
		b.WriteString(clock + " " + styles.MutedText.Render(countdown.Unit(remaining)))
	}
	b.WriteString("\n")
	b.WriteString(m.renderProgress(remaining))
	b.WriteString("\n\n")

	if snap.IsOffline() {
		b.WriteString(m.renderOffline(snap))
		return styles.Card.Width(cardWidth).Render(b.String())
	}

	var actions []string
	switch snap.Display {
	case binding.Idle:
		actions = append(actions, renderAction(styles, "s", "Start"))
	case binding.Running:
		actions = append(actions,
			renderAction(styles, "p", "Pause"),
			renderAction(styles, "x", "Reset"))
	case binding.Paused:
		actions = append(actions,
			renderAction(styles, "s", "Resume"),
			renderAction(styles, "x", "Reset"))
	case binding.Finished:
		actions = append(actions, renderAction(styles, "s", "Start new timer"))
	}
	b.WriteString(strings.Join(actions, "  "))
	return styles.Card.Width(cardWidth).Render(b.String())
}

// renderProgress draws the elapsed share of the countdown.
func (m Model) renderProgress(remaining time.Duration) string {
	width := cardWidth - 6
	total := m.countdown.Duration().Seconds()
	filled := 0
	if total > 0 {
		filled = int(float64(width) * (1 - remaining.Seconds()/total))
	}
	filled = max(0, min(width, filled))
	styles := m.theme.Styles()
	return styles.AccentText.Render(strings.Repeat("█", filled)) +
		styles.FaintText.Render(strings.Repeat("░", width-filled))
}

// renderOffline renders the disconnected indicator in place of the controls.
func (m Model) renderOffline(snap state.Snapshot) string {
	styles := m.theme.Styles()
	line := styles.StatusStyle("offline").Render("OFFLINE")
	if snap.ConsecutiveFailures > 0 {
		line += " " + styles.MutedText.Render(fmt.Sprintf("%d failed polls", snap.ConsecutiveFailures))
	}
	return line + "\n" + styles.FaintText.Render("controls disabled, R to reconnect")
}

func renderAction(styles Styles, k, label string) string {
	return styles.WarningText.Render("["+k+"]") + " " + styles.Text.Render(label)
}
