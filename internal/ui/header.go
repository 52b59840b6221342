package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/state"
)

// renderHeader renders the status bar: logo, per-binding health and the
// last refresh time.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("kitchenhub", styles.Logo)}

	if !m.hasSnapshot {
		parts = append(parts, bg.Render("Connecting to device...", styles.WarningText.Bold(true)))
		return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
	}

	parts = append(parts,
		m.healthIndicator(bg, styles, "Lights", m.lightsSnap),
		m.healthIndicator(bg, styles, "Timer", m.timerSnap),
	)

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.notice != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Spaces(1)+
				bg.Render(truncate(m.notice, 60), styles.WarningText),
		)
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

func (m Model) healthIndicator(bg BgStyle, styles Styles, label string, snap state.Snapshot) string {
	indicator := bg.Render("● ON", styles.SuccessText)
	if snap.IsOffline() {
		indicator = bg.Render("● OFFLINE", styles.DangerText)
	}
	return bg.Render(label+":", styles.MutedText) + bg.Spaces(1) + indicator
}

// formatTimestamp formats the last update time.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}
	return m.lastUpdated.Format("15:04:05")
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewChecklist:
		if m.checklistState.input.Focused() {
			commands = []cmd{{"enter", "Add"}, {"esc", "Cancel"}}
		} else {
			commands = []cmd{
				{"a", "Add"},
				{"space", "Check"},
				{"d", "Delete"},
				{"j/k", "Navigate"},
			}
		}
	case ViewLogs:
		level := m.logState.minLevel
		if level == "" {
			level = "All"
		}
		follow := "Follow"
		if !m.logState.follow {
			follow = "Paused"
		}
		commands = []cmd{
			{"f", level},
			{"j/k", "Scroll"},
			{"G", follow},
		}
	default:
		commands = []cmd{
			{"l", "Dishwasher"},
			{"s", "Start"},
			{"p", "Pause"},
			{"x", "Reset"},
			{"R", "Reconnect"},
		}
	}
	commands = append(commands, cmd{"tab", m.cycleView(1).String()}, cmd{"?", "More"})

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+bg.Render(":", styles.FaintText)+bg.Render(c.desc, styles.MutedText))
	}
	return bg.FillLine(bg.Join(segments, "  "), m.width)
}

// renderFooter renders the short help line.
func (m Model) renderFooter() string {
	return m.theme.Styles().Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
