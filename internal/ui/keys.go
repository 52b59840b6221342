package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Reconnect  key.Binding

	// View switching
	ViewDashboard key.Binding
	ViewChecklist key.Binding
	ViewLogs      key.Binding

	// Dashboard actions
	ToggleLights key.Binding
	StartTimer   key.Binding
	PauseTimer   key.Binding
	ResetTimer   key.Binding

	// Checklist actions
	AddItem    key.Binding
	ToggleItem key.Binding
	DeleteItem key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Logs actions
	CycleLevel key.Binding

	// Input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reconnect"),
		),

		ViewDashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Dashboard"),
		),
		ViewChecklist: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Checklist"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Logs"),
		),

		ToggleLights: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle dishwasher"),
		),
		StartTimer: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Start timer"),
		),
		PauseTimer: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Pause timer"),
		),
		ResetTimer: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Reset timer"),
		),

		AddItem: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add item"),
		),
		ToggleItem: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "Check/uncheck"),
		),
		DeleteItem: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete item"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		CycleLevel: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle level filter"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewDashboard, k.ViewChecklist, k.ViewLogs},
		{k.ToggleLights, k.StartTimer, k.PauseTimer, k.ResetTimer, k.Reconnect},
		{k.AddItem, k.ToggleItem, k.DeleteItem, k.Up, k.Down},
		{k.CycleLevel, k.Top, k.Bottom},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
