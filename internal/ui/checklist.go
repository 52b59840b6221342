package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/checklist"
)

// checklistState holds the shopping list view state.
type checklistState struct {
	items    []checklist.Item
	selected int
	input    textinput.Model

	updates     <-chan []checklist.Item
	unsubscribe func()
}

func (m *Model) setChecklistItems(items []checklist.Item) {
	// Keep the cursor on the same item when the list shifts
	var selectedID string
	if cur, ok := m.selectedItem(); ok {
		selectedID = cur.ID
	}
	m.checklistState.items = items
	m.checklistState.selected = 0
	for i, item := range items {
		if item.ID == selectedID {
			m.checklistState.selected = i
			break
		}
	}
}

func (m Model) selectedItem() (checklist.Item, bool) {
	items := m.checklistState.items
	i := m.checklistState.selected
	if i < 0 || i >= len(items) {
		return checklist.Item{}, false
	}
	return items[i], true
}

// handleChecklistInput processes keys while the add-item input is focused.
func (m Model) handleChecklistInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.checklistState.input.Blur()
		m.checklistState.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		text := m.checklistState.input.Value()
		m.checklistState.input.Reset()
		m.checklistState.input.Blur()
		if strings.TrimSpace(text) == "" || m.checklist == nil {
			return m, nil
		}
		return m, addItemCmd(m.ctx, m.checklist, text)
	}

	var cmd tea.Cmd
	m.checklistState.input, cmd = m.checklistState.input.Update(msg)
	return m, cmd
}

// handleChecklistKey processes keys for the checklist view.
func (m Model) handleChecklistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.AddItem) {
		return m, m.checklistState.input.Focus()
	}

	count := len(m.checklistState.items)
	if count == 0 || m.checklist == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.checklistState.selected < count-1 {
			m.checklistState.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.checklistState.selected > 0 {
			m.checklistState.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.checklistState.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.checklistState.selected = count - 1
	case key.Matches(msg, m.keys.ToggleItem):
		if item, ok := m.selectedItem(); ok {
			return m, setCompletedCmd(m.ctx, m.checklist, item.ID, !item.Completed)
		}
	case key.Matches(msg, m.keys.DeleteItem):
		if item, ok := m.selectedItem(); ok {
			return m, deleteItemCmd(m.ctx, m.checklist, item.ID)
		}
	}
	return m, nil
}

// renderChecklist renders the input line and the list, newest first.
func (m Model) renderChecklist() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Shopping list"))
	b.WriteString("  ")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d items", len(m.checklistState.items))))
	b.WriteString("\n\n")

	if m.checklistState.input.Focused() {
		b.WriteString(m.checklistState.input.View())
	} else {
		b.WriteString(styles.FaintText.Render("press a to add an item"))
	}
	b.WriteString("\n\n")

	if m.checklist == nil {
		b.WriteString(styles.MutedText.Render("Checklist unavailable"))
		return styles.Card.Render(b.String())
	}
	if len(m.checklistState.items) == 0 {
		b.WriteString(styles.MutedText.Render("Nothing on the list"))
		return styles.Card.Render(b.String())
	}

	for i, item := range m.checklistState.items {
		box := "[ ]"
		text := styles.Text.Render(item.Text)
		if item.Completed {
			box = "[x]"
			text = styles.FaintText.Strikethrough(true).Render(item.Text)
		}
		line := styles.AccentText.Render(box) + " " + text
		if i == m.checklistState.selected && !m.checklistState.input.Focused() {
			line = styles.Selected.Render(box + " " + item.Text)
		}
		b.WriteString(line)
		if i < len(m.checklistState.items)-1 {
			b.WriteString("\n")
		}
	}

	card := styles.Card
	if m.width > 4 {
		card = card.Width(m.width - 4)
	}
	return card.Render(b.String())
}

// Messages

type checklistSubscribedMsg struct {
	updates     <-chan []checklist.Item
	unsubscribe func()
}

type checklistItemsMsg []checklist.Item

type checklistErrMsg struct{ err error }

// Commands

func subscribeChecklistCmd(ctx context.Context, c Checklist) tea.Cmd {
	return func() tea.Msg {
		ch, cancel, err := c.Subscribe(ctx)
		if err != nil {
			return checklistErrMsg{err}
		}
		return checklistSubscribedMsg{updates: ch, unsubscribe: cancel}
	}
}

// waitForItemsCmd blocks for the next list published by the store. A closed
// subscription produces no message.
func waitForItemsCmd(ch <-chan []checklist.Item) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		items, ok := <-ch
		if !ok {
			return nil
		}
		return checklistItemsMsg(items)
	}
}

func addItemCmd(ctx context.Context, c Checklist, text string) tea.Cmd {
	return func() tea.Msg {
		if _, err := c.Add(ctx, text); err != nil {
			return checklistErrMsg{err}
		}
		return nil
	}
}

func setCompletedCmd(ctx context.Context, c Checklist, id string, completed bool) tea.Cmd {
	return func() tea.Msg {
		if err := c.SetCompleted(ctx, id, completed); err != nil {
			return checklistErrMsg{err}
		}
		return nil
	}
}

func deleteItemCmd(ctx context.Context, c Checklist, id string) tea.Cmd {
	return func() tea.Msg {
		if err := c.Delete(ctx, id); err != nil {
			return checklistErrMsg{err}
		}
		return nil
	}
}
