package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddlechat/huddle/internal/dispatch"
	"github.com/huddlechat/huddle/internal/feed"
)

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Pending delete confirmation swallows everything except y/n.
	if m.confirmID != "" {
		switch msg.String() {
		case "y", "Y":
			id := m.confirmID
			m.confirmID = ""
			return m, m.removeCmd(id)
		case "n", "N", "esc":
			m.confirmID = ""
			return m, m.setStatus("Delete cancelled", false)
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.editingID != "" {
			m.editingID = ""
			m.input.Reset()
			return m, nil
		}
		if m.panels.Open() {
			m.closeThread()
			m.panels.Close()
			return m, nil
		}
		return m, nil
	case "tab":
		if m.threadCur != nil {
			m.threadFocus = !m.threadFocus
		}
		return m, nil
	case "enter":
		return m.handleSubmit()
	case "pgup", "ctrl+b":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		if m.viewport.AtTop() {
			if more := m.loadMore(m.activeViewCursor()); more != nil {
				return m, tea.Batch(cmd, more)
			}
		}
		return m, cmd
	case "pgdown", "ctrl+f":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// activeViewCursor is the cursor whose history scrolling applies to.
func (m *Model) activeViewCursor() *feed.Cursor {
	if m.threadFocus && m.threadCur != nil {
		return m.threadCur
	}
	return m.feedCur
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		return m.runCommand(text)
	}

	if m.editingID != "" {
		return m, m.editCmd(m.editingID, text)
	}

	scope := m.activeCursor().Scope()
	if m.dispatch.Sending(scope) {
		return m, nil
	}

	var image *dispatch.Image
	if m.attachPath != "" {
		img, err := loadAttachment(m.attachPath)
		if err != nil {
			return m, m.setStatus("Failed to read attachment", true)
		}
		image = img
	}
	return m, m.sendCmd(scope, text, image)
}
