package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddlechat/huddle/internal/types"
)

// handleMouse routes clicks on marked zones: a byline opens the
// author's profile, a thread footer opens the thread.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	for _, message := range m.clickableMessages() {
		if z := m.zones.Get("byline-" + message.ID); z.InBounds(msg) {
			m.closeThread()
			m.panels.OpenProfile(message.MemberID)
			return m, nil
		}
		if z := m.zones.Get("thread-" + message.ID); z.InBounds(msg) {
			root := message
			m.openThread(root)
			return m, m.fetchPage(m.threadCur, nil)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// clickableMessages lists every message with live click zones: the
// main feed plus the open thread panel.
func (m *Model) clickableMessages() []types.Message {
	msgs := m.feedCur.Messages()
	if m.threadCur == nil {
		return msgs
	}
	out := make([]types.Message, 0, len(msgs)+m.threadCur.Len())
	out = append(out, msgs...)
	out = append(out, m.threadCur.Messages()...)
	return out
}

// plainBody strips fenced code markers for notification previews.
func plainBody(body string) string {
	var out []string
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		if _, _, ok := parseFence(line); ok {
			inFence = !inFence
			continue
		}
		if !inFence {
			out = append(out, line)
		}
	}
	return strings.Join(out, " ")
}
