package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddlechat/huddle/internal/feed"
	"github.com/huddlechat/huddle/internal/types"
)

// Update is the single event loop: page completions, live store
// events, dispatcher outcomes, and input all interleave here.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case pageMsg:
		return m.handlePage(msg)
	case eventMsg:
		return m.handleEvent(msg)
	case toastMsg:
		cmd := m.setStatus(msg.text, msg.isErr)
		return m, tea.Batch(cmd, m.waitToast())
	case clearStatusMsg:
		if msg.serial == m.statusSerial {
			m.status = ""
		}
		return m, nil
	case sendDoneMsg:
		return m.handleSendDone(msg)
	case editDoneMsg:
		if msg.err == nil {
			// Editing selection is released only on success; a failed
			// edit keeps the input intact for retry.
			m.editingID = ""
			m.input.Reset()
		}
		return m, nil
	case removeDoneMsg, reactDoneMsg:
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	if !m.ready {
		m.viewport = viewport.New(m.mainWidth(), m.feedHeight())
		m.ready = true
	}
	m.resize()
	return m, nil
}

func (m *Model) handlePage(msg pageMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.target.ApplyError(msg.epoch, msg.err) {
			m.log.WithError(msg.err).Warn("page fetch failed")
			return m, m.setStatus("Failed to load messages", true)
		}
		return m, nil
	}
	first := msg.target.Status() == feed.LoadingFirstPage
	if msg.target.ApplyPage(msg.epoch, msg.page) && msg.target == m.feedCur {
		// Thread pages render through View directly; only main feed
		// pages rewrite the viewport, and only a first page pins it to
		// the newest message.
		m.refreshViewport(first)
	}
	return m, nil
}

func (m *Model) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	ev := msg.ev
	var cmds []tea.Cmd

	m.feedCur.ApplyEvent(ev)
	if m.threadCur != nil {
		m.threadCur.ApplyEvent(ev)
	}

	switch ev.Kind {
	case types.EventCreated:
		if cmd := m.maybeNotify(ev.Message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case types.EventUpdated:
		if m.threadRoot != nil && m.threadRoot.ID == ev.Message.ID {
			root := ev.Message
			m.threadRoot = &root
		}
	case types.EventDeleted:
		m.panels.MessageDeleted(ev.Message.ID)
		if m.threadRoot != nil && m.threadRoot.ID == ev.Message.ID {
			m.closeThread()
		}
		if m.editingID == ev.Message.ID {
			m.editingID = ""
			m.input.Reset()
		}
		if m.confirmID == ev.Message.ID {
			m.confirmID = ""
		}
	}

	m.refreshViewport(ev.Kind == types.EventCreated && m.atBottom())
	cmds = append(cmds, m.waitEvent())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleSendDone(msg sendDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.input.Reset()
		m.attachPath = ""
		m.refreshViewport(true)
	}
	return m, nil
}

func (m *Model) atBottom() bool {
	if !m.ready {
		return true
	}
	return m.viewport.AtBottom()
}

// refreshViewport re-renders the feed into the viewport, optionally
// pinning the view to the newest message.
func (m *Model) refreshViewport(goToBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderFeed(m.feedCur, m.mainWidth(), false))
	if goToBottom {
		m.viewport.GotoBottom()
	}
}
