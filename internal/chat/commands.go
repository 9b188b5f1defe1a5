package chat

import (
	"context"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/feed"
	"github.com/huddlechat/huddle/internal/types"
)

const helpText = "/join <channel> · /dm <member> · /thread <id> · /profile <member> · /edit <id> · /rm <id> · /react <id> <emoji> · /attach <path> · /copy <id> · /close"

// runCommand handles slash commands typed into the composer.
func (m *Model) runCommand(text string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(text)
	name := strings.TrimPrefix(parts[0], "/")
	args := parts[1:]

	switch name {
	case "help":
		return m, m.setStatus(helpText, false)
	case "join":
		return m.cmdJoin(args)
	case "dm":
		return m.cmdDM(args)
	case "thread":
		return m.cmdThread(args)
	case "profile":
		return m.cmdProfile(args)
	case "close":
		m.closeThread()
		m.panels.Close()
		return m, nil
	case "edit":
		return m.cmdEdit(args)
	case "rm":
		return m.cmdRemove(args)
	case "react":
		return m.cmdReact(args)
	case "attach":
		return m.cmdAttach(args)
	case "copy":
		return m.cmdCopy(args)
	}
	return m, m.setStatus("Unknown command: /"+name, true)
}

// cmdJoin switches the main feed to a channel; the argument may be a
// glob pattern matched against channel names.
func (m *Model) cmdJoin(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, m.setStatus("Usage: /join <channel>", true)
	}
	pattern := strings.TrimPrefix(args[0], "#")

	var match *types.Channel
	if g, err := glob.Compile(pattern); err == nil {
		for i := range m.channels {
			if g.Match(m.channels[i].Name) {
				match = &m.channels[i]
				break
			}
		}
	}
	if match == nil {
		for i := range m.channels {
			if strings.HasPrefix(m.channels[i].Name, pattern) {
				match = &m.channels[i]
				break
			}
		}
	}
	if match == nil {
		return m, m.setStatus("No channel matches "+pattern, true)
	}

	m.mountScope(types.ChannelScope(match.ID), "#"+match.Name)
	return m, tea.Batch(m.fetchPage(m.feedCur, nil), m.setStatus("Joined #"+match.Name, false))
}

func (m *Model) cmdDM(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, m.setStatus("Usage: /dm <member>", true)
	}
	member := m.findMember(args[0])
	if member == nil {
		return m, m.setStatus("No member named "+args[0], true)
	}
	conv, err := m.svc.GetOrCreateConversation(context.Background(), member.ID)
	if err != nil {
		m.log.WithError(err).Warn("open conversation failed")
		return m, m.setStatus("Failed to open conversation", true)
	}
	m.mountScope(types.ConversationScope(conv.ID), "@"+member.Name)
	return m, m.fetchPage(m.feedCur, nil)
}

func (m *Model) cmdThread(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, m.setStatus("Usage: /thread <id>", true)
	}
	msg := m.resolveMessage(args[0])
	if msg == nil {
		return m, m.setStatus("No message matches "+args[0], true)
	}
	m.openThread(*msg)
	return m, m.fetchPage(m.threadCur, nil)
}

func (m *Model) cmdProfile(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, m.setStatus("Usage: /profile <member>", true)
	}
	member := m.findMember(args[0])
	if member == nil {
		return m, m.setStatus("No member named "+args[0], true)
	}
	m.closeThread()
	m.panels.OpenProfile(member.ID)
	return m, nil
}

func (m *Model) cmdEdit(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, m.setStatus("Usage: /edit <id>", true)
	}
	msg := m.resolveMessage(args[0])
	if msg == nil {
		return m, m.setStatus("No message matches "+args[0], true)
	}
	if msg.MemberID != m.member.ID {
		return m, m.setStatus("You can only edit your own messages", true)
	}
	m.editingID = msg.ID
	m.input.SetValue(msg.Body)
	m.input.CursorEnd()
	return m, nil
}

func (m *Model) cmdRemove(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, m.setStatus("Usage: /rm <id>", true)
	}
	msg := m.resolveMessage(args[0])
	if msg == nil {
		return m, m.setStatus("No message matches "+args[0], true)
	}
	if msg.MemberID != m.member.ID {
		return m, m.setStatus("You can only delete your own messages", true)
	}
	// The y/n gate in handleKey dispatches once confirmed.
	m.confirmID = msg.ID
	return m, m.setStatus("Delete message? y/n", false)
}

func (m *Model) cmdReact(args []string) (tea.Model, tea.Cmd) {
	if len(args) < 2 {
		return m, m.setStatus("Usage: /react <id> <emoji>", true)
	}
	msg := m.resolveMessage(args[0])
	if msg == nil {
		return m, m.setStatus("No message matches "+args[0], true)
	}
	return m, m.reactCmd(msg.ID, args[1])
}

func (m *Model) cmdAttach(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.attachPath = ""
		return m, m.setStatus("Attachment cleared", false)
	}
	if _, err := os.Stat(args[0]); err != nil {
		return m, m.setStatus("No such file: "+args[0], true)
	}
	m.attachPath = args[0]
	return m, m.setStatus("Attached "+args[0], false)
}

func (m *Model) cmdCopy(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, m.setStatus("Usage: /copy <id>", true)
	}
	msg := m.resolveMessage(args[0])
	if msg == nil {
		return m, m.setStatus("No message matches "+args[0], true)
	}
	if err := clipboard.WriteAll(msg.Body); err != nil {
		return m, m.setStatus("Failed to copy message", true)
	}
	return m, m.setStatus("Copied message", false)
}

// resolveMessage matches a full guid or display prefix against the
// messages currently held by either cursor.
func (m *Model) resolveMessage(ref string) *types.Message {
	ref = strings.TrimPrefix(ref, "#")
	for _, cur := range []*feed.Cursor{m.threadCur, m.feedCur} {
		if cur == nil {
			continue
		}
		for _, msg := range cur.Messages() {
			if msg.ID == ref || core.GUIDPrefix(msg.ID, len(ref)) == ref {
				found := msg
				return &found
			}
		}
	}
	return nil
}

func (m *Model) findMember(name string) *types.Member {
	name = strings.TrimPrefix(name, "@")
	for i := range m.members {
		if strings.EqualFold(m.members[i].Name, name) {
			return &m.members[i]
		}
	}
	return nil
}
