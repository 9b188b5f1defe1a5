package chat

import (
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/huddlechat/huddle/internal/types"
)

var mentionRe = regexp.MustCompile(`@([a-zA-Z][a-zA-Z0-9._-]*)`)

// mentionsMember reports whether the body @-mentions the given name.
func mentionsMember(body, name string) bool {
	for _, match := range mentionRe.FindAllStringSubmatch(body, -1) {
		if strings.EqualFold(match[1], name) {
			return true
		}
	}
	return false
}

// maybeNotify fires a desktop notification for incoming messages that
// mention the current member or arrive in a direct conversation.
func (m *Model) maybeNotify(msg types.Message) tea.Cmd {
	if !m.notifyOnMsg || msg.MemberID == m.member.ID {
		return nil
	}
	direct := msg.ConversationID != nil
	if !direct && !mentionsMember(msg.Body, m.member.Name) {
		return nil
	}

	author := msg.AuthorName
	if author == "" {
		author = "Member"
	}
	body := plainBody(msg.Body)
	if len(body) > 120 {
		body = body[:117] + "..."
	}
	return func() tea.Msg {
		_ = beeep.Notify("huddle", author+": "+body, "")
		return nil
	}
}
