package chat

import (
	"strings"
	"time"

	"github.com/huddlechat/huddle/internal/feed"
)

// renderThreadPanel shows the root message followed by its replies,
// rendered by a second feed instance over the thread scope.
func (m *Model) renderThreadPanel(width int) string {
	var b strings.Builder
	title := "Thread"
	if m.threadFocus {
		title += " (composing here)"
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	if m.threadRoot == nil || m.threadCur == nil {
		b.WriteString(metaStyle.Render("Message not found"))
		return b.String()
	}

	b.WriteString(m.formatMessage(feed.Annotated{Message: *m.threadRoot}, width, true))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", max(1, width))))
	b.WriteString("\n")
	b.WriteString(m.renderFeed(m.threadCur, width, true))
	return b.String()
}

// renderProfilePanel shows a member's profile.
func (m *Model) renderProfilePanel(memberID string, width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Profile"))
	b.WriteString("\n")

	var found bool
	for _, member := range m.members {
		if member.ID != memberID {
			continue
		}
		found = true
		b.WriteString(authorStyle.Render(member.Name))
		b.WriteString("\n")
		if member.Role != "" {
			b.WriteString(metaStyle.Render(member.Role))
			b.WriteString("\n")
		}
		b.WriteString(metaStyle.Render("joined " + joinedLabel(member.JoinedAt)))
		b.WriteString("\n\n")
		b.WriteString(metaStyle.Render("/dm " + member.Name + " to start a conversation"))
	}
	if !found {
		b.WriteString(metaStyle.Render("Member not found"))
	}
	return b.String()
}

func joinedLabel(ts int64) string {
	return time.UnixMilli(ts).Format("January 2, 2006")
}
