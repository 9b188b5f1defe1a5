package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/feed"
	"github.com/huddlechat/huddle/internal/types"
)

// formatMessage renders one annotated message. Compact messages show a
// time gutter instead of repeating the author header.
func (m *Model) formatMessage(msg feed.Annotated, width int, inThread bool) string {
	created := time.UnixMilli(msg.CreatedAt)
	body := highlightCodeBlocks(msg.Body)
	if width > 2 {
		body = ansi.Wrap(body, width-8, "")
	}

	var b strings.Builder
	if msg.Compact {
		gutter := metaStyle.Render(created.Format("15:04"))
		b.WriteString(gutter)
		b.WriteString("  ")
		b.WriteString(indentAfterFirst(body, 7))
	} else {
		author := msg.AuthorName
		if author == "" {
			author = "Member"
		}
		byline := authorStyle.Render(author) + "  " +
			metaStyle.Render(created.Format("3:04 PM")) + "  " +
			metaStyle.Render("#"+core.GUIDPrefix(msg.ID, displayIDWidth))
		b.WriteString(m.zones.Mark("byline-"+msg.ID, byline))
		b.WriteString("\n")
		b.WriteString(indentAfterFirst(body, 0))
	}

	if msg.Image != nil {
		b.WriteString("\n")
		b.WriteString(metaStyle.Render("[image: " + *msg.Image + "]"))
	}
	if msg.Edited() {
		b.WriteString(" ")
		b.WriteString(editedStyle.Render("(edited)"))
	}
	if line := m.formatReactions(msg.Message); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if !inThread && msg.Thread != nil && msg.Thread.Count > 0 {
		b.WriteString("\n")
		b.WriteString(m.zones.Mark("thread-"+msg.ID, m.formatThreadFooter(msg.Message)))
	}
	return b.String()
}

func (m *Model) formatReactions(msg types.Message) string {
	if len(msg.Reactions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(msg.Reactions))
	for _, r := range msg.Reactions {
		label := fmt.Sprintf("%s %d", r.Value, r.Count)
		if r.HasMember(m.member.ID) {
			label = "[" + label + "]"
		}
		parts = append(parts, reactionStyle.Render(label))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) formatThreadFooter(msg types.Message) string {
	noun := "replies"
	if msg.Thread.Count == 1 {
		noun = "reply"
	}
	last := humanize.Time(time.UnixMilli(msg.Thread.LastReplyAt))
	return metaStyle.Render(fmt.Sprintf("↳ %d %s · last %s", msg.Thread.Count, noun, last))
}

// indentAfterFirst pads continuation lines so wrapped bodies align
// under a gutter.
func indentAfterFirst(s string, pad int) string {
	if pad <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	prefix := strings.Repeat(" ", pad)
	for i := 1; i < len(lines); i++ {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
