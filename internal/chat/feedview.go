package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/huddlechat/huddle/internal/feed"
	"github.com/huddlechat/huddle/internal/types"
)

// renderFeed turns a cursor's held sequence into the displayed list:
// grouped by day, oldest at the top, a history indicator above.
func (m *Model) renderFeed(cur *feed.Cursor, width int, inThread bool) string {
	if cur.Status() == feed.LoadingFirstPage {
		return metaStyle.Render(m.spin.View() + " loading messages...")
	}

	msgs := cur.Messages()
	ptrs := make([]*types.Message, len(msgs))
	for i := range msgs {
		ptrs[i] = &msgs[i]
	}
	groups := feed.Group(ptrs)

	var b strings.Builder
	switch cur.Status() {
	case feed.LoadingMore:
		b.WriteString(metaStyle.Render(m.spin.View() + " loading older messages..."))
		b.WriteString("\n")
	case feed.CanLoadMore:
		b.WriteString(metaStyle.Render("· page up for older messages ·"))
		b.WriteString("\n")
	}

	now := time.Now()
	// Groups arrive newest-day-first; the viewport lays out top-down,
	// so walk them in reverse.
	for gi := len(groups) - 1; gi >= 0; gi-- {
		group := groups[gi]
		b.WriteString(daySeparator(feed.DayLabel(group.Day, now), width))
		b.WriteString("\n")
		for _, msg := range group.Messages {
			b.WriteString(m.formatMessage(msg, width, inThread))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func daySeparator(label string, width int) string {
	line := separatorStyle.Render(strings.Repeat("─", max(0, (width-len(label)-4)/2)))
	return lipgloss.JoinHorizontal(lipgloss.Center, line, " "+label+" ", line)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
