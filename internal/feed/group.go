package feed

import (
	"time"

	"github.com/huddlechat/huddle/internal/types"
)

// CompactWindow is how close together two messages by the same author
// must be for the second to render without its own header.
const CompactWindow = 5 * time.Minute

const dayKeyFormat = "2006-01-02"

// Annotated pairs a message with its computed render flags.
type Annotated struct {
	types.Message
	// Compact is true when the message directly follows another by the
	// same author within CompactWindow and renders without a header.
	Compact bool
}

// DayGroup is one calendar day's worth of messages, oldest-first.
type DayGroup struct {
	Key      string
	Day      time.Time
	Messages []Annotated
}

// Group buckets a newest-first message sequence by calendar day in the
// local time zone. Groups come back newest-day-first; messages within
// a group are oldest-first. Nil slots (tombstoned entries) are skipped
// and do not count as the previous message for compaction.
func Group(messages []*types.Message) []DayGroup {
	return GroupIn(time.Local, messages)
}

// GroupIn is Group with an explicit time zone for day bucketing.
func GroupIn(loc *time.Location, messages []*types.Message) []DayGroup {
	var order []string
	buckets := make(map[string][]types.Message)
	days := make(map[string]time.Time)

	for _, msg := range messages {
		if msg == nil {
			continue
		}
		created := time.UnixMilli(msg.CreatedAt).In(loc)
		key := created.Format(dayKeyFormat)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
			year, month, day := created.Date()
			days[key] = time.Date(year, month, day, 0, 0, 0, 0, loc)
		}
		// Input is newest-first; prepending yields oldest-first per day.
		buckets[key] = append([]types.Message{*msg}, buckets[key]...)
	}

	groups := make([]DayGroup, 0, len(order))
	for _, key := range order {
		msgs := buckets[key]
		annotated := make([]Annotated, len(msgs))
		for i, msg := range msgs {
			compact := false
			if i > 0 {
				prev := msgs[i-1]
				gap := time.Duration(msg.CreatedAt-prev.CreatedAt) * time.Millisecond
				compact = prev.MemberID == msg.MemberID && gap < CompactWindow
			}
			annotated[i] = Annotated{Message: msg, Compact: compact}
		}
		groups = append(groups, DayGroup{Key: key, Day: days[key], Messages: annotated})
	}
	return groups
}

// DayLabel renders a group's separator label relative to now:
// "Today", "Yesterday", or a weekday-and-date form.
func DayLabel(day time.Time, now time.Time) string {
	if sameDay(day, now) {
		return "Today"
	}
	if sameDay(day, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return day.Format("Monday, January 2")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
