package feed

import (
	"errors"
	"testing"

	"github.com/huddlechat/huddle/internal/types"
)

func chanMsg(id string, ts int64) types.Message {
	channel := "chn-feedtest"
	return types.Message{ID: id, ChannelID: &channel, MemberID: "mbr-a", Body: "hello", CreatedAt: ts}
}

func page(next *types.MessageCursor, msgs ...types.Message) types.FeedPage {
	return types.FeedPage{Messages: msgs, NextCursor: next}
}

func ids(c *Cursor) []string {
	out := make([]string, 0, c.Len())
	for _, m := range c.Messages() {
		out = append(out, m.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCursorFirstPage(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	if c.Status() != LoadingFirstPage {
		t.Fatalf("initial status = %v, expected LoadingFirstPage", c.Status())
	}
	if _, _, ok := c.BeginLoadMore(); ok {
		t.Fatal("BeginLoadMore should be refused before the first page")
	}

	next := &types.MessageCursor{GUID: "msg-b", TS: 100}
	if !c.ApplyPage(c.Epoch(), page(next, chanMsg("msg-c", 300), chanMsg("msg-b", 100))) {
		t.Fatal("ApplyPage dropped a fresh result")
	}
	if c.Status() != CanLoadMore {
		t.Fatalf("status = %v, expected CanLoadMore", c.Status())
	}
	if !equalIDs(ids(c), []string{"msg-c", "msg-b"}) {
		t.Fatalf("held = %v", ids(c))
	}
}

func TestCursorExhaustedIsTerminalForLoadMore(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	c.ApplyPage(c.Epoch(), page(nil, chanMsg("msg-a", 100)))
	if c.Status() != Exhausted {
		t.Fatalf("status = %v, expected Exhausted", c.Status())
	}
	if _, _, ok := c.BeginLoadMore(); ok {
		t.Fatal("loadMore on an exhausted cursor must be a no-op")
	}
}

func TestCursorLoadMoreNoDuplicateFetch(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	c.ApplyPage(c.Epoch(), page(&types.MessageCursor{GUID: "msg-b", TS: 100}, chanMsg("msg-b", 100)))

	cur, epoch, ok := c.BeginLoadMore()
	if !ok {
		t.Fatal("BeginLoadMore refused in CanLoadMore")
	}
	if cur == nil || cur.GUID != "msg-b" {
		t.Fatalf("continuation = %+v", cur)
	}
	if c.Status() != LoadingMore {
		t.Fatalf("status = %v, expected LoadingMore", c.Status())
	}
	if _, _, ok := c.BeginLoadMore(); ok {
		t.Fatal("duplicate fetch enqueued while LoadingMore")
	}

	c.ApplyPage(epoch, page(nil, chanMsg("msg-a", 50)))
	if c.Status() != Exhausted {
		t.Fatalf("status = %v, expected Exhausted", c.Status())
	}
	if !equalIDs(ids(c), []string{"msg-b", "msg-a"}) {
		t.Fatalf("held = %v", ids(c))
	}
}

func TestCursorFailedFetchIsRetryable(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	c.ApplyPage(c.Epoch(), page(&types.MessageCursor{GUID: "msg-b", TS: 100}, chanMsg("msg-b", 100)))

	_, epoch, _ := c.BeginLoadMore()
	if !c.ApplyError(epoch, errors.New("boom")) {
		t.Fatal("ApplyError dropped a fresh failure")
	}
	if c.Status() != CanLoadMore {
		t.Fatalf("status after failure = %v, expected CanLoadMore", c.Status())
	}
	if _, _, ok := c.BeginLoadMore(); !ok {
		t.Fatal("retry refused after failed fetch")
	}
}

func TestCursorMergeNoDuplicates(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	c.ApplyPage(c.Epoch(), page(&types.MessageCursor{GUID: "msg-b", TS: 100},
		chanMsg("msg-c", 300), chanMsg("msg-b", 100)))

	// Overlapping page re-delivers msg-b.
	_, epoch, _ := c.BeginLoadMore()
	c.ApplyPage(epoch, page(nil, chanMsg("msg-b", 100), chanMsg("msg-a", 50)))

	if !equalIDs(ids(c), []string{"msg-c", "msg-b", "msg-a"}) {
		t.Fatalf("held = %v", ids(c))
	}
}

func TestCursorEventIdempotence(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	c.ApplyPage(c.Epoch(), page(nil, chanMsg("msg-a", 100)))

	ev := types.StoreEvent{Kind: types.EventCreated, Message: chanMsg("msg-b", 200)}
	c.ApplyEvent(ev)
	before := ids(c)
	c.ApplyEvent(ev)
	if !equalIDs(ids(c), before) {
		t.Fatalf("re-delivery changed state: %v vs %v", ids(c), before)
	}
	if !equalIDs(before, []string{"msg-b", "msg-a"}) {
		t.Fatalf("held = %v", before)
	}
}

func TestCursorEventUpdateAndDelete(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	c.ApplyPage(c.Epoch(), page(nil, chanMsg("msg-b", 200), chanMsg("msg-a", 100)))

	edited := chanMsg("msg-a", 100)
	edited.Body = "edited"
	c.ApplyEvent(types.StoreEvent{Kind: types.EventUpdated, Message: edited})
	if got := c.Messages()[1].Body; got != "edited" {
		t.Fatalf("body after update = %q", got)
	}
	if !equalIDs(ids(c), []string{"msg-b", "msg-a"}) {
		t.Fatalf("update reordered: %v", ids(c))
	}

	c.ApplyEvent(types.StoreEvent{Kind: types.EventDeleted, Message: edited})
	if !equalIDs(ids(c), []string{"msg-b"}) {
		t.Fatalf("held after delete = %v", ids(c))
	}
	// Deleting again is a no-op.
	c.ApplyEvent(types.StoreEvent{Kind: types.EventDeleted, Message: edited})
	if !equalIDs(ids(c), []string{"msg-b"}) {
		t.Fatalf("held after re-delete = %v", ids(c))
	}
}

func TestCursorEventWrongScopeIgnored(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	c.ApplyPage(c.Epoch(), page(nil, chanMsg("msg-a", 100)))

	other := "chn-other"
	stray := types.Message{ID: "msg-x", ChannelID: &other, MemberID: "mbr-a", CreatedAt: 200}
	c.ApplyEvent(types.StoreEvent{Kind: types.EventCreated, Message: stray})
	if !equalIDs(ids(c), []string{"msg-a"}) {
		t.Fatalf("stray event applied: %v", ids(c))
	}
}

func TestCursorReplyRoutesToThreadScope(t *testing.T) {
	channelCur := NewCursor(types.ChannelScope("chn-feedtest"))
	channelCur.ApplyPage(channelCur.Epoch(), page(nil, chanMsg("msg-root", 100)))
	threadCur := NewCursor(types.ThreadScope("msg-root"))
	threadCur.ApplyPage(threadCur.Epoch(), page(nil))

	reply := chanMsg("msg-reply", 200)
	parent := "msg-root"
	reply.ParentID = &parent

	ev := types.StoreEvent{Kind: types.EventCreated, Message: reply}
	channelCur.ApplyEvent(ev)
	threadCur.ApplyEvent(ev)

	if !equalIDs(ids(channelCur), []string{"msg-root"}) {
		t.Fatalf("reply leaked into channel feed: %v", ids(channelCur))
	}
	if !equalIDs(ids(threadCur), []string{"msg-reply"}) {
		t.Fatalf("reply missing from thread feed: %v", ids(threadCur))
	}
}

func TestCursorStaleEpochDropped(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	stale := c.Epoch()
	c.Invalidate()

	if c.ApplyPage(stale, page(nil, chanMsg("msg-a", 100))) {
		t.Fatal("stale page applied after Invalidate")
	}
	if c.Len() != 0 {
		t.Fatalf("held = %v", ids(c))
	}
	if c.ApplyError(stale, errors.New("boom")) {
		t.Fatal("stale error applied after Invalidate")
	}
}

func TestCursorLiveInsertOrder(t *testing.T) {
	c := NewCursor(types.ChannelScope("chn-feedtest"))
	c.ApplyPage(c.Epoch(), page(nil, chanMsg("msg-b", 200), chanMsg("msg-a", 100)))

	c.ApplyEvent(types.StoreEvent{Kind: types.EventCreated, Message: chanMsg("msg-c", 300)})
	if !equalIDs(ids(c), []string{"msg-c", "msg-b", "msg-a"}) {
		t.Fatalf("held = %v", ids(c))
	}
}
