// Package feed implements the live message feed engine: a
// backward-paginated cursor over one message scope and the pure
// grouping pass that turns its contents into day buckets for display.
package feed

import (
	"github.com/huddlechat/huddle/internal/types"
)

// Status is the load state of a Cursor.
type Status int

const (
	// LoadingFirstPage is the initial state; nothing has arrived yet.
	LoadingFirstPage Status = iota
	// CanLoadMore means at least one page is held and older pages may
	// remain.
	CanLoadMore
	// LoadingMore means a continuation fetch is in flight.
	LoadingMore
	// Exhausted means no older pages remain.
	Exhausted
)

func (s Status) String() string {
	switch s {
	case LoadingFirstPage:
		return "LoadingFirstPage"
	case CanLoadMore:
		return "CanLoadMore"
	case LoadingMore:
		return "LoadingMore"
	case Exhausted:
		return "Exhausted"
	}
	return "unknown"
}

// Cursor maintains a growing, backward-paginated view of one message
// scope. The held sequence is newest-first, identity-deduplicated, and
// ordered by creation. A Cursor is owned by a single event loop; it is
// not safe for concurrent use.
type Cursor struct {
	scope    types.Scope
	status   Status
	messages []types.Message
	held     map[string]struct{}
	next     *types.MessageCursor
	epoch    int
}

// NewCursor creates a cursor for the scope in LoadingFirstPage. The
// caller fetches the first page with a nil continuation cursor and the
// current epoch, then calls ApplyPage or ApplyError.
func NewCursor(scope types.Scope) *Cursor {
	return &Cursor{
		scope:  scope,
		status: LoadingFirstPage,
		held:   make(map[string]struct{}),
	}
}

// Scope returns the scope this cursor reads from.
func (c *Cursor) Scope() types.Scope { return c.scope }

// Status returns the current load state.
func (c *Cursor) Status() Status { return c.status }

// Epoch returns the mount generation. Results fetched under an older
// epoch are dropped by ApplyPage/ApplyError.
func (c *Cursor) Epoch() int { return c.epoch }

// Messages returns the held sequence, newest-first. Callers must not
// mutate the returned slice.
func (c *Cursor) Messages() []types.Message { return c.messages }

// Len returns the number of held messages.
func (c *Cursor) Len() int { return len(c.messages) }

// BeginLoadMore transitions to LoadingMore and returns the
// continuation cursor and epoch for the fetch. It reports false when
// the cursor cannot load more: a fetch is already in flight, the scope
// is exhausted, or the first page has not arrived yet. Callers must
// not start a fetch when ok is false.
func (c *Cursor) BeginLoadMore() (cursor *types.MessageCursor, epoch int, ok bool) {
	if c.status != CanLoadMore {
		return nil, 0, false
	}
	c.status = LoadingMore
	return c.next, c.epoch, true
}

// ApplyPage merges a fetched page and settles the load state from the
// returned continuation. It reports false when the page was fetched
// under a stale epoch and was dropped.
func (c *Cursor) ApplyPage(epoch int, page types.FeedPage) bool {
	if epoch != c.epoch {
		return false
	}
	for _, msg := range page.Messages {
		c.merge(msg)
	}
	c.next = page.NextCursor
	if c.next != nil {
		c.status = CanLoadMore
	} else {
		c.status = Exhausted
	}
	return true
}

// ApplyError records a failed fetch. The cursor returns to
// CanLoadMore so the caller can retry; the continuation is unchanged.
func (c *Cursor) ApplyError(epoch int, err error) bool {
	if epoch != c.epoch {
		return false
	}
	c.status = CanLoadMore
	return true
}

// ApplyEvent ingests one live update without touching the load state.
// Created messages are inserted at the newest end, updated messages
// replaced in place by identity, deleted messages removed. Re-delivery
// of a held message neither duplicates nor reorders.
func (c *Cursor) ApplyEvent(ev types.StoreEvent) {
	switch ev.Kind {
	case types.EventCreated:
		if !c.scope.Contains(ev.Message) {
			return
		}
		c.merge(ev.Message)
	case types.EventUpdated:
		if _, ok := c.held[ev.Message.ID]; !ok {
			return
		}
		for i := range c.messages {
			if c.messages[i].ID == ev.Message.ID {
				c.messages[i] = ev.Message
				return
			}
		}
	case types.EventDeleted:
		if _, ok := c.held[ev.Message.ID]; !ok {
			return
		}
		delete(c.held, ev.Message.ID)
		for i := range c.messages {
			if c.messages[i].ID == ev.Message.ID {
				c.messages = append(c.messages[:i], c.messages[i+1:]...)
				return
			}
		}
	}
}

// Invalidate bumps the epoch so results from in-flight fetches started
// before this call are dropped. A cursor being unmounted calls this.
func (c *Cursor) Invalidate() {
	c.epoch++
	if c.status == LoadingMore {
		c.status = CanLoadMore
	}
}

// merge inserts a message preserving newest-first creation order, or
// replaces it in place when already held.
func (c *Cursor) merge(msg types.Message) {
	if _, ok := c.held[msg.ID]; ok {
		for i := range c.messages {
			if c.messages[i].ID == msg.ID {
				c.messages[i] = msg
				return
			}
		}
		return
	}
	c.held[msg.ID] = struct{}{}

	pos := len(c.messages)
	for i := range c.messages {
		if newerThan(msg, c.messages[i]) {
			pos = i
			break
		}
	}
	c.messages = append(c.messages, types.Message{})
	copy(c.messages[pos+1:], c.messages[pos:])
	c.messages[pos] = msg
}

// newerThan orders messages by creation time, identity as tiebreak.
func newerThan(a, b types.Message) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.ID > b.ID
}
