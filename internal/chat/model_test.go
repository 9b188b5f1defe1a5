package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddlechat/huddle/internal/service"
	"github.com/huddlechat/huddle/internal/types"
)

// stubService satisfies DataService with canned data; tests drive the
// model by injecting messages directly instead of through fetches.
type stubService struct {
	channels []types.Channel
	members  []types.Member
	subs     []func(types.StoreEvent)
}

func (s *stubService) FetchPage(context.Context, types.Scope, *types.MessageCursor, int) (types.FeedPage, error) {
	return types.FeedPage{}, nil
}

func (s *stubService) GetMessage(context.Context, string) (types.Message, error) {
	return types.Message{}, nil
}

func (s *stubService) Subscribe(scope types.Scope, fn func(types.StoreEvent)) service.UnsubscribeFunc {
	s.subs = append(s.subs, fn)
	return func() {}
}

func (s *stubService) CreateMessage(ctx context.Context, scope types.Scope, body string, image *string) (types.Message, error) {
	return types.Message{ID: "msg-new", Body: body}, nil
}

func (s *stubService) UpdateMessage(context.Context, string, string) error { return nil }

func (s *stubService) DeleteMessage(context.Context, string) error { return nil }

func (s *stubService) ToggleReaction(context.Context, string, string) error { return nil }

func (s *stubService) RequestUploadDestination(context.Context) (string, error) {
	return "http://127.0.0.1:1/u/test", nil
}

func (s *stubService) CurrentMember(context.Context) (types.Member, error) {
	return s.members[0], nil
}

func (s *stubService) GetMember(context.Context, string) (types.Member, error) {
	return types.Member{}, nil
}

func (s *stubService) ListChannels(context.Context) ([]types.Channel, error) {
	return s.channels, nil
}

func (s *stubService) ListMembers(context.Context) ([]types.Member, error) {
	return s.members, nil
}

func (s *stubService) GetOrCreateConversation(context.Context, string) (types.Conversation, error) {
	return types.Conversation{}, nil
}

func (s *stubService) Workspace(context.Context) (types.Workspace, error) {
	return types.Workspace{ID: "wks-a", Name: "acme"}, nil
}

func newTestModel(t *testing.T) (*Model, *stubService) {
	t.Helper()
	svc := &stubService{
		channels: []types.Channel{{ID: "chn-general", Name: "general", CreatedAt: 1}},
		members:  []types.Member{{ID: "mbr-a", Name: "ada", JoinedAt: 1}},
	}
	m, err := NewModel(Options{
		Service:   svc,
		Member:    svc.members[0],
		Workspace: types.Workspace{ID: "wks-a", Name: "acme"},
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m, svc
}

func feedMessage(id string, ts int64) types.Message {
	channel := "chn-general"
	return types.Message{ID: id, ChannelID: &channel, MemberID: "mbr-a", Body: "hello", CreatedAt: ts}
}

// The panel coordinator belongs to the Update loop. A successful
// removal must leave it alone until the store's Deleted event comes
// back through handleEvent; nothing on the dispatcher's goroutine may
// mutate it.
func TestRemoveClosesPanelOnlyViaStoreEvent(t *testing.T) {
	m, _ := newTestModel(t)
	root := feedMessage("msg-root", 1000)
	m.feedCur.ApplyEvent(types.StoreEvent{Kind: types.EventCreated, Message: root})
	m.openThread(root)

	if err := m.dispatch.Remove(context.Background(), root.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !m.panels.Open() {
		t.Fatal("panel mutated before the store confirmed the delete")
	}

	m.handleEvent(eventMsg{ev: types.StoreEvent{Kind: types.EventDeleted, Message: root}})
	if m.panels.Open() {
		t.Fatal("panel still open after the confirmed delete")
	}
	if m.threadCur != nil {
		t.Fatal("thread feed still mounted after its root was deleted")
	}
}

// Store events must all reach the loop: a dropped Deleted event is
// never replayed. Once the buffer fills, delivery waits for the loop
// to drain instead of discarding.
func TestStoreEventDeliveryDoesNotDrop(t *testing.T) {
	m, svc := newTestModel(t)
	deliver := svc.subs[len(svc.subs)-1]

	n := cap(m.events) + 1
	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			deliver(types.StoreEvent{
				Kind:    types.EventCreated,
				Message: feedMessage(fmt.Sprintf("msg-%03d", i), int64(1000+i)),
			})
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("events past the buffer were discarded")
	default:
	}

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		ev := <-m.events
		if seen[ev.Message.ID] {
			t.Fatalf("event %s delivered twice", ev.Message.ID)
		}
		seen[ev.Message.ID] = true
	}
	<-done
	if len(seen) != n {
		t.Fatalf("received %d distinct events, expected %d", len(seen), n)
	}
}

// A thread panel's page completion must not move the main feed
// viewport.
func TestThreadPageKeepsMainFeedScroll(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m, _ := newTestModel(t)
	m.handleResize(tea.WindowSizeMsg{Width: 80, Height: 24})

	// Enough messages that the viewport has somewhere to scroll.
	msgs := make([]types.Message, 0, 40)
	for i := 39; i >= 0; i-- {
		msgs = append(msgs, feedMessage(fmt.Sprintf("msg-%03d", i), int64(1000+i*1000)))
	}
	m.handlePage(pageMsg{target: m.feedCur, epoch: m.feedCur.Epoch(), page: types.FeedPage{Messages: msgs}})
	m.viewport.GotoTop()

	root := msgs[len(msgs)-1]
	m.openThread(root)
	parent := root.ID
	reply := feedMessage("msg-reply", 2000)
	reply.ParentID = &parent
	m.handlePage(pageMsg{
		target: m.threadCur,
		epoch:  m.threadCur.Epoch(),
		page:   types.FeedPage{Messages: []types.Message{reply}},
	})

	if !m.viewport.AtTop() {
		t.Fatal("thread page completion scrolled the main feed")
	}
	if m.threadCur.Len() != 1 {
		t.Fatalf("thread cursor holds %d messages, expected 1", m.threadCur.Len())
	}
}

// Messages shown in the thread panel carry click zones too.
func TestClickTargetsIncludeThreadPanel(t *testing.T) {
	m, _ := newTestModel(t)
	root := feedMessage("msg-root", 1000)
	m.feedCur.ApplyEvent(types.StoreEvent{Kind: types.EventCreated, Message: root})
	m.openThread(root)

	parent := root.ID
	reply := feedMessage("msg-reply", 2000)
	reply.ParentID = &parent
	m.threadCur.ApplyEvent(types.StoreEvent{Kind: types.EventCreated, Message: reply})

	var found bool
	for _, msg := range m.clickableMessages() {
		if msg.ID == reply.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("thread panel message missing from click targets")
	}

	m.closeThread()
	for _, msg := range m.clickableMessages() {
		if msg.ID == reply.ID {
			t.Fatal("closed thread's messages still click targets")
		}
	}
}
