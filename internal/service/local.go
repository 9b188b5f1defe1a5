package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/db"
	"github.com/huddlechat/huddle/internal/types"
)

// Local is the SQLite-backed DataService. Mutations write through to
// the store and then fan out StoreEvents to subscribers, so the view
// only ever reflects confirmed state. A filesystem watcher picks up
// writes from other local clients sharing the database file.
type Local struct {
	conn     *sql.DB
	path     string
	memberID string
	log      *logrus.Logger
	now      func() int64

	mu         sync.Mutex
	subs       map[int]subscriber
	nextSub    int
	watermarks map[string]int64

	uploads *uploadServer
	watch   *externalWatcher
}

type subscriber struct {
	scope types.Scope
	fn    func(types.StoreEvent)
}

var _ DataService = (*Local)(nil)

// NewLocal wraps an open workspace database as a DataService for the
// given signed-in member.
func NewLocal(conn *sql.DB, path, memberID string, log *logrus.Logger) *Local {
	if log == nil {
		log = logrus.New()
	}
	return &Local{
		conn:       conn,
		path:       path,
		memberID:   memberID,
		log:        log,
		now:        func() int64 { return time.Now().UnixMilli() },
		subs:       make(map[int]subscriber),
		watermarks: make(map[string]int64),
	}
}

// Close stops the upload server and the external-change watcher.
func (l *Local) Close() error {
	if l.watch != nil {
		l.watch.stop()
	}
	if l.uploads != nil {
		l.uploads.stop()
	}
	return nil
}

// FetchPage implements DataService.
func (l *Local) FetchPage(ctx context.Context, scope types.Scope, cursor *types.MessageCursor, limit int) (types.FeedPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	rows, err := db.GetMessagePage(l.conn, scope, cursor, limit+1)
	if err != nil {
		return types.FeedPage{}, &TransportError{Op: "fetch page", Err: err}
	}

	var next *types.MessageCursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &types.MessageCursor{GUID: last.GUID, TS: last.TS}
	}

	messages, err := l.assemble(rows, scope.Kind != types.ScopeThread)
	if err != nil {
		return types.FeedPage{}, &TransportError{Op: "fetch page", Err: err}
	}
	l.advanceWatermark(scope, messages)
	return types.FeedPage{Messages: messages, NextCursor: next}, nil
}

// GetMessage implements DataService.
func (l *Local) GetMessage(ctx context.Context, id string) (types.Message, error) {
	msg, err := l.assembleOne(id)
	if err != nil {
		return types.Message{}, err
	}
	if msg == nil {
		return types.Message{}, &NotFoundError{Entity: "message", ID: id}
	}
	return *msg, nil
}

// Subscribe implements DataService. Events are delivered on the
// mutating goroutine; consumers bridge them onto their own loop.
func (l *Local) Subscribe(scope types.Scope, fn func(types.StoreEvent)) UnsubscribeFunc {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = subscriber{scope: scope, fn: fn}
	l.mu.Unlock()

	l.ensureWatcher()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// CreateMessage implements DataService.
func (l *Local) CreateMessage(ctx context.Context, scope types.Scope, body string, image *string) (types.Message, error) {
	if body == "" && image == nil {
		return types.Message{}, &ValidationError{Reason: "empty body and no image"}
	}

	row := db.MessageRow{
		GUID:     core.MustGUID("msg"),
		TS:       l.now(),
		MemberID: l.memberID,
		Body:     body,
		Image:    image,
	}

	switch scope.Kind {
	case types.ScopeChannel:
		channel, err := db.GetChannel(l.conn, scope.ChannelID)
		if err != nil {
			return types.Message{}, &TransportError{Op: "create message", Err: err}
		}
		if channel == nil {
			return types.Message{}, &NotFoundError{Entity: "channel", ID: scope.ChannelID}
		}
		row.ChannelID = &channel.ID
	case types.ScopeConversation:
		conv, err := db.GetConversationByID(l.conn, scope.ConversationID)
		if err != nil {
			return types.Message{}, &TransportError{Op: "create message", Err: err}
		}
		if conv == nil {
			return types.Message{}, &NotFoundError{Entity: "conversation", ID: scope.ConversationID}
		}
		row.ConversationID = &conv.ID
	case types.ScopeThread:
		parent, err := db.GetMessageRow(l.conn, scope.ParentID)
		if err != nil {
			return types.Message{}, &TransportError{Op: "create message", Err: err}
		}
		if parent == nil {
			return types.Message{}, &NotFoundError{Entity: "message", ID: scope.ParentID}
		}
		if parent.ParentID != nil {
			return types.Message{}, &ValidationError{Reason: "cannot reply to a reply"}
		}
		row.ParentID = &parent.GUID
		row.ChannelID = parent.ChannelID
		row.ConversationID = parent.ConversationID
	default:
		return types.Message{}, &ValidationError{Reason: "unknown scope"}
	}

	if err := db.InsertMessage(l.conn, row); err != nil {
		return types.Message{}, &TransportError{Op: "create message", Err: err}
	}

	msg, err := l.assembleOne(row.GUID)
	if err != nil || msg == nil {
		return types.Message{}, &TransportError{Op: "create message", Err: err}
	}
	l.emit(types.StoreEvent{Kind: types.EventCreated, Message: *msg})
	if row.ParentID != nil {
		l.emitParentUpdated(*row.ParentID)
	}
	l.log.WithFields(logrus.Fields{"message": row.GUID, "scope": scope.Key()}).Debug("message created")
	return *msg, nil
}

// UpdateMessage implements DataService.
func (l *Local) UpdateMessage(ctx context.Context, id, body string) error {
	if body == "" {
		return &ValidationError{Reason: "empty body"}
	}
	updated, err := db.UpdateMessageBody(l.conn, id, body, l.now())
	if err != nil {
		return &TransportError{Op: "update message", Err: err}
	}
	if !updated {
		return &NotFoundError{Entity: "message", ID: id}
	}
	msg, err := l.assembleOne(id)
	if err != nil || msg == nil {
		return &TransportError{Op: "update message", Err: err}
	}
	l.emit(types.StoreEvent{Kind: types.EventUpdated, Message: *msg})
	return nil
}

// DeleteMessage implements DataService.
func (l *Local) DeleteMessage(ctx context.Context, id string) error {
	msg, err := l.assembleOne(id)
	if err != nil {
		return &TransportError{Op: "delete message", Err: err}
	}
	if msg == nil {
		return &NotFoundError{Entity: "message", ID: id}
	}
	deleted, err := db.DeleteMessage(l.conn, id)
	if err != nil {
		return &TransportError{Op: "delete message", Err: err}
	}
	if !deleted {
		return &NotFoundError{Entity: "message", ID: id}
	}
	l.emit(types.StoreEvent{Kind: types.EventDeleted, Message: *msg})
	if msg.ParentID != nil {
		l.emitParentUpdated(*msg.ParentID)
	}
	return nil
}

// ToggleReaction implements DataService.
func (l *Local) ToggleReaction(ctx context.Context, id, value string) error {
	if value == "" {
		return &ValidationError{Reason: "empty reaction value"}
	}
	row, err := db.GetMessageRow(l.conn, id)
	if err != nil {
		return &TransportError{Op: "toggle reaction", Err: err}
	}
	if row == nil {
		return &NotFoundError{Entity: "message", ID: id}
	}
	if _, err := db.ToggleReaction(l.conn, id, l.memberID, value, l.now()); err != nil {
		return &TransportError{Op: "toggle reaction", Err: err}
	}
	msg, err := l.assembleOne(id)
	if err != nil || msg == nil {
		return &TransportError{Op: "toggle reaction", Err: err}
	}
	l.emit(types.StoreEvent{Kind: types.EventUpdated, Message: *msg})
	return nil
}

// CurrentMember implements DataService.
func (l *Local) CurrentMember(ctx context.Context) (types.Member, error) {
	return l.GetMember(ctx, l.memberID)
}

// GetMember implements DataService.
func (l *Local) GetMember(ctx context.Context, id string) (types.Member, error) {
	m, err := db.GetMember(l.conn, id)
	if err != nil {
		return types.Member{}, &TransportError{Op: "get member", Err: err}
	}
	if m == nil {
		return types.Member{}, &NotFoundError{Entity: "member", ID: id}
	}
	return *m, nil
}

// ListChannels implements DataService.
func (l *Local) ListChannels(ctx context.Context) ([]types.Channel, error) {
	channels, err := db.ListChannels(l.conn)
	if err != nil {
		return nil, &TransportError{Op: "list channels", Err: err}
	}
	return channels, nil
}

// ListMembers implements DataService.
func (l *Local) ListMembers(ctx context.Context) ([]types.Member, error) {
	members, err := db.ListMembers(l.conn)
	if err != nil {
		return nil, &TransportError{Op: "list members", Err: err}
	}
	return members, nil
}

// GetOrCreateConversation implements DataService.
func (l *Local) GetOrCreateConversation(ctx context.Context, otherMemberID string) (types.Conversation, error) {
	other, err := db.GetMember(l.conn, otherMemberID)
	if err != nil {
		return types.Conversation{}, &TransportError{Op: "get conversation", Err: err}
	}
	if other == nil {
		return types.Conversation{}, &NotFoundError{Entity: "member", ID: otherMemberID}
	}
	conv, err := db.GetConversation(l.conn, l.memberID, otherMemberID)
	if err != nil {
		return types.Conversation{}, &TransportError{Op: "get conversation", Err: err}
	}
	if conv != nil {
		return *conv, nil
	}
	created := types.Conversation{
		ID:          core.MustGUID("cnv"),
		MemberOneID: l.memberID,
		MemberTwoID: otherMemberID,
	}
	if err := db.InsertConversation(l.conn, created); err != nil {
		return types.Conversation{}, &TransportError{Op: "create conversation", Err: err}
	}
	return created, nil
}

// Workspace implements DataService.
func (l *Local) Workspace(ctx context.Context) (types.Workspace, error) {
	w, err := db.GetWorkspace(l.conn)
	if err != nil {
		return types.Workspace{}, &TransportError{Op: "get workspace", Err: err}
	}
	if w == nil {
		return types.Workspace{}, &NotFoundError{Entity: "workspace", ID: l.path}
	}
	return *w, nil
}

// emit delivers an event to every subscriber whose scope contains the
// message.
func (l *Local) emit(ev types.StoreEvent) {
	l.mu.Lock()
	targets := make([]subscriber, 0, len(l.subs))
	for _, sub := range l.subs {
		if sub.scope.Contains(ev.Message) {
			targets = append(targets, sub)
		}
	}
	if ev.Message.CreatedAt > l.watermarks[ev.Message.Scope().Key()] {
		l.watermarks[ev.Message.Scope().Key()] = ev.Message.CreatedAt
	}
	l.mu.Unlock()

	for _, sub := range targets {
		sub.fn(ev)
	}
}

// emitParentUpdated re-reads a thread root after a reply change so
// feeds showing it pick up the new thread summary.
func (l *Local) emitParentUpdated(parentID string) {
	parent, err := l.assembleOne(parentID)
	if err != nil || parent == nil {
		return
	}
	l.emit(types.StoreEvent{Kind: types.EventUpdated, Message: *parent})
}

func (l *Local) advanceWatermark(scope types.Scope, messages []types.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := scope.Key()
	for _, msg := range messages {
		if msg.CreatedAt > l.watermarks[key] {
			l.watermarks[key] = msg.CreatedAt
		}
	}
}

// assembleOne loads and assembles a single message; nil when absent.
func (l *Local) assembleOne(id string) (*types.Message, error) {
	row, err := db.GetMessageRow(l.conn, id)
	if err != nil {
		return nil, &TransportError{Op: "get message", Err: err}
	}
	if row == nil {
		return nil, nil
	}
	messages, err := l.assemble([]db.MessageRow{*row}, row.ParentID == nil)
	if err != nil {
		return nil, err
	}
	return &messages[0], nil
}

// assemble fills in reactions, thread summaries, and author fields for
// a set of message rows.
func (l *Local) assemble(rows []db.MessageRow, withThreads bool) ([]types.Message, error) {
	guids := make([]string, len(rows))
	for i, row := range rows {
		guids[i] = row.GUID
	}

	reactions, err := db.GetReactionSummaries(l.conn, guids)
	if err != nil {
		return nil, err
	}

	var threads map[string]db.ThreadSummaryRow
	if withThreads {
		threads, err = db.GetThreadSummaries(l.conn, guids)
		if err != nil {
			return nil, err
		}
	}

	members, err := db.ListMembers(l.conn)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]types.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	out := make([]types.Message, len(rows))
	for i, row := range rows {
		msg := types.Message{
			ID:             row.GUID,
			ChannelID:      row.ChannelID,
			ConversationID: row.ConversationID,
			ParentID:       row.ParentID,
			MemberID:       row.MemberID,
			Body:           row.Body,
			Image:          row.Image,
			CreatedAt:      row.TS,
			EditedAt:       row.EditedAt,
			Reactions:      reactions[row.GUID],
		}
		if summary, ok := threads[row.GUID]; ok {
			msg.Thread = &types.ThreadSummary{
				Count:          summary.Count,
				LastReplyAt:    summary.LastReplyAt,
				LastReplyImage: byID[summary.LastMemberID].Image,
			}
		}
		if author, ok := byID[row.MemberID]; ok {
			msg.AuthorName = author.Name
			msg.AuthorImage = author.Image
		}
		out[i] = msg
	}
	return out, nil
}
