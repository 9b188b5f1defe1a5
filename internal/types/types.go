package types

// ScopeKind identifies what kind of context a feed is bound to.
type ScopeKind string

const (
	ScopeChannel      ScopeKind = "channel"
	ScopeConversation ScopeKind = "conversation"
	ScopeThread       ScopeKind = "thread"
)

// Scope is the conversational context a message feed reads from: a
// channel, a direct conversation, or a thread identified by its root
// message.
type Scope struct {
	Kind           ScopeKind `json:"kind"`
	ChannelID      string    `json:"channel_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	ParentID       string    `json:"parent_id,omitempty"`
}

// ChannelScope returns the scope for a channel feed.
func ChannelScope(channelID string) Scope {
	return Scope{Kind: ScopeChannel, ChannelID: channelID}
}

// ConversationScope returns the scope for a direct conversation feed.
func ConversationScope(conversationID string) Scope {
	return Scope{Kind: ScopeConversation, ConversationID: conversationID}
}

// ThreadScope returns the scope for the replies under a root message.
func ThreadScope(parentID string) Scope {
	return Scope{Kind: ScopeThread, ParentID: parentID}
}

// Key returns a stable routing key for the scope.
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeChannel:
		return "channel:" + s.ChannelID
	case ScopeConversation:
		return "conversation:" + s.ConversationID
	case ScopeThread:
		return "thread:" + s.ParentID
	}
	return ""
}

// Contains reports whether a message belongs to this scope. Channel and
// conversation feeds show only top-level messages; replies belong to
// their parent's thread scope.
func (s Scope) Contains(msg Message) bool {
	switch s.Kind {
	case ScopeChannel:
		return msg.ParentID == nil && msg.ChannelID != nil && *msg.ChannelID == s.ChannelID
	case ScopeConversation:
		return msg.ParentID == nil && msg.ConversationID != nil && *msg.ConversationID == s.ConversationID
	case ScopeThread:
		return msg.ParentID != nil && *msg.ParentID == s.ParentID
	}
	return false
}

// Message represents one posted item in a channel, conversation, or
// thread. A message lives in exactly one of a channel or a
// conversation; replies also carry the root message's GUID.
type Message struct {
	ID             string            `json:"id"`
	ChannelID      *string           `json:"channel_id,omitempty"`
	ConversationID *string           `json:"conversation_id,omitempty"`
	ParentID       *string           `json:"parent_id,omitempty"`
	MemberID       string            `json:"member_id"`
	Body           string            `json:"body"`
	Image          *string           `json:"image,omitempty"`
	CreatedAt      int64             `json:"created_at"`
	EditedAt       *int64            `json:"edited_at,omitempty"`
	Reactions      []ReactionSummary `json:"reactions,omitempty"`
	Thread         *ThreadSummary    `json:"thread,omitempty"`

	// Denormalized author fields, filled in by the data service on read.
	AuthorName  string `json:"author_name,omitempty"`
	AuthorImage string `json:"author_image,omitempty"`
}

// Scope returns the scope this message belongs to.
func (m Message) Scope() Scope {
	if m.ParentID != nil {
		return ThreadScope(*m.ParentID)
	}
	if m.ConversationID != nil {
		return ConversationScope(*m.ConversationID)
	}
	if m.ChannelID != nil {
		return ChannelScope(*m.ChannelID)
	}
	return Scope{}
}

// Edited reports whether the message body has been edited.
func (m Message) Edited() bool {
	return m.EditedAt != nil
}

// ReactionSummary aggregates one emoji value on a message.
type ReactionSummary struct {
	Value     string   `json:"value"`
	Count     int      `json:"count"`
	MemberIDs []string `json:"member_ids"`
}

// HasMember reports whether the given member applied this reaction.
func (r ReactionSummary) HasMember(memberID string) bool {
	for _, id := range r.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// ThreadSummary is present on messages that have at least one reply.
type ThreadSummary struct {
	Count          int    `json:"count"`
	LastReplyAt    int64  `json:"last_reply_at"`
	LastReplyImage string `json:"last_reply_image,omitempty"`
}

// MessageCursor is a stable keyset paging cursor into a message scope.
type MessageCursor struct {
	GUID string `json:"guid"`
	TS   int64  `json:"ts"`
}

// FeedPage is one page of messages for a scope, newest-first, plus the
// continuation cursor for the next older page. A nil NextCursor means
// the scope is exhausted.
type FeedPage struct {
	Messages   []Message      `json:"messages"`
	NextCursor *MessageCursor `json:"next_cursor,omitempty"`
}

// Member represents a workspace member.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Role     string `json:"role,omitempty"`
	JoinedAt int64  `json:"joined_at"`
}

// Channel represents a named channel in the workspace.
type Channel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// Conversation represents a direct conversation between two members.
type Conversation struct {
	ID          string `json:"id"`
	MemberOneID string `json:"member_one_id"`
	MemberTwoID string `json:"member_two_id"`
}

// Other returns the conversation peer of the given member.
func (c Conversation) Other(memberID string) string {
	if c.MemberOneID == memberID {
		return c.MemberTwoID
	}
	return c.MemberOneID
}

// Workspace holds workspace-level metadata.
type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	JoinCode  string `json:"join_code"`
	CreatedAt int64  `json:"created_at"`
}
