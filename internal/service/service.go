// Package service defines the data-service contract the feed engine
// consumes: paged reads, live update subscriptions, message mutations,
// and image upload destinations. The local SQLite-backed
// implementation lives in this package; remote implementations only
// need to satisfy DataService.
package service

import (
	"context"

	"github.com/huddlechat/huddle/internal/types"
)

// DefaultPageSize is the number of messages fetched per page when the
// caller does not say otherwise.
const DefaultPageSize = 50

// UnsubscribeFunc stops delivery of live updates for one subscription.
type UnsubscribeFunc func()

// DataService is the backing store contract. All blocking calls take a
// context; all failures are one of the typed errors in this package.
type DataService interface {
	// FetchPage returns one page of messages for the scope,
	// newest-first. A nil cursor requests the newest page.
	FetchPage(ctx context.Context, scope types.Scope, cursor *types.MessageCursor, limit int) (types.FeedPage, error)

	// GetMessage returns a single message by identity.
	GetMessage(ctx context.Context, id string) (types.Message, error)

	// Subscribe registers a callback for live updates in the scope.
	// Events are delivered until the returned function is called.
	Subscribe(scope types.Scope, fn func(types.StoreEvent)) UnsubscribeFunc

	// CreateMessage posts a new message to the scope. An empty body
	// with no image fails with a ValidationError; a vanished scope
	// fails with a NotFoundError.
	CreateMessage(ctx context.Context, scope types.Scope, body string, image *string) (types.Message, error)

	// UpdateMessage replaces a message body. Fails with a
	// NotFoundError if the message was deleted concurrently.
	UpdateMessage(ctx context.Context, id, body string) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, id string) error

	// ToggleReaction adds the member's reaction with the given value,
	// or removes it if already present.
	ToggleReaction(ctx context.Context, id, value string) error

	// RequestUploadDestination returns a URL that accepts image bytes;
	// the upload transport posts to it and receives a storage ref.
	RequestUploadDestination(ctx context.Context) (string, error)

	// CurrentMember returns the member this client is signed in as.
	CurrentMember(ctx context.Context) (types.Member, error)

	// GetMember returns a workspace member by identity.
	GetMember(ctx context.Context, id string) (types.Member, error)

	// ListChannels returns all channels in the workspace.
	ListChannels(ctx context.Context) ([]types.Channel, error)

	// ListMembers returns all workspace members.
	ListMembers(ctx context.Context) ([]types.Member, error)

	// GetOrCreateConversation returns the direct conversation between
	// the current member and the given peer, creating it on first use.
	GetOrCreateConversation(ctx context.Context, otherMemberID string) (types.Conversation, error)

	// Workspace returns workspace metadata.
	Workspace(ctx context.Context) (types.Workspace, error)
}
