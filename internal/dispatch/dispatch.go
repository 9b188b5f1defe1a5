// Package dispatch wraps message mutations against the data service
// with fire-and-report semantics: one attempt per user action, every
// outcome surfaced as a transient notification, and no raw failure
// escaping to the rendering layer.
package dispatch

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/huddlechat/huddle/internal/panel"
	"github.com/huddlechat/huddle/internal/service"
	"github.com/huddlechat/huddle/internal/types"
)

// ErrSendInFlight is returned when a send is already running for the
// scope; the duplicate submit is not enqueued.
var ErrSendInFlight = errors.New("send already in flight")

// ErrNotConfirmed is returned when the removal confirmation gate
// declined the action.
var ErrNotConfirmed = errors.New("removal not confirmed")

// Notifier surfaces transient, user-visible outcomes. The TUI shows
// these as status toasts; the CLI prints them.
type Notifier interface {
	Success(text string)
	Failure(text string)
}

// Uploader transmits image bytes to an upload destination URL and
// returns the storage reference the store embeds in messages.
type Uploader interface {
	Upload(ctx context.Context, url, contentType string, data []byte) (string, error)
}

// ConfirmFunc is the yes/no gate consulted before a removal is
// dispatched.
type ConfirmFunc func(prompt string) bool

// Image is an attachment passed to Send.
type Image struct {
	ContentType string
	Data        []byte
}

// Dispatcher performs create/edit/delete/react operations. The view is
// not updated speculatively; it changes only when the store confirms
// the mutation through a live event.
type Dispatcher struct {
	svc      service.DataService
	uploader Uploader
	notifier Notifier
	panels   *panel.Coordinator
	confirm  ConfirmFunc
	log      *logrus.Logger

	mu      sync.Mutex
	sending map[string]bool
}

// New creates a Dispatcher. confirm may be nil when the caller runs its
// own confirmation flow before calling Remove. panels may be nil when
// the caller owns the coordinator on its own event loop and closes
// panels from the store's Deleted events instead; Dispatcher methods
// run on whatever goroutine calls them and must not touch loop-owned
// state directly.
func New(svc service.DataService, uploader Uploader, notifier Notifier, panels *panel.Coordinator, confirm ConfirmFunc, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Dispatcher{
		svc:      svc,
		uploader: uploader,
		notifier: notifier,
		panels:   panels,
		confirm:  confirm,
		log:      log,
		sending:  make(map[string]bool),
	}
}

// Sending reports whether a send is in flight for the scope. The input
// control stays disabled while this is true.
func (d *Dispatcher) Sending(scope types.Scope) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sending[scope.Key()]
}

// Send posts a message to the scope, uploading the image first when
// one is attached. An empty body with no image is rejected without a
// service call. If any step fails the whole send fails and no partial
// message is created.
func (d *Dispatcher) Send(ctx context.Context, scope types.Scope, body string, image *Image) error {
	if body == "" && image == nil {
		d.notifier.Failure("Message is empty")
		return &service.ValidationError{Reason: "empty body and no image"}
	}

	key := scope.Key()
	d.mu.Lock()
	if d.sending[key] {
		d.mu.Unlock()
		return ErrSendInFlight
	}
	d.sending[key] = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.sending, key)
		d.mu.Unlock()
	}()

	var ref *string
	if image != nil {
		url, err := d.svc.RequestUploadDestination(ctx)
		if err != nil {
			d.log.WithError(err).Warn("upload destination request failed")
			d.notifier.Failure("Failed to send message")
			return err
		}
		storageID, err := d.uploader.Upload(ctx, url, image.ContentType, image.Data)
		if err != nil {
			d.log.WithError(err).Warn("image upload failed")
			d.notifier.Failure("Failed to send message")
			return err
		}
		ref = &storageID
	}

	if _, err := d.svc.CreateMessage(ctx, scope, body, ref); err != nil {
		d.log.WithError(err).WithField("scope", key).Warn("create message failed")
		d.notifier.Failure("Failed to send message")
		return err
	}
	d.notifier.Success("Message sent")
	return nil
}

// Edit replaces a message body. Fails if the message was deleted
// concurrently; the caller keeps editing mode open on failure so the
// input is not lost.
func (d *Dispatcher) Edit(ctx context.Context, id, body string) error {
	if body == "" {
		d.notifier.Failure("Message is empty")
		return &service.ValidationError{Reason: "empty body"}
	}
	if err := d.svc.UpdateMessage(ctx, id, body); err != nil {
		if service.IsNotFound(err) {
			d.notifier.Failure("Message no longer exists")
		} else {
			d.notifier.Failure("Failed to update message")
		}
		d.log.WithError(err).WithField("message", id).Warn("update message failed")
		return err
	}
	d.notifier.Success("Message updated")
	return nil
}

// Remove deletes a message after the confirmation gate approves. If
// the removed message was the open thread target, the panel is closed.
func (d *Dispatcher) Remove(ctx context.Context, id string) error {
	if d.confirm != nil && !d.confirm("Delete this message? This cannot be undone.") {
		return ErrNotConfirmed
	}
	if err := d.svc.DeleteMessage(ctx, id); err != nil {
		d.log.WithError(err).WithField("message", id).Warn("delete message failed")
		d.notifier.Failure("Failed to delete message")
		return err
	}
	if d.panels != nil {
		d.panels.MessageDeleted(id)
	}
	d.notifier.Success("Message deleted")
	return nil
}

// ToggleReaction adds or removes the current member's reaction with
// the given value. The summary shown in the feed is server-confirmed;
// nothing is applied locally.
func (d *Dispatcher) ToggleReaction(ctx context.Context, id, value string) error {
	if value == "" {
		d.notifier.Failure("No reaction selected")
		return &service.ValidationError{Reason: "empty reaction value"}
	}
	if err := d.svc.ToggleReaction(ctx, id, value); err != nil {
		d.log.WithError(err).WithField("message", id).Warn("toggle reaction failed")
		d.notifier.Failure("Failed to toggle reaction")
		return err
	}
	d.notifier.Success("Reaction updated")
	return nil
}
