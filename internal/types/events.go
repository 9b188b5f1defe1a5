package types

// EventKind classifies a live store event.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// StoreEvent is one live update from the data service. Created and
// Updated carry the full message; Deleted carries at minimum the
// message identity and scope fields.
type StoreEvent struct {
	Kind    EventKind `json:"kind"`
	Message Message   `json:"message"`
}
