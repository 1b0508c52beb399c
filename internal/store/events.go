package store

// EntityKind names the kind of entity an Event is about.
type EntityKind string

const (
	EntityClipItem EntityKind = "clip_item"
	EntityLabel    EntityKind = "label"
	// EntityAll is used when the whole store content was replaced.
	EntityAll EntityKind = "all"
)

// ChangeKind names what happened to the entity.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeReplaced ChangeKind = "replaced"
)

// Event is a structural-change notification emitted after a commit.
type Event struct {
	Entity EntityKind
	Change ChangeKind

	// Item is set for single clip item creates and updates.
	Item *ClipItem

	// Label is set for label events.
	Label *Label

	// Texts lists the keys of deleted clip items.
	Texts []string
}

// Notifier receives store events. Implementations must not block and must
// not fail the caller: delivery is best-effort.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) {
	f(e)
}

// NopNotifier drops every event.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(Event) {}
