package modflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event records one emission. Events link to the event that caused them, so
// nested emissions form a tree whose depth mirrors the dispatch call stack.
// An Event is immutable and only valid for the dynamic extent of the
// emission that produced it; slots may inspect it but must not retain it.
type Event struct {
	id      string
	parent  *Event
	module  Module
	channel *Channel
	depth   int
	at      time.Time
}

// newEvent creates the event for an emission. A nil parent marks a root
// emission (depth 0), which is the case for a source call.
func newEvent(parent *Event, module Module, channel *Channel) *Event {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &Event{
		id:      fmt.Sprintf("evt-%s", uuid.New().String()[:8]),
		parent:  parent,
		module:  module,
		channel: channel,
		depth:   depth,
		at:      time.Now(),
	}
}

// Branch creates a sibling event: it shares this event's parent rather than
// descending from this event. Used when a module emits a second event at the
// same recursion level.
func (e *Event) Branch(module Module, channel *Channel) *Event {
	return newEvent(e.parent, module, channel)
}

// ID returns a short unique identifier, for diagnostics only.
func (e *Event) ID() string {
	return e.id
}

// Parent returns the causing event, or nil for a root emission.
func (e *Event) Parent() *Event {
	return e.parent
}

// Depth returns the nesting depth: 0 for a root emission, parent depth + 1
// otherwise.
func (e *Event) Depth() int {
	return e.depth
}

// Timestamp returns when the emission was created.
func (e *Event) Timestamp() time.Time {
	return e.at
}

// ModuleName returns the name of the emitting module.
func (e *Event) ModuleName() string {
	return e.module.Name()
}

// ChannelName returns the name of the emitted channel.
func (e *Event) ChannelName() string {
	return e.channel.name
}

// ChannelInAncestors reports whether the named channel was emitted anywhere
// in this event's ancestry, including this event itself.
func (e *Event) ChannelInAncestors(name string) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.channel.name == name {
			return true
		}
	}
	return false
}

// ModuleInAncestors reports whether the named module emitted anywhere in
// this event's ancestry, including this event itself.
func (e *Event) ModuleInAncestors(name string) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.module.Name() == name {
			return true
		}
	}
	return false
}
