package modflow

import (
	"fmt"

	"github.com/nicola-lissandrini/modflow/pkg/modflow/params"
)

// Module is a named participant in a dispatch graph. Implementations embed
// BaseModule, which satisfies everything except the lifecycle hooks:
//
//	type controller struct {
//	    modflow.BaseModule
//	    gain float64
//	}
//
//	func (c *controller) InitParams(p *params.Params) error { ... }
//	func (c *controller) SetupNetwork() error { ... }
//
// InitParams receives the module's configuration subtree (rooted at the
// module name) and SetupNetwork creates channels and requests connections.
// Both run during Finalize, in module-registration order. BaseModule
// provides no-op defaults for modules that need neither.
type Module interface {
	// Name returns the module's unique name within its graph.
	Name() string

	// InitParams resolves the module's configuration. An error here is
	// logged and the module is skipped; the rest of the graph still
	// finalizes.
	InitParams(p *params.Params) error

	// SetupNetwork creates channels and requests connections. An error
	// here is structural and aborts Finalize.
	SetupNetwork() error

	// base exposes the embedded BaseModule to the graph. Embedding
	// BaseModule is the only way to satisfy the interface.
	base() *BaseModule
}

// BaseModule carries the per-module state the graph needs: the back
// reference to the graph, the most recent inbound event, and the pending
// enabling-channel gate. Embed it by value and pass the outer struct to the
// graph and connection helpers.
type BaseModule struct {
	name    string
	graph   *Graph
	self    Module
	last    *Event
	pending map[ChannelID]struct{}
}

// NewBaseModule prepares the embedded base with the module's unique name.
func NewBaseModule(name string) BaseModule {
	return BaseModule{
		name:    name,
		pending: make(map[ChannelID]struct{}),
	}
}

// Name returns the module's name.
func (m *BaseModule) Name() string {
	return m.name
}

// InitParams is a no-op default; override to resolve configuration.
func (m *BaseModule) InitParams(_ *params.Params) error {
	return nil
}

// SetupNetwork is a no-op default; override to create channels and request
// connections.
func (m *BaseModule) SetupNetwork() error {
	return nil
}

func (m *BaseModule) base() *BaseModule {
	return m
}

// Graph returns the owning graph, or nil before the module is loaded.
func (m *BaseModule) Graph() *Graph {
	return m.graph
}

// LastEvent returns the most recent event delivered to this module, or nil
// if none was delivered yet.
func (m *BaseModule) LastEvent() *Event {
	return m.last
}

// Enabled reports whether every requested enabling channel has fired at
// least once.
func (m *BaseModule) Enabled() bool {
	return len(m.pending) == 0
}

// setEnabled removes an enabling channel from the pending gate. Removing a
// channel that already fired is a no-op.
func (m *BaseModule) setEnabled(id ChannelID) {
	delete(m.pending, id)
}

// RequestEnablingChannel defers this module's regular connections until the
// named channel fires at least once. Until then, inbound events on other
// channels record the event but do not invoke the bound callbacks.
func (m *BaseModule) RequestEnablingChannel(channelName string) error {
	ch, err := m.graph.resolveChannel(channelName)
	if err != nil {
		return err
	}
	return m.requestEnabling(ch)
}

// RequestEnabling is the channel-handle variant of RequestEnablingChannel.
func (m *BaseModule) RequestEnabling(ch *Channel) error {
	return m.requestEnabling(ch)
}

func (m *BaseModule) requestEnabling(ch *Channel) error {
	m.pending[ch.id] = struct{}{}

	enable := slot{
		name: fmt.Sprintf("<enabling %s> [%s]", ch.name, m.name),
		invoke: func(ev *Event, _ []any) (any, error) {
			m.last = ev
			m.setEnabled(ch.id)
			return nil, nil
		},
	}
	return m.graph.createConnection(ch, enable)
}

// Emit emits values on the named channel, invoking every bound slot in
// connection order. The payload is checked against the channel signature by
// type identity; the typed EmitOn1 style helpers add the compile-time check
// on top.
func (m *BaseModule) Emit(channelName string, values ...any) error {
	ch, err := m.graph.resolveChannel(channelName)
	if err != nil {
		return err
	}
	return m.graph.emit(ch, m.module(), values)
}

// EmitOn emits on a channel handle, skipping name resolution.
func (m *BaseModule) EmitOn(ch *Channel, values ...any) error {
	return m.graph.emit(ch, m.module(), values)
}

// module returns the outer Module this base is embedded in.
func (m *BaseModule) module() Module {
	return m.self
}
