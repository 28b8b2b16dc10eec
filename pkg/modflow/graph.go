package modflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/nicola-lissandrini/modflow/pkg/modflow/observability"
	"github.com/nicola-lissandrini/modflow/pkg/modflow/params"
)

// Graph is the dispatch orchestrator. It owns the channel registry, the
// per-channel connection lists, the ordered module list and the emission
// algorithm.
//
// Graph is NOT thread-safe. Construction (Init, module loading, Finalize)
// and all subsequent emissions must come from a single goroutine, or the
// host must serialize calls itself; the core provides no internal
// synchronization.
type Graph struct {
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	recorder    TraceRecorder
	strictSinks bool

	channelSeq  ChannelID
	channels    map[string]*Channel
	connections [][]slot
	modules     []Module
	moduleNames map[string]struct{}
	sources     *Sources
	sinks       *Sinks
	params      *params.Params
	debug       debugConfig

	initialized bool
	finalized   bool
}

// New creates an empty graph. Call Init to register the boundary modules
// and load the rest.
func New(opts ...Option) *Graph {
	g := &Graph{
		logger:      slog.Default(),
		metrics:     observability.NoopMetrics{},
		channels:    make(map[string]*Channel),
		moduleNames: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Init registers the Sources and Sinks boundary modules, reads the graph's
// debug configuration, then invokes the host-supplied loader, which
// registers the remaining modules via LoadModule. The order of those calls
// is the module-registration order used everywhere else.
//
// Panics if called twice.
func (g *Graph) Init(p *params.Params, load func(*Graph) error) error {
	if g.initialized {
		panic("modflow: graph already initialized")
	}
	g.initialized = true

	if p == nil {
		p = params.New(nil)
	}
	g.params = p
	g.debug = loadDebugConfig(p)

	g.sources = newSources()
	g.sinks = newSinks()
	if err := g.LoadModule(g.sources); err != nil {
		return err
	}
	if err := g.LoadModule(g.sinks); err != nil {
		return err
	}

	if load == nil {
		return nil
	}
	if err := load(g); err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	return nil
}

// LoadModule appends a module to the graph, binding its base to the graph.
// Module names must be unique. Panics if m is nil or was built without
// NewBaseModule.
func (g *Graph) LoadModule(m Module) error {
	if m == nil {
		panic("modflow: module cannot be nil")
	}
	b := m.base()
	if b.pending == nil {
		panic("modflow: module base not initialized, use NewBaseModule")
	}
	if g.finalized {
		return ErrFinalized
	}
	if _, exists := g.moduleNames[b.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, b.name)
	}

	b.graph = g
	b.self = m
	g.moduleNames[b.name] = struct{}{}
	g.modules = append(g.modules, m)
	return nil
}

// Finalize configures every module in registration order: first InitParams
// with the module's configuration subtree, then SetupNetwork. A module
// whose configuration fails is logged and skipped, leaving the rest of the
// graph functional; a SetupNetwork error is structural and aborts.
//
// After Finalize the graph structure is frozen and emissions may begin.
func (g *Graph) Finalize() error {
	if !g.initialized {
		panic("modflow: graph not initialized")
	}
	if g.finalized {
		return ErrFinalized
	}

	for _, m := range g.modules {
		sub := g.params.Sub(m.Name())
		if err := m.InitParams(sub); err != nil {
			observability.LogConfigSkipped(g.logger, m.Name(), err)
			continue
		}
		if err := m.SetupNetwork(); err != nil {
			return fmt.Errorf("setup network for module %s: %w", m.Name(), err)
		}
		observability.LogModuleConfigured(g.logger, m.Name())
	}

	g.finalized = true
	observability.LogGraphFinalized(g.logger, len(g.modules), len(g.channels))
	return nil
}

// Sources returns the boundary module for inbound calls.
func (g *Graph) Sources() *Sources {
	return g.sources
}

// Sinks returns the boundary module for outbound forwarding.
func (g *Graph) Sinks() *Sinks {
	return g.sinks
}

// ChannelCount returns the number of registered channels.
func (g *Graph) ChannelCount() int {
	return len(g.channels)
}

// resolveChannel looks a channel up by name. A dangling reference is a
// wiring mistake by the graph's author, reported with the full name.
func (g *Graph) resolveChannel(name string) (*Channel, error) {
	ch, ok := g.channels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, name)
	}
	return ch, nil
}

// createChannel registers a new channel. Names are unique per graph;
// a duplicate fails the new creation and leaves the existing channel
// intact.
func (g *Graph) createChannel(name string, owner Module, sink bool, sig Signature) (*Channel, error) {
	if name == "" {
		panic("modflow: channel name cannot be empty")
	}
	if g.finalized {
		return nil, fmt.Errorf("create channel %s: %w", name, ErrFinalized)
	}
	if _, exists := g.channels[name]; exists {
		return nil, fmt.Errorf("module %s creating channel %s: %w",
			owner.Name(), name, ErrDuplicateChannel)
	}

	ch := &Channel{
		id:    g.channelSeq,
		name:  name,
		owner: owner,
		sink:  sink,
		sig:   sig,
	}
	g.channels[name] = ch
	g.connections = append(g.connections, nil)
	g.channelSeq++
	return ch, nil
}

// createConnection appends a slot to the channel's connection list.
// Connection lists are append-only during setup and read-only afterwards.
func (g *Graph) createConnection(ch *Channel, s slot) error {
	if g.finalized {
		return fmt.Errorf("connect to channel %s: %w", ch.name, ErrFinalized)
	}
	g.connections[ch.id] = append(g.connections[ch.id], s)
	return nil
}

// prepareEmit runs the two wiring checks every emission is subject to and
// constructs the emission's event: a root event when the caller has no last
// event (a source call), a child of it otherwise.
func (g *Graph) prepareEmit(ch *Channel, caller Module, values []any) (*Event, error) {
	if !g.finalized {
		return nil, fmt.Errorf("emit on channel %s: %w", ch.name, ErrNotFinalized)
	}
	if !ch.sig.Matches(values) {
		return nil, &TypeMismatchError{
			Channel:  ch.name,
			Caller:   caller.Name(),
			Expected: ch.sig,
			Actual:   valuesSignature(values),
			Emitting: true,
		}
	}
	if !ch.checkOwnership(caller, g.strictSinks) {
		return nil, &OwnershipError{
			Channel: ch.name,
			Caller:  caller.Name(),
			Owner:   ch.OwnerName(),
		}
	}

	ev := newEvent(caller.base().last, caller, ch)

	if g.debug.passes(ev) {
		observability.LogEmit(g.logger, ev.depth, caller.Name(), ch.name, len(g.connections[ch.id]))
		g.record(ev, "", len(g.connections[ch.id]))
	}
	return ev, nil
}

// emit fans an emission out to every connection in list order. Slot errors
// do not stop the fan-out; they are collected and returned together.
func (g *Graph) emit(ch *Channel, caller Module, values []any) error {
	ev, err := g.prepareEmit(ch, caller, values)
	if err != nil {
		return err
	}

	conns := g.connections[ch.id]
	g.metrics.RecordEmit(context.Background(), ch.name, len(conns))

	var errs error
	for i := range conns {
		s := &conns[i]
		if g.debug.passes(ev) {
			observability.LogSlotInvoke(g.logger, ev.depth, caller.Name(), s.name, caller.base().Enabled())
			g.record(ev, s.name, len(conns))
		}

		start := time.Now()
		_, slotErr := s.invoke(ev, values)
		g.metrics.RecordSlot(context.Background(), ch.name, s.name, time.Since(start), slotErr)
		if slotErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("slot %s: %w", s.name, slotErr))
		}
	}
	return errs
}

// call performs a request/response emission: the channel must have exactly
// one connection, whose result is returned.
func (g *Graph) call(ch *Channel, caller Module, values []any) (any, error) {
	ev, err := g.prepareEmit(ch, caller, values)
	if err != nil {
		return nil, err
	}

	conns := g.connections[ch.id]
	if len(conns) != 1 {
		return nil, &ArityError{Channel: ch.name, Connections: len(conns)}
	}
	s := &conns[0]

	if g.debug.passes(ev) {
		observability.LogSlotInvoke(g.logger, ev.depth, caller.Name(), s.name, caller.base().Enabled())
		g.record(ev, s.name, 1)
	}

	g.metrics.RecordEmit(context.Background(), ch.name, 1)
	start := time.Now()
	out, slotErr := s.invoke(ev, values)
	g.metrics.RecordSlot(context.Background(), ch.name, s.name, time.Since(start), slotErr)
	if slotErr != nil {
		return nil, fmt.Errorf("slot %s: %w", s.name, slotErr)
	}
	return out, nil
}

// record journals a trace entry if a recorder is attached. Failures are
// logged and dropped; journaling never alters dispatch.
func (g *Graph) record(ev *Event, slotName string, connections int) {
	if g.recorder == nil {
		return
	}
	entry := TraceEntry{
		EventID:     ev.id,
		Depth:       ev.depth,
		Module:      ev.ModuleName(),
		Channel:     ev.ChannelName(),
		Slot:        slotName,
		Connections: connections,
		At:          ev.at,
	}
	if ev.parent != nil {
		entry.ParentID = ev.parent.id
	}
	if err := g.recorder.Record(entry); err != nil {
		g.logger.Warn("trace record failed",
			slog.String("channel", entry.Channel),
			slog.String("error", err.Error()),
		)
	}
}
