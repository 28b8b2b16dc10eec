// Package node wraps a modflow graph in a host process shell: it owns the
// graph's lifecycle, turns inbound host messages into source-channel
// emissions and sink-channel emissions into outbound host callbacks, and
// optionally drives a periodic tick.
//
// Typical usage:
//
//	n := node.New("tracker", p)
//	if err := n.Init(loadModules); err != nil { ... }
//	onScan, _ := node.BindSource1[Scan](n, "scan")
//	node.BindSink1(n, "pose", publishPose)
//	tick, _ := node.BindTick(n, "clock")
//	if err := n.Finalize(); err != nil { ... }
//	n.Spin(ctx) // blocks; onScan may be called from the host transport
//
// The tick period comes from the host's "rate" parameter (Hz). A node
// without a rate is asynchronous: Spin just blocks until the context is
// cancelled while the transport handlers drive the graph.
package node

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nicola-lissandrini/modflow/pkg/modflow"
	"github.com/nicola-lissandrini/modflow/pkg/modflow/observability"
	"github.com/nicola-lissandrini/modflow/pkg/modflow/params"
)

// Node hosts one modflow graph.
type Node struct {
	name   string
	params *params.Params
	graph  *modflow.Graph
	logger *slog.Logger
	spans  observability.SpanManager
	runID  string
	period time.Duration
	tickCh *modflow.Channel

	graphOpts []modflow.Option
}

// Option configures a Node at construction time.
type Option func(*Node)

// WithLogger sets the node's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithSpanManager enables tracing of the node run and of inbound source
// calls. Defaults to a no-op manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(n *Node) {
		if s != nil {
			n.spans = s
		}
	}
}

// WithGraphOptions forwards options to the underlying graph.
func WithGraphOptions(opts ...modflow.Option) Option {
	return func(n *Node) {
		n.graphOpts = append(n.graphOpts, opts...)
	}
}

// New creates a node named name with the host's parameter tree. The tick
// period is derived from the "rate" parameter (Hz); a missing rate leaves
// the node asynchronous.
func New(name string, p *params.Params, opts ...Option) *Node {
	if p == nil {
		p = params.New(nil)
	}
	n := &Node{
		name:   name,
		params: p,
		logger: slog.Default(),
		spans:  observability.NoopSpanManager{},
		runID:  fmt.Sprintf("run-%s", uuid.New().String()[:8]),
	}
	for _, opt := range opts {
		opt(n)
	}

	if rate, err := p.Float("rate"); err == nil && rate > 0 {
		n.period = time.Duration(float64(time.Second) / rate)
	}

	n.graph = modflow.New(append(n.graphOpts, modflow.WithLogger(n.logger))...)
	return n
}

// Graph returns the hosted graph.
func (n *Node) Graph() *modflow.Graph {
	return n.graph
}

// RunID returns the unique identifier of this node run.
func (n *Node) RunID() string {
	return n.runID
}

// Name returns the node's name.
func (n *Node) Name() string {
	return n.name
}

// TickPeriod returns the configured tick period, 0 for an asynchronous
// node.
func (n *Node) TickPeriod() time.Duration {
	return n.period
}

// Init initializes the hosted graph with the node's parameters and the
// host-supplied module loader.
func (n *Node) Init(load func(*modflow.Graph) error) error {
	return n.graph.Init(n.params, load)
}

// Finalize configures all loaded modules. Call after declaring sources,
// sinks and the tick binding.
func (n *Node) Finalize() error {
	return n.graph.Finalize()
}

// BindTick declares a source channel carrying the tick time. Spin emits on
// it every period. Requires a configured rate.
func (n *Node) BindTick(channel string) (*modflow.Channel, error) {
	if n.period <= 0 {
		return nil, fmt.Errorf("bind tick %s: no rate configured", channel)
	}
	ch, err := modflow.DeclareSource1[time.Time](n.graph.Sources(), channel)
	if err != nil {
		return nil, err
	}
	n.tickCh = ch
	return ch, nil
}

// Spin runs the node until ctx is done. With a tick binding it emits the
// current time on the tick channel every period; tick errors are logged and
// do not stop the loop.
func (n *Node) Spin(ctx context.Context) error {
	ctx, runSpan := n.spans.StartRunSpan(ctx, n.name, n.runID)
	defer n.spans.EndSpanWithError(runSpan, nil)

	n.logger.Info("node spinning",
		slog.String("node", n.name),
		slog.String("run_id", n.runID),
		slog.Duration("tick_period", n.period),
	)

	if n.tickCh == nil {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(n.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			_, span := n.spans.StartSourceSpan(ctx, n.tickCh.Name())
			err := n.graph.Sources().CallOn(n.tickCh, t)
			n.spans.EndSpanWithError(span, err)
			if err != nil {
				n.logger.Error("tick failed",
					slog.String("channel", n.tickCh.Name()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// BindSource0 declares a payload-less source channel and returns the
// inbound handler the host transport should invoke for it.
func BindSource0(n *Node, channel string) (func(context.Context) error, error) {
	ch, err := modflow.DeclareSource0(n.graph.Sources(), channel)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		return n.dispatch(ctx, ch)
	}, nil
}

// BindSource1 declares a single-payload source channel and returns its
// inbound handler.
func BindSource1[A any](n *Node, channel string) (func(context.Context, A) error, error) {
	ch, err := modflow.DeclareSource1[A](n.graph.Sources(), channel)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a A) error {
		return n.dispatch(ctx, ch, a)
	}, nil
}

// BindSource2 declares a two-payload source channel and returns its
// inbound handler.
func BindSource2[A, B any](n *Node, channel string) (func(context.Context, A, B) error, error) {
	ch, err := modflow.DeclareSource2[A, B](n.graph.Sources(), channel)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a A, b B) error {
		return n.dispatch(ctx, ch, a, b)
	}, nil
}

// BindSink1 declares a single-payload sink channel forwarding to fn.
func BindSink1[A any](n *Node, channel string, fn func(A) error) (*modflow.Channel, error) {
	return modflow.DeclareSink1(n.graph.Sinks(), channel, fn)
}

// BindSink2 declares a two-payload sink channel forwarding to fn.
func BindSink2[A, B any](n *Node, channel string, fn func(A, B) error) (*modflow.Channel, error) {
	return modflow.DeclareSink2(n.graph.Sinks(), channel, fn)
}

// dispatch performs one inbound source call with tracing and logging.
func (n *Node) dispatch(ctx context.Context, ch *modflow.Channel, values ...any) error {
	_, span := n.spans.StartSourceSpan(ctx, ch.Name())
	err := n.graph.Sources().CallOn(ch, values...)
	n.spans.EndSpanWithError(span, err)
	observability.LogSourceCall(n.logger, ch.Name(), err)
	return err
}
