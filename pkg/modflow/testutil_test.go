package modflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nicola-lissandrini/modflow/pkg/modflow/params"
)

// hookModule is a module whose lifecycle hooks are injected per test.
type hookModule struct {
	BaseModule
	initParams   func(*params.Params) error
	setupNetwork func() error
}

func newHookModule(name string) *hookModule {
	return &hookModule{BaseModule: NewBaseModule(name)}
}

func (m *hookModule) InitParams(p *params.Params) error {
	if m.initParams == nil {
		return nil
	}
	return m.initParams(p)
}

func (m *hookModule) SetupNetwork() error {
	if m.setupNetwork == nil {
		return nil
	}
	return m.setupNetwork()
}

// memRecorder collects trace entries in memory, for debug-filter tests.
type memRecorder struct {
	entries []TraceEntry
	fail    error
}

func (r *memRecorder) Record(e TraceEntry) error {
	if r.fail != nil {
		return r.fail
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *memRecorder) channels() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Channel
	}
	return out
}

// buildGraph initializes and finalizes a graph over the given modules,
// failing the test on any lifecycle error.
func buildGraph(t *testing.T, p *params.Params, opts []Option, mods ...Module) *Graph {
	t.Helper()
	g := New(opts...)
	require.NoError(t, g.Init(p, func(g *Graph) error {
		for _, m := range mods {
			if err := g.LoadModule(m); err != nil {
				return err
			}
		}
		return nil
	}))
	require.NoError(t, g.Finalize())
	return g
}

// initGraph initializes but does not finalize, for tests that declare
// sources and sinks first.
func initGraph(t *testing.T, p *params.Params, opts []Option, mods ...Module) *Graph {
	t.Helper()
	g := New(opts...)
	require.NoError(t, g.Init(p, func(g *Graph) error {
		for _, m := range mods {
			if err := g.LoadModule(m); err != nil {
				return err
			}
		}
		return nil
	}))
	return g
}
