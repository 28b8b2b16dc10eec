package modflow

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSinks_ForwardImmediately verifies declaring a sink installs its
// forwarding connection without a setup phase.
func TestSinks_ForwardImmediately(t *testing.T) {
	var got []string
	producer := newHookModule("producer")

	g := initGraph(t, nil, nil, producer)
	out, err := DeclareSink1(g.Sinks(), "out", func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	require.NoError(t, producer.EmitOn(out, "hello"))
	assert.Equal(t, []string{"hello"}, got)
	assert.True(t, out.IsSink())
	assert.Equal(t, "sinks", out.OwnerName())
}

// TestSinks_MultiPayload verifies multi-value sink forwarding.
func TestSinks_MultiPayload(t *testing.T) {
	var gotA string
	var gotB int
	producer := newHookModule("producer")

	g := initGraph(t, nil, nil, producer)
	_, err := DeclareSink2(g.Sinks(), "pair", func(a string, b int) error {
		gotA, gotB = a, b
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	require.NoError(t, producer.Emit("pair", "x", 3))
	assert.Equal(t, "x", gotA)
	assert.Equal(t, 3, gotB)
}

// TestSinks_NilCallback_Panics verifies sink declarations require a
// callback.
func TestSinks_NilCallback_Panics(t *testing.T) {
	g := initGraph(t, nil, nil)
	assert.PanicsWithValue(t, "modflow: sink callback cannot be nil", func() {
		_, _ = DeclareSink1[int](g.Sinks(), "out", nil)
	})
}

// TestSinks_RequireSink verifies modules can assert the host declared the
// sinks they emit on.
func TestSinks_RequireSink(t *testing.T) {
	var found, missing, mistyped error
	m := newHookModule("m")
	m.setupNetwork = func() error {
		_, found = RequireSink(m, "out", Types1[int]())
		_, missing = RequireSink(m, "nowhere", Types1[int]())
		_, mistyped = RequireSink(m, "out", Types1[string]())
		return nil
	}

	g := initGraph(t, nil, nil, m)
	_, err := DeclareSink1(g.Sinks(), "out", func(int) error { return nil })
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	assert.NoError(t, found)
	assert.ErrorIs(t, missing, ErrChannelNotFound)
	assert.ErrorIs(t, mistyped, ErrTypeMismatch)
}

// TestSinks_ModuleChannelCollision verifies a module cannot shadow a
// host-declared sink with a regular channel of the same name: Finalize
// surfaces the duplicate instead of silently rewiring. Modules that want
// to feed a sink resolve it with RequireSink and emit on it directly.
func TestSinks_ModuleChannelCollision(t *testing.T) {
	m := newHookModule("m")
	m.setupNetwork = func() error {
		_, err := NewChannel1[string](m, "out")
		return err
	}

	g := initGraph(t, nil, nil, m)
	_, err := DeclareSink1(g.Sinks(), "out", func(string) error { return nil })
	require.NoError(t, err)

	err = g.Finalize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateChannel)
}

// TestSources_CallByName verifies name-resolved boundary calls.
func TestSources_CallByName(t *testing.T) {
	delivered := 0
	listener := newHookModule("listener")
	listener.setupNetwork = func() error {
		return Connect1(listener, "input", func(_ *Event, v int) error {
			delivered += v
			return nil
		})
	}

	g := initGraph(t, nil, nil, listener)
	_, err := DeclareSource1[int](g.Sources(), "input")
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	require.NoError(t, g.Sources().Call("input", 5))
	assert.Equal(t, 5, delivered)

	assert.ErrorIs(t, g.Sources().Call("nowhere", 5), ErrChannelNotFound)
}

// TestSources_OwnershipProtectsBoundary verifies graph modules cannot emit
// on a source channel.
func TestSources_OwnershipProtectsBoundary(t *testing.T) {
	intruder := newHookModule("intruder")
	g := initGraph(t, nil, nil, intruder)
	_, err := DeclareSource1[int](g.Sources(), "input")
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	assert.ErrorIs(t, intruder.Emit("input", 1), ErrNotOwner)
}

// TestPipeline_EndToEnd drives a small processing graph from sources to
// sink: two inbound channels, an intermediate stage, a string finalizer.
func TestPipeline_EndToEnd(t *testing.T) {
	var sunk []string

	processor := newHookModule("processor")
	processor.setupNetwork = func() error {
		if _, err := NewChannel1[int](processor, "processed_integer"); err != nil {
			return err
		}
		if _, err := NewChannel1[string](processor, "processed_string"); err != nil {
			return err
		}
		if err := Connect1(processor, "integer_source", func(_ *Event, v int) error {
			return processor.Emit("processed_integer", v+100)
		}); err != nil {
			return err
		}
		return Connect1(processor, "string_source", func(_ *Event, s string) error {
			return processor.Emit("processed_string", s+"!")
		})
	}

	finalizer := newHookModule("finalizer")
	finalizer.setupNetwork = func() error {
		if _, err := RequireSink(finalizer, "finalized", Types1[string]()); err != nil {
			return err
		}
		if err := Connect1(finalizer, "processed_integer", func(_ *Event, v int) error {
			return Emit1(finalizer, "finalized", "int:"+strconv.Itoa(v))
		}); err != nil {
			return err
		}
		return Connect1(finalizer, "processed_string", func(_ *Event, s string) error {
			return Emit1(finalizer, "finalized", "str:"+s)
		})
	}

	g := initGraph(t, nil, nil, processor, finalizer)
	intSrc, err := DeclareSource1[int](g.Sources(), "integer_source")
	require.NoError(t, err)
	strSrc, err := DeclareSource1[string](g.Sources(), "string_source")
	require.NoError(t, err)
	_, err = DeclareSink1(g.Sinks(), "finalized", func(s string) error {
		sunk = append(sunk, s)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	require.NoError(t, g.Sources().CallOn(intSrc, 1))
	require.NoError(t, g.Sources().CallOn(strSrc, "hey"))
	require.NoError(t, g.Sources().CallOn(intSrc, 2))

	assert.Equal(t, []string{"int:101", "str:hey!", "int:102"}, sunk)
}
