package modflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicola-lissandrini/modflow/pkg/modflow/params"
)

// TestGraph_Init_RegistersBoundaries verifies Init installs the sources and
// sinks modules before running the loader: their names are already taken
// when user modules register.
func TestGraph_Init_RegistersBoundaries(t *testing.T) {
	g := New()
	var sourcesTaken, sinksTaken error
	require.NoError(t, g.Init(nil, func(g *Graph) error {
		sourcesTaken = g.LoadModule(newHookModule("sources"))
		sinksTaken = g.LoadModule(newHookModule("sinks"))
		return nil
	}))

	assert.NotNil(t, g.Sources())
	assert.NotNil(t, g.Sinks())
	assert.ErrorIs(t, sourcesTaken, ErrDuplicateModule)
	assert.ErrorIs(t, sinksTaken, ErrDuplicateModule)
}

// TestGraph_Init_Twice_Panics verifies double initialization panics.
func TestGraph_Init_Twice_Panics(t *testing.T) {
	g := New()
	require.NoError(t, g.Init(nil, nil))
	assert.PanicsWithValue(t, "modflow: graph already initialized", func() {
		_ = g.Init(nil, nil)
	})
}

// TestGraph_Init_LoaderError verifies loader failures surface wrapped.
func TestGraph_Init_LoaderError(t *testing.T) {
	g := New()
	boom := errors.New("boom")
	err := g.Init(nil, func(*Graph) error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

// TestGraph_LoadModule_Nil_Panics verifies a nil module panics.
func TestGraph_LoadModule_Nil_Panics(t *testing.T) {
	g := New()
	require.NoError(t, g.Init(nil, nil))
	assert.PanicsWithValue(t, "modflow: module cannot be nil", func() {
		_ = g.LoadModule(nil)
	})
}

// TestGraph_LoadModule_UninitializedBase_Panics verifies a module built
// without NewBaseModule panics.
func TestGraph_LoadModule_UninitializedBase_Panics(t *testing.T) {
	g := New()
	require.NoError(t, g.Init(nil, nil))
	assert.PanicsWithValue(t, "modflow: module base not initialized, use NewBaseModule", func() {
		_ = g.LoadModule(&hookModule{})
	})
}

// TestGraph_LoadModule_DuplicateName verifies module names must be unique,
// including against the boundary modules.
func TestGraph_LoadModule_DuplicateName(t *testing.T) {
	g := New()
	require.NoError(t, g.Init(nil, nil))

	require.NoError(t, g.LoadModule(newHookModule("worker")))
	err := g.LoadModule(newHookModule("worker"))
	assert.ErrorIs(t, err, ErrDuplicateModule)

	err = g.LoadModule(newHookModule("sources"))
	assert.ErrorIs(t, err, ErrDuplicateModule)
}

// TestGraph_LoadModule_AfterFinalize verifies the structure is frozen.
func TestGraph_LoadModule_AfterFinalize(t *testing.T) {
	g := buildGraph(t, nil, nil)
	assert.ErrorIs(t, g.LoadModule(newHookModule("late")), ErrFinalized)
}

// TestGraph_Finalize_RunsInRegistrationOrder verifies both configuration
// phases run per module, in the order modules were loaded.
func TestGraph_Finalize_RunsInRegistrationOrder(t *testing.T) {
	var order []string
	mk := func(name string) *hookModule {
		m := newHookModule(name)
		m.initParams = func(*params.Params) error {
			order = append(order, name+":params")
			return nil
		}
		m.setupNetwork = func() error {
			order = append(order, name+":network")
			return nil
		}
		return m
	}

	buildGraph(t, nil, nil, mk("alpha"), mk("beta"))

	assert.Equal(t, []string{
		"alpha:params", "alpha:network",
		"beta:params", "beta:network",
	}, order)
}

// TestGraph_Finalize_PassesModuleSubtree verifies each module receives its
// own configuration subtree.
func TestGraph_Finalize_PassesModuleSubtree(t *testing.T) {
	p := params.New(map[string]any{
		"worker": map[string]any{"gain": 2.5},
	})

	var gain float64
	m := newHookModule("worker")
	m.initParams = func(p *params.Params) error {
		var err error
		gain, err = p.Float("gain")
		return err
	}

	buildGraph(t, p, nil, m)
	assert.Equal(t, 2.5, gain)
}

// TestGraph_Finalize_ConfigFailureSkipsModule verifies a module whose
// configuration fails is skipped without touching the rest of the graph.
func TestGraph_Finalize_ConfigFailureSkipsModule(t *testing.T) {
	broken := newHookModule("broken")
	broken.initParams = func(*params.Params) error { return errors.New("bad config") }
	networkRan := false
	broken.setupNetwork = func() error {
		networkRan = true
		return nil
	}

	healthy := newHookModule("healthy")
	healthyRan := false
	healthy.setupNetwork = func() error {
		healthyRan = true
		return nil
	}

	buildGraph(t, nil, nil, broken, healthy)

	assert.False(t, networkRan, "skipped module must not set up its network")
	assert.True(t, healthyRan)
}

// TestGraph_Finalize_SetupErrorAborts verifies a network-setup error stops
// Finalize before later modules run.
func TestGraph_Finalize_SetupErrorAborts(t *testing.T) {
	first := newHookModule("first")
	first.setupNetwork = func() error { return errors.New("wiring broken") }

	second := newHookModule("second")
	secondRan := false
	second.setupNetwork = func() error {
		secondRan = true
		return nil
	}

	g := initGraph(t, nil, nil, first, second)
	err := g.Finalize()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.False(t, secondRan)
}

// TestGraph_Finalize_Twice verifies a second Finalize fails.
func TestGraph_Finalize_Twice(t *testing.T) {
	g := buildGraph(t, nil, nil)
	assert.ErrorIs(t, g.Finalize(), ErrFinalized)
}

// TestGraph_Finalize_BeforeInit_Panics verifies lifecycle misuse panics.
func TestGraph_Finalize_BeforeInit_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "modflow: graph not initialized", func() {
		_ = New().Finalize()
	})
}

// TestCreateChannel_DuplicateName verifies channel names are unique per
// graph and that the existing channel survives.
func TestCreateChannel_DuplicateName(t *testing.T) {
	owner := newHookModule("owner")
	intruder := newHookModule("intruder")
	var dupErr error
	owner.setupNetwork = func() error {
		_, err := NewChannel1[int](owner, "data")
		return err
	}
	intruder.setupNetwork = func() error {
		_, dupErr = NewChannel1[string](intruder, "data")
		return nil
	}

	g := buildGraph(t, nil, nil, owner, intruder)

	assert.ErrorIs(t, dupErr, ErrDuplicateChannel)
	ch, err := g.resolveChannel("data")
	require.NoError(t, err)
	assert.Equal(t, "owner", ch.OwnerName())
	assert.True(t, ch.Signature().Equal(Types1[int]()))
}

// TestCreateChannel_EmptyName_Panics verifies an empty channel name panics.
func TestCreateChannel_EmptyName_Panics(t *testing.T) {
	m := newHookModule("m")
	m.setupNetwork = func() error {
		_, err := NewChannel0(m, "")
		return err
	}
	g := initGraph(t, nil, nil, m)
	assert.PanicsWithValue(t, "modflow: channel name cannot be empty", func() {
		_ = g.Finalize()
	})
}

// TestEmit_BeforeFinalize verifies emissions are rejected until the graph
// structure is frozen.
func TestEmit_BeforeFinalize(t *testing.T) {
	g := initGraph(t, nil, nil)
	ch, err := DeclareSource1[int](g.Sources(), "input")
	require.NoError(t, err)

	assert.ErrorIs(t, g.Sources().CallOn(ch, 1), ErrNotFinalized)
}

// TestEmit_UnknownChannel verifies emission by name on a dangling reference.
func TestEmit_UnknownChannel(t *testing.T) {
	m := newHookModule("m")
	buildGraph(t, nil, nil, m)
	assert.ErrorIs(t, m.Emit("nowhere", 1), ErrChannelNotFound)
}

// TestEmit_TypeMismatch verifies payloads are checked against the channel
// signature by type identity.
func TestEmit_TypeMismatch(t *testing.T) {
	m := newHookModule("m")
	m.setupNetwork = func() error {
		_, err := NewChannel1[int](m, "data")
		return err
	}
	buildGraph(t, nil, nil, m)

	err := m.Emit("data", "not an int")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var tmErr *TypeMismatchError
	require.ErrorAs(t, err, &tmErr)
	assert.Equal(t, "data", tmErr.Channel)
	assert.Equal(t, "m", tmErr.Caller)
	assert.True(t, tmErr.Emitting)

	// Arity is part of the signature too.
	assert.ErrorIs(t, m.Emit("data", 1, 2), ErrTypeMismatch)
	assert.ErrorIs(t, m.Emit("data"), ErrTypeMismatch)
}

// TestEmit_OwnershipEnforced verifies only the creating module may emit on
// a regular channel.
func TestEmit_OwnershipEnforced(t *testing.T) {
	owner := newHookModule("owner")
	owner.setupNetwork = func() error {
		_, err := NewChannel1[int](owner, "data")
		return err
	}
	outsider := newHookModule("outsider")
	buildGraph(t, nil, nil, owner, outsider)

	require.NoError(t, owner.Emit("data", 1))

	err := outsider.Emit("data", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotOwner)

	var ownErr *OwnershipError
	require.ErrorAs(t, err, &ownErr)
	assert.Equal(t, "owner", ownErr.Owner)
	assert.Equal(t, "outsider", ownErr.Caller)
}

// TestEmit_SinkOwnership verifies any module may emit on a sink by default,
// and only the sinks module under strict ownership.
func TestEmit_SinkOwnership(t *testing.T) {
	setup := func(t *testing.T, opts ...Option) (*Graph, *hookModule) {
		m := newHookModule("m")
		g := initGraph(t, nil, opts, m)
		_, err := DeclareSink1(g.Sinks(), "out", func(int) error { return nil })
		require.NoError(t, err)
		require.NoError(t, g.Finalize())
		return g, m
	}

	t.Run("permissive by default", func(t *testing.T) {
		_, m := setup(t)
		assert.NoError(t, m.Emit("out", 7))
	})

	t.Run("strict restricts to declaring module", func(t *testing.T) {
		_, m := setup(t, WithStrictSinkOwnership())
		assert.ErrorIs(t, m.Emit("out", 7), ErrNotOwner)
	})
}

// TestEmit_FanOutOrderAndErrors verifies slots run in connection order and
// that one slot's failure neither stops the fan-out nor hides other
// errors.
func TestEmit_FanOutOrderAndErrors(t *testing.T) {
	producer := newHookModule("producer")
	producer.setupNetwork = func() error {
		_, err := NewChannel1[int](producer, "data")
		return err
	}

	var order []string
	mkConsumer := func(name string, fail error) *hookModule {
		c := newHookModule(name)
		c.setupNetwork = func() error {
			return Connect1(c, "data", func(_ *Event, v int) error {
				order = append(order, name)
				return fail
			})
		}
		return c
	}

	failing := errors.New("first failed")
	buildGraph(t, nil, nil,
		producer,
		mkConsumer("first", failing),
		mkConsumer("second", nil),
		mkConsumer("third", nil),
	)

	err := producer.Emit("data", 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, failing)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

// TestEmit_NoConnections verifies emitting on an unconnected channel is a
// valid no-op.
func TestEmit_NoConnections(t *testing.T) {
	m := newHookModule("m")
	m.setupNetwork = func() error {
		_, err := NewChannel1[int](m, "data")
		return err
	}
	buildGraph(t, nil, nil, m)

	assert.NoError(t, m.Emit("data", 1))
}

// TestEmit_NestedDepths runs a three-stage pipeline and checks the
// ancestry tree mirrors the dispatch nesting.
func TestEmit_NestedDepths(t *testing.T) {
	stageA := newHookModule("stage_a")
	stageB := newHookModule("stage_b")
	stageC := newHookModule("stage_c")

	var depths []int
	var finalEvent *Event

	stageA.setupNetwork = func() error {
		if _, err := NewChannel1[int](stageA, "refined"); err != nil {
			return err
		}
		return Connect1(stageA, "raw", func(_ *Event, v int) error {
			return stageA.Emit("refined", v*2)
		})
	}
	stageB.setupNetwork = func() error {
		if _, err := NewChannel1[int](stageB, "final"); err != nil {
			return err
		}
		return Connect1(stageB, "refined", func(_ *Event, v int) error {
			return stageB.Emit("final", v+1)
		})
	}
	stageC.setupNetwork = func() error {
		return Connect1(stageC, "final", func(ev *Event, v int) error {
			depths = append(depths, ev.Depth())
			finalEvent = ev
			assert.Equal(t, 85, v)
			return nil
		})
	}

	g := initGraph(t, nil, nil, stageA, stageB, stageC)
	raw, err := DeclareSource1[int](g.Sources(), "raw")
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	require.NoError(t, g.Sources().CallOn(raw, 42))

	require.Equal(t, []int{2}, depths)
	require.NotNil(t, finalEvent)
	assert.True(t, finalEvent.ChannelInAncestors("raw"))
	assert.True(t, finalEvent.ChannelInAncestors("refined"))
	assert.True(t, finalEvent.ModuleInAncestors("sources"))

	// A second boundary call roots a fresh tree at depth 0 again.
	require.NoError(t, g.Sources().CallOn(raw, 42))
	assert.Equal(t, []int{2, 2}, depths)
}

// TestService_Call verifies the request/response path end to end. The
// caller owns the request channel; the serving module connects to it.
func TestService_Call(t *testing.T) {
	client := newHookModule("client")
	client.setupNetwork = func() error {
		_, err := NewChannel1[int](client, "query")
		return err
	}
	server := newHookModule("server")
	server.setupNetwork = func() error {
		return ConnectService1(server, "query", func(_ *Event, v int) (int, error) {
			return v * v, nil
		})
	}

	buildGraph(t, nil, nil, client, server)

	got, err := Call1[int, int](client, "query", 7)
	require.NoError(t, err)
	assert.Equal(t, 49, got)
}

// TestService_CallOwnership verifies a service call still goes through the
// ownership check: a module that does not own the request channel cannot
// call it.
func TestService_CallOwnership(t *testing.T) {
	client := newHookModule("client")
	client.setupNetwork = func() error {
		_, err := NewChannel1[int](client, "query")
		return err
	}
	server := newHookModule("server")
	server.setupNetwork = func() error {
		return ConnectService1(server, "query", func(_ *Event, v int) (int, error) {
			return v, nil
		})
	}
	outsider := newHookModule("outsider")
	buildGraph(t, nil, nil, client, server, outsider)

	_, err := Call1[int, int](outsider, "query", 7)
	assert.ErrorIs(t, err, ErrNotOwner)
}

// TestService_ArityEnforced verifies a call demands exactly one connection.
func TestService_ArityEnforced(t *testing.T) {
	t.Run("zero connections", func(t *testing.T) {
		m := newHookModule("m")
		m.setupNetwork = func() error {
			_, err := NewChannel1[int](m, "query")
			return err
		}
		buildGraph(t, nil, nil, m)

		_, err := Call1[int, int](m, "query", 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConnectionArity)

		var aErr *ArityError
		require.ErrorAs(t, err, &aErr)
		assert.Equal(t, 0, aErr.Connections)
	})

	t.Run("two connections", func(t *testing.T) {
		m := newHookModule("m")
		m.setupNetwork = func() error {
			if _, err := NewChannel1[int](m, "query"); err != nil {
				return err
			}
			echo := func(_ *Event, v int) (int, error) { return v, nil }
			if err := ConnectService1(m, "query", echo); err != nil {
				return err
			}
			return ConnectService1(m, "query", echo)
		}
		buildGraph(t, nil, nil, m)

		_, err := Call1[int, int](m, "query", 1)
		assert.ErrorIs(t, err, ErrConnectionArity)
	})
}

// TestService_BadReturn verifies a result that cannot convert to the
// caller's requested type fails instead of misbehaving.
func TestService_BadReturn(t *testing.T) {
	m := newHookModule("m")
	m.setupNetwork = func() error {
		if _, err := NewChannel1[int](m, "query"); err != nil {
			return err
		}
		return ConnectService1(m, "query", func(_ *Event, v int) (int, error) {
			return v, nil
		})
	}
	buildGraph(t, nil, nil, m)

	_, err := Call1[int, string](m, "query", 1)
	assert.ErrorIs(t, err, ErrBadReturn)
}

// TestService_DynamicCall verifies the untyped CallService variant.
func TestService_DynamicCall(t *testing.T) {
	m := newHookModule("m")
	m.setupNetwork = func() error {
		if _, err := NewChannel2[int, int](m, "sum"); err != nil {
			return err
		}
		return ConnectService2(m, "sum", func(_ *Event, a, b int) (int, error) {
			return a + b, nil
		})
	}
	buildGraph(t, nil, nil, m)

	out, err := m.CallService("sum", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, out)
}

// TestConnect_TypeMismatch verifies connecting with the wrong type list is
// rejected at setup time.
func TestConnect_TypeMismatch(t *testing.T) {
	owner := newHookModule("owner")
	owner.setupNetwork = func() error {
		_, err := NewChannel1[int](owner, "data")
		return err
	}

	var connErr error
	listener := newHookModule("listener")
	listener.setupNetwork = func() error {
		connErr = Connect1(listener, "data", func(_ *Event, v string) error { return nil })
		return nil
	}

	buildGraph(t, nil, nil, owner, listener)

	require.Error(t, connErr)
	assert.ErrorIs(t, connErr, ErrTypeMismatch)
	var tmErr *TypeMismatchError
	require.ErrorAs(t, connErr, &tmErr)
	assert.False(t, tmErr.Emitting)
}

// TestConnect_NilCallback_Panics verifies nil callbacks panic at setup.
func TestConnect_NilCallback_Panics(t *testing.T) {
	m := newHookModule("m")
	m.setupNetwork = func() error {
		if _, err := NewChannel1[int](m, "data"); err != nil {
			return err
		}
		return Connect1[int](m, "data", nil)
	}
	g := initGraph(t, nil, nil, m)
	assert.PanicsWithValue(t, "modflow: connection callback cannot be nil", func() {
		_ = g.Finalize()
	})
}

// TestTraceRecorder_JournalsFilteredEmissions verifies the trace journal
// honors the graph's debug configuration.
func TestTraceRecorder_JournalsFilteredEmissions(t *testing.T) {
	p := params.New(map[string]any{
		"mod_flow": map[string]any{
			"debug": map[string]any{
				"enable":        true,
				"only_channels": []any{"raw"},
			},
		},
	})
	rec := &memRecorder{}

	relay := newHookModule("relay")
	relay.setupNetwork = func() error {
		if _, err := NewChannel1[int](relay, "refined"); err != nil {
			return err
		}
		return Connect1(relay, "raw", func(_ *Event, v int) error {
			return relay.Emit("refined", v)
		})
	}
	bystander := newHookModule("bystander")
	bystander.setupNetwork = func() error {
		_, err := NewChannel1[int](bystander, "aside")
		return err
	}

	g := initGraph(t, p, []Option{WithTraceRecorder(rec)}, relay, bystander)
	raw, err := DeclareSource1[int](g.Sources(), "raw")
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	require.NoError(t, g.Sources().CallOn(raw, 1))
	// An emission with no raw ancestry is filtered out.
	require.NoError(t, bystander.Emit("aside", 2))

	channels := rec.channels()
	assert.Contains(t, channels, "raw")
	assert.Contains(t, channels, "refined")
	assert.NotContains(t, channels, "aside")

	for _, e := range rec.entries {
		if e.Channel == "refined" {
			assert.NotEmpty(t, e.ParentID)
			assert.Equal(t, 1, e.Depth)
			assert.Equal(t, "relay", e.Module)
		}
	}
}

// TestTraceRecorder_FailureDoesNotAffectDispatch verifies a failing journal
// is logged and dropped.
func TestTraceRecorder_FailureDoesNotAffectDispatch(t *testing.T) {
	p := params.New(map[string]any{
		"mod_flow": map[string]any{
			"debug": map[string]any{"enable": true},
		},
	})
	rec := &memRecorder{fail: errors.New("journal down")}

	delivered := 0
	listener := newHookModule("listener")
	listener.setupNetwork = func() error {
		return Connect1(listener, "raw", func(_ *Event, v int) error {
			delivered++
			return nil
		})
	}

	g := initGraph(t, p, []Option{WithTraceRecorder(rec)}, listener)
	raw, err := DeclareSource1[int](g.Sources(), "raw")
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	assert.NoError(t, g.Sources().CallOn(raw, 1))
	assert.Equal(t, 1, delivered)
}

// TestGraph_ChannelCount verifies the registry size accessor.
func TestGraph_ChannelCount(t *testing.T) {
	m := newHookModule("m")
	m.setupNetwork = func() error {
		if _, err := NewChannel0(m, "a"); err != nil {
			return err
		}
		_, err := NewChannel1[int](m, "b")
		return err
	}
	g := initGraph(t, nil, nil, m)
	_, err := DeclareSource0(g.Sources(), "in")
	require.NoError(t, err)
	require.NoError(t, g.Finalize())

	assert.Equal(t, 3, g.ChannelCount())
}
