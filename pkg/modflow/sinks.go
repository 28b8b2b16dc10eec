package modflow

// Sinks is the boundary module whose channels forward directly to callbacks
// outside the graph. Declaring a sink installs the forwarding connection
// immediately, so unlike regular modules Sinks has no network-setup phase.
// Any module may emit on a sink channel unless the graph runs with strict
// sink ownership.
//
// Sinks is registered automatically by Graph.Init under the fixed name
// "sinks".
type Sinks struct {
	BaseModule
}

func newSinks() *Sinks {
	return &Sinks{BaseModule: NewBaseModule("sinks")}
}

// DeclareSink0 declares a payload-less sink channel forwarding to fn.
// Panics if fn is nil.
func DeclareSink0(s *Sinks, name string, fn func() error) (*Channel, error) {
	if fn == nil {
		panic("modflow: sink callback cannot be nil")
	}
	ch, err := s.graph.createChannel(name, s.module(), true, Types0())
	if err != nil {
		return nil, err
	}
	forward := func(_ *Event) error { return fn() }
	if err := s.graph.createConnection(ch, slot{name: funcName(fn), invoke: erase0(forward)}); err != nil {
		return nil, err
	}
	return ch, nil
}

// DeclareSink1 declares a single-payload sink channel forwarding to fn.
func DeclareSink1[A any](s *Sinks, name string, fn func(A) error) (*Channel, error) {
	if fn == nil {
		panic("modflow: sink callback cannot be nil")
	}
	ch, err := s.graph.createChannel(name, s.module(), true, Types1[A]())
	if err != nil {
		return nil, err
	}
	forward := func(_ *Event, a A) error { return fn(a) }
	if err := s.graph.createConnection(ch, slot{name: funcName(fn), invoke: erase1(forward)}); err != nil {
		return nil, err
	}
	return ch, nil
}

// DeclareSink2 declares a two-payload sink channel forwarding to fn.
func DeclareSink2[A, B any](s *Sinks, name string, fn func(A, B) error) (*Channel, error) {
	if fn == nil {
		panic("modflow: sink callback cannot be nil")
	}
	ch, err := s.graph.createChannel(name, s.module(), true, Types2[A, B]())
	if err != nil {
		return nil, err
	}
	forward := func(_ *Event, a A, b B) error { return fn(a, b) }
	if err := s.graph.createConnection(ch, slot{name: funcName(fn), invoke: erase2(forward)}); err != nil {
		return nil, err
	}
	return ch, nil
}

// DeclareSink3 declares a three-payload sink channel forwarding to fn.
func DeclareSink3[A, B, C any](s *Sinks, name string, fn func(A, B, C) error) (*Channel, error) {
	if fn == nil {
		panic("modflow: sink callback cannot be nil")
	}
	ch, err := s.graph.createChannel(name, s.module(), true, Types3[A, B, C]())
	if err != nil {
		return nil, err
	}
	forward := func(_ *Event, a A, b B, c C) error { return fn(a, b, c) }
	if err := s.graph.createConnection(ch, slot{name: funcName(fn), invoke: erase3(forward)}); err != nil {
		return nil, err
	}
	return ch, nil
}

// RequireSink resolves a sink channel a module depends on and verifies both
// that it exists and that its signature matches the expected type list.
// Modules call this from SetupNetwork to fail early when the host forgot a
// declaration.
func RequireSink(m Module, name string, expected Signature) (*Channel, error) {
	b := m.base()
	ch, err := b.graph.resolveChannel(name)
	if err != nil {
		return nil, err
	}
	if !ch.sig.Equal(expected) {
		return nil, &TypeMismatchError{
			Channel:  ch.name,
			Caller:   b.name,
			Expected: ch.sig,
			Actual:   expected,
			Emitting: false,
		}
	}
	return ch, nil
}
