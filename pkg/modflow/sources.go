package modflow

// Sources is the boundary module whose channels are triggered only from
// outside the graph. The host declares channels with the DeclareSource
// helpers before Finalize and triggers them with Call afterwards; no module
// inside the graph may emit on a source channel.
//
// Sources is registered automatically by Graph.Init under the fixed name
// "sources" and is driven through the same configuration phases as every
// other module, though both phases are no-ops for it.
type Sources struct {
	BaseModule
}

func newSources() *Sources {
	return &Sources{BaseModule: NewBaseModule("sources")}
}

// DeclareSource0 declares a payload-less source channel.
func DeclareSource0(s *Sources, name string) (*Channel, error) {
	return s.graph.createChannel(name, s.module(), false, Types0())
}

// DeclareSource1 declares a single-payload source channel.
func DeclareSource1[A any](s *Sources, name string) (*Channel, error) {
	return s.graph.createChannel(name, s.module(), false, Types1[A]())
}

// DeclareSource2 declares a two-payload source channel.
func DeclareSource2[A, B any](s *Sources, name string) (*Channel, error) {
	return s.graph.createChannel(name, s.module(), false, Types2[A, B]())
}

// DeclareSource3 declares a three-payload source channel.
func DeclareSource3[A, B, C any](s *Sources, name string) (*Channel, error) {
	return s.graph.createChannel(name, s.module(), false, Types3[A, B, C]())
}

// Call emits values on the named source channel. This is the graph's
// inbound boundary: the resulting event is a root of a new ancestry tree.
// Callable only after Finalize.
func (s *Sources) Call(name string, values ...any) error {
	ch, err := s.graph.resolveChannel(name)
	if err != nil {
		return err
	}
	return s.CallOn(ch, values...)
}

// CallOn is the channel-handle variant of Call, with constant-time
// dispatch.
func (s *Sources) CallOn(ch *Channel, values ...any) error {
	// Boundary calls always start a fresh ancestry tree, even when a
	// previous call left a last event behind.
	s.last = nil
	return s.graph.emit(ch, s.module(), values)
}
