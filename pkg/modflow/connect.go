package modflow

// Generic helpers binding typed callbacks and channels to a module. Go
// methods cannot carry their own type parameters, so these mirror what the
// module base would otherwise expose, one helper per payload arity.

// NewChannel0 creates a payload-less channel owned by m.
func NewChannel0(m Module, name string) (*Channel, error) {
	return m.base().graph.createChannel(name, m.base().module(), false, Types0())
}

// NewChannel1 creates a single-payload channel owned by m.
func NewChannel1[A any](m Module, name string) (*Channel, error) {
	return m.base().graph.createChannel(name, m.base().module(), false, Types1[A]())
}

// NewChannel2 creates a two-payload channel owned by m.
func NewChannel2[A, B any](m Module, name string) (*Channel, error) {
	return m.base().graph.createChannel(name, m.base().module(), false, Types2[A, B]())
}

// NewChannel3 creates a three-payload channel owned by m.
func NewChannel3[A, B, C any](m Module, name string) (*Channel, error) {
	return m.base().graph.createChannel(name, m.base().module(), false, Types3[A, B, C]())
}

// Connect0 binds fn to the named payload-less channel.
//
// The installed slot records the inbound event as the module's last event,
// silently no-ops while the module's enabling gate is pending, then invokes
// fn. Panics if fn is nil.
func Connect0(m Module, channelName string, fn func(*Event) error) error {
	if fn == nil {
		panic("modflow: connection callback cannot be nil")
	}
	b := m.base()
	ch, err := connectChannel(b, channelName, Types0())
	if err != nil {
		return err
	}
	wrapped := func(ev *Event) error {
		b.last = ev
		if !b.Enabled() {
			return nil
		}
		return fn(ev)
	}
	return b.graph.createConnection(ch, slot{name: funcName(fn), invoke: erase0(wrapped)})
}

// Connect1 binds fn to the named single-payload channel.
func Connect1[A any](m Module, channelName string, fn func(*Event, A) error) error {
	if fn == nil {
		panic("modflow: connection callback cannot be nil")
	}
	b := m.base()
	ch, err := connectChannel(b, channelName, Types1[A]())
	if err != nil {
		return err
	}
	wrapped := func(ev *Event, a A) error {
		b.last = ev
		if !b.Enabled() {
			return nil
		}
		return fn(ev, a)
	}
	return b.graph.createConnection(ch, slot{name: funcName(fn), invoke: erase1(wrapped)})
}

// Connect2 binds fn to the named two-payload channel.
func Connect2[A, B any](m Module, channelName string, fn func(*Event, A, B) error) error {
	if fn == nil {
		panic("modflow: connection callback cannot be nil")
	}
	b := m.base()
	ch, err := connectChannel(b, channelName, Types2[A, B]())
	if err != nil {
		return err
	}
	wrapped := func(ev *Event, a A, bb B) error {
		b.last = ev
		if !b.Enabled() {
			return nil
		}
		return fn(ev, a, bb)
	}
	return b.graph.createConnection(ch, slot{name: funcName(fn), invoke: erase2(wrapped)})
}

// Connect3 binds fn to the named three-payload channel.
func Connect3[A, B, C any](m Module, channelName string, fn func(*Event, A, B, C) error) error {
	if fn == nil {
		panic("modflow: connection callback cannot be nil")
	}
	b := m.base()
	ch, err := connectChannel(b, channelName, Types3[A, B, C]())
	if err != nil {
		return err
	}
	wrapped := func(ev *Event, a A, bb B, c C) error {
		b.last = ev
		if !b.Enabled() {
			return nil
		}
		return fn(ev, a, bb, c)
	}
	return b.graph.createConnection(ch, slot{name: funcName(fn), invoke: erase3(wrapped)})
}

// ConnectService0 binds a request/response callback to the named
// payload-less channel. A service channel must end up with exactly this one
// connection; Call enforces that at call time.
func ConnectService0[R any](m Module, channelName string, fn func(*Event) (R, error)) error {
	if fn == nil {
		panic("modflow: connection callback cannot be nil")
	}
	b := m.base()
	ch, err := connectChannel(b, channelName, Types0())
	if err != nil {
		return err
	}
	wrapped := func(ev *Event) (R, error) {
		b.last = ev
		if !b.Enabled() {
			var zero R
			return zero, ErrNotEnabled
		}
		return fn(ev)
	}
	return b.graph.createConnection(ch, slot{name: funcName(fn), invoke: eraseService0(wrapped)})
}

// ConnectService1 binds a request/response callback to the named
// single-payload channel.
func ConnectService1[A, R any](m Module, channelName string, fn func(*Event, A) (R, error)) error {
	if fn == nil {
		panic("modflow: connection callback cannot be nil")
	}
	b := m.base()
	ch, err := connectChannel(b, channelName, Types1[A]())
	if err != nil {
		return err
	}
	wrapped := func(ev *Event, a A) (R, error) {
		b.last = ev
		if !b.Enabled() {
			var zero R
			return zero, ErrNotEnabled
		}
		return fn(ev, a)
	}
	return b.graph.createConnection(ch, slot{name: funcName(fn), invoke: eraseService1(wrapped)})
}

// ConnectService2 binds a request/response callback to the named
// two-payload channel.
func ConnectService2[A, B, R any](m Module, channelName string, fn func(*Event, A, B) (R, error)) error {
	if fn == nil {
		panic("modflow: connection callback cannot be nil")
	}
	b := m.base()
	ch, err := connectChannel(b, channelName, Types2[A, B]())
	if err != nil {
		return err
	}
	wrapped := func(ev *Event, a A, bb B) (R, error) {
		b.last = ev
		if !b.Enabled() {
			var zero R
			return zero, ErrNotEnabled
		}
		return fn(ev, a, bb)
	}
	return b.graph.createConnection(ch, slot{name: funcName(fn), invoke: eraseService2(wrapped)})
}

// connectChannel resolves a channel by name and verifies the caller's type
// list against its signature.
func connectChannel(b *BaseModule, channelName string, actual Signature) (*Channel, error) {
	ch, err := b.graph.resolveChannel(channelName)
	if err != nil {
		return nil, err
	}
	if !ch.sig.Equal(actual) {
		return nil, &TypeMismatchError{
			Channel:  ch.name,
			Caller:   b.name,
			Expected: ch.sig,
			Actual:   actual,
			Emitting: false,
		}
	}
	return ch, nil
}

// Emit1 emits a single typed value on the named channel.
func Emit1[A any](m Module, channelName string, a A) error {
	return m.base().Emit(channelName, a)
}

// Emit2 emits two typed values on the named channel.
func Emit2[A, B any](m Module, channelName string, a A, b B) error {
	return m.base().Emit(channelName, a, b)
}

// Emit3 emits three typed values on the named channel.
func Emit3[A, B, C any](m Module, channelName string, a A, b B, c C) error {
	return m.base().Emit(channelName, a, b, c)
}

// Call0 performs a request/response emission on a payload-less channel and
// returns the single bound slot's result.
func Call0[R any](m Module, channelName string) (R, error) {
	return callService[R](m, channelName)
}

// Call1 performs a request/response emission with one payload value.
func Call1[A, R any](m Module, channelName string, a A) (R, error) {
	return callService[R](m, channelName, a)
}

// Call2 performs a request/response emission with two payload values.
func Call2[A, B, R any](m Module, channelName string, a A, b B) (R, error) {
	return callService[R](m, channelName, a, b)
}

func callService[R any](m Module, channelName string, values ...any) (R, error) {
	var zero R
	b := m.base()
	ch, err := b.graph.resolveChannel(channelName)
	if err != nil {
		return zero, err
	}
	out, err := b.graph.call(ch, b.module(), values)
	if err != nil {
		return zero, err
	}
	r, ok := out.(R)
	if !ok {
		return zero, ErrBadReturn
	}
	return r, nil
}

// CallService is the dynamically typed variant of the Call helpers. The
// result is returned as produced by the bound slot.
func (m *BaseModule) CallService(channelName string, values ...any) (any, error) {
	ch, err := m.graph.resolveChannel(channelName)
	if err != nil {
		return nil, err
	}
	return m.graph.call(ch, m.module(), values)
}
