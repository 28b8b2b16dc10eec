package modflow

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// slot is the type-erased adapter stored in a channel's connection list.
// The invoke closure is built by the generic erase helpers, so the only way
// to construct one fixes the callback's arity and types at compile time.
// The erased path still re-checks the packed shape on every invocation and
// fails instead of misbehaving.
type slot struct {
	name   string
	invoke func(ev *Event, args []any) (any, error)
}

// erase0 through erase3 wrap fan-out callbacks. The payload is passed as an
// opaque slice and unpacked symmetrically to how the adapter was built.
func erase0(fn func(*Event) error) func(*Event, []any) (any, error) {
	return func(ev *Event, args []any) (any, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: want 0 values, got %d", ErrBadPayload, len(args))
		}
		return nil, fn(ev)
	}
}

func erase1[A any](fn func(*Event, A) error) func(*Event, []any) (any, error) {
	return func(ev *Event, args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: want 1 value, got %d", ErrBadPayload, len(args))
		}
		a, ok := args[0].(A)
		if !ok {
			return nil, fmt.Errorf("%w: got %s", ErrBadPayload, valuesSignature(args))
		}
		return nil, fn(ev, a)
	}
}

func erase2[A, B any](fn func(*Event, A, B) error) func(*Event, []any) (any, error) {
	return func(ev *Event, args []any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: want 2 values, got %d", ErrBadPayload, len(args))
		}
		a, okA := args[0].(A)
		b, okB := args[1].(B)
		if !okA || !okB {
			return nil, fmt.Errorf("%w: got %s", ErrBadPayload, valuesSignature(args))
		}
		return nil, fn(ev, a, b)
	}
}

func erase3[A, B, C any](fn func(*Event, A, B, C) error) func(*Event, []any) (any, error) {
	return func(ev *Event, args []any) (any, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("%w: want 3 values, got %d", ErrBadPayload, len(args))
		}
		a, okA := args[0].(A)
		b, okB := args[1].(B)
		c, okC := args[2].(C)
		if !okA || !okB || !okC {
			return nil, fmt.Errorf("%w: got %s", ErrBadPayload, valuesSignature(args))
		}
		return nil, fn(ev, a, b, c)
	}
}

// eraseService0 through eraseService2 wrap request/response callbacks.
// The result travels back through the erased path as an owned value; the
// typed caller recovers it with a checked assertion.
func eraseService0[R any](fn func(*Event) (R, error)) func(*Event, []any) (any, error) {
	return func(ev *Event, args []any) (any, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: want 0 values, got %d", ErrBadPayload, len(args))
		}
		return fn(ev)
	}
}

func eraseService1[A, R any](fn func(*Event, A) (R, error)) func(*Event, []any) (any, error) {
	return func(ev *Event, args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: want 1 value, got %d", ErrBadPayload, len(args))
		}
		a, ok := args[0].(A)
		if !ok {
			return nil, fmt.Errorf("%w: got %s", ErrBadPayload, valuesSignature(args))
		}
		return fn(ev, a)
	}
}

func eraseService2[A, B, R any](fn func(*Event, A, B) (R, error)) func(*Event, []any) (any, error) {
	return func(ev *Event, args []any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: want 2 values, got %d", ErrBadPayload, len(args))
		}
		a, okA := args[0].(A)
		b, okB := args[1].(B)
		if !okA || !okB {
			return nil, fmt.Errorf("%w: got %s", ErrBadPayload, valuesSignature(args))
		}
		return fn(ev, a, b)
	}
}

// funcName derives a diagnostic name for a callback from its function
// symbol, trimmed of the package path and the method-value suffix.
func funcName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "<anonymous>"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
