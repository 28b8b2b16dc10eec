package modflow

import (
	"reflect"
	"strings"
)

// Signature is the ordered list of payload types carried by a channel.
// Comparison is exact and order-sensitive: no conversions, no variance.
type Signature []reflect.Type

// SignatureOf builds a Signature from explicit reflect types.
func SignatureOf(types ...reflect.Type) Signature {
	return Signature(types)
}

// Types0 returns the empty signature.
func Types0() Signature {
	return Signature{}
}

// Types1 returns the signature of a single-payload channel.
func Types1[A any]() Signature {
	return Signature{reflect.TypeFor[A]()}
}

// Types2 returns the signature of a two-payload channel.
func Types2[A, B any]() Signature {
	return Signature{reflect.TypeFor[A](), reflect.TypeFor[B]()}
}

// Types3 returns the signature of a three-payload channel.
func Types3[A, B, C any]() Signature {
	return Signature{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()}
}

// Equal reports whether two signatures list identical types in the same
// order.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i, t := range s {
		if t != other[i] {
			return false
		}
	}
	return true
}

// Matches reports whether the dynamic types of values equal the signature,
// position by position. An untyped nil value never matches.
func (s Signature) Matches(values []any) bool {
	if len(values) != len(s) {
		return false
	}
	for i, v := range values {
		if reflect.TypeOf(v) != s[i] {
			return false
		}
	}
	return true
}

// valuesSignature builds the Signature of a concrete payload, used in
// mismatch diagnostics.
func valuesSignature(values []any) Signature {
	sig := make(Signature, len(values))
	for i, v := range values {
		sig[i] = reflect.TypeOf(v)
	}
	return sig
}

// String renders the signature as "(T0, T1, ...)".
func (s Signature) String() string {
	names := make([]string, len(s))
	for i, t := range s {
		if t == nil {
			names[i] = "<nil>"
			continue
		}
		names[i] = t.String()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
