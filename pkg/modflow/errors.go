package modflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction and wiring.
var (
	// ErrDuplicateChannel indicates a channel name is already registered.
	ErrDuplicateChannel = errors.New("channel name already exists")

	// ErrChannelNotFound indicates a channel name that resolves to nothing.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrDuplicateModule indicates a module name is already registered.
	ErrDuplicateModule = errors.New("module name already exists")

	// ErrFinalized indicates a structural mutation after Finalize.
	ErrFinalized = errors.New("graph already finalized")

	// ErrNotFinalized indicates an emission before Finalize.
	ErrNotFinalized = errors.New("graph not finalized")
)

// Sentinel errors for emission.
var (
	// ErrTypeMismatch indicates a payload or slot signature that differs
	// from the channel's signature.
	ErrTypeMismatch = errors.New("channel type mismatch")

	// ErrNotOwner indicates an emission on a non-sink channel by a module
	// other than its creator.
	ErrNotOwner = errors.New("caller does not own channel")

	// ErrConnectionArity indicates a service call on a channel that does
	// not have exactly one connection.
	ErrConnectionArity = errors.New("service channel requires exactly one connection")

	// ErrBadPayload indicates an erased slot was invoked with a packed
	// payload whose shape does not match what was captured.
	ErrBadPayload = errors.New("payload shape does not match slot")

	// ErrNotEnabled indicates a service slot was reached while its module's
	// enabling gate is still pending. Fan-out slots silently no-op instead.
	ErrNotEnabled = errors.New("module not enabled")

	// ErrBadReturn indicates a service result that cannot be converted to
	// the caller's requested type.
	ErrBadReturn = errors.New("service return type mismatch")
)

// TypeMismatchError reports the expected and actual type lists for a
// connection request or emission that failed the signature check.
type TypeMismatchError struct {
	// Channel is the channel whose signature was violated.
	Channel string
	// Caller is the module that attempted the operation.
	Caller string
	// Expected is the channel's signature.
	Expected Signature
	// Actual is the signature the caller presented.
	Actual Signature
	// Emitting is true for an emission, false for a connection request.
	Emitting bool
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	op := "connecting to"
	if e.Emitting {
		op = "emitting on"
	}
	return fmt.Sprintf("module %s %s channel %s: requires %s, got %s",
		e.Caller, op, e.Channel, e.Expected, e.Actual)
}

// Unwrap returns ErrTypeMismatch for errors.Is support.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// OwnershipError reports an emission by a module that does not own the
// channel.
type OwnershipError struct {
	// Channel is the channel the caller attempted to emit on.
	Channel string
	// Caller is the emitting module.
	Caller string
	// Owner is the module that created the channel.
	Owner string
}

// Error implements the error interface.
func (e *OwnershipError) Error() string {
	return fmt.Sprintf("module %s cannot emit on channel %s, owned by %s",
		e.Caller, e.Channel, e.Owner)
}

// Unwrap returns ErrNotOwner for errors.Is support.
func (e *OwnershipError) Unwrap() error {
	return ErrNotOwner
}

// ArityError reports a service call on a channel with a connection count
// other than one.
type ArityError struct {
	// Channel is the service channel.
	Channel string
	// Connections is the channel's actual connection count.
	Connections int
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	return fmt.Sprintf("service call on channel %s with %d connections, want exactly 1",
		e.Channel, e.Connections)
}

// Unwrap returns ErrConnectionArity for errors.Is support.
func (e *ArityError) Unwrap() error {
	return ErrConnectionArity
}
