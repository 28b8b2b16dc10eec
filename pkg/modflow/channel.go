package modflow

// ChannelID identifies a channel within one graph instance.
// IDs are assigned monotonically at creation and index the graph's
// per-channel connection table. They are never reused.
type ChannelID int64

// Channel is a named, typed event endpoint owned by exactly one module.
// Channels are immutable once created.
type Channel struct {
	id    ChannelID
	name  string
	owner Module
	sink  bool
	sig   Signature
}

// ID returns the channel's unique identifier.
func (c *Channel) ID() ChannelID {
	return c.id
}

// Name returns the channel's unique name.
func (c *Channel) Name() string {
	return c.name
}

// OwnerName returns the name of the module that created the channel.
func (c *Channel) OwnerName() string {
	return c.owner.Name()
}

// IsSink reports whether the channel forwards to callbacks outside the
// graph.
func (c *Channel) IsSink() bool {
	return c.sink
}

// Signature returns the channel's payload type list.
func (c *Channel) Signature() Signature {
	return c.sig
}

// checkOwnership reports whether caller may emit on the channel. Any module
// may emit on a sink channel unless the graph runs with strict sink
// ownership.
func (c *Channel) checkOwnership(caller Module, strictSinks bool) bool {
	if c.sink && !strictSinks {
		return true
	}
	return caller == c.owner
}
