// Package modflow provides a typed, in-process publish/subscribe dispatch
// graph. Independent computation units (modules) declare named, typed event
// endpoints (channels); other modules bind callbacks (slots) to those
// channels. Emitting a value on a channel synchronously invokes every bound
// slot, in registration order, with payload types fixed at compile time by
// the generic helpers and enforced again at runtime by type identity.
//
// A graph is assembled in three phases:
//
//  1. Init registers the Sources and Sinks boundary modules and runs the
//     host-supplied loader, which registers the remaining modules with
//     LoadModule in the order they should be configured.
//  2. Finalize distributes per-module configuration and runs each module's
//     SetupNetwork in registration order; channels are created and
//     connections requested here. Structure is frozen afterwards.
//  3. Runtime activity is a sequence of emissions. Each emission produces an
//     Event linked to the event that caused it, so nested emissions form a
//     tree that diagnostics can reconstruct after the fact.
//
// Execution is single-threaded and reentrant: emit runs every bound slot
// inline on the caller's stack, and a slot that itself emits simply recurses.
// The core provides no internal synchronization; hosts that call into
// Sources from multiple goroutines must serialize those calls themselves.
//
// Minimal example:
//
//	type doubler struct {
//	    modflow.BaseModule
//	}
//
//	func (d *doubler) SetupNetwork() error {
//	    if _, err := modflow.NewChannel1[int](d, "doubled"); err != nil {
//	        return err
//	    }
//	    return modflow.Connect1(d, "numbers", func(ev *modflow.Event, n int) error {
//	        return d.Emit("doubled", 2*n)
//	    })
//	}
package modflow
