package timeseries

import "time"

// Hysteresis is a time-based trigger gate: Check fires only when more than
// threshold has passed since the previous event and more than lockout has
// passed since the previous trigger. Modules use it to debounce noisy
// channel activity into single decisions.
//
// Hysteresis is not safe for concurrent use.
type Hysteresis struct {
	threshold time.Duration
	lockout   time.Duration

	lastEvent   time.Time
	lastTrigger time.Time
	now         func() time.Time
}

// HysteresisOption configures a Hysteresis.
type HysteresisOption func(*Hysteresis)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) HysteresisOption {
	return func(h *Hysteresis) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHysteresis creates a gate with the given event threshold and trigger
// lockout. The gate starts armed: the first Check past the threshold fires.
func NewHysteresis(threshold, lockout time.Duration, opts ...HysteresisOption) *Hysteresis {
	h := &Hysteresis{
		threshold: threshold,
		lockout:   lockout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	start := h.now()
	h.lastEvent = start
	h.lastTrigger = start.Add(-lockout)
	return h
}

// Check records an event and reports whether it triggers. An event past the
// threshold resets the event clock even when the lockout suppresses the
// trigger.
func (h *Hysteresis) Check() bool {
	current := h.now()
	sinceEvent := current.Sub(h.lastEvent)
	sinceTrigger := current.Sub(h.lastTrigger)

	if sinceEvent > h.threshold && sinceTrigger > h.lockout {
		h.lastEvent = current
		h.lastTrigger = current
		return true
	}
	if sinceEvent > h.threshold {
		h.lastEvent = current
	}
	return false
}
