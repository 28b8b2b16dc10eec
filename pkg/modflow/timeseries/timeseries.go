// Package timeseries provides a time-indexed sample buffer with linear
// interpolation between samples, plus a time-based hysteresis gate. Modules
// use it to align asynchronous channel payloads on a common clock.
package timeseries

import (
	"fmt"
	"sort"
	"time"
)

// Numeric constrains sample values to types that support linear
// interpolation.
type Numeric interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Status reports the outcome of a series query.
type Status int

const (
	// StatusSuccess means the query produced a value.
	StatusSuccess Status = iota
	// StatusOutOfBounds means the queried time falls outside the sampled
	// range.
	StatusOutOfBounds
	// StatusNoStartTime means an absolute-time query was made before
	// SetStartTime.
	StatusNoStartTime
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusOutOfBounds:
		return "time out of bounds"
	case StatusNoStartTime:
		return "no start time"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result carries a query outcome: a value when Status is StatusSuccess,
// a failure status otherwise.
type Result[T Numeric] struct {
	Value  T
	Status Status
}

// Ok reports whether the query succeeded.
func (r Result[T]) Ok() bool {
	return r.Status == StatusSuccess
}

func success[T Numeric](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusSuccess}
}

func failure[T Numeric](s Status) Result[T] {
	return Result[T]{Status: s}
}

// Sample is one value tagged with its delay from the series start.
type Sample[T Numeric] struct {
	Delay time.Duration
	Value T
}

// Series is an append-only sequence of samples ordered by delay. Queries at
// arbitrary times interpolate linearly between the two enclosing samples.
// Absolute-time queries require a start time.
//
// Series is not safe for concurrent use.
type Series[T Numeric] struct {
	samples   []Sample[T]
	startTime time.Time
	hasStart  bool
}

// New returns an empty series.
func New[T Numeric]() *Series[T] {
	return &Series[T]{}
}

// SetStartTime anchors the series so absolute times can be converted to
// delays.
func (s *Series[T]) SetStartTime(t time.Time) {
	s.startTime = t
	s.hasStart = true
}

// Add appends a sample. Samples must be added in non-decreasing delay
// order.
func (s *Series[T]) Add(delay time.Duration, value T) {
	s.samples = append(s.samples, Sample[T]{Delay: delay, Value: value})
}

// Len returns the number of samples.
func (s *Series[T]) Len() int {
	return len(s.samples)
}

// Sample returns the i-th sample. Negative indices count from the end, as
// in Sample(-1) for the most recent one.
func (s *Series[T]) Sample(i int) Sample[T] {
	if i < 0 {
		i = len(s.samples) + i
	}
	return s.samples[i]
}

// TotalDuration returns the delay of the last sample, 0 when empty.
func (s *Series[T]) TotalDuration() time.Duration {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[len(s.samples)-1].Delay
}

// Elapsed converts an absolute time to a delay from the start time. Without
// a start time it falls back to the time's distance from the zero epoch.
func (s *Series[T]) Elapsed(t time.Time) time.Duration {
	if s.hasStart {
		return t.Sub(s.startTime)
	}
	return time.Duration(t.UnixNano())
}

// At interpolates the series value at an absolute time. Fails with
// StatusNoStartTime when SetStartTime was never called.
func (s *Series[T]) At(t time.Time) Result[T] {
	if !s.hasStart {
		return failure[T](StatusNoStartTime)
	}
	return s.AtDelay(s.Elapsed(t))
}

// AtDelay interpolates the series value at a delay from the start. Fails
// with StatusOutOfBounds when the delay falls before the first or after the
// last sample.
func (s *Series[T]) AtDelay(t time.Duration) Result[T] {
	before, after, ok := s.neighbors(t)
	if !ok {
		return failure[T](StatusOutOfBounds)
	}
	return success(interpolate(before, after, t))
}

// Next returns the value of the first sample at or after an absolute time.
func (s *Series[T]) Next(t time.Time) Result[T] {
	if !s.hasStart {
		return failure[T](StatusNoStartTime)
	}
	i := sort.Search(len(s.samples), func(i int) bool {
		return s.samples[i].Delay >= s.Elapsed(t)
	})
	if i == len(s.samples) {
		return failure[T](StatusOutOfBounds)
	}
	return success(s.samples[i].Value)
}

// neighbors finds the samples enclosing delay t. ok is false when t falls
// outside the sampled range.
func (s *Series[T]) neighbors(t time.Duration) (before, after Sample[T], ok bool) {
	i := sort.Search(len(s.samples), func(i int) bool {
		return s.samples[i].Delay >= t
	})
	if i == 0 || i == len(s.samples) {
		return Sample[T]{}, Sample[T]{}, false
	}
	return s.samples[i-1], s.samples[i], true
}

func interpolate[T Numeric](first, second Sample[T], t time.Duration) T {
	lambda := float64(t-first.Delay) / float64(second.Delay-first.Delay)
	diff := second.Value - first.Value
	return first.Value + T(lambda*float64(diff))
}
