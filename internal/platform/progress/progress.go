// Package progress logs throttled progress lines for long phases (reading an archive, encoding a corpus)
package progress

import (
	"math"
	"math/bits"
	"time"

	"userfreqs/internal/platform/logger"
)

// Reporter logs at most once per step plus a final line from Done.
// It is not safe for concurrent use; each phase owns its Reporter.
type Reporter struct {
	log      *logger.Logger
	phase    string
	unit     string
	pct      uint64
	fallback uint64
	now      func() time.Time

	total uint64
	done  uint64
	next  uint64
	start time.Time
	ended bool
}

// Option configures a Reporter
type Option func(*Reporter)

// WithPercentStep sets the logging step as a percentage of the total (default 10)
func WithPercentStep(p int) Option {
	return func(r *Reporter) {
		if p > 0 && p <= 100 {
			r.pct = uint64(p)
		}
	}
}

// WithFallbackStep sets the step used while the total is unknown
func WithFallbackStep(n uint64) Option {
	return func(r *Reporter) {
		if n > 0 {
			r.fallback = n
		}
	}
}

// WithClock swaps the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

// New returns a Reporter for phase counting unit ("bytes", "authors")
func New(l *logger.Logger, phase, unit string, opts ...Option) *Reporter {
	r := &Reporter{log: l, phase: phase, unit: unit, pct: 10, fallback: 1 << 20, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	r.start = r.now()
	r.next = r.step()
	return r
}

func (r *Reporter) step() uint64 {
	if r.total == 0 {
		return r.fallback
	}
	// split so total*pct cannot wrap
	return max(r.total/100*r.pct+r.total%100*r.pct/100, 1)
}

// nextStop is the first multiple of s above n, saturating at MaxUint64
func nextStop(n, s uint64) uint64 {
	hi, lo := bits.Mul64(n/s+1, s)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// SetTotal sets or replaces the expected total; 0 means unknown
func (r *Reporter) SetTotal(n uint64) {
	r.total = n
	s := r.step()
	r.next = nextStop(r.done, s)
}

// Total returns the expected total, 0 if unknown
func (r *Reporter) Total() uint64 { return r.total }

// Update records an absolute count; values below the current count are ignored
func (r *Reporter) Update(n uint64) {
	if n <= r.done {
		return
	}
	r.done = n
	if n < r.next {
		return
	}
	r.next = nextStop(n, r.step())
	r.emit("progress")
}

// Message logs a phase note
func (r *Reporter) Message(msg string) {
	r.log.Info().Str("phase", r.phase).Msg(msg)
}

// Done logs the final line once
func (r *Reporter) Done() {
	if r.ended {
		return
	}
	r.ended = true
	r.emit("done")
}

// Count returns the last recorded count
func (r *Reporter) Count() uint64 { return r.done }

func (r *Reporter) emit(msg string) {
	el := r.now().Sub(r.start)
	ev := r.log.Info().
		Str("phase", r.phase).
		Str("unit", r.unit).
		Uint64("done", r.done).
		Int64("elapsed_ms", el.Milliseconds())
	if r.total > 0 {
		ev = ev.Uint64("total", r.total).Float64("pct", float64(r.done)*100/float64(r.total))
	}
	if s := el.Seconds(); s > 0 {
		ev = ev.Float64("rate_per_s", float64(r.done)/s)
	}
	ev.Msg(msg)
}
