// Package guardrails holds cross cutting safety helpers for the builder
package guardrails

import (
	"context"
	"io"
	"time"
)

// Timeouts is an optional budget bundle for a single input file.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// File is the overall time budget for one archive
	File time.Duration

	// Read caps the read and aggregate phase; on expiry the partial corpus is still written
	Read time.Duration

	// Encode caps writing the corpus
	Encode time.Duration
}

// WithFile returns a context limited by the file budget without extending any parent deadline.
// if File is zero it returns a cancelable child that simply inherits the parent deadline
func WithFile(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.File)
}

// ForRead returns a sub context for the read phase bounded by Read and any remaining parent budget
func ForRead(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Read)
}

// ForEncode returns a sub context for the encode phase bounded by Encode and any remaining parent budget
func ForEncode(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Encode)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		d := time.Until(dl)
		if d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of the requested duration and any parent remainder.
// Never extends the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}

// Writer fails every write once ctx is done, so a streaming encoder stops at the next flush
func Writer(ctx context.Context, w io.Writer) io.Writer { return ctxWriter{ctx: ctx, w: w} }

type ctxWriter struct {
	ctx context.Context
	w   io.Writer
}

func (c ctxWriter) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.w.Write(p)
}
