// Package codec streams a freq.Corpus to and from its length-framed binary form.
//
// Current format (v2), all integers big-endian:
//
//	"UFRQ" 0x02
//	u64 author_count
//	  u32 author_len | author | u64 word_count
//	    u32 word_len | word | u64 count
//
// Legacy format (v1), written by the previous tool: no header, every integer
// (lengths included) is a little-endian u64, otherwise the same nesting.
//
// Authors and words appear in strictly ascending byte order, so encoding a
// corpus is deterministic. Neither direction materializes the serialized
// stream: entries are written to or read from the underlying stream while the
// corpus is walked.
package codec

import (
	"io"

	perr "userfreqs/internal/platform/errors"
)

// Version identifies a wire format revision
type Version uint8

const (
	// VersionAuto asks Decode to sniff the stream
	VersionAuto Version = 0
	// V1 is the headerless little-endian format of the previous tool
	V1 Version = 1
	// V2 is the current format
	V2 Version = 2

	// Current is what Encode writes by default
	Current = V2
)

// String returns "v1", "v2" or "auto"
func (v Version) String() string {
	switch v {
	case VersionAuto:
		return "auto"
	case V1:
		return "v1"
	case V2:
		return "v2"
	}
	return "v?"
}

// ParseVersion maps "auto", "v1", "v2" (or "1", "2") to a Version
func ParseVersion(s string) (Version, error) {
	switch s {
	case "", "auto":
		return VersionAuto, nil
	case "v1", "1":
		return V1, nil
	case "v2", "2":
		return V2, nil
	}
	return 0, perr.InvalidArgf("codec: unknown version %q", s)
}

// magic opens every v2 stream
var magic = [4]byte{'U', 'F', 'R', 'Q'}

const (
	headerLen = len(magic) + 1

	// DefaultMaxKeyLen bounds a single author or word on decode. It sits
	// above the archive reader's line cap so any key the builder can produce
	// reads back.
	DefaultMaxKeyLen = 64 << 20

	defaultProgressEvery = 256
	bufSize              = 64 << 10
)

var (
	// ErrCorrupt marks structurally invalid input
	ErrCorrupt = perr.New(perr.ErrorCodeDecode, "codec: corrupt corpus stream")

	// ErrTruncated marks input that ended in the middle of an entry
	ErrTruncated = perr.Wrap(io.ErrUnexpectedEOF, perr.ErrorCodeDecode, "codec: truncated corpus stream")

	// ErrUnsupportedVersion marks a v2-style header with an unknown version byte
	ErrUnsupportedVersion = perr.New(perr.ErrorCodeDecode, "codec: unsupported corpus version")
)

// EventKind tags an Event
type EventKind uint8

const (
	// EventMessage carries a human readable phase description in Msg
	EventMessage EventKind = iota
	// EventTotal announces the number of authors, once, before any progress
	EventTotal
	// EventProgress reports the number of authors completed so far
	EventProgress
)

// Event is a progress notification emitted while encoding or decoding
type Event struct {
	Kind EventKind
	N    uint64
	Msg  string
}

// Observer receives Events; a nil Observer is ignored
type Observer func(Event)

func (o Observer) emit(ev Event) {
	if o != nil {
		o(ev)
	}
}

// Sink is anything that can follow a phase with a message, a total and a running count
type Sink interface {
	Message(msg string)
	SetTotal(n uint64)
	Update(n uint64)
}

// Observe adapts s to an Observer
func Observe(s Sink) Observer {
	return func(ev Event) {
		switch ev.Kind {
		case EventMessage:
			s.Message(ev.Msg)
		case EventTotal:
			s.SetTotal(ev.N)
		case EventProgress:
			s.Update(ev.N)
		}
	}
}

// Stats summarizes one Encode call
type Stats struct {
	Authors uint64
	Words   uint64
	Bytes   int64
}

type options struct {
	version       Version
	observer      Observer
	maxKeyLen     int
	progressEvery uint64
}

// Option configures Encode and Decode
type Option func(*options)

// WithVersion selects the wire format. Encode treats VersionAuto as Current
func WithVersion(v Version) Option { return func(o *options) { o.version = v } }

// WithObserver installs a progress observer
func WithObserver(fn Observer) Option { return func(o *options) { o.observer = fn } }

// WithMaxKeyLen bounds author and word lengths on decode; n <= 0 keeps the
// default. Encode only enforces the length prefix width.
func WithMaxKeyLen(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxKeyLen = n
		}
	}
}

// WithProgressEvery sets how many authors pass between progress events; n == 0 keeps the default
func WithProgressEvery(n uint64) Option {
	return func(o *options) {
		if n > 0 {
			o.progressEvery = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{maxKeyLen: DefaultMaxKeyLen, progressEvery: defaultProgressEvery}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// progress emits a throttled, monotonically increasing count of completed authors
type progress struct {
	obs   Observer
	every uint64
	done  uint64
}

func (p *progress) step(total uint64) {
	p.done++
	if p.done%p.every == 0 || p.done == total {
		p.obs.emit(Event{Kind: EventProgress, N: p.done})
	}
}
