package archive

import (
	"bufio"
	"errors"
	"io"

	perr "userfreqs/internal/platform/errors"
	"userfreqs/internal/platform/logger"

	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultMaxLineBytes caps one JSON line
	DefaultMaxLineBytes = 32 * 1024 * 1024

	rawBufSize  = 256 * 1024
	lineBufSize = 512 * 1024
)

// Stats counts what a Reader has produced so far
type Stats struct {
	Lines int
	Bytes int64 // uncompressed bytes, delimiters included
}

type readerOpts struct {
	maxLine int
}

// Option configures NewReader
type Option func(*readerOpts)

// WithMaxLineBytes overrides the per-line cap; n <= 0 keeps the default
func WithMaxLineBytes(n int) Option {
	return func(o *readerOpts) {
		if n > 0 {
			o.maxLine = n
		}
	}
}

// Reader streams newline-delimited lines out of a zstd archive
type Reader struct {
	rc       io.ReadCloser
	zr       *zstd.Decoder
	fr       *FrameReader
	declared uint64
	hasSize  bool
	lines    int
	err      error
}

// NewReader wraps rc in a zstd decoder. On error rc is closed.
func NewReader(rc io.ReadCloser, opts ...Option) (*Reader, error) {
	o := readerOpts{maxLine: DefaultMaxLineBytes}
	for _, fn := range opts {
		fn(&o)
	}

	br := bufio.NewReaderSize(retryReader{rc}, rawBufSize)
	rd := &Reader{rc: rc}

	// only the first frame is inspected; later frames add to the stream but not to the declared size
	if hdr, _ := br.Peek(zstd.HeaderMaxSize); len(hdr) > 0 {
		var h zstd.Header
		if err := h.Decode(hdr); err == nil && h.HasFCS {
			rd.declared, rd.hasSize = h.FrameContentSize, true
		}
	}

	zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, perr.Wrap(errors.Join(err, rc.Close()), perr.ErrorCodeOpen, "archive: zstd reader")
	}
	rd.zr = zr
	rd.fr = NewFrameReader(zr, lineBufSize, o.maxLine)
	return rd, nil
}

// NextLine returns the next line with its trailing newline, reusing buf's storage.
// A zero-length line with a nil error means the archive is exhausted.
func (rd *Reader) NextLine(buf []byte) ([]byte, error) {
	if rd.err != nil {
		return buf[:0], rd.err
	}
	line, err := rd.fr.ReadUntil('\n', buf[:0])
	if err != nil {
		rd.err = err
		logger.Named("archive").Debug().Err(err).Int("lines", rd.lines).Msg("archive: read aborted")
		return line, err
	}
	if len(line) > 0 {
		rd.lines++
	}
	return line, nil
}

// DeclaredSize returns the uncompressed size promised by the first frame header, if any
func (rd *Reader) DeclaredSize() (uint64, bool) { return rd.declared, rd.hasSize }

// Stats returns the number of lines and uncompressed bytes read so far
func (rd *Reader) Stats() Stats {
	return Stats{Lines: rd.lines, Bytes: rd.fr.Read()}
}

// Close releases the decoder and closes the underlying file
func (rd *Reader) Close() error {
	if rd.zr != nil {
		rd.zr.Close()
		rd.zr = nil
	}
	if rd.rc != nil {
		err := rd.rc.Close()
		rd.rc = nil
		return err
	}
	return nil
}
