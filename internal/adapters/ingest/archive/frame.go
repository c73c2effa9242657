package archive

import (
	"bufio"
	"errors"
	"io"

	perr "userfreqs/internal/platform/errors"
)

// maxInterrupts bounds back-to-back interrupted reads before the error is surfaced
const maxInterrupts = 64

// FrameReader returns delimiter-terminated slices from a buffered stream
type FrameReader struct {
	br      *bufio.Reader
	maxLine int
	read    int64
}

// NewFrameReader wraps r with a buffer of the given size. maxLine <= 0 disables the line cap
func NewFrameReader(r io.Reader, size, maxLine int) *FrameReader {
	return &FrameReader{br: bufio.NewReaderSize(r, size), maxLine: maxLine}
}

// ReadUntil appends bytes up to and including delim to buf and returns the extended slice.
// When the stream ends before delim, the remaining bytes are returned with a nil error;
// a call that appends nothing means end of input. Interrupted reads are retried; any other
// read failure is returned as ErrorCodeIO along with whatever was appended.
func (f *FrameReader) ReadUntil(delim byte, buf []byte) ([]byte, error) {
	start := len(buf)
	interrupts := 0
	for {
		chunk, err := f.br.ReadSlice(delim)
		buf = append(buf, chunk...)
		f.read += int64(len(chunk))
		if len(chunk) > 0 {
			interrupts = 0
		}
		if f.maxLine > 0 && len(buf)-start > f.maxLine {
			return buf, perr.Newf(perr.ErrorCodeIO, "archive: line exceeds %d bytes", f.maxLine)
		}
		switch {
		case err == nil, err == io.EOF:
			return buf, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case perr.IsInterrupted(err) && interrupts < maxInterrupts:
			interrupts++
			continue
		}
		return buf, perr.Wrap(err, perr.ErrorCodeIO, "archive: read")
	}
}

// Read reports the number of bytes consumed so far
func (f *FrameReader) Read() int64 { return f.read }

// retryReader retries reads of the raw file that were interrupted before any byte moved
type retryReader struct{ r io.Reader }

func (rr retryReader) Read(p []byte) (int, error) {
	for i := 0; ; i++ {
		n, err := rr.r.Read(p)
		if n == 0 && perr.IsInterrupted(err) && i < maxInterrupts {
			continue
		}
		return n, err
	}
}
