// Package freqfile persists corpus streams as zstd-compressed files.
//
// Writes go to "<path>.tmp" and only appear under their final name on Commit,
// so an existing output file always holds a finalized container and can be
// used as the "already done" marker on the next run.
package freqfile

import (
	"bufio"
	"errors"
	"io"
	"os"

	perr "userfreqs/internal/platform/errors"

	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultLevel is the zstd level used for every output file
	DefaultLevel = 10

	tmpSuffix = ".tmp"
	readBuf   = 256 * 1024
)

// rename is swapped in tests to fail the final step of Commit
var rename = os.Rename

// Writer is an open, uncommitted output file
type Writer struct {
	path string
	tmp  string
	f    *os.File
	enc  *zstd.Encoder
	done bool
}

// Create opens "<path>.tmp" for writing behind a zstd encoder at level
func Create(path string, level int) (*Writer, error) {
	tmp := path + tmpSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, perr.OpenOp(err, "create", tmp)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeOpen, "zstd encoder for %s", tmp), "create")
	}
	return &Writer{path: path, tmp: tmp, f: f, enc: enc}, nil
}

// Write compresses p into the temp file
func (w *Writer) Write(p []byte) (int, error) { return w.enc.Write(p) }

// Path returns the final output path
func (w *Writer) Path() string { return w.path }

// Commit finalizes the container, syncs, and renames the temp file into place
func (w *Writer) Commit() error {
	if w.done {
		return perr.Newf(perr.ErrorCodeEncode, "freqfile: %s already closed", w.path)
	}
	w.done = true
	if err := w.finish(); err != nil {
		_ = os.Remove(w.tmp)
		return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeEncode, "freqfile: finalize %s", w.tmp), "commit")
	}
	if err := rename(w.tmp, w.path); err != nil {
		_ = os.Remove(w.tmp)
		return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeEncode, "freqfile: rename to %s", w.path), "commit")
	}
	return nil
}

// Abort finalizes the container so nothing is left half-written, then removes
// the temp file. Safe to call after Commit, where it does nothing.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	ferr := w.finish()
	rerr := os.Remove(w.tmp)
	if rerr != nil && perr.IsNotExist(rerr) {
		rerr = nil
	}
	return perr.WrapIf(errors.Join(ferr, rerr), perr.ErrorCodeEncode, "freqfile: abort "+w.tmp)
}

func (w *Writer) finish() error {
	eerr := w.enc.Close()
	var serr error
	if eerr == nil {
		serr = w.f.Sync()
	}
	cerr := w.f.Close()
	return errors.Join(eerr, serr, cerr)
}

// Reader decompresses a stored corpus file
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
}

// Open opens path for decompressed reading
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.OpenOp(err, "open", path)
	}
	dec, err := zstd.NewReader(bufio.NewReaderSize(f, readBuf))
	if err != nil {
		_ = f.Close()
		return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeOpen, "zstd decoder for %s", path), "open")
	}
	return &Reader{f: f, dec: dec}, nil
}

// Read reads decompressed bytes; container errors carry ErrorCodeDecode
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.dec.Read(p)
	if err != nil && err != io.EOF {
		return n, perr.Wrap(err, perr.ErrorCodeDecode, "freqfile: decompress")
	}
	return n, err
}

// Close releases the decoder and the file
func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}

// Exists reports whether path names an existing file or directory
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
