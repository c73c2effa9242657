// Package ingest holds adapter shims for builder ports.
package ingest

import (
	"os"

	"userfreqs/internal/adapters/ingest/archive"
	perr "userfreqs/internal/platform/errors"
	"userfreqs/internal/services/build/domain"
)

// sourceFactory adapts archive.NewReader to domain.SourceFactory
type sourceFactory struct {
	maxLine int
}

// NewSourceFactory returns a factory that opens zstd archives from disk
func NewSourceFactory(maxLineBytes int) domain.SourceFactory {
	return sourceFactory{maxLine: maxLineBytes}
}

func (f sourceFactory) Open(path string) (domain.LineSource, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, perr.OpenOp(err, "open", path)
	}
	rd, err := archive.NewReader(fh, archive.WithMaxLineBytes(f.maxLine))
	if err != nil {
		return nil, err
	}
	return &source{rd: rd}, nil
}

type source struct {
	rd *archive.Reader
}

func (s *source) NextLine(buf []byte) ([]byte, error) { return s.rd.NextLine(buf) }

func (s *source) DeclaredSize() (uint64, bool) { return s.rd.DeclaredSize() }

func (s *source) Stats() (lines int, bytes int64) {
	st := s.rd.Stats()
	return st.Lines, st.Bytes
}

func (s *source) Close() error { return s.rd.Close() }

// decoder adapts archive.DecodeRecord to domain.RecordDecoder
type decoder struct{}

// NewDecoder returns the JSON-lines record decoder
func NewDecoder() domain.RecordDecoder { return decoder{} }

func (decoder) Decode(line []byte) (domain.Record, error) { return archive.DecodeRecord(line) }
