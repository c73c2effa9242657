package domain

import (
	"context"
	"io"

	"userfreqs/internal/core/aggregate"
	"userfreqs/internal/core/freq"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	RunDir(ctx context.Context, dir string) (Summary, error)
	RunFile(ctx context.Context, path string) (FileReport, error)
}

// LineSource yields newline-terminated lines of one archive
type LineSource interface {
	// NextLine returns the next line reusing buf; zero length means the archive is exhausted
	NextLine(buf []byte) ([]byte, error)
	DeclaredSize() (uint64, bool)
	Stats() (lines int, bytes int64)
	Close() error
}

// SourceFactory opens input archives
type SourceFactory interface {
	Open(path string) (LineSource, error)
}

// RecordDecoder turns one line into a Record
type RecordDecoder interface {
	Decode(line []byte) (Record, error)
}

// BatchReducer folds one batch into a partial corpus
type BatchReducer interface {
	Reduce(ctx context.Context, items []aggregate.Item) (freq.Corpus, error)
}

// CorpusSink is an uncommitted output file
type CorpusSink interface {
	io.Writer
	Commit() error
	Abort() error
}

// CorpusStore creates outputs and reports which already exist
type CorpusStore interface {
	Exists(path string) bool
	Create(path string) (CorpusSink, error)
}
