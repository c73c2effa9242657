// Package domain holds the reports and ports of the corpus migrator
package domain

import (
	"context"
	"io"

	"userfreqs/internal/core/codec"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	RunDir(ctx context.Context, dir string) (Summary, error)
	RunFile(ctx context.Context, path string) (FileReport, error)
}

// CorpusSource opens persisted corpus files for decoding
type CorpusSource interface {
	Open(path string) (io.ReadCloser, error)
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

// FileReport describes one migrated (or skipped) corpus file
type FileReport struct {
	Path    string
	Output  string
	Skipped bool
	Done    bool

	From codec.Version // wire format found in the input
	To   codec.Version

	Authors      uint64
	Words        uint64
	BytesWritten int64

	DecodeMS  int
	EncodeMS  int
	ElapsedMS int
	ErrText   string
}

// Status summarizes the report for logs: skipped, ok or error
func (r FileReport) Status() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Done:
		return "ok"
	}
	return "error"
}

// Summary totals a directory run
type Summary struct {
	Files   int    `yaml:"files"`
	Skipped int    `yaml:"skipped"`
	Done    int    `yaml:"done"`
	Failed  int    `yaml:"failed"`
	Authors uint64 `yaml:"authors"`
}

// Add folds one report into the summary
func (s *Summary) Add(r FileReport) {
	s.Files++
	switch r.Status() {
	case "skipped":
		s.Skipped++
	case "ok":
		s.Done++
		s.Authors += r.Authors
	default:
		s.Failed++
	}
}
