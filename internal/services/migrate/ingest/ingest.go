// Package ingest adapts freqfile to the migrator ports
package ingest

import (
	"io"

	"userfreqs/internal/adapters/store/freqfile"
	"userfreqs/internal/services/migrate/domain"
)

type source struct{}

// NewSource returns a source reading zstd-wrapped corpus files
func NewSource() domain.CorpusSource { return source{} }

func (source) Open(path string) (io.ReadCloser, error) {
	r, err := freqfile.Open(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

type store struct{ level int }

// NewStore returns a store writing zstd-wrapped corpus files at level
func NewStore(level int) domain.CorpusStore { return store{level: level} }

func (s store) Exists(path string) bool { return freqfile.Exists(path) }

func (s store) Create(path string) (domain.CorpusSink, error) {
	w, err := freqfile.Create(path, s.level)
	if err != nil {
		return nil, err
	}
	return w, nil
}
