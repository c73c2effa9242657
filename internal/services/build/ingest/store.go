package ingest

import (
	"userfreqs/internal/adapters/store/freqfile"
	"userfreqs/internal/services/build/domain"
)

// store adapts freqfile to domain.CorpusStore
type store struct {
	level int
}

// NewStore returns a corpus store writing zstd containers at level
func NewStore(level int) domain.CorpusStore { return store{level: level} }

func (s store) Exists(path string) bool { return freqfile.Exists(path) }

func (s store) Create(path string) (domain.CorpusSink, error) {
	w, err := freqfile.Create(path, s.level)
	if err != nil {
		return nil, err
	}
	return w, nil
}
