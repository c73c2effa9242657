// Package domain holds the states, reports and ports of the corpus builder
package domain

import "userfreqs/internal/adapters/ingest/archive"

// Record re-exports the decoded comment shape
type Record = archive.Record

// State is where a file's processing stands or how it ended
type State uint8

const (
	// StateOpening covers opening the archive and creating the temp output
	StateOpening State = iota
	// StateReading consumes lines in batches
	StateReading
	// StateAborted means a read failed; accumulated data is still written
	StateAborted
	// StateBudgetExceeded means too many soft record failures; accumulated data is still written
	StateBudgetExceeded
	// StateExhausted means the archive ran out of lines
	StateExhausted
	// StateEncoding writes the corpus
	StateEncoding
	// StateDone means the output was committed
	StateDone
)

var stateNames = [...]string{
	StateOpening:        "opening",
	StateReading:        "reading",
	StateAborted:        "aborted",
	StateBudgetExceeded: "budget_exceeded",
	StateExhausted:      "exhausted",
	StateEncoding:       "encoding",
	StateDone:           "done",
}

// String returns the log name of the state
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// FileReport describes one processed (or skipped) input file
type FileReport struct {
	Path    string
	Output  string
	Skipped bool

	State  State // last state reached
	Ending State // how reading ended: aborted, budget_exceeded or exhausted

	Records      int
	Malformed    int
	BudgetUsed   int
	Batches      int
	DeclaredSize uint64
	BytesRead    int64

	Authors      uint64
	Words        uint64
	BytesWritten int64

	ReadMS    int
	EncodeMS  int
	ElapsedMS int
	ErrText   string
}

// Status summarizes the report for logs: skipped, ok, partial or error
func (r FileReport) Status() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.State != StateDone:
		return "error"
	case r.Ending == StateExhausted:
		return "ok"
	}
	return "partial"
}

// Summary totals a directory run
type Summary struct {
	Files   int `yaml:"files"`
	Skipped int `yaml:"skipped"`
	Done    int `yaml:"done"`
	Partial int `yaml:"partial"`
	Failed  int `yaml:"failed"`

	Records      int    `yaml:"records"`
	Authors      uint64 `yaml:"authors"`
	BytesWritten int64  `yaml:"bytes_written"`
}

// Add folds one report into the summary
func (s *Summary) Add(r FileReport) {
	s.Files++
	switch r.Status() {
	case "skipped":
		s.Skipped++
		return
	case "error":
		s.Failed++
	case "partial":
		s.Partial++
		s.Done++
	default:
		s.Done++
	}
	s.Records += r.Records
	s.Authors += r.Authors
	s.BytesWritten += r.BytesWritten
}
