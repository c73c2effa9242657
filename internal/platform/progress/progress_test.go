package progress

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type line struct {
	Phase   string  `json:"phase"`
	Unit    string  `json:"unit"`
	Done    uint64  `json:"done"`
	Total   uint64  `json:"total"`
	Pct     float64 `json:"pct"`
	Message string  `json:"message"`
}

func capture(t *testing.T) (*zerolog.Logger, func() []line) {
	t.Helper()
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	return &l, func() []line {
		var out []line
		for _, s := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
			if s == "" {
				continue
			}
			var ln line
			if err := json.Unmarshal([]byte(s), &ln); err != nil {
				t.Fatalf("bad log line %q: %v", s, err)
			}
			out = append(out, ln)
		}
		return out
	}
}

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func TestReporter_PercentSteps(t *testing.T) {
	l, lines := capture(t)
	r := New(l, "read", "bytes", WithClock(fixedClock()))
	r.SetTotal(1000)
	for n := uint64(0); n <= 1000; n += 7 {
		r.Update(n)
	}
	r.Update(1000)
	r.Done()
	r.Done()

	got := lines()
	if len(got) != 11 {
		t.Fatalf("lines = %d, want 10 progress + 1 done: %+v", len(got), got)
	}
	var last uint64
	for _, ln := range got[:10] {
		if ln.Message != "progress" || ln.Phase != "read" || ln.Unit != "bytes" || ln.Total != 1000 {
			t.Fatalf("unexpected line %+v", ln)
		}
		if ln.Done <= last {
			t.Fatalf("done not increasing")
		}
		last = ln.Done
	}
	if d := got[10]; d.Message != "done" || d.Done != 1000 || d.Pct != 100 {
		t.Fatalf("final line %+v", d)
	}
}

func TestReporter_HugeTotal(t *testing.T) {
	l, lines := capture(t)
	r := New(l, "encode", "authors", WithClock(fixedClock()))
	r.SetTotal(math.MaxUint64)
	if s := r.step(); s != math.MaxUint64/10 {
		t.Fatalf("step = %d, want %d", s, uint64(math.MaxUint64/10))
	}
	r.Update(math.MaxUint64 / 2)
	r.Update(math.MaxUint64/2 + 1)
	r.Update(math.MaxUint64)
	r.Update(math.MaxUint64)

	got := lines()
	if len(got) != 2 {
		t.Fatalf("lines = %d, want 2: %+v", len(got), got)
	}
	if got[1].Done != math.MaxUint64 {
		t.Fatalf("last done = %d", got[1].Done)
	}
	if r.next != math.MaxUint64 {
		t.Fatalf("next = %d, want saturated", r.next)
	}
}

func TestReporter_UnknownTotalUsesFallback(t *testing.T) {
	l, lines := capture(t)
	r := New(l, "encode", "authors", WithFallbackStep(100))
	for n := uint64(1); n <= 350; n++ {
		r.Update(n)
	}
	got := lines()
	if len(got) != 3 || got[0].Done != 100 || got[2].Done != 300 {
		t.Fatalf("lines = %+v", got)
	}
	if got[0].Total != 0 {
		t.Fatalf("unknown total should be omitted")
	}
}

func TestReporter_IgnoresRegressionAndMessages(t *testing.T) {
	l, lines := capture(t)
	r := New(l, "decode", "authors", WithPercentStep(50))
	r.SetTotal(10)
	r.Update(6)
	r.Update(3)
	if r.Count() != 6 {
		t.Fatalf("count = %d", r.Count())
	}
	r.Message("decoding v1 corpus")
	got := lines()
	if len(got) != 2 || got[0].Done != 6 || got[1].Message != "decoding v1 corpus" {
		t.Fatalf("lines = %+v", got)
	}
}
