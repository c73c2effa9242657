package archive

import (
	"errors"
	"io"
	"strings"
	"syscall"
	"testing"

	perr "userfreqs/internal/platform/errors"
)

// flakyReader serves data in small pieces and injects errors on selected calls
type flakyReader struct {
	data  []byte
	step  int
	calls int
	fail  map[int]error
}

func (r *flakyReader) Read(p []byte) (int, error) {
	r.calls++
	if err, ok := r.fail[r.calls]; ok {
		return 0, err
	}
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := min(len(p), r.step, len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func readAll(t *testing.T, fr *FrameReader) []string {
	t.Helper()
	var out []string
	for range 1000 {
		line, err := fr.ReadUntil('\n', nil)
		if err != nil {
			t.Fatalf("ReadUntil: %v", err)
		}
		if len(line) == 0 {
			return out
		}
		out = append(out, string(line))
	}
	t.Fatalf("reader never reported end of input")
	return nil
}

func TestReadUntil_DelimiterAndRemainder(t *testing.T) {
	fr := NewFrameReader(strings.NewReader("a\nbb\n\nccc"), 16, 0)
	got := readAll(t, fr)
	want := []string{"a\n", "bb\n", "\n", "ccc"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	if fr.Read() != 9 {
		t.Fatalf("Read() = %d", fr.Read())
	}
	// end of input is sticky
	if line, err := fr.ReadUntil('\n', nil); len(line) != 0 || err != nil {
		t.Fatalf("after end: %q, %v", line, err)
	}
}

func TestReadUntil_LongerThanBuffer(t *testing.T) {
	long := strings.Repeat("x", 100)
	fr := NewFrameReader(&flakyReader{data: []byte(long + "\nz"), step: 7}, 16, 0)
	got := readAll(t, fr)
	if len(got) != 2 || got[0] != long+"\n" || got[1] != "z" {
		t.Fatalf("lines = %q", got)
	}
}

func TestReadUntil_AppendsToBuf(t *testing.T) {
	fr := NewFrameReader(strings.NewReader("b\n"), 16, 0)
	got, err := fr.ReadUntil('\n', []byte("a"))
	if err != nil || string(got) != "ab\n" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestReadUntil_RetriesInterrupted(t *testing.T) {
	src := &flakyReader{
		data: []byte("one\ntwo\n"),
		step: 3,
		fail: map[int]error{1: syscall.EINTR, 3: syscall.EINTR, 4: syscall.EINTR},
	}
	got := readAll(t, NewFrameReader(src, 16, 0))
	if len(got) != 2 || got[0] != "one\n" || got[1] != "two\n" {
		t.Fatalf("lines = %q", got)
	}
}

func TestReadUntil_SurfacesIOError(t *testing.T) {
	boom := errors.New("bad block")
	src := &flakyReader{data: []byte("ok\npartial"), step: 5, fail: map[int]error{3: boom}}
	fr := NewFrameReader(src, 16, 0)

	if line, err := fr.ReadUntil('\n', nil); err != nil || string(line) != "ok\n" {
		t.Fatalf("first line %q, %v", line, err)
	}
	line, err := fr.ReadUntil('\n', nil)
	if !errors.Is(err, boom) || !perr.IsCode(err, perr.ErrorCodeIO) {
		t.Fatalf("err = %v", err)
	}
	if string(line) != "partial" {
		t.Fatalf("partial bytes = %q", line)
	}
}

func TestReadUntil_PersistentInterruptSurfaces(t *testing.T) {
	fail := map[int]error{}
	for i := 1; i <= maxInterrupts+5; i++ {
		fail[i] = syscall.EINTR
	}
	_, err := NewFrameReader(&flakyReader{fail: fail, step: 1}, 16, 0).ReadUntil('\n', nil)
	if !perr.IsInterrupted(err) {
		t.Fatalf("err = %v, want surfaced EINTR", err)
	}
}

func TestReadUntil_LineCap(t *testing.T) {
	fr := NewFrameReader(strings.NewReader(strings.Repeat("y", 64)+"\n"), 16, 32)
	_, err := fr.ReadUntil('\n', nil)
	if !perr.IsCode(err, perr.ErrorCodeIO) {
		t.Fatalf("err = %v", err)
	}
}

func TestRetryReader(t *testing.T) {
	src := &flakyReader{data: []byte("abc"), step: 3, fail: map[int]error{1: syscall.EINTR, 2: syscall.EINTR}}
	p := make([]byte, 8)
	n, err := retryReader{src}.Read(p)
	if err != nil || string(p[:n]) != "abc" {
		t.Fatalf("got %q, %v", p[:n], err)
	}
}
