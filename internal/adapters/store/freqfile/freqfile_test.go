package freqfile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	perr "userfreqs/internal/platform/errors"
	"userfreqs/internal/platform/testkit"
)

func TestCommitThenOpen(t *testing.T) {
	out := filepath.Join(t.TempDir(), "RC_2020-01.zst.users.freqs")
	payload := bytes.Repeat([]byte("corpus bytes "), 1000)

	w, err := Create(out, DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	if Exists(out) {
		t.Fatalf("output visible before commit")
	}
	if !Exists(out + tmpSuffix) {
		t.Fatalf("temp file missing")
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !Exists(out) || Exists(out+tmpSuffix) {
		t.Fatalf("commit did not move temp into place")
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort after Commit: %v", err)
	}
	if !Exists(out) {
		t.Fatalf("abort after commit removed output")
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(testkit.Unzstd(t, raw), payload) {
		t.Fatalf("stored container does not decompress to payload")
	}

	r, err := Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("Open/Read mismatch: %v", err)
	}
}

func TestAbortRemovesTemp(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.freqs")
	w, err := Create(out, DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte("partial"))
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if Exists(out) || Exists(out+tmpSuffix) {
		t.Fatalf("abort left files behind")
	}
	if err := w.Commit(); !perr.IsCode(err, perr.ErrorCodeEncode) {
		t.Fatalf("Commit after Abort err = %v", err)
	}
}

func TestCommitRenameFailureRemovesTemp(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &rename, func(string, string) error { return os.ErrPermission })

	out := filepath.Join(t.TempDir(), "x.freqs")
	w, err := Create(out, DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte("finished corpus"))
	err = w.Commit()
	if !perr.IsCode(err, perr.ErrorCodeEncode) {
		t.Fatalf("err = %v, want encode error", err)
	}
	if e, _ := perr.As(err); e.Op() != "commit" {
		t.Fatalf("op = %q", e.Op())
	}
	if Exists(out) || Exists(out+tmpSuffix) {
		t.Fatal("failed rename left files behind")
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort after failed Commit: %v", err)
	}
}

func TestCreateInMissingDir(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "nope", "x.freqs"), DefaultLevel)
	if !perr.IsCode(err, perr.ErrorCodeOpen) {
		t.Fatalf("err = %v", err)
	}
	if e, _ := perr.As(err); e.Op() != "create" {
		t.Fatalf("op = %q", e.Op())
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.freqs"))
	if !perr.IsCode(err, perr.ErrorCodeOpen) || !perr.IsNotExist(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestReadCorruptContainer(t *testing.T) {
	p := testkit.WriteFile(t, t.TempDir(), "bad.freqs", []byte("definitely not zstd"))
	r, err := Open(p)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := io.ReadAll(r); !perr.IsCode(err, perr.ErrorCodeDecode) {
		t.Fatalf("err = %v", err)
	}
}
