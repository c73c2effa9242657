package testkit

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses each frame independently and concatenates the results,
// producing a multi-frame stream like the archives the builder reads
func Zstd(t *testing.T, frames ...[]byte) []byte {
	t.Helper()
	var out bytes.Buffer
	for _, f := range frames {
		enc, err := zstd.NewWriter(&out, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		if _, err := enc.Write(f); err != nil {
			t.Fatalf("zstd write: %v", err)
		}
		if err := enc.Close(); err != nil {
			t.Fatalf("zstd close: %v", err)
		}
	}
	return out.Bytes()
}

// Unzstd decompresses a whole zstd stream
func Unzstd(t *testing.T, b []byte) []byte {
	t.Helper()
	dec, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("zstd read: %v", err)
	}
	return out
}

// WriteFile writes b to dir/name and returns the full path
func WriteFile(t *testing.T, dir, name string, b []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// Lines joins lines with '\n' and terminates the last one
func Lines(lines ...string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// MustEqualNested compares two two-level count maps and reports the first difference in key order
func MustEqualNested[M ~map[K]I, I ~map[K]V, K interface{ ~string }, V comparable](t *testing.T, got, want M) {
	t.Helper()
	if diff := DiffNested(got, want); diff != "" {
		t.Fatalf("nested maps differ: %s", diff)
	}
}

// DiffNested returns a description of the first difference between got and want, or ""
func DiffNested[M ~map[K]I, I ~map[K]V, K interface{ ~string }, V comparable](got, want M) string {
	union := make(map[K]struct{}, len(got)+len(want))
	for k := range got {
		union[k] = struct{}{}
	}
	for k := range want {
		union[k] = struct{}{}
	}
	outer := slices.Sorted(maps.Keys(union))
	for _, a := range outer {
		g, gok := got[a]
		w, wok := want[a]
		if gok != wok {
			return fmt.Sprintf("outer key %q present got=%v want=%v", string(a), gok, wok)
		}
		for k, wv := range w {
			gv, ok := g[k]
			if !ok || gv != wv {
				return fmt.Sprintf("%q/%q got=%v (present=%v) want=%v", string(a), string(k), gv, ok, wv)
			}
		}
		for k, gv := range g {
			if _, ok := w[k]; !ok {
				return fmt.Sprintf("%q/%q unexpected value %v", string(a), string(k), gv)
			}
		}
	}
	return ""
}
