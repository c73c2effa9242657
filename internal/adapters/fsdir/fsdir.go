// Package fsdir lists the input files of a run
package fsdir

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	perr "userfreqs/internal/platform/errors"
)

// List returns the files directly inside dir whose names end in ext, sorted by name.
// Symlinks count when they resolve to a regular file. An unreadable dir is a startup error.
func List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeStartup, "read input dir %s", dir), "list")
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if len(name) <= len(ext) || !strings.HasSuffix(name, ext) {
			continue
		}
		p := filepath.Join(dir, name)
		if !isRegular(p, e) {
			continue
		}
		out = append(out, p)
	}
	slices.Sort(out)
	return out, nil
}

func isRegular(p string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// OutputPath names the output written next to input
func OutputPath(input, suffix string) string { return input + suffix }
