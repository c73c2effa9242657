// Package version provides information about the build version of the tools.
package version

import "userfreqs/internal/core/codec"

// BuildInfo holds version information about a command build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Codec   string `json:"codec"`
}

// CodecVersion is the corpus format written by this build
const CodecVersion = codec.Current

// Info returns the build information for the named command. The version,
// commit, and date variables are intended to be set at build time using -ldflags.
func Info(service string) BuildInfo {
	// Set via -ldflags "-X 'userfreqs/internal/core/version.version=v0.0.1'
	// -X 'userfreqs/internal/core/version.commit=abcd' -X 'userfreqs/internal/core/version.date=2025-09-02'"
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
		Codec:   CodecVersion.String(),
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
