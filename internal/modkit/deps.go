// Package modkit provides module wiring and core deps
package modkit

import (
	"userfreqs/internal/platform/config"
	"userfreqs/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	RunID string // stamped on every log line of a run
}

// ZeroOK returns true when deps are safe to use with zero values in tests
func (d Deps) ZeroOK() bool { return true }
