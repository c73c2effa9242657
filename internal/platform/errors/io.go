package errors

// I/O helpers for classifying os and syscall errors the ingest path cares about

import (
	stderrs "errors"
	"io"
	"io/fs"
	"syscall"
)

// IsInterrupted reports whether err is an interrupted system call that may simply be retried
func IsInterrupted(err error) bool {
	return err != nil && stderrs.Is(err, syscall.EINTR)
}

// IsTruncated reports whether err signals that a stream ended before a value was complete
func IsTruncated(err error) bool {
	return stderrs.Is(err, io.ErrUnexpectedEOF)
}

// IsNotExist reports whether err means a path does not exist
func IsNotExist(err error) bool {
	return stderrs.Is(err, fs.ErrNotExist)
}

// OpenOp wraps an open/create failure for path as ErrorCodeOpen
func OpenOp(err error, op, path string) error {
	if err == nil {
		return nil
	}
	return WithOp(Wrapf(err, ErrorCodeOpen, "%s %s", op, path), op)
}
