package archive

import (
	"encoding/json"

	perr "userfreqs/internal/platform/errors"
	"userfreqs/internal/platform/validate"
)

var (
	// ErrEmptyLine marks a zero-length read, the signal that the archive ran dry
	ErrEmptyLine = perr.New(perr.ErrorCodeRecord, "archive: empty line")

	// ErrMalformed marks a line that is not a JSON object with string author and body
	ErrMalformed = perr.New(perr.ErrorCodeRecord, "archive: malformed record")
)

// Record is one comment; every other field on the line is ignored
type Record struct {
	Author string
	Body   string
}

// wireRecord keeps raw values so a missing field differs from an empty one
type wireRecord struct {
	Author json.RawMessage `json:"author" validate:"required"`
	Body   json.RawMessage `json:"body" validate:"required"`
}

// DecodeRecord parses one line. Both failure kinds carry ErrorCodeRecord.
// String values keep their raw bytes: invalid UTF-8 in an author or body is
// passed through rather than replaced, so distinct raw names stay distinct.
func DecodeRecord(line []byte) (Record, error) {
	if len(line) == 0 {
		return Record{}, ErrEmptyLine
	}
	var w wireRecord
	if err := json.Unmarshal(line, &w); err != nil {
		return Record{}, perr.Wrapf(ErrMalformed, perr.ErrorCodeRecord, "archive: %v", err)
	}
	if err := validate.Struct(w); err != nil {
		e, _ := perr.As(err)
		return Record{}, perr.WithField(perr.Wrapf(ErrMalformed, perr.ErrorCodeRecord, "archive: %s", e.Message()), e.Field())
	}
	author, err := unquote(w.Author)
	if err != nil {
		return Record{}, perr.WithField(perr.Wrapf(ErrMalformed, perr.ErrorCodeRecord, "archive: author: %v", err), "author")
	}
	body, err := unquote(w.Body)
	if err != nil {
		return Record{}, perr.WithField(perr.Wrapf(ErrMalformed, perr.ErrorCodeRecord, "archive: body: %v", err), "body")
	}
	return Record{Author: author, Body: body}, nil
}
