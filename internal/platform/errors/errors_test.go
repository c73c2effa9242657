package errors

import (
	stderrs "errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"
	"testing"
)

func TestErrorCodeString(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{ErrorCodeUnknown, "unknown"},
		{ErrorCodeStartup, "startup"},
		{ErrorCodeOpen, "open"},
		{ErrorCodeIO, "io"},
		{ErrorCodeRecord, "record"},
		{ErrorCodeBudget, "budget"},
		{ErrorCodeDecode, "decode"},
		{ErrorCodeEncode, "encode"},
		{9999, "code(9999)"},
	}
	for _, c := range cases {
		if got := c.code.String(); got != c.want {
			t.Fatalf("%d.String() = %q, want %q", c.code, got, c.want)
		}
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := New(ErrorCodeRecord, "bad line")
	if CodeOf(e1) != ErrorCodeRecord {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeDecode, "bad length %d", 12)
	if got := e2.Error(); got != "bad length 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeIO, "read failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	e4 := Wrapf(src, ErrorCodeEncode, "write %s", "author")
	if want := "write author: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}
	if got, ok := As(e4); !ok || got.Code() != ErrorCodeEncode || got.Message() != "write author" {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	e5 := WithOp(WithField(e3, "author"), "decode")
	if fe, ok := As(e5); !ok || fe.Field() != "author" || fe.Op() != "decode" {
		t.Fatalf("WithField/WithOp failed: %+v", fe)
	}
	if fe0, _ := As(e3); fe0.Field() != "" || fe0.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}
	if WithField(src, "x") != src || WithOp(src, "x") != src {
		t.Fatalf("mutators should return foreign errors unchanged")
	}

	if WrapIf(nil, ErrorCodeIO, "x") != nil {
		t.Fatalf("WrapIf(nil) should be nil")
	}
	if Root(fmt.Errorf("outer: %w", e3)) != src {
		t.Fatalf("Root did not reach the deepest cause")
	}
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := New(ErrorCodeDecode, "corrupt")
	outer := Wrap(inner, ErrorCodeUnknown, "migrate")
	if CodeOf(outer) != ErrorCodeUnknown {
		t.Fatalf("CodeOf should report outermost code")
	}
	if !HasCode(outer, ErrorCodeDecode) {
		t.Fatalf("HasCode should find inner decode code")
	}
	if HasCode(outer, ErrorCodeEncode) {
		t.Fatalf("HasCode false positive")
	}
}

func TestIsFileScoped(t *testing.T) {
	for _, c := range []ErrorCode{ErrorCodeIO, ErrorCodeRecord, ErrorCodeBudget, ErrorCodeDecode, ErrorCodeEncode} {
		if !IsFileScoped(New(c, "x")) {
			t.Fatalf("%s should be file scoped", c)
		}
	}
	for _, c := range []ErrorCode{ErrorCodeStartup, ErrorCodeOpen, ErrorCodeUnknown} {
		if IsFileScoped(New(c, "x")) {
			t.Fatalf("%s should not be file scoped", c)
		}
	}
}

func TestIOHelpers(t *testing.T) {
	if !IsInterrupted(fmt.Errorf("read: %w", syscall.EINTR)) {
		t.Fatalf("wrapped EINTR not detected")
	}
	if IsInterrupted(nil) || IsInterrupted(io.EOF) {
		t.Fatalf("IsInterrupted false positive")
	}
	if !IsTruncated(Wrap(io.ErrUnexpectedEOF, ErrorCodeDecode, "short")) {
		t.Fatalf("IsTruncated missed wrapped ErrUnexpectedEOF")
	}
	if !IsNotExist(&fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}) {
		t.Fatalf("IsNotExist missed PathError")
	}

	if OpenOp(nil, "open", "x") != nil {
		t.Fatalf("OpenOp(nil) should be nil")
	}
	err := OpenOp(fs.ErrPermission, "create", "/out")
	if !IsCode(err, ErrorCodeOpen) {
		t.Fatalf("OpenOp code = %v", CodeOf(err))
	}
	if e, _ := As(err); e.Op() != "create" {
		t.Fatalf("OpenOp op = %q", e.Op())
	}
	if !stderrs.Is(err, fs.ErrPermission) {
		t.Fatalf("OpenOp lost cause")
	}
}
