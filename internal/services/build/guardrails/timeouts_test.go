package guardrails

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithChildTimeout_ZeroInheritsParent(t *testing.T) {
	ctx, cancel := WithFile(context.Background(), Timeouts{})
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("zero budget should not add a deadline")
	}
	cancel()
	if ctx.Err() == nil {
		t.Fatalf("child should still be cancelable")
	}
}

func TestWithChildTimeout_NeverExtendsParent(t *testing.T) {
	parent, pcancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer pcancel()

	ctx, cancel := ForRead(parent, Timeouts{Read: time.Hour})
	defer cancel()
	dl, ok := ctx.Deadline()
	if !ok || time.Until(dl) > time.Second {
		t.Fatalf("child deadline %v should be bounded by parent", dl)
	}

	ctx2, cancel2 := ForEncode(context.Background(), Timeouts{Encode: time.Minute})
	defer cancel2()
	if rem := Remaining(ctx2); rem <= 0 || rem > time.Minute {
		t.Fatalf("Remaining = %v", rem)
	}
}

func TestRemaining_NoDeadline(t *testing.T) {
	if Remaining(context.Background()) != 0 {
		t.Fatalf("no deadline should report zero")
	}
}

func TestWriterStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	w := Writer(ctx, &buf)
	if _, err := w.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	cancel()
	if _, err := w.Write([]byte("late")); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if buf.String() != "ok" {
		t.Fatalf("buf = %q", buf.String())
	}
}
