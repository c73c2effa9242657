package module

import (
	"strconv"
	"sync"
	"testing"

	perr "userfreqs/internal/platform/errors"
	"userfreqs/internal/platform/testkit"
)

type runnerPorts struct{ Runner string }

type stubModule struct {
	name  string
	ports any
}

func (s stubModule) Name() string { return s.name }
func (s stubModule) Ports() any   { return s.ports }

func fresh(t *testing.T) {
	t.Helper()
	testkit.Serial(t)
	Reset()
	t.Cleanup(Reset)
}

func TestRegisterThenPortsAs(t *testing.T) {
	fresh(t)
	if err := Register(stubModule{"build", runnerPorts{"svc"}}); err != nil {
		t.Fatal(err)
	}
	got, err := PortsAs[runnerPorts]("build")
	if err != nil {
		t.Fatal(err)
	}
	if got.Runner != "svc" {
		t.Fatalf("got %+v", got)
	}
}

func TestRegisterRejects(t *testing.T) {
	fresh(t)
	if err := Register(stubModule{"", runnerPorts{}}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty name err = %v", err)
	}
	if err := Register(stubModule{"migrate", runnerPorts{"a"}}); err != nil {
		t.Fatal(err)
	}
	if err := Register(stubModule{"migrate", runnerPorts{"b"}}); !perr.IsCode(err, perr.ErrorCodeStartup) {
		t.Fatalf("duplicate err = %v", err)
	}
	// first registration wins
	got, _ := PortsAs[runnerPorts]("migrate")
	if got.Runner != "a" {
		t.Fatalf("got %+v", got)
	}
}

func TestPortsAsMissingAndMismatch(t *testing.T) {
	fresh(t)
	if _, err := PortsAs[runnerPorts]("nope"); !perr.IsCode(err, perr.ErrorCodeStartup) {
		t.Fatalf("missing err = %v", err)
	}
	_ = Register(stubModule{"build", runnerPorts{}})
	got, err := PortsAs[int]("build")
	if !perr.IsCode(err, perr.ErrorCodeStartup) || got != 0 {
		t.Fatalf("mismatch got=%d err=%v", got, err)
	}
	testkit.MustContain(t, err.Error(), "runnerPorts")
}

func TestRegisteredSortedAndReset(t *testing.T) {
	fresh(t)
	for _, n := range []string{"migrate", "build"} {
		_ = Register(stubModule{n, nil})
	}
	got := Registered()
	if len(got) != 2 || got[0] != "build" || got[1] != "migrate" {
		t.Fatalf("registered = %v", got)
	}
	Reset()
	if len(Registered()) != 0 {
		t.Fatal("reset left entries")
	}
}

func TestRegisterConcurrent(t *testing.T) {
	fresh(t)
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := "m" + strconv.Itoa(i%8)
			_ = Register(stubModule{name, runnerPorts{name}})
			_, _ = PortsAs[runnerPorts](name)
		}()
	}
	wg.Wait()
	if n := len(Registered()); n != 8 {
		t.Fatalf("registered %d names, want 8", n)
	}
}
