package module

import (
	"slices"
	"sync"

	perr "userfreqs/internal/platform/errors"
)

// process-wide port sets keyed by module name, filled once by a cmd entrypoint
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register records m's ports under m.Name(); a name can only be taken once
func Register(m Module) error {
	name := m.Name()
	if name == "" {
		return perr.InvalidArgf("module: empty name")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, taken := reg[name]; taken {
		return perr.Startupf("module: %q already registered", name)
	}
	reg[name] = m.Ports()
	return nil
}

// PortsAs returns the ports registered under name as T. A missing name or a
// port set of another type is a startup error.
func PortsAs[T any](name string) (T, error) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	var zero T
	if !ok {
		return zero, perr.Startupf("module: %q not registered", name)
	}
	out, ok := v.(T)
	if !ok {
		return zero, perr.Startupf("module: %q ports are %T, not %T", name, v, zero)
	}
	return out, nil
}

// Registered lists module names in sorted order
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(reg))
	for n := range reg {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Reset drops every registration
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
