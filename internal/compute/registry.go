package compute

import (
	"fmt"
	"slices"
	"sync"
)

// Factory opens a backend. Returning an error marks the backend as
// unavailable on this machine.
type Factory func() (Backend, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

func init() {
	Register(BackendSerial, func() (Backend, error) { return NewSerial(), nil })
	Register(BackendPool, func() (Backend, error) { return NewPool(0), nil })
}

// Register adds or replaces a backend factory under the given name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = f
}

// Unregister removes a backend factory. Useful for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open opens the backend registered under name.
func Open(name string) (Backend, error) {
	registryMu.RLock()
	f, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	b, err := f()
	if err != nil {
		return nil, fmt.Errorf("compute: open %q: %w", name, err)
	}
	return b, nil
}

// Select opens every registered backend and keeps the one with the greatest
// capacity; ties go to the alphabetically first name. Backends that fail to
// open are skipped. The rest are closed before returning.
func Select() (Backend, error) {
	var best Backend
	for _, name := range Available() {
		b, err := Open(name)
		if err != nil || b == nil {
			continue
		}
		if best == nil || b.Capacity() > best.Capacity() {
			if best != nil {
				_ = best.Close()
			}
			best = b
			continue
		}
		_ = b.Close()
	}
	if best == nil {
		return nil, ErrNoBackend
	}
	return best, nil
}

// Resolve opens name, or runs Select when name is empty or "auto".
func Resolve(name string) (Backend, error) {
	if name == "" || name == "auto" {
		return Select()
	}
	return Open(name)
}
