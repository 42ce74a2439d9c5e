package compute

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestBackendsVisitEveryIndexOnce(t *testing.T) {
	for _, b := range []Backend{NewSerial(), NewPool(1), NewPool(3), NewPool(8)} {
		for _, n := range []int{0, 1, 9, 255, 256, 257, 4099} {
			hits := make([]int32, n)
			if err := b.For(n, func(i int) { atomic.AddInt32(&hits[i], 1) }); err != nil {
				t.Fatalf("%s: For(%d): %v", b.Name(), n, err)
			}
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("%s (cap %d): index %d of %d visited %d times", b.Name(), b.Capacity(), i, n, h)
				}
			}
		}
	}
}

func TestForRecoversPanics(t *testing.T) {
	for _, b := range []Backend{NewSerial(), NewPool(4)} {
		err := b.For(1000, func(i int) {
			if i == 700 {
				panic("boom")
			}
		})
		var pe *PanicError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected PanicError, got %v", b.Name(), err)
		}
		if pe.Index != 700 {
			t.Fatalf("%s: panic index = %d, want 700", b.Name(), pe.Index)
		}
	}
}

func TestClosedBackendRejectsDispatch(t *testing.T) {
	for _, b := range []Backend{NewSerial(), NewPool(2)} {
		if err := b.Close(); err != nil {
			t.Fatal(err)
		}
		if err := b.For(4, func(int) {}); !errors.Is(err, ErrClosed) {
			t.Fatalf("%s: For after Close = %v, want ErrClosed", b.Name(), err)
		}
	}
}

type fakeBackend struct {
	Serial
	name     string
	capacity int
	closed   *int
}

func (f *fakeBackend) Name() string  { return f.name }
func (f *fakeBackend) Capacity() int { return f.capacity }
func (f *fakeBackend) Close() error {
	*f.closed++
	return nil
}

func withRegistry(t *testing.T, entries map[string]Factory) {
	t.Helper()
	registryMu.Lock()
	saved := factories
	factories = make(map[string]Factory)
	registryMu.Unlock()
	for name, f := range entries {
		Register(name, f)
	}
	t.Cleanup(func() {
		registryMu.Lock()
		factories = saved
		registryMu.Unlock()
	})
}

func TestSelectPicksGreatestCapacity(t *testing.T) {
	closed := 0
	mk := func(name string, capacity int) Factory {
		return func() (Backend, error) {
			return &fakeBackend{name: name, capacity: capacity, closed: &closed}, nil
		}
	}
	withRegistry(t, map[string]Factory{
		"small":  mk("small", 2),
		"large":  mk("large", 64),
		"medium": mk("medium", 16),
		"broken": func() (Backend, error) { return nil, errors.New("no device") },
	})

	b, err := Select()
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != "large" {
		t.Fatalf("selected %q, want large", b.Name())
	}
	if closed != 2 {
		t.Fatalf("closed %d losing backends, want 2", closed)
	}
}

func TestSelectWithoutBackends(t *testing.T) {
	withRegistry(t, map[string]Factory{
		"broken": func() (Backend, error) { return nil, errors.New("no device") },
	})
	if _, err := Select(); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("Select = %v, want ErrNoBackend", err)
	}
	if _, err := Open("missing"); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("Open(missing) = %v, want ErrUnknownBackend", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	names := Available()
	if len(names) < 2 || names[0] != BackendPool || names[1] != BackendSerial {
		t.Fatalf("Available = %v", names)
	}
	b, err := Resolve("auto")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if b.Capacity() < 1 {
		t.Fatalf("capacity %d", b.Capacity())
	}
}
