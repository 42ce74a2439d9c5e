package grayscott

import (
	"errors"
	"fmt"

	"gray-scott/internal/compute"
	"gray-scott/internal/core"
)

// ErrOutOfBounds reports a field value outside [0,1] after a batch. It
// indicates a kernel defect and is only checked when Controller.CheckBounds
// is set.
var ErrOutOfBounds = errors.New("grayscott: field value out of bounds")

// Input is what the host supplies on every invocation. Config is expected to
// be sanitized already.
type Input struct {
	Run    bool
	Reset  bool
	Config Config
}

// Output is the host-readable result of an invocation. U and V are snapshots
// owned by the controller; callers must treat them as read-only.
type Output struct {
	U, V     []float32
	Size     core.Size
	Step     int
	Target   int
	Progress float64
	Backend  string

	// More reports that Step < Target and the host should invoke again.
	More bool
}

// FieldSize returns the grid dimensions, zero after a reset.
func (o Output) FieldSize() core.Size { return o.Size }

// FieldU returns the activator snapshot.
func (o Output) FieldU() []float32 { return o.U }

// FieldV returns the inhibitor snapshot.
func (o Output) FieldV() []float32 { return o.V }

// session is the live simulation: the buffers, the backend they are
// dispatched on, and the config that created them.
type session struct {
	cfg     Config
	state   *State
	kernel  Kernel
	backend compute.Backend
	step    int
}

func (s *session) matches(cfg Config) bool {
	a, b := s.cfg, cfg
	return a.Width == b.Width &&
		a.Height == b.Height &&
		a.Seed == b.Seed &&
		a.Steps == b.Steps &&
		a.Params == b.Params
}

func (s *session) close() {
	s.state.Dispose()
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			core.Logger().Warn("grayscott: backend close failed", "backend", s.backend.Name(), "err", err)
		}
	}
}

// BackendOpener opens the compute backend for a new session.
type BackendOpener func() (compute.Backend, error)

// Controller drives a session across repeated invocations. Each Invoke runs
// at most one bounded batch and reports whether more work remains.
//
// A Controller is not safe for concurrent use; invocations are atomic with
// respect to the session lifecycle only when serialized by the caller.
type Controller struct {
	open    BackendOpener
	session *session
	last    Output

	// CheckBounds scans both fields after every batch and fails the
	// invocation with ErrOutOfBounds on a value outside [0,1].
	CheckBounds bool
}

// NewController returns a controller that selects the most capable
// registered backend for every new session.
func NewController() *Controller {
	return NewControllerWithOpener(compute.Select)
}

// NewControllerWithBackend returns a controller that opens the named backend,
// or selects one when name is empty or "auto".
func NewControllerWithBackend(name string) *Controller {
	return NewControllerWithOpener(func() (compute.Backend, error) {
		return compute.Resolve(name)
	})
}

// NewControllerWithOpener returns a controller using open for backends.
func NewControllerWithOpener(open BackendOpener) *Controller {
	if open == nil {
		open = compute.Select
	}
	return &Controller{open: open}
}

// Step returns the current step of the live session, or 0.
func (c *Controller) Step() int {
	if c.session == nil {
		return 0
	}
	return c.session.step
}

// Active reports whether a session is live.
func (c *Controller) Active() bool { return c.session != nil }

// Last returns the most recent outputs without invoking.
func (c *Controller) Last() Output { return c.last }

// Invoke advances the simulation by at most one batch.
//
// Reset disposes the session and returns empty outputs; it wins over Run.
// Without Run the last outputs are returned unchanged. Otherwise the session
// is (re)created when missing or when any session parameter differs from
// in.Config, then up to one batch is run and fresh snapshots are returned.
//
// Initialization failures leave no live session and return the error with
// the previous outputs, which are stale but intact.
func (c *Controller) Invoke(in Input) (Output, error) {
	if in.Reset {
		c.dispose()
		c.last = Output{}
		return c.last, nil
	}
	if !in.Run {
		return c.last, nil
	}

	cfg := in.Config
	fresh := false
	if c.session == nil || !c.session.matches(cfg) {
		c.dispose()
		s, err := c.openSession(cfg)
		if err != nil {
			core.Logger().Error("grayscott: init failed", "err", err)
			return c.last, err
		}
		c.session = s
		fresh = true
	}

	s := c.session
	batch := batchSteps(cfg.BatchSize, s.cfg.Steps, s.step)
	if batch > 0 {
		done, err := s.kernel.Advance(s.backend, s.state, batch)
		s.step += done
		if err != nil {
			c.dispose()
			return c.last, fmt.Errorf("grayscott: step %d: %w", s.step, err)
		}
		if c.CheckBounds {
			if err := checkBounds(s.state); err != nil {
				c.dispose()
				return c.last, fmt.Errorf("grayscott: after step %d: %w", s.step, err)
			}
		}
		core.Logger().Debug("grayscott: batch complete", "steps", batch, "step", s.step, "target", s.cfg.Steps)
	}
	if batch > 0 || fresh {
		c.last = c.snapshot()
	}
	return c.last, nil
}

// Close disposes the live session. The controller remains usable.
func (c *Controller) Close() {
	c.dispose()
}

func (c *Controller) openSession(cfg Config) (*session, error) {
	b, err := c.open()
	if err != nil {
		return nil, fmt.Errorf("grayscott: select backend: %w", err)
	}
	state, err := NewState(cfg.Width, cfg.Height, cfg.Seed)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	core.Logger().Info("grayscott: session initialized",
		"width", cfg.Width, "height", cfg.Height, "seed", cfg.Seed, "steps", cfg.Steps,
		"backend", b.Name(), "capacity", b.Capacity())
	return &session{
		cfg:     cfg,
		state:   state,
		kernel:  NewKernel(state.Grid(), cfg.Params),
		backend: b,
	}, nil
}

func (c *Controller) dispose() {
	if c.session == nil {
		return
	}
	c.session.close()
	c.session = nil
}

// snapshot copies the current generation into host-owned slices.
func (c *Controller) snapshot() Output {
	s := c.session
	out := Output{
		U:       append([]float32(nil), s.state.U()...),
		V:       append([]float32(nil), s.state.V()...),
		Size:    s.state.Size(),
		Step:    s.step,
		Target:  s.cfg.Steps,
		Backend: s.backend.Name(),
		More:    s.step < s.cfg.Steps,
	}
	if s.cfg.Steps > 0 {
		out.Progress = float64(s.step) / float64(s.cfg.Steps) * 100
	}
	return out
}

// batchSteps normalizes the requested batch size: zero, negative or larger
// than the target means run to the target.
func batchSteps(requested, target, current int) int {
	remaining := target - current
	if remaining <= 0 {
		return 0
	}
	if requested <= 0 || requested > target {
		return remaining
	}
	return min(requested, remaining)
}

func checkBounds(s *State) error {
	fields := []struct {
		name   string
		values []float32
	}{{"U", s.U()}, {"V", s.V()}}
	for _, f := range fields {
		for i, x := range f.values {
			if !(x >= 0 && x <= 1) {
				return fmt.Errorf("%w: %s[%d] = %v", ErrOutOfBounds, f.name, i, x)
			}
		}
	}
	return nil
}
