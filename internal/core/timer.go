package core

import "time"

// FixedStep paces batch invocations at a steady rate. Each due tick is one
// controller invocation; MaxCatchUp bounds how many ticks a slow frame may
// accumulate so a stalled host does not trigger a burst of batches.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time

	MaxCatchUp int
}

// NewFixedStep constructs a FixedStep targeting the given ticks per second.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{now: time.Now, MaxCatchUp: 4}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate. Non-positive rates fall back to 60.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Interval returns the duration of one tick.
func (f *FixedStep) Interval() time.Duration { return f.step }

// Due reports how many ticks elapsed since the previous call.
func (f *FixedStep) Due() int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now

	ticks := 0
	for f.accumulator >= f.step {
		f.accumulator -= f.step
		ticks++
	}
	if f.MaxCatchUp > 0 && ticks > f.MaxCatchUp {
		ticks = f.MaxCatchUp
		f.accumulator = 0
	}
	return ticks
}

// ShouldStep reports whether at least one tick is due.
func (f *FixedStep) ShouldStep() bool {
	return f.Due() > 0
}
