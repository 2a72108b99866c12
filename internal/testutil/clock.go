package testutil

import "sync"

// StepClock is a resettable sequence source for trace tests.
//
// It satisfies engine.SeqSource. Unlike engine.Clock it can be rewound, so
// one scenario can be traced repeatedly with identical step numbers.
type StepClock struct {
	mu    sync.Mutex
	start int64
	seq   int64
}

// NewStepClock returns a clock whose first Next is start+1.
func NewStepClock(start int64) *StepClock {
	return &StepClock{start: start, seq: start}
}

// Next advances the clock and returns the new value.
func (c *StepClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last value handed out, or start if none was.
func (c *StepClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to its starting value.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = c.start
}
