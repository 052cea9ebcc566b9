package clock

import "sync"

// FrameClock paces frames with a Timer and measures the time between frames
// with a Counter.
type FrameClock struct {
	timer   Timer
	counter Counter

	mu      sync.Mutex
	running bool

	start uint32 // owned by the goroutine calling Lap
}

func NewFrameClock(timer Timer, counter Counter) *FrameClock {
	return &FrameClock{timer: timer, counter: counter}
}

// Start records the current cycle count as reference for the first Lap and
// starts calling tick at rate hz.
func (c *FrameClock) Start(hz float32, tick func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.start = c.counter.Cycles()
	c.timer.Start(tick, hz)
	c.running = true
}

// Stop stops the timer. It's idempotent and safe if the clock was never
// started.
func (c *FrameClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.timer.Stop()
	c.running = false
}

func (c *FrameClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Lap returns the instantaneous frame rate derived from the cycles elapsed
// since the previous Lap, or since Start for the first one. The result is not
// valid if no cycles elapsed.
func (c *FrameClock) Lap() (fps float32, elapsed uint32, ok bool) {
	now := c.counter.Cycles()
	elapsed = Elapsed(c.start, now)
	c.start = now
	fps, ok = FPS(c.counter.Frequency(), elapsed)
	return fps, elapsed, ok
}
