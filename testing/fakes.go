package testing

import (
	"image"
	"sync"
)

// ManualTimer is a clock.Timer which only fires when Tick is called.
type ManualTimer struct {
	mu      sync.Mutex
	fn      func()
	hz      float32
	starts  int
	stops   int
	started chan struct{}
	once    sync.Once
}

func NewManualTimer() *ManualTimer {
	return &ManualTimer{started: make(chan struct{})}
}

func (t *ManualTimer) Start(fn func(), hz float32) {
	t.mu.Lock()
	t.fn, t.hz = fn, hz
	t.starts++
	t.mu.Unlock()
	t.once.Do(func() { close(t.started) })
}

func (t *ManualTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fn != nil {
		t.stops++
	}
	t.fn = nil
}

// Started is closed after the first call to Start.
func (t *ManualTimer) Started() <-chan struct{} { return t.started }

// Tick invokes the callback once, from the calling goroutine. Reports false
// if the timer isn't running.
func (t *ManualTimer) Tick() bool {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (t *ManualTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fn != nil
}

// Rate returns the rate passed to the last Start.
func (t *ManualTimer) Rate() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hz
}

// Counts returns how often the timer was started and stopped.
func (t *ManualTimer) Counts() (starts, stops int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.starts, t.stops
}

// StepCounter is a clock.Counter advancing by a fixed step on every read.
type StepCounter struct {
	mu   sync.Mutex
	freq uint32
	now  uint32
	step uint32
}

func NewStepCounter(freq, start, step uint32) *StepCounter {
	return &StepCounter{freq: freq, now: start, step: step}
}

func (c *StepCounter) Cycles() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now += c.step
	return now
}

func (c *StepCounter) Frequency() uint32 { return c.freq }

// Set sets the value returned by the next read.
func (c *StepCounter) Set(now uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SetStep changes the increment applied by subsequent reads.
func (c *StepCounter) SetStep(step uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = step
}

// Screen is a display.Presenter counting presented frames.
type Screen struct {
	mu     sync.Mutex
	frames int
	last   image.Image
}

func (s *Screen) Present(frame image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.last = frame
}

func (s *Screen) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns the last presented frame. It's only valid until the next
// frame is committed.
func (s *Screen) Last() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
