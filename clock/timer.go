package clock

import (
	"sync"
	"time"
)

// Timer invokes a callback periodically. The callback runs in the timer's own
// context and must not block.
type Timer interface {
	// Start schedules fn to be called hz times per second. A running
	// schedule is replaced.
	Start(fn func(), hz float32)
	// Stop cancels the schedule. It's safe to call Stop on a stopped timer.
	Stop()
}

// Ticker implements Timer with a goroutine draining a time.Ticker.
type Ticker struct {
	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

func NewTicker() *Ticker { return &Ticker{} }

// Period returns the interval between two ticks at rate hz.
func Period(hz float32) time.Duration {
	return time.Duration(float64(time.Second) / float64(hz))
}

func (t *Ticker) Start(fn func(), hz float32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	done := make(chan struct{})
	t.done = done
	ticker := time.NewTicker(Period(hz))

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
}

// Stop returns after the last callback has returned.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Ticker) stopLocked() {
	if t.done == nil {
		return
	}
	close(t.done)
	t.done = nil
	t.wg.Wait()
}
