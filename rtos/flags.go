// Package rtos provides the scheduling primitives the engine uses to
// communicate between a timer context and the update loop, modelled after the
// thread flags of small real-time kernels.
package rtos

import (
	"errors"
	"sync/atomic"
	"time"
)

var (
	ErrTimeout   = errors.New("rtos: wait timed out")
	ErrParameter = errors.New("rtos: invalid flags parameter")
)

// FlagError is reserved. It is never stored in a Flags word and masks
// containing it are rejected.
const FlagError uint32 = 1 << 31

// Forever can be passed as timeout to Wait to block until the flags are set.
const Forever time.Duration = -1

// WaitOption modifies the behaviour of Flags.Wait.
type WaitOption uint8

const (
	WaitAny WaitOption = 0      // return when any bit of the mask is set
	WaitAll WaitOption = 1 << 0 // return when all bits of the mask are set
	NoClear WaitOption = 1 << 1 // don't clear the returned bits
)

// Flags is a word of event flags owned by a single waiting goroutine. Any
// goroutine, including a timer callback, may set flags. Setting a flag that is
// already set has no further effect, so signals are coalesced rather than
// queued.
//
// The zero value is not usable, create Flags with NewFlags.
type Flags struct {
	v    atomic.Uint32
	wake chan struct{} // buffered, size 1
}

func NewFlags() *Flags {
	return &Flags{wake: make(chan struct{}, 1)}
}

// Set sets the bits in mask and wakes the waiter. It never blocks. Returns the
// flags after setting.
func (f *Flags) Set(mask uint32) (uint32, error) {
	if mask&FlagError != 0 {
		return 0, ErrParameter
	}
	v := f.v.Or(mask) | mask
	select {
	case f.wake <- struct{}{}:
	default: // a wakeup is already pending
	}
	return v, nil
}

// Clear clears the bits in mask and returns the flags before clearing.
func (f *Flags) Clear(mask uint32) uint32 {
	return f.v.And(^mask)
}

// Get returns the currently set flags.
func (f *Flags) Get() uint32 {
	return f.v.Load()
}

// Wait blocks until the flags in mask are set according to opts or timeout
// elapsed. A timeout of zero polls, Forever never times out. Unless NoClear is
// passed, the returned flags are cleared atomically.
//
// Only a single goroutine may wait on Flags at a time.
func (f *Flags) Wait(mask uint32, opts WaitOption, timeout time.Duration) (uint32, error) {
	if mask == 0 || mask&FlagError != 0 {
		return 0, ErrParameter
	}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	for {
		cur := f.v.Load()
		got := cur & mask
		if satisfied(got, mask, opts) {
			if opts&NoClear == 0 && !f.v.CompareAndSwap(cur, cur&^got) {
				continue // raced with Set
			}
			return got, nil
		}

		if timeout == 0 {
			return 0, ErrTimeout
		}

		select {
		case <-f.wake:
		case <-expired:
			return 0, ErrTimeout
		}
	}
}

func satisfied(got, mask uint32, opts WaitOption) bool {
	if opts&WaitAll != 0 {
		return got == mask
	}
	return got != 0
}
