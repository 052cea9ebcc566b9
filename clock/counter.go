// Package clock provides frame pacing: a periodic timer which fires at the
// target frame rate and a cycle counter to measure the achieved rate.
package clock

import "time"

// The core clock of the reference device. Cycle counts are in units of this
// frequency unless a Counter reports otherwise.
const DefaultFrequency = 64e6

// Counter is a free running 32-bit cycle counter, like a CPU's cycle count
// register. It wraps around silently.
type Counter interface {
	Cycles() uint32
	Frequency() uint32
}

// SysCounter emulates a cycle counter using the monotonic system clock.
type SysCounter struct {
	freq  uint32
	epoch time.Time
}

func NewSysCounter(freq uint32) *SysCounter {
	return &SysCounter{freq: freq, epoch: time.Now()}
}

func (c *SysCounter) Cycles() uint32 {
	ns := uint64(time.Since(c.epoch))
	sec, frac := ns/1e9, ns%1e9
	// Split to avoid overflowing 64 bits for long uptimes.
	cycles := sec*uint64(c.freq) + frac*uint64(c.freq)/1e9
	return uint32(cycles)
}

func (c *SysCounter) Frequency() uint32 {
	return c.freq
}

// Elapsed returns the cycles passed from start to now. The modular
// subtraction handles a single wraparound of the counter.
func Elapsed(start, now uint32) uint32 {
	return now - start
}

// FPS returns the frame rate if one frame took elapsed cycles at clock
// frequency freq. Reports false if elapsed is zero, i.e. the measurement was
// below the counter's resolution.
func FPS(freq, elapsed uint32) (fps float32, ok bool) {
	if elapsed == 0 {
		return 0, false
	}
	return float32(freq) / float32(elapsed), true
}

// Duration converts a cycle count to wall time.
func Duration(freq, cycles uint32) time.Duration {
	return time.Duration(uint64(cycles) * 1e9 / uint64(freq))
}
