package input

import (
	"sync/atomic"

	"github.com/clktmr/gameloop/debug"
)

// Latch accumulates the currently held keys from raw events. Handle may be
// called from any goroutine concurrently with Load.
type Latch struct {
	held   atomic.Uint32
	keymap Keymap
}

// NewLatch returns a latch translating events with km, or DefaultKeymap if km
// is nil.
func NewLatch(km Keymap) *Latch {
	if km == nil {
		km = DefaultKeymap
	}
	return &Latch{keymap: km}
}

// Handle updates the held keys. Press and Release events of mapped keys set
// and clear the key's bit, everything else is ignored.
func (l *Latch) Handle(ev Event) {
	k, ok := l.keymap.Lookup(ev.Key)
	if !ok {
		return
	}
	switch ev.Type {
	case Press:
		l.held.Or(uint32(k))
	case Release:
		l.held.And(^uint32(k))
	}
}

// Load returns the keys held right now.
func (l *Latch) Load() KeyMask {
	return KeyMask(l.held.Load())
}

// State is the key state of a single frame.
type State struct {
	Held     KeyMask // down at the time of the snapshot
	Pressed  KeyMask // down now, but not in the previous frame
	Released KeyMask // down in the previous frame, but not now
}

func (s State) IsHeld(k Key) bool     { return s.Held.Has(k) }
func (s State) IsPressed(k Key) bool  { return s.Pressed.Has(k) }
func (s State) IsReleased(k Key) bool { return s.Released.Has(k) }

// Edge derives pressed and released keys from consecutive snapshots. It's
// owned by the update loop and not safe for concurrent use.
type Edge struct {
	prev KeyMask
}

// Next returns the state for snapshot held and remembers it for the next
// call.
func (e *Edge) Next(held KeyMask) State {
	s := State{
		Held:     held,
		Pressed:  held &^ e.prev,
		Released: e.prev &^ held,
	}
	debug.Assert(s.Pressed&s.Released == 0, "key pressed and released in same frame")
	e.prev = held
	return s
}

// Reset forgets the previous snapshot, all keys held in the next snapshot will
// be reported as pressed.
func (e *Edge) Reset() {
	e.prev = 0
}
