// Package input turns raw key events of the device's input service into a
// per-frame key state.
//
// Events arrive asynchronously in the publisher's goroutine and are
// accumulated by a Latch. Once per frame the update loop takes a snapshot of
// the latch and an Edge derives which keys went down or up since the previous
// frame.
package input

import (
	"fmt"
	"math/bits"
	"strings"
)

// RawKey is a key code as reported by the input service.
type RawKey uint8

const (
	RawUp RawKey = iota
	RawDown
	RawRight
	RawLeft
	RawOk
	RawBack
)

var rawKeyNames = [...]string{"up", "down", "right", "left", "ok", "back"}

func (k RawKey) String() string {
	if int(k) < len(rawKeyNames) {
		return rawKeyNames[k]
	}
	return fmt.Sprintf("key(%d)", uint8(k))
}

// ParseRawKey is the inverse of RawKey.String for known keys.
func ParseRawKey(s string) (RawKey, error) {
	for i, v := range rawKeyNames {
		if strings.EqualFold(s, v) {
			return RawKey(i), nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", s)
}

// EventType classifies a raw key event.
type EventType uint8

const (
	Press   EventType = iota // key went down
	Release                  // key went up
	Short                    // press shorter than the long press threshold
	Long                     // press exceeded the long press threshold
	Repeat                   // key is held, sent periodically after Long
)

var eventTypeNames = [...]string{"press", "release", "short", "long", "repeat"}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

func ParseEventType(s string) (EventType, error) {
	for i, v := range eventTypeNames {
		if strings.EqualFold(s, v) {
			return EventType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

// Event is a single raw key event.
type Event struct {
	Key  RawKey
	Type EventType
}

func (e Event) String() string {
	return e.Key.String() + ":" + e.Type.String()
}

// Key is a single logical key bit.
type Key = KeyMask

// KeyMask is a set of logical keys.
type KeyMask uint32

const (
	KeyUp KeyMask = 1 << iota
	KeyDown
	KeyRight
	KeyLeft
	KeyOk
	KeyBack
)

var keyNames = [...]string{"Up", "Down", "Right", "Left", "Ok", "Back"}

// Has reports whether all keys in k are in m.
func (m KeyMask) Has(k KeyMask) bool {
	return k != 0 && m&k == k
}

// Keys returns the single key bits set in m, lowest first.
func (m KeyMask) Keys() []Key {
	keys := make([]Key, 0, bits.OnesCount32(uint32(m)))
	for v := uint32(m); v != 0; v &= v - 1 {
		keys = append(keys, Key(v&-v))
	}
	return keys
}

func (m KeyMask) String() string {
	if m == 0 {
		return "-"
	}
	var sb strings.Builder
	for _, k := range m.Keys() {
		if sb.Len() != 0 {
			sb.WriteByte('|')
		}
		i := bits.TrailingZeros32(uint32(k))
		if i < len(keyNames) {
			sb.WriteString(keyNames[i])
		} else {
			fmt.Fprintf(&sb, "0x%x", uint32(k))
		}
	}
	return sb.String()
}

// Keymap translates raw key codes to logical keys.
type Keymap map[RawKey]Key

// DefaultKeymap maps the six keys of the reference device.
var DefaultKeymap = Keymap{
	RawUp:    KeyUp,
	RawDown:  KeyDown,
	RawRight: KeyRight,
	RawLeft:  KeyLeft,
	RawOk:    KeyOk,
	RawBack:  KeyBack,
}

// Lookup returns the logical key for raw. Reports false for unmapped codes.
func (km Keymap) Lookup(raw RawKey) (Key, bool) {
	k, ok := km[raw]
	return k, ok
}
