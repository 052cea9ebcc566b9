// Package keylink implements a byte stream framing of raw key events, used to
// feed recorded or remote input into the input service of a host build.
//
// Each event is sent as a four byte frame:
//
//	0xA5 | key | type | crc8(key, type)
//
// The checksum is CRC-8 with polynomial 0x07. A decoder that encounters a
// corrupt frame skips ahead to the next sync byte.
package keylink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sigurn/crc8"

	"github.com/clktmr/gameloop/drivers/input"
)

const (
	Sync      = 0xa5
	FrameSize = 4
)

var ErrChecksum = errors.New("keylink: checksum mismatch")

var table = crc8.MakeTable(crc8.CRC8)

func checksum(key, typ byte) byte {
	return crc8.Checksum([]byte{key, typ}, table)
}

// AppendFrame appends the frame for ev to b.
func AppendFrame(b []byte, ev input.Event) []byte {
	k, t := byte(ev.Key), byte(ev.Type)
	return append(b, Sync, k, t, checksum(k, t))
}

type Encoder struct {
	w   io.Writer
	buf [FrameSize]byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(ev input.Event) error {
	_, err := e.w.Write(AppendFrame(e.buf[:0], ev))
	return err
}

type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next frame. Bytes preceding a sync byte are discarded.
// Returns io.EOF if the stream ended between frames, io.ErrUnexpectedEOF if
// it ended within one, and ErrChecksum for a corrupt frame. Decoding may
// continue after ErrChecksum.
func (d *Decoder) Decode() (ev input.Event, err error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return ev, err
		}
		if b == Sync {
			break
		}
	}
	// Only peek at the payload, so a corrupt frame's payload is searched for
	// the next sync byte.
	p, err := d.r.Peek(FrameSize - 1)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return ev, err
	}
	k, t, sum := p[0], p[1], p[2]
	if checksum(k, t) != sum {
		return ev, fmt.Errorf("%w: got 0x%02x", ErrChecksum, sum)
	}
	d.r.Discard(len(p))
	return input.Event{Key: input.RawKey(k), Type: input.EventType(t)}, nil
}

// Publisher receives decoded events, see input.PubSub.
type Publisher interface {
	Publish(input.Event)
}

// Pump decodes frames from r and publishes them until r is exhausted or ctx
// is cancelled. Corrupt frames are logged and skipped.
func Pump(ctx context.Context, r io.Reader, pub Publisher, log zerolog.Logger) error {
	dec := NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := dec.Decode()
		switch {
		case err == nil:
			log.Debug().Stringer("event", ev).Msg("key event")
			pub.Publish(ev)
		case errors.Is(err, ErrChecksum):
			log.Warn().Err(err).Msg("dropped corrupt frame")
		case err == io.EOF:
			return nil
		default:
			return fmt.Errorf("keylink: %w", err)
		}
	}
}

// ParseEvent parses the text form of an event as returned by
// input.Event.String, e.g. "up:press".
func ParseEvent(s string) (ev input.Event, err error) {
	key, typ, ok := strings.Cut(s, ":")
	if !ok {
		return ev, fmt.Errorf("keylink: malformed event %q, want key:type", s)
	}
	if ev.Key, err = input.ParseRawKey(key); err != nil {
		return ev, fmt.Errorf("keylink: %w", err)
	}
	if ev.Type, err = input.ParseEventType(typ); err != nil {
		return ev, fmt.Errorf("keylink: %w", err)
	}
	return ev, nil
}
