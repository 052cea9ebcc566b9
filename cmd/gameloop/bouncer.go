package main

import (
	"context"
	"errors"
	"image"

	"github.com/clktmr/gameloop/drivers/display"
	"github.com/clktmr/gameloop/drivers/input"
	"github.com/clktmr/gameloop/engine"
)

var errQuit = errors.New("quit")

const boxSize = 8

// bouncer moves a box across the screen, bouncing off the edges. It
// implements console.Gamelooper.
type bouncer struct {
	ctx    context.Context
	bounds image.Rectangle
	limit  int

	frames int
	x, y   float32
	dx, dy float32 // pixels per nominal frame
	paused bool
}

func newBouncer(ctx context.Context, size image.Point, limit int) *bouncer {
	return &bouncer{
		ctx:    ctx,
		bounds: image.Rectangle{Max: size}.Inset(1),
		limit:  limit,
		x:      float32(size.X) / 2,
		y:      float32(size.Y) / 2,
		dx:     1,
		dy:     0.5,
	}
}

func (b *bouncer) Update(r *engine.Running, in input.State) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}
	if in.IsPressed(input.KeyBack) {
		return errQuit
	}
	if in.IsPressed(input.KeyOk) {
		b.paused = !b.paused
	}
	switch {
	case in.IsPressed(input.KeyLeft):
		b.dx = -abs(b.dx)
	case in.IsPressed(input.KeyRight):
		b.dx = abs(b.dx)
	}
	switch {
	case in.IsPressed(input.KeyUp):
		b.dy = -abs(b.dy)
	case in.IsPressed(input.KeyDown):
		b.dy = abs(b.dy)
	}

	b.frames++
	if b.limit > 0 && b.frames >= b.limit {
		r.Stop()
	}
	if b.paused {
		return nil
	}

	step := r.DeltaFrames()
	b.x, b.dx = bounce(b.x+b.dx*step, b.dx, float32(b.bounds.Min.X), float32(b.bounds.Max.X-boxSize))
	b.y, b.dy = bounce(b.y+b.dy*step, b.dy, float32(b.bounds.Min.Y), float32(b.bounds.Max.Y-boxSize))
	return nil
}

func (b *bouncer) Draw(c *display.Canvas) {
	r := c.Bounds()
	c.DrawFrame(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	c.DrawBox(int(b.x), int(b.y), boxSize, boxSize)
	if b.paused {
		c.SetColor(display.ColorXOR)
		c.DrawStr(r.Max.X-6*7-2, r.Max.Y-15, "paused")
	}
}

// bounce reflects pos at the interval [lo, hi] and flips the velocity v if it
// did.
func bounce(pos, v, lo, hi float32) (float32, float32) {
	switch {
	case pos < lo:
		return 2*lo - pos, abs(v)
	case pos > hi:
		return 2*hi - pos, -abs(v)
	}
	return pos, v
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
