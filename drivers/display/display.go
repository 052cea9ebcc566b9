// Package display implements the drawing surface handed to the frame
// callback.
//
// A Display owns a single Canvas which can be acquired by one user at a time.
// The canvas is double buffered. Drawing always goes to the back buffer and
// Commit hands the finished frame to a Presenter, which stands in for the
// device's screen.
package display

import (
	"errors"
	"image"
	"sync"
)

var ErrBusy = errors.New("display: canvas already acquired")

// Resolution of the reference device's monochrome screen.
var DefaultSize = image.Point{X: 128, Y: 64}

// Presenter outputs committed frames. The frame is only valid during the call
// to Present.
type Presenter interface {
	Present(frame image.Image)
}

type PresenterFunc func(frame image.Image)

func (f PresenterFunc) Present(frame image.Image) { f(frame) }

type Display struct {
	mu       sync.Mutex
	canvas   *Canvas
	acquired bool
}

// New returns a display of the given size. Committed frames are discarded if
// p is nil.
func New(size image.Point, p Presenter) *Display {
	if p == nil {
		p = PresenterFunc(func(image.Image) {})
	}
	return &Display{canvas: newCanvas(image.Rectangle{Max: size}, p)}
}

// Acquire grants exclusive access to the canvas until Release is called.
func (d *Display) Acquire() (*Canvas, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.acquired {
		return nil, ErrBusy
	}
	d.acquired = true
	return d.canvas, nil
}

// Release gives up the canvas. Releasing a display that isn't acquired has no
// effect.
func (d *Display) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquired = false
}

func (d *Display) Acquired() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acquired
}
