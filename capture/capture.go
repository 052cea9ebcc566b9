// Package capture records committed frames and converts them to paletted
// images for screenshots.
package capture

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/colornames"
)

// Colors of the reference device's backlit LCD.
var (
	Backlight color.Color = colornames.Darkorange
	Ink       color.Color = colornames.Black
)

// Recorder is a display.Presenter keeping a copy of the last frame.
type Recorder struct {
	mu     sync.Mutex
	last   *image.RGBA
	frames int
}

func (r *Recorder) Present(frame image.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := frame.Bounds()
	if r.last == nil || r.last.Rect != b {
		r.last = image.NewRGBA(b)
	}
	draw.Draw(r.last, b, frame, b.Min, draw.Src)
	r.frames++
}

// Last returns a copy of the last presented frame or nil if there was none.
func (r *Recorder) Last() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	img := image.NewRGBA(r.last.Rect)
	copy(img.Pix, r.last.Pix)
	return img
}

func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Paletted reduces img to at most n colors using median cut quantization.
func Paletted(img image.Image, n int, dither bool) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make([]color.Color, 0, n), img)
	dst := image.NewPaletted(img.Bounds(), p)

	var d draw.Drawer = draw.Src
	if dither {
		d = draw.FloydSteinberg
	}
	d.Draw(dst, dst.Rect, img, img.Bounds().Min)
	return dst
}

// Tint maps a monochrome frame to the ink and backlight colors. Pixels darker
// than half intensity are ink.
func Tint(img image.Image, ink, backlight color.Color) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(b, color.Palette{backlight, ink})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16); g.Y < 0x8000 {
				dst.SetColorIndex(x, y, 1)
			}
		}
	}
	return dst
}

// WritePNG writes img as a paletted PNG with at most n colors.
func WritePNG(w io.Writer, img image.Image, n int) error {
	return png.Encode(w, Paletted(img, n, false))
}
