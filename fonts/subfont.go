// Package fonts provides the faces used to render text on the display.
package fonts

import (
	"image"

	"github.com/embeddedgo/display/font/subfont"
	"golang.org/x/image/font/basicfont"
)

// Basic returns a face rendering the 7x13 fixed width font.
func Basic() *subfont.Face {
	return NewFace(basicfont.Face7x13)
}

// NewFace adapts a fixed width face. Subfonts are created on first use of one
// of their runes.
func NewFace(f *basicfont.Face) *subfont.Face {
	return &subfont.Face{
		Height: int16(f.Ascent + f.Descent),
		Ascent: int16(f.Ascent),
		Loader: &Loader{face: f},
	}
}

// SubfontData implements [subfont.Data] for a single range of a fixed width
// face.
type SubfontData struct {
	face   *basicfont.Face
	offset int
}

func (p *SubfontData) Advance(i int) int {
	return p.face.Advance
}

func (p *SubfontData) Glyph(i int) (img image.Image, origin image.Point, advance int) {
	f := p.face
	h := f.Ascent + f.Descent
	y := (i + p.offset) * h
	img = f.Mask.(subImager).SubImage(image.Rect(0, y, f.Width, y+h))
	origin = image.Pt(f.Left, y+f.Ascent)
	advance = f.Advance
	return
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

type Loader struct {
	face *basicfont.Face
}

func (l *Loader) Load(r rune, current []*subfont.Subfont) (containing *subfont.Subfont, updated []*subfont.Subfont) {
	for _, rng := range l.face.Ranges {
		if r >= rng.Low && r < rng.High {
			containing = &subfont.Subfont{
				First:  rng.Low,
				Last:   rng.High - 1,
				Offset: 0,
				Data:   &SubfontData{l.face, rng.Offset},
			}
			updated = append(current, containing)
			return
		}
	}
	updated = current
	return
}
