package display

import (
	"fmt"
	"image"
	"image/color"

	"github.com/embeddedgo/display/pix"

	"github.com/clktmr/gameloop/fonts"
)

// Color selects how the canvas draws.
type Color uint8

const (
	ColorWhite Color = iota // clear pixels
	ColorBlack              // set pixels
	ColorXOR                // invert pixels
)

var (
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
	black = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// Canvas is a double buffered drawing surface. The primitives are drawn by an
// embeddedgo pix.Area on top of the canvas' framebuffer.
//
// A canvas is not safe for concurrent use.
type Canvas struct {
	fb   *framebuffer
	mode Color

	presenter Presenter
	commits   int

	area *pix.Area
	text *pix.TextWriter
}

func newCanvas(r image.Rectangle, p Presenter) *Canvas {
	c := &Canvas{fb: newFramebuffer(r), presenter: p}

	disp := pix.NewDisplay(c.fb)
	c.area = disp.NewArea(disp.Bounds())
	c.text = c.area.NewTextWriter(fonts.Basic())
	c.SetColor(ColorBlack)
	return c
}

// Reset clears the back buffer and sets the draw color to black.
func (c *Canvas) Reset() {
	c.fb.clear()
	c.SetColor(ColorBlack)
}

func (c *Canvas) SetColor(col Color) {
	c.mode = col
	c.fb.xor = col == ColorXOR
	rgba := black
	if col == ColorWhite {
		rgba = white
	}
	c.area.SetColor(rgba)
	c.text.SetColor(rgba)
}

func (c *Canvas) Color() Color { return c.mode }

// DrawStr draws s with the top left corner of the first glyph at (x, y).
func (c *Canvas) DrawStr(x, y int, s string) {
	c.text.Pos = image.Pt(x, y)
	c.text.WriteString(s)
}

func (c *Canvas) Printf(x, y int, format string, args ...any) {
	c.DrawStr(x, y, fmt.Sprintf(format, args...))
}

// DrawBox fills a w by h rectangle at (x, y).
func (c *Canvas) DrawBox(x, y, w, h int) {
	c.area.Fill(image.Rect(x, y, x+w, y+h))
}

// DrawFrame draws the one pixel outline of a w by h rectangle at (x, y).
// Every pixel of the outline is drawn exactly once.
func (c *Canvas) DrawFrame(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.DrawBox(x, y, w, 1)
	if h > 1 {
		c.DrawBox(x, y+h-1, w, 1)
	}
	if h > 2 {
		c.DrawBox(x, y+1, 1, h-2)
		if w > 1 {
			c.DrawBox(x+w-1, y+1, 1, h-2)
		}
	}
}

func (c *Canvas) DrawDot(x, y int) {
	c.DrawBox(x, y, 1, 1)
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.fb.write.Rect
}

// Image returns the back buffer, i.e. the frame currently being drawn.
func (c *Canvas) Image() image.Image {
	return c.fb.write
}

// Commit swaps the buffers and presents the finished frame.
func (c *Canvas) Commit() {
	c.area.Flush()
	c.fb.swap()
	c.commits++
	c.presenter.Present(c.fb.read)
}

// Commits returns the number of frames committed so far.
func (c *Canvas) Commits() int {
	return c.commits
}
