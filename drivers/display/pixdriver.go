package display

import (
	"image"
	"image/color"
	"image/draw"
)

// framebuffer implements pix.Driver on a pair of RGBA images.
type framebuffer struct {
	bufs        [2]*image.RGBA
	read, write *image.RGBA
	fill        image.Uniform
	xor         bool
}

func newFramebuffer(r image.Rectangle) *framebuffer {
	fb := &framebuffer{}
	for i := range fb.bufs {
		fb.bufs[i] = image.NewRGBA(r)
		draw.Draw(fb.bufs[i], r, image.NewUniform(white), image.Point{}, draw.Src)
	}
	fb.write, fb.read = fb.bufs[0], fb.bufs[1]
	return fb
}

func (fb *framebuffer) swap() {
	fb.read, fb.write = fb.write, fb.read
}

func (fb *framebuffer) clear() {
	draw.Draw(fb.write, fb.write.Rect, image.NewUniform(white), image.Point{}, draw.Src)
}

func (fb *framebuffer) Draw(r image.Rectangle, src image.Image, sp image.Point,
	mask image.Image, mp image.Point, op draw.Op) {
	if fb.xor {
		fb.invert(r, mask, mp)
		return
	}
	draw.DrawMask(fb.write, r, src, sp, mask, mp, op)
}

func (fb *framebuffer) Fill(r image.Rectangle) {
	fb.Draw(r, &fb.fill, image.Point{}, nil, image.Point{}, draw.Over)
}

func (fb *framebuffer) SetColor(c color.Color) {
	fb.fill.C = c
}

func (fb *framebuffer) SetDir(dir int) image.Rectangle {
	return fb.write.Rect
}

func (fb *framebuffer) Flush() {}

func (fb *framebuffer) Err(clear bool) error {
	return nil
}

// invert inverts the pixels in r which are at least half covered by mask. A
// nil mask covers the whole rectangle.
func (fb *framebuffer) invert(r image.Rectangle, mask image.Image, mp image.Point) {
	clip := r.Intersect(fb.write.Rect)
	mp = mp.Add(clip.Min.Sub(r.Min))
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			if mask != nil {
				_, _, _, a := mask.At(mp.X+x-clip.Min.X, mp.Y+y-clip.Min.Y).RGBA()
				if a < 0x8000 {
					continue
				}
			}
			i := fb.write.PixOffset(x, y)
			px := fb.write.Pix[i : i+3 : i+3]
			px[0], px[1], px[2] = ^px[0], ^px[1], ^px[2]
		}
	}
}
