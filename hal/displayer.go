package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Displayer adapts a Framebuffer to drivers.Displayer so tinyfont and the
// raster canvas can draw into it.
type Displayer struct {
	fb Framebuffer
}

var _ drivers.Displayer = (*Displayer)(nil)

func NewDisplayer(fb Framebuffer) *Displayer {
	return &Displayer{fb: fb}
}

// Framebuffer returns the underlying framebuffer.
func (d *Displayer) Framebuffer() Framebuffer { return d.fb }

func (d *Displayer) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *Displayer) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}

	w := d.fb.Width()
	h := d.fb.Height()
	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= w || iy < 0 || iy >= h {
		return
	}

	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	if c.A != 0xFF {
		if c.A == 0 {
			return
		}
		c = blend(c, rgbaAt(buf, off))
	}
	pixel := rgb565(c.R, c.G, c.B)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

// Pixel reads back one pixel. Out-of-range coordinates return transparent black.
func (d *Displayer) Pixel(x, y int) color.RGBA {
	if d.fb == nil {
		return color.RGBA{}
	}
	if x < 0 || y < 0 || x >= d.fb.Width() || y >= d.fb.Height() {
		return color.RGBA{}
	}
	buf := d.fb.Buffer()
	off := y*d.fb.StrideBytes() + x*2
	if off < 0 || off+1 >= len(buf) {
		return color.RGBA{}
	}
	return rgbaAt(buf, off)
}

func (d *Displayer) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *Displayer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb == nil || d.fb.Format() != PixelFormatRGB565 {
		return nil
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return nil
	}
	if c.A != 0xFF {
		for py := int(y); py < int(y)+int(height); py++ {
			for px := int(x); px < int(x)+int(width); px++ {
				d.SetPixel(int16(px), int16(py), c)
			}
		}
		return nil
	}

	w := d.fb.Width()
	h := d.fb.Height()

	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := rgb565(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off < 0 || off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
	return nil
}

func (d *Displayer) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

func rgbaAt(buf []byte, off int) color.RGBA {
	r, g, b := rgb888From565(uint16(buf[off]) | uint16(buf[off+1])<<8)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// blend composites src over dst (straight alpha).
func blend(src, dst color.RGBA) color.RGBA {
	a := uint16(src.A)
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint16(src.R)*a + uint16(dst.R)*inv) / 255),
		G: uint8((uint16(src.G)*a + uint16(dst.G)*inv) / 255),
		B: uint8((uint16(src.B)*a + uint16(dst.B)*inv) / 255),
		A: 0xFF,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
