package hal

import (
	"fmt"
	"image"
	"sync"
)

// MaxDimension bounds framebuffer width and height.
const MaxDimension = 8192

// MemFramebuffer is an in-memory RGB565 framebuffer.
type MemFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte

	presents uint64
}

// NewFramebuffer allocates a width x height RGB565 framebuffer.
func NewFramebuffer(width, height int) *MemFramebuffer {
	f := &MemFramebuffer{}
	f.alloc(clampDim(width), clampDim(height))
	return f
}

func (f *MemFramebuffer) alloc(width, height int) {
	f.width = width
	f.height = height
	f.stride = width * 2
	f.buf = make([]byte, f.stride*height)
}

func (f *MemFramebuffer) Width() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width
}

func (f *MemFramebuffer) Height() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.height
}

func (f *MemFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }

func (f *MemFramebuffer) StrideBytes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stride
}

func (f *MemFramebuffer) Buffer() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf
}

// Present records that a frame is complete. Host windows read the buffer on
// their own schedule via Snapshot.
func (f *MemFramebuffer) Present() error {
	f.mu.Lock()
	f.presents++
	f.mu.Unlock()
	return nil
}

// Presents returns how many times Present was called.
func (f *MemFramebuffer) Presents() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presents
}

func (f *MemFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

// Resize reallocates the buffer. Contents are cleared, matching canvas
// semantics where assigning width or height resets the bitmap.
func (f *MemFramebuffer) Resize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("framebuffer: invalid size %dx%d", width, height)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alloc(width, height)
	return nil
}

// Snapshot converts the current contents to RGBA. dst is reused when it has
// matching bounds.
func (f *MemFramebuffer) Snapshot(dst *image.RGBA) *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dst == nil || dst.Bounds().Dx() != f.width || dst.Bounds().Dy() != f.height {
		dst = image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	}
	src := f.buf
	pix := dst.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(pix); i += 2 {
		r, g, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		pix[j+0] = r
		pix[j+1] = g
		pix[j+2] = b
		pix[j+3] = 0xFF
	}
	return dst
}

func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return v
}
