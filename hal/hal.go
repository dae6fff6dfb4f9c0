// Package hal is the contact point between framekit and the host platform:
// wall clock, pixel surfaces, screen geometry and the drivers that pump the
// host event queue.
package hal

import (
	"errors"
	"time"
)

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Resizer is implemented by framebuffers whose dimensions can change at
// runtime (canvas width/height assignment).
type Resizer interface {
	Resize(width, height int) error
}

// Clock reports the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Screen reports the size of the host's visible area, in pixels.
type Screen interface {
	ScreenSize() (width, height int)
}

// Driver is pumped by the host runners. Step fires due timers, Frame runs
// refresh-aligned callbacks.
type Driver interface {
	Step(now time.Time)
	Frame(now time.Time)
}
