package window

import (
	"errors"
	"fmt"

	"framekit/canvas"
	"framekit/hal"
)

const (
	RendererRaster = "raster"
	RendererVector = "vector"
)

// Config controls the window.
type Config struct {
	Title string
	// Scale multiplies the canvas size for the initial window size.
	Scale int
	// TPS is how often timers are pumped; it bounds timer resolution.
	TPS        int
	FullScreen bool
	Renderer   string
	Clock      hal.Clock

	// OnContext receives the vector context before the first frame.
	OnContext func(canvas.Context)
	// Size reports the canvas size for the window layout. It is called from
	// the window's goroutine while other goroutines may resize the canvas, so
	// it must synchronize with them. Nil reads the canvas fields directly.
	Size func() (w, h int)
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = "framekit"
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
	if c.TPS <= 0 {
		c.TPS = 240
	}
	if c.Renderer == "" {
		c.Renderer = RendererRaster
	}
	if c.Clock == nil {
		c.Clock = hal.SystemClock{}
	}
	return c
}

func (c Config) validate(cv *canvas.Canvas, fb *hal.MemFramebuffer) error {
	if cv == nil {
		return errors.New("window: nil canvas")
	}
	switch c.Renderer {
	case RendererRaster:
		if fb == nil {
			return errors.New("window: raster renderer needs a framebuffer")
		}
	case RendererVector:
	default:
		return fmt.Errorf("window: unknown renderer %q", c.Renderer)
	}
	return nil
}

func (c Config) canvasSize(cv *canvas.Canvas) (int, int) {
	if c.Size != nil {
		return c.Size()
	}
	return cv.Width, cv.Height
}
