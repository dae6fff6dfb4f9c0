// Package canvas is a minimal immediate-mode 2D drawing surface: a Context
// interface shaped after the browser's CanvasRenderingContext2D subset the
// frame helpers need, a document of named canvases and the sizing and
// background helpers.
package canvas

import (
	"errors"
	"fmt"

	"framekit/hal"
)

var ErrInvalidSize = errors.New("canvas: invalid size")

// Context is a 2D immediate-mode drawing context. Styles are CSS-like color
// strings; invalid styles are ignored like a browser ignores them.
type Context interface {
	Canvas() *Canvas

	BeginPath()
	ClosePath()
	Rect(x, y, w, h float64)
	Arc(x, y, r, startAngle, endAngle float64, counterClockwise bool)
	Fill()
	Stroke()
	ClearRect(x, y, w, h float64)

	SetFillStyle(style string)
	SetStrokeStyle(style string)
	SetLineWidth(w float64)
}

// TextContext is implemented by contexts that can draw text.
type TextContext interface {
	Context
	FillText(text string, x, y float64)
}

// Canvas is a drawing surface with pixel dimensions.
type Canvas struct {
	ID     string
	Width  int
	Height int

	// OnResize, when set, is called after the dimensions change so the
	// backing surface can follow.
	OnResize func(w, h int) error

	ctx Context
}

// New creates a canvas of w x h pixels.
func New(id string, w, h int) *Canvas {
	return &Canvas{ID: id, Width: w, Height: h}
}

// Context returns the context attached with SetContext, or nil.
func (c *Canvas) Context() Context { return c.ctx }

// SetContext attaches ctx as the canvas's drawing context.
func (c *Canvas) SetContext(ctx Context) { c.ctx = ctx }

// SetCanvasSize sets the canvas pixel dimensions.
func SetCanvasSize(c *Canvas, w, h int) error {
	if c == nil {
		return errors.New("canvas: nil canvas")
	}
	if w <= 0 || h <= 0 || w > hal.MaxDimension || h > hal.MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	if c.Width == w && c.Height == h {
		return nil
	}
	c.Width, c.Height = w, h
	if c.OnResize != nil {
		if err := c.OnResize(w, h); err != nil {
			return fmt.Errorf("canvas: resize %q: %w", c.ID, err)
		}
	}
	return nil
}

// FullScreen sizes the canvas to the host screen.
func FullScreen(c *Canvas, screen hal.Screen) error {
	if screen == nil {
		return errors.New("canvas: nil screen")
	}
	w, h := screen.ScreenSize()
	return SetCanvasSize(c, w, h)
}

// Background clears the whole canvas and fills it with color as one path.
func Background(color string, ctx Context) {
	c := ctx.Canvas()
	w, h := float64(c.Width), float64(c.Height)

	ctx.BeginPath()
	ctx.SetFillStyle(color)
	ctx.SetLineWidth(0)
	ctx.ClearRect(0, 0, w, h)
	ctx.Rect(0, 0, w, h)
	ctx.Fill()
	ctx.ClosePath()
}
