package object

import (
	"errors"
	"math"

	"framekit/canvas"
)

// ErrNoContext is returned by Update on a shape without a drawing context.
var ErrNoContext = errors.New("object: shape has no drawing context")

// Shape is the "canvas shape" variant.
type Shape struct {
	X, Y, W, H, R        Opt[float64]
	Fill, Stroke         Opt[string]
	Thickness            Opt[float64]
	StartAngle, EndAngle Opt[float64]

	ctx  canvas.Context
	draw func(*Shape)
	data Data
}

func newShape(d Data) *Shape {
	return &Shape{
		X:          d.X,
		Y:          d.Y,
		W:          d.W,
		H:          d.H,
		R:          d.R,
		Fill:       d.Fill,
		Stroke:     d.Stroke,
		Thickness:  d.Thickness,
		StartAngle: d.StartAngle,
		EndAngle:   d.EndAngle,
		ctx:        d.Ctx,
		draw:       d.Draw,
		data:       d,
	}
}

func (s *Shape) Kind() Kind { return KindShape }
func (s *Shape) Data() Data { return s.data }

// Ctx returns the drawing context, or nil.
func (s *Shape) Ctx() canvas.Context { return s.ctx }

// SetCtx replaces the drawing context.
func (s *Shape) SetCtx(ctx canvas.Context) { s.ctx = ctx }

// Update draws the shape as one path: styles are applied, the draw hook adds
// segments, then the path is filled and stroked for whichever styles are set.
func (s *Shape) Update() error {
	ctx := s.ctx
	if ctx == nil {
		return ErrNoContext
	}
	ctx.BeginPath()
	if fill, ok := s.Fill.Get(); ok {
		ctx.SetFillStyle(fill)
	}
	if stroke, ok := s.Stroke.Get(); ok {
		ctx.SetStrokeStyle(stroke)
	}
	if w, ok := s.Thickness.Get(); ok {
		ctx.SetLineWidth(w)
	}
	if s.draw != nil {
		s.draw(s)
	}
	if !s.Fill.IsNull() {
		ctx.Fill()
	}
	if !s.Stroke.IsNull() {
		ctx.Stroke()
	}
	ctx.ClosePath()
	return nil
}

// Rect adds a rectangle to the current path.
func (s *Shape) Rect(x, y, w, h float64) {
	if s.ctx != nil {
		s.ctx.Rect(x, y, w, h)
	}
}

// Square adds a side x side rectangle to the current path.
func (s *Shape) Square(x, y, side float64) {
	s.Rect(x, y, side, side)
}

// Arc adds an arc to the current path.
func (s *Shape) Arc(x, y, r, startAngle, endAngle float64, counterClockwise bool) {
	if s.ctx != nil {
		s.ctx.Arc(x, y, r, startAngle, endAngle, counterClockwise)
	}
}

// Draw hooks that build the path from the shape's own fields. Null fields
// read as zero, except a null EndAngle in DrawArc which means a full turn.
var hooks = map[string]func(*Shape){
	"rect": func(s *Shape) {
		s.Rect(s.X.Or(0), s.Y.Or(0), s.W.Or(0), s.H.Or(0))
	},
	"square": func(s *Shape) {
		s.Square(s.X.Or(0), s.Y.Or(0), s.W.Or(0))
	},
	"circle": func(s *Shape) {
		s.Arc(s.X.Or(0), s.Y.Or(0), s.R.Or(0), 0, 2*math.Pi, false)
	},
	"arc": func(s *Shape) {
		s.Arc(s.X.Or(0), s.Y.Or(0), s.R.Or(0), s.StartAngle.Or(0), s.EndAngle.Or(2*math.Pi), false)
	},
}

// Hook returns the named built-in draw hook: rect, square, circle or arc.
func Hook(name string) (func(*Shape), bool) {
	fn, ok := hooks[name]
	return fn, ok
}
