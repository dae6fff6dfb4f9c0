// Package object is a small tagged union of helpers selected by a kind tag:
// a drawable canvas shape, a math helper or a number-base converter. Any other
// tag yields a Plain object with no capabilities.
package object

import (
	"framekit/canvas"
)

// Kind is the type tag of an object.
type Kind string

const (
	KindShape Kind = "canvas shape"
	KindMath  Kind = "math"
	KindComp  Kind = "comp"
)

// Data is the loosely typed configuration bag an object is built from. Only
// the fields relevant to the kind are read; unset fields stay null.
type Data struct {
	X, Y, W, H, R        Opt[float64]
	Fill, Stroke         Opt[string]
	Thickness            Opt[float64]
	StartAngle, EndAngle Opt[float64]

	// Ctx is the drawing context; nil means unset.
	Ctx canvas.Context
	// Draw adds path segments during Update; nil means a no-op hook.
	Draw func(s *Shape)
}

// Object is implemented by every variant. Only variants that keep their
// configuration (shapes and plain objects) expose it through Data.
type Object interface {
	Kind() Kind
}

// Drawer is the capability of canvas shapes.
type Drawer interface {
	Object
	Update() error
	Rect(x, y, w, h float64)
	Arc(x, y, r, startAngle, endAngle float64, counterClockwise bool)
}

// Mather is the capability of math helpers.
type Mather interface {
	Object
	Pow(x, y float64) float64
	Square(x float64) float64
	Cube(x float64) float64
}

// Converter is the capability of base converters.
type Converter interface {
	Object
	Convert(from, to, value string) (string, error)
}

// New builds the variant selected by kind. Unknown kinds never fail; they
// produce a Plain object without capabilities.
func New(kind Kind, data Data) Object {
	switch kind {
	case KindShape:
		return newShape(data)
	case KindMath:
		return Math{}
	case KindComp:
		return BaseConverter{}
	default:
		return Plain{kind: kind, data: data}
	}
}

// Change rebuilds o from data. An empty kind keeps o's kind, so capabilities
// follow the tag exactly as New assigns them.
func Change(o Object, data Data, kind Kind) Object {
	if kind == "" && o != nil {
		kind = o.Kind()
	}
	return New(kind, data)
}

// Plain is an object whose kind carries no capabilities.
type Plain struct {
	kind Kind
	data Data
}

func (p Plain) Kind() Kind { return p.kind }
func (p Plain) Data() Data { return p.data }
