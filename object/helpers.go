package object

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownBase    = errors.New("object: unknown base")
	ErrNotImplemented = errors.New("object: base conversion not implemented")
)

// Math is the "math" variant. It carries no data.
type Math struct{}

func (Math) Kind() Kind { return KindMath }

func (Math) Pow(x, y float64) float64 { return math.Pow(x, y) }
func (Math) Square(x float64) float64 { return x * x }
func (Math) Cube(x float64) float64   { return x * x * x }

// BaseConverter is the "comp" variant. It carries no data.
type BaseConverter struct{}

func (BaseConverter) Kind() Kind { return KindComp }

// Radix returns the radix of a recognized base name.
func Radix(base string) (int, error) {
	switch base {
	case "binary":
		return 2, nil
	case "octal":
		return 8, nil
	case "hexa-decimal":
		return 16, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBase, base)
	}
}

// Convert resolves both bases. The conversion itself is not defined yet, so
// recognized bases report ErrNotImplemented.
func (BaseConverter) Convert(from, to, value string) (string, error) {
	if _, err := Radix(from); err != nil {
		return "", err
	}
	if _, err := Radix(to); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: %s to %s", ErrNotImplemented, from, to)
}

var (
	_ Drawer    = (*Shape)(nil)
	_ Mather    = Math{}
	_ Converter = BaseConverter{}
)
