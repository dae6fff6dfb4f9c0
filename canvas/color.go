package canvas

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]color.RGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"lime":        {0, 255, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"navy":        {0, 0, 128, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"aqua":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"fuchsia":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
	"maroon":      {128, 0, 0, 255},
	"olive":       {128, 128, 0, 255},
	"teal":        {0, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"pink":        {255, 192, 203, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor parses a CSS color: a named color, #rgb, #rgba, #rrggbb,
// #rrggbbaa, rgb(), rgba() or hsl().
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.RGBA{}, fmt.Errorf("canvas: empty color")
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGBFunc(s)
	case strings.HasPrefix(s, "hsl(") || strings.HasPrefix(s, "hsla("):
		return parseHSLFunc(s)
	}
	return color.RGBA{}, fmt.Errorf("canvas: unknown color %q", s)
}

// ColorString formats c as #rrggbb, or rgba() when translucent.
func ColorString(c color.RGBA) string {
	if c.A == 255 {
		return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
}

func parseHex(s string) (color.RGBA, error) {
	hex := s[1:]
	var alpha uint8 = 255
	switch len(hex) {
	case 4:
		a, err := strconv.ParseUint(strings.Repeat(hex[3:], 2), 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
		}
		alpha = uint8(a)
		hex = hex[:3]
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
		}
		alpha = uint8(a)
		hex = hex[:6]
	case 3, 6:
	default:
		return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("canvas: bad color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

func funcArgs(s string) []string {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil
	}
	inner := s[open+1 : len(s)-1]
	inner = strings.ReplaceAll(inner, "/", ",")
	var out []string
	for _, p := range strings.FieldsFunc(inner, func(r rune) bool { return r == ',' || r == ' ' }) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseAlpha(s string) (uint8, error) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return uint8(clampF(v/100, 0, 1)*255 + 0.5), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return uint8(clampF(v, 0, 1)*255 + 0.5), nil
}

func parseRGBFunc(s string) (color.RGBA, error) {
	args := funcArgs(s)
	if len(args) != 3 && len(args) != 4 {
		return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		a := args[i]
		pct := strings.HasSuffix(a, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
		}
		if pct {
			v = v * 255 / 100
		}
		ch[i] = uint8(clampF(math.Round(v), 0, 255))
	}
	out := color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}
	if len(args) == 4 {
		a, err := parseAlpha(args[3])
		if err != nil {
			return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
		}
		out.A = a
	}
	return out, nil
}

func parseHSLFunc(s string) (color.RGBA, error) {
	args := funcArgs(s)
	if len(args) != 3 && len(args) != 4 {
		return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
	}
	sat, err1 := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
	lum, err2 := strconv.ParseFloat(strings.TrimSuffix(args[2], "%"), 64)
	if err1 != nil || err2 != nil {
		return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, clampF(sat/100, 0, 1), clampF(lum/100, 0, 1)).Clamped().RGB255()
	out := color.RGBA{R: r, G: g, B: b, A: 255}
	if len(args) == 4 {
		a, err := parseAlpha(args[3])
		if err != nil {
			return color.RGBA{}, fmt.Errorf("canvas: bad color %q", s)
		}
		out.A = a
	}
	return out, nil
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
