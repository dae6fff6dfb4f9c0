package canvas

import (
	"image/color"
	"math"
	"sort"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

type point struct{ x, y float64 }

type subpath struct {
	pts    []point
	closed bool
}

type rectFiller interface {
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// RasterContext is a software Context that rasterizes paths onto a
// drivers.Displayer. Fills use the nonzero winding rule; strokes are drawn as
// one quad per segment. Display is left to the caller.
type RasterContext struct {
	canvas *Canvas
	d      drivers.Displayer
	font   tinyfont.Fonter

	fill      color.RGBA
	stroke    color.RGBA
	lineWidth float64

	paths []subpath
}

// NewRasterContext attaches a raster context for d to c. A nil canvas gets one
// sized to the displayer.
func NewRasterContext(c *Canvas, d drivers.Displayer) *RasterContext {
	if c == nil {
		w, h := d.Size()
		c = New("", int(w), int(h))
	}
	rc := &RasterContext{
		canvas:    c,
		d:         d,
		font:      &proggy.TinySZ8pt7b,
		fill:      color.RGBA{A: 255},
		stroke:    color.RGBA{A: 255},
		lineWidth: 1,
	}
	c.SetContext(rc)
	return rc
}

func (rc *RasterContext) Canvas() *Canvas { return rc.canvas }

// Displayer returns the sink the context draws on.
func (rc *RasterContext) Displayer() drivers.Displayer { return rc.d }

// SetFont replaces the FillText font.
func (rc *RasterContext) SetFont(f tinyfont.Fonter) {
	if f != nil {
		rc.font = f
	}
}

func (rc *RasterContext) SetFillStyle(style string) {
	if c, err := ParseColor(style); err == nil {
		rc.fill = c
	}
}

func (rc *RasterContext) SetStrokeStyle(style string) {
	if c, err := ParseColor(style); err == nil {
		rc.stroke = c
	}
}

// SetLineWidth ignores zero, negative and non-finite widths.
func (rc *RasterContext) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) {
		rc.lineWidth = w
	}
}

func (rc *RasterContext) FillStyle() color.RGBA { return rc.fill }
func (rc *RasterContext) LineWidth() float64    { return rc.lineWidth }

func (rc *RasterContext) BeginPath() { rc.paths = rc.paths[:0] }

// ClosePath closes the current subpath and starts a new one at its first point.
func (rc *RasterContext) ClosePath() {
	if len(rc.paths) == 0 {
		return
	}
	cur := &rc.paths[len(rc.paths)-1]
	if len(cur.pts) == 0 || cur.closed {
		return
	}
	cur.closed = true
	rc.paths = append(rc.paths, subpath{pts: []point{cur.pts[0]}})
}

func (rc *RasterContext) MoveTo(x, y float64) {
	rc.paths = append(rc.paths, subpath{pts: []point{{x, y}}})
}

func (rc *RasterContext) LineTo(x, y float64) {
	if len(rc.paths) == 0 {
		rc.MoveTo(x, y)
		return
	}
	cur := &rc.paths[len(rc.paths)-1]
	cur.pts = append(cur.pts, point{x, y})
}

func (rc *RasterContext) Rect(x, y, w, h float64) {
	rc.paths = append(rc.paths,
		subpath{pts: []point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}, closed: true},
		subpath{pts: []point{{x, y}}},
	)
}

// Arc appends an arc to the current subpath, connected by a straight line
// from the current point.
func (rc *RasterContext) Arc(x, y, r, start, end float64, ccw bool) {
	if r < 0 || math.IsNaN(r) {
		return
	}
	sweep := arcSweep(start, end, ccw)
	segs := int(math.Ceil(math.Abs(sweep) * math.Max(r, 1) / 2))
	if segs < 8 {
		segs = 8
	}
	if segs > 720 {
		segs = 720
	}
	for i := 0; i <= segs; i++ {
		a := start + sweep*float64(i)/float64(segs)
		rc.LineTo(x+r*math.Cos(a), y+r*math.Sin(a))
	}
}

// arcSweep returns the signed angle covered from start to end, clamped to one
// full turn, matching the canvas arc rules.
func arcSweep(start, end float64, ccw bool) float64 {
	const tau = 2 * math.Pi
	if !ccw {
		if end-start >= tau {
			return tau
		}
		s := math.Mod(end-start, tau)
		if s < 0 {
			s += tau
		}
		return s
	}
	if start-end >= tau {
		return -tau
	}
	s := math.Mod(start-end, tau)
	if s < 0 {
		s += tau
	}
	return -s
}

func (rc *RasterContext) Fill() {
	var polys [][]point
	for _, sp := range rc.paths {
		if len(sp.pts) >= 3 {
			polys = append(polys, sp.pts)
		}
	}
	rc.fillPolygons(polys, rc.fill)
}

func (rc *RasterContext) Stroke() {
	half := rc.lineWidth / 2
	for _, sp := range rc.paths {
		n := len(sp.pts)
		if n < 2 {
			continue
		}
		last := n - 1
		if sp.closed {
			last = n
		}
		for i := 0; i < last; i++ {
			a, b := sp.pts[i], sp.pts[(i+1)%n]
			dx, dy := b.x-a.x, b.y-a.y
			l := math.Hypot(dx, dy)
			if l == 0 {
				continue
			}
			nx, ny := -dy/l*half, dx/l*half
			// Extend each segment by half a width so joints stay closed.
			ex, ey := dx/l*half, dy/l*half
			quad := []point{
				{a.x - ex + nx, a.y - ey + ny},
				{b.x + ex + nx, b.y + ey + ny},
				{b.x + ex - nx, b.y + ey - ny},
				{a.x - ex - nx, a.y - ey - ny},
			}
			rc.fillPolygons([][]point{quad}, rc.stroke)
		}
	}
}

// ClearRect paints the rectangle opaque black, the display's idea of
// transparent.
func (rc *RasterContext) ClearRect(x, y, w, h float64) {
	x0, y0, x1, y1 := rc.clip(x, y, x+w, y+h)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	black := color.RGBA{A: 255}
	if f, ok := rc.d.(rectFiller); ok {
		_ = f.FillRectangle(int16(x0), int16(y0), int16(x1-x0), int16(y1-y0), black)
		return
	}
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			rc.d.SetPixel(int16(px), int16(py), black)
		}
	}
}

// FillText draws text with its baseline at y in the fill color.
func (rc *RasterContext) FillText(text string, x, y float64) {
	if text == "" || rc.font == nil {
		return
	}
	tinyfont.WriteLine(rc.d, rc.font, int16(math.Round(x)), int16(math.Round(y)), text, rc.fill)
}

// MeasureText returns the pixel width of text in the current font.
func (rc *RasterContext) MeasureText(text string) int {
	if rc.font == nil {
		return 0
	}
	_, w := tinyfont.LineWidth(rc.font, text)
	return int(w)
}

func (rc *RasterContext) bounds() (int, int) {
	w, h := rc.d.Size()
	cw, ch := int(w), int(h)
	if rc.canvas.Width > 0 && rc.canvas.Width < cw {
		cw = rc.canvas.Width
	}
	if rc.canvas.Height > 0 && rc.canvas.Height < ch {
		ch = rc.canvas.Height
	}
	return cw, ch
}

func (rc *RasterContext) clip(fx0, fy0, fx1, fy1 float64) (x0, y0, x1, y1 int) {
	w, h := rc.bounds()
	if fx1 < fx0 {
		fx0, fx1 = fx1, fx0
	}
	if fy1 < fy0 {
		fy0, fy1 = fy1, fy0
	}
	x0 = clampI(int(math.Round(fx0)), 0, w)
	y0 = clampI(int(math.Round(fy0)), 0, h)
	x1 = clampI(int(math.Round(fx1)), 0, w)
	y1 = clampI(int(math.Round(fy1)), 0, h)
	return
}

type crossing struct {
	x       float64
	winding int
}

// fillPolygons scan-converts polys with the nonzero rule, sampling pixel
// centers.
func (rc *RasterContext) fillPolygons(polys [][]point, c color.RGBA) {
	if len(polys) == 0 || c.A == 0 {
		return
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range polys {
		for _, pt := range p {
			minY = math.Min(minY, pt.y)
			maxY = math.Max(maxY, pt.y)
		}
	}
	w, h := rc.bounds()
	y0 := clampI(int(math.Floor(minY)), 0, h)
	y1 := clampI(int(math.Ceil(maxY)), 0, h)

	var xs []crossing
	for py := y0; py < y1; py++ {
		sy := float64(py) + 0.5
		xs = xs[:0]
		for _, p := range polys {
			n := len(p)
			for i := 0; i < n; i++ {
				a, b := p[i], p[(i+1)%n]
				if a.y == b.y {
					continue
				}
				dir := 1
				if a.y > b.y {
					a, b = b, a
					dir = -1
				}
				if sy < a.y || sy >= b.y {
					continue
				}
				x := a.x + (sy-a.y)*(b.x-a.x)/(b.y-a.y)
				xs = append(xs, crossing{x: x, winding: dir})
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Slice(xs, func(i, j int) bool { return xs[i].x < xs[j].x })

		wind := 0
		for i := 0; i < len(xs)-1; i++ {
			wind += xs[i].winding
			if wind == 0 {
				continue
			}
			// Pixels whose centers fall in [xs[i].x, xs[i+1].x).
			px0 := clampI(int(math.Ceil(xs[i].x-0.5)), 0, w)
			px1 := clampI(int(math.Ceil(xs[i+1].x-0.5)), 0, w)
			rc.span(px0, px1, py, c)
		}
	}
}

func (rc *RasterContext) span(x0, x1, y int, c color.RGBA) {
	if x0 >= x1 {
		return
	}
	if f, ok := rc.d.(rectFiller); ok && c.A == 255 {
		_ = f.FillRectangle(int16(x0), int16(y), int16(x1-x0), 1, c)
		return
	}
	for x := x0; x < x1; x++ {
		rc.d.SetPixel(int16(x), int16(y), c)
	}
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ TextContext = (*RasterContext)(nil)
