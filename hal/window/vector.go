//go:build cgo

package window

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"framekit/canvas"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// VectorContext is a canvas.Context that tessellates paths with
// ebiten/vector onto an offscreen image sized to the canvas.
type VectorContext struct {
	canvas *canvas.Canvas
	img    *ebiten.Image

	path      vector.Path
	fill      color.RGBA
	stroke    color.RGBA
	lineWidth float32

	vs []ebiten.Vertex
	is []uint16
}

// NewVectorContext attaches a vector context to c.
func NewVectorContext(c *canvas.Canvas) *VectorContext {
	vc := &VectorContext{
		canvas:    c,
		fill:      color.RGBA{A: 255},
		stroke:    color.RGBA{A: 255},
		lineWidth: 1,
	}
	c.SetContext(vc)
	return vc
}

func (vc *VectorContext) Canvas() *canvas.Canvas { return vc.canvas }

// target returns the offscreen image, reallocating it when the canvas was
// resized.
func (vc *VectorContext) target() *ebiten.Image {
	w, h := vc.canvas.Width, vc.canvas.Height
	if vc.img == nil || vc.img.Bounds().Dx() != w || vc.img.Bounds().Dy() != h {
		if vc.img != nil {
			vc.img.Deallocate()
		}
		vc.img = ebiten.NewImage(w, h)
	}
	return vc.img
}

func (vc *VectorContext) present(screen *ebiten.Image) {
	screen.DrawImage(vc.target(), nil)
}

func (vc *VectorContext) BeginPath() { vc.path = vector.Path{} }
func (vc *VectorContext) ClosePath() { vc.path.Close() }

func (vc *VectorContext) Rect(x, y, w, h float64) {
	fx, fy, fw, fh := float32(x), float32(y), float32(w), float32(h)
	vc.path.MoveTo(fx, fy)
	vc.path.LineTo(fx+fw, fy)
	vc.path.LineTo(fx+fw, fy+fh)
	vc.path.LineTo(fx, fy+fh)
	vc.path.Close()
	vc.path.MoveTo(fx, fy)
}

func (vc *VectorContext) Arc(x, y, r, start, end float64, ccw bool) {
	dir := vector.Clockwise
	if ccw {
		dir = vector.CounterClockwise
	}
	vc.path.Arc(float32(x), float32(y), float32(r), float32(start), float32(end), dir)
}

func (vc *VectorContext) Fill() {
	vc.vs, vc.is = vc.path.AppendVerticesAndIndicesForFilling(vc.vs[:0], vc.is[:0])
	vc.draw(vc.fill, ebiten.NonZero)
}

func (vc *VectorContext) Stroke() {
	op := &vector.StrokeOptions{Width: vc.lineWidth, LineJoin: vector.LineJoinMiter, MiterLimit: 10}
	vc.vs, vc.is = vc.path.AppendVerticesAndIndicesForStroke(vc.vs[:0], vc.is[:0], op)
	vc.draw(vc.stroke, ebiten.FillAll)
}

func (vc *VectorContext) draw(c color.RGBA, rule ebiten.FillRule) {
	if len(vc.is) == 0 || c.A == 0 {
		return
	}
	r, g, b, a := c.RGBA()
	for i := range vc.vs {
		vc.vs[i].SrcX = 1
		vc.vs[i].SrcY = 1
		vc.vs[i].ColorR = float32(r) / 0xffff
		vc.vs[i].ColorG = float32(g) / 0xffff
		vc.vs[i].ColorB = float32(b) / 0xffff
		vc.vs[i].ColorA = float32(a) / 0xffff
	}
	op := &ebiten.DrawTrianglesOptions{
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
		FillRule:       rule,
		AntiAlias:      true,
	}
	vc.target().DrawTriangles(vc.vs, vc.is, whiteSubImage, op)
}

func (vc *VectorContext) ClearRect(x, y, w, h float64) {
	img := vc.target()
	r := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h))).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	img.SubImage(r).(*ebiten.Image).Fill(color.RGBA{A: 255})
}

func (vc *VectorContext) SetFillStyle(style string) {
	if c, err := canvas.ParseColor(style); err == nil {
		vc.fill = c
	}
}

func (vc *VectorContext) SetStrokeStyle(style string) {
	if c, err := canvas.ParseColor(style); err == nil {
		vc.stroke = c
	}
}

func (vc *VectorContext) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) {
		vc.lineWidth = float32(w)
	}
}

// FillText draws text with ebiten's debug font. The font is white only, so
// the fill style does not apply.
func (vc *VectorContext) FillText(text string, x, y float64) {
	ebitenutil.DebugPrintAt(vc.target(), text, int(math.Round(x)), int(math.Round(y))-debugAscent)
}

// debugAscent approximates the debug font's baseline offset.
const debugAscent = 12

var _ canvas.TextContext = (*VectorContext)(nil)
