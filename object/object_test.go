package object

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"framekit/canvas"
)

type recorder struct {
	c     *canvas.Canvas
	calls []string
}

func (r *recorder) Canvas() *canvas.Canvas { return r.c }
func (r *recorder) add(f string, a ...any) { r.calls = append(r.calls, fmt.Sprintf(f, a...)) }
func (r *recorder) BeginPath()             { r.add("beginPath") }
func (r *recorder) ClosePath()             { r.add("closePath") }
func (r *recorder) Rect(x, y, w, h float64) {
	r.add("rect %g %g %g %g", x, y, w, h)
}
func (r *recorder) Arc(x, y, rad, s, e float64, ccw bool) {
	r.add("arc %g %g %g %.4f %.4f %v", x, y, rad, s, e, ccw)
}
func (r *recorder) Fill()                       { r.add("fill") }
func (r *recorder) Stroke()                     { r.add("stroke") }
func (r *recorder) ClearRect(x, y, w, h float64) { r.add("clearRect") }
func (r *recorder) SetFillStyle(s string)       { r.add("fillStyle %s", s) }
func (r *recorder) SetStrokeStyle(s string)     { r.add("strokeStyle %s", s) }
func (r *recorder) SetLineWidth(w float64)      { r.add("lineWidth %g", w) }

func equal(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCapabilitiesFollowKind(t *testing.T) {
	m := New(KindMath, Data{})
	if _, ok := m.(Mather); !ok {
		t.Fatal("math object lacks Pow/Square/Cube")
	}
	if _, ok := m.(Converter); ok {
		t.Fatal("math object exposes Convert")
	}

	c := New(KindComp, Data{})
	if _, ok := c.(Converter); !ok {
		t.Fatal("comp object lacks Convert")
	}
	if _, ok := c.(Mather); ok {
		t.Fatal("comp object exposes math helpers")
	}

	s := New(KindShape, Data{X: Some(1.0), Y: Some(2.0)})
	if _, ok := s.(Mather); ok {
		t.Fatal("shape exposes math helpers")
	}
	if _, ok := s.(Converter); ok {
		t.Fatal("shape exposes Convert")
	}
	if _, ok := s.(Drawer); !ok {
		t.Fatal("shape is not a Drawer")
	}

	p := New("sprite", Data{})
	if _, ok := p.(Mather); ok {
		t.Fatal("plain object exposes math helpers")
	}
	if _, ok := p.(Converter); ok {
		t.Fatal("plain object exposes Convert")
	}
	if _, ok := p.(Drawer); ok {
		t.Fatal("plain object is a Drawer")
	}
	if p.Kind() != "sprite" {
		t.Fatalf("Kind = %q", p.Kind())
	}
}

func TestShapeUnsetFieldsAreNull(t *testing.T) {
	s := New(KindShape, Data{X: Some(1.0), Y: Some(2.0)}).(*Shape)

	if x, ok := s.X.Get(); !ok || x != 1 {
		t.Fatalf("X = %v, %v", x, ok)
	}
	if y, ok := s.Y.Get(); !ok || y != 2 {
		t.Fatalf("Y = %v, %v", y, ok)
	}
	for name, f := range map[string]Opt[float64]{
		"w": s.W, "h": s.H, "r": s.R, "thickness": s.Thickness,
		"startAngle": s.StartAngle, "endAngle": s.EndAngle,
	} {
		if f != Null[float64]() {
			t.Fatalf("%s = %+v, want null", name, f)
		}
	}
	if !s.Fill.IsNull() || !s.Stroke.IsNull() {
		t.Fatal("styles not null")
	}
	if s.Ctx() != nil {
		t.Fatal("ctx not null")
	}
}

func TestZeroIsNotNull(t *testing.T) {
	s := New(KindShape, Data{X: Some(0.0)}).(*Shape)
	if s.X.IsNull() {
		t.Fatal("explicit zero read back as null")
	}
}

func TestChange(t *testing.T) {
	o := New(KindMath, Data{})
	o = Change(o, Data{}, KindComp)
	if _, ok := o.(Converter); !ok {
		t.Fatal("Change to comp did not add Convert")
	}
	if _, ok := o.(Mather); ok {
		t.Fatal("Change to comp kept math helpers")
	}

	o = Change(o, Data{W: Some(3.0)}, "")
	if o.Kind() != KindComp {
		t.Fatalf("empty kind changed kind to %q", o.Kind())
	}

	p := Change(New("widget", Data{}), Data{W: Some(3.0)}, "").(Plain)
	if w, _ := p.Data().W.Get(); w != 3 || p.Kind() != "widget" {
		t.Fatalf("plain not rebuilt: kind %q w %v", p.Kind(), p.Data().W)
	}

	o = Change(o, Data{W: Some(3.0), H: Some(4.0)}, KindShape)
	s, ok := o.(*Shape)
	if !ok {
		t.Fatalf("Change to shape = %T", o)
	}
	if s.W.Or(0) != 3 || s.H.Or(0) != 4 {
		t.Fatalf("shape fields = %v %v", s.W, s.H)
	}
}

func TestHelpersCarryNoData(t *testing.T) {
	full := Data{X: Some(1.0), W: Some(2.0), Fill: Some("red"), Draw: func(*Shape) {}}
	type configured interface{ Data() Data }
	for _, kind := range []Kind{KindMath, KindComp} {
		o := New(kind, full)
		if _, ok := o.(configured); ok {
			t.Fatalf("%s object exposes shape data", kind)
		}
		if o.Kind() != kind {
			t.Fatalf("kind = %q, want %q", o.Kind(), kind)
		}
	}
	if _, ok := New(KindShape, full).(configured); !ok {
		t.Fatal("shape does not expose its data")
	}
}

func TestMath(t *testing.T) {
	m := New(KindMath, Data{}).(Mather)
	if m.Pow(2, 10) != 1024 {
		t.Fatalf("Pow = %v", m.Pow(2, 10))
	}
	if m.Square(-3) != 9 {
		t.Fatalf("Square = %v", m.Square(-3))
	}
	if m.Cube(-2) != -8 {
		t.Fatalf("Cube = %v", m.Cube(-2))
	}
}

func TestConvert(t *testing.T) {
	c := New(KindComp, Data{}).(Converter)

	if _, err := c.Convert("binary", "hexa-decimal", "1010"); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("err = %v, want ErrNotImplemented", err)
	}
	if _, err := c.Convert("decimal", "binary", "10"); !errors.Is(err, ErrUnknownBase) {
		t.Fatalf("err = %v, want ErrUnknownBase", err)
	}
	if _, err := c.Convert("octal", "base64", "7"); !errors.Is(err, ErrUnknownBase) {
		t.Fatalf("err = %v, want ErrUnknownBase", err)
	}

	for base, want := range map[string]int{"binary": 2, "octal": 8, "hexa-decimal": 16} {
		if got, err := Radix(base); err != nil || got != want {
			t.Fatalf("Radix(%q) = %d, %v", base, got, err)
		}
	}
}

func TestShapeUpdate(t *testing.T) {
	rec := &recorder{c: canvas.New("c", 100, 100)}
	rect, _ := Hook("rect")
	s := New(KindShape, Data{
		X: Some(1.0), Y: Some(2.0), W: Some(3.0), H: Some(4.0),
		Fill:      Some("red"),
		Stroke:    Some("blue"),
		Thickness: Some(2.0),
		Ctx:       rec,
		Draw:      rect,
	}).(*Shape)

	if err := s.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	equal(t, rec.calls, []string{
		"beginPath",
		"fillStyle red",
		"strokeStyle blue",
		"lineWidth 2",
		"rect 1 2 3 4",
		"fill",
		"stroke",
		"closePath",
	})
}

func TestShapeUpdateSkipsUnsetStyles(t *testing.T) {
	rec := &recorder{c: canvas.New("c", 100, 100)}
	circle, _ := Hook("circle")
	s := New(KindShape, Data{X: Some(5.0), Y: Some(6.0), R: Some(7.0), Stroke: Some("white"), Ctx: rec, Draw: circle}).(*Shape)

	if err := s.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	equal(t, rec.calls, []string{
		"beginPath",
		"strokeStyle white",
		fmt.Sprintf("arc 5 6 7 0.0000 %.4f false", 2*math.Pi),
		"stroke",
		"closePath",
	})
}

func TestShapeWithoutContext(t *testing.T) {
	s := New(KindShape, Data{}).(*Shape)
	if err := s.Update(); !errors.Is(err, ErrNoContext) {
		t.Fatalf("err = %v, want ErrNoContext", err)
	}
	// Drawing helpers without a context are no-ops.
	s.Rect(0, 0, 1, 1)
	s.Arc(0, 0, 1, 0, 1, false)
}

func TestSquareDrawsEqualSides(t *testing.T) {
	rec := &recorder{c: canvas.New("c", 10, 10)}
	s := New(KindShape, Data{Ctx: rec}).(*Shape)
	s.Square(1, 2, 5)
	equal(t, rec.calls, []string{"rect 1 2 5 5"})

	rec.calls = nil
	sq, _ := Hook("square")
	s = New(KindShape, Data{X: Some(0.0), Y: Some(0.0), W: Some(4.0), Ctx: rec, Draw: sq}).(*Shape)
	sq(s)
	equal(t, rec.calls, []string{"rect 0 0 4 4"})

	if _, ok := Hook("hexagon"); ok {
		t.Fatal("unknown hook resolved")
	}
}

func TestOpt(t *testing.T) {
	var o Opt[int]
	if !o.IsNull() || o.Or(7) != 7 {
		t.Fatal("zero Opt is not null")
	}
	v := 3
	if got := FromPtr(&v); got.Or(0) != 3 {
		t.Fatalf("FromPtr = %v", got)
	}
	if !FromPtr[int](nil).IsNull() {
		t.Fatal("FromPtr(nil) not null")
	}
}
