package window

import (
	"strings"
	"testing"
	"time"

	"framekit/canvas"
	"framekit/hal"
)

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	if c.Title != "framekit" || c.Scale != 2 || c.TPS != 240 || c.Renderer != RendererRaster {
		t.Fatalf("defaults = %+v", c)
	}
	if _, ok := c.Clock.(hal.SystemClock); !ok {
		t.Fatalf("clock = %T, want hal.SystemClock", c.Clock)
	}

	clock := hal.NewManualClock(time.Unix(0, 0))
	set := Config{Title: "demo", Scale: 3, TPS: 60, Renderer: RendererVector, Clock: clock}.withDefaults()
	if set.Title != "demo" || set.Scale != 3 || set.TPS != 60 || set.Renderer != RendererVector || set.Clock != clock {
		t.Fatalf("explicit values overwritten: %+v", set)
	}

	neg := Config{Scale: -1, TPS: -5}.withDefaults()
	if neg.Scale != 2 || neg.TPS != 240 {
		t.Fatalf("negative scale/tps = %d/%d", neg.Scale, neg.TPS)
	}
}

func TestConfigValidate(t *testing.T) {
	cv := canvas.New("main", 8, 8)
	fb := hal.NewFramebuffer(8, 8)
	tests := []struct {
		name     string
		renderer string
		cv       *canvas.Canvas
		fb       *hal.MemFramebuffer
		err      string
	}{
		{name: "raster", renderer: RendererRaster, cv: cv, fb: fb},
		{name: "default renderer", cv: cv, fb: fb},
		{name: "vector without framebuffer", renderer: RendererVector, cv: cv},
		{name: "raster without framebuffer", renderer: RendererRaster, cv: cv, err: "needs a framebuffer"},
		{name: "nil canvas", renderer: RendererVector, fb: fb, err: "nil canvas"},
		{name: "unknown renderer", renderer: "opengl", cv: cv, fb: fb, err: `unknown renderer "opengl"`},
	}
	for _, tt := range tests {
		err := Config{Renderer: tt.renderer}.withDefaults().validate(tt.cv, tt.fb)
		switch {
		case tt.err == "" && err != nil:
			t.Fatalf("%s: validate = %v", tt.name, err)
		case tt.err != "" && (err == nil || !strings.Contains(err.Error(), tt.err)):
			t.Fatalf("%s: validate = %v, want %q", tt.name, err, tt.err)
		}
	}
}

func TestConfigCanvasSize(t *testing.T) {
	cv := canvas.New("main", 12, 9)
	if w, h := (Config{}).canvasSize(cv); w != 12 || h != 9 {
		t.Fatalf("size = %dx%d, want 12x9", w, h)
	}
	c := Config{Size: func() (int, int) { return 30, 20 }}
	if w, h := c.canvasSize(cv); w != 30 || h != 20 {
		t.Fatalf("size = %dx%d, want the Size callback's 30x20", w, h)
	}
}
