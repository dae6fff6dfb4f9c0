package hal

import (
	"context"
	"errors"
	"image/color"
	"sync/atomic"
	"testing"
	"time"
)

func TestFramebufferClearAndSnapshot(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	fb.ClearRGB(255, 0, 0)

	img := fb.Snapshot(nil)
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("snapshot bounds = %v", img.Bounds())
	}
	got := img.RGBAAt(2, 1)
	want := color.RGBA{R: 255, A: 255}
	if got != want {
		t.Fatalf("pixel = %v, want %v", got, want)
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.ClearRGB(255, 255, 255)

	if err := fb.Resize(8, 2); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if fb.Width() != 8 || fb.Height() != 2 || fb.StrideBytes() != 16 {
		t.Fatalf("size = %dx%d stride %d", fb.Width(), fb.Height(), fb.StrideBytes())
	}
	for _, b := range fb.Buffer() {
		if b != 0 {
			t.Fatal("expected cleared buffer after resize")
		}
	}

	if err := fb.Resize(0, 10); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestDisplayerPixels(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	d := NewDisplayer(fb)

	w, h := d.Size()
	if w != 10 || h != 10 {
		t.Fatalf("Size() = %d,%d", w, h)
	}

	green := color.RGBA{G: 255, A: 255}
	d.SetPixel(3, 4, green)
	if got := d.Pixel(3, 4); got != Quantize(green) {
		t.Fatalf("Pixel = %v, want %v", got, Quantize(green))
	}

	// Out of bounds writes are ignored.
	d.SetPixel(-1, 0, green)
	d.SetPixel(10, 10, green)

	blue := color.RGBA{B: 255, A: 255}
	if err := d.FillRectangle(8, 8, 5, 5, blue); err != nil {
		t.Fatalf("FillRectangle: %v", err)
	}
	if got := d.Pixel(9, 9); got != Quantize(blue) {
		t.Fatalf("clipped fill pixel = %v", got)
	}
	if got := d.Pixel(7, 7); got != (color.RGBA{A: 255}) {
		t.Fatalf("pixel outside fill = %v", got)
	}

	if err := d.Display(); err != nil {
		t.Fatalf("Display: %v", err)
	}
	if fb.Presents() != 1 {
		t.Fatalf("Presents = %d, want 1", fb.Presents())
	}
}

func TestDisplayerBlendsTranslucent(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.ClearRGB(0, 0, 0)
	d := NewDisplayer(fb)

	d.SetPixel(0, 0, color.RGBA{R: 255, A: 128})
	got := d.Pixel(0, 0)
	if got.R < 120 || got.R > 136 || got.G != 0 || got.B != 0 {
		t.Fatalf("blended = %v", got)
	}

	d.SetPixel(1, 1, color.RGBA{R: 255})
	if got := d.Pixel(1, 1); got != (color.RGBA{A: 255}) {
		t.Fatalf("transparent write changed pixel: %v", got)
	}
}

func TestManualClock(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewManualClock(start)
	if !c.Now().Equal(start) {
		t.Fatalf("Now = %v", c.Now())
	}
	if got := c.Advance(250 * time.Millisecond); !got.Equal(start.Add(250 * time.Millisecond)) {
		t.Fatalf("Advance = %v", got)
	}
}

type countingDriver struct {
	steps  atomic.Int64
	frames atomic.Int64
}

func (d *countingDriver) Step(time.Time)  { d.steps.Add(1) }
func (d *countingDriver) Frame(time.Time) { d.frames.Add(1) }

func TestRunHeadlessFrameLimit(t *testing.T) {
	d := &countingDriver{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := RunHeadless(ctx, d, nil, HeadlessConfig{Hz: 200, Frames: 3})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if got := d.frames.Load(); got != 3 {
		t.Fatalf("frames = %d, want 3", got)
	}
	if d.steps.Load() < 3 {
		t.Fatalf("steps = %d, want >= 3", d.steps.Load())
	}
}

func TestRunHeadlessCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunHeadless(ctx, &countingDriver{}, nil, HeadlessConfig{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
