//go:build cgo

// Package window drives a kernel from an ebiten window: ticks pump timers and
// every vsync-aligned Draw is one refresh.
package window

import (
	"context"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"framekit/canvas"
	"framekit/hal"
	"framekit/internal/buildinfo"
)

// Run opens a window showing c and blocks until it closes or ctx is done.
// In raster mode the window shows fb, which must back c; in vector mode a
// VectorContext is attached to c and handed to cfg.OnContext first.
func Run(ctx context.Context, d hal.Driver, c *canvas.Canvas, fb *hal.MemFramebuffer, cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.validate(c, fb); err != nil {
		return err
	}

	g := &game{ctx: ctx, d: d, fb: fb, clock: cfg.Clock}
	g.size = func() (int, int) { return cfg.canvasSize(c) }
	if cfg.Renderer == RendererVector {
		g.vc = NewVectorContext(c)
		if cfg.OnContext != nil {
			cfg.OnContext(g.vc)
		}
	}

	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	w, h := g.size()
	ebiten.SetWindowSize(w*cfg.Scale, h*cfg.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.FullScreen)
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetVsyncEnabled(true)
	return ebiten.RunGame(g)
}

type game struct {
	ctx   context.Context
	d     hal.Driver
	fb    *hal.MemFramebuffer
	vc    *VectorContext
	clock hal.Clock
	size  func() (int, int)

	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.d.Step(g.clock.Now())
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.d.Frame(g.clock.Now())

	if g.vc != nil {
		g.vc.present(screen)
		return
	}

	fb := g.fb
	w, h := fb.Width(), fb.Height()
	if g.fbImg == nil || g.fbImg.Bounds().Dx() != w || g.fbImg.Bounds().Dy() != h {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
		g.img = nil
	}
	g.img = fb.Snapshot(g.img)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.size()
}

// Screen reports the monitor size used for fullscreen canvases.
type Screen struct{}

func (Screen) ScreenSize() (int, int) { return ebiten.ScreenSizeInFullscreen() }

var _ hal.Screen = Screen{}
