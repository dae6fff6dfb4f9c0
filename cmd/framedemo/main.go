// Command framedemo draws a scene file at a throttled frame rate, either in a
// window or headless, and reloads the scene when the file changes.
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"framekit/app"
	"framekit/config"
	"framekit/hal"
	"framekit/hal/window"
	"framekit/internal/buildinfo"
	"framekit/internal/logx"
)

//go:embed scene.yaml
var defaultScene []byte

type options struct {
	scene    string
	headless bool
	hz       int
	frames   uint64
	fps      float64
	renderer string
	logLevel string
	version  bool
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.scene, "scene", "", "Scene file (YAML or JSON). Empty uses the built-in scene.")
	fs.BoolVar(&o.headless, "headless", false, "Run without a window.")
	fs.IntVar(&o.hz, "hz", 60, "Refresh rate in headless mode.")
	fs.Uint64Var(&o.frames, "frames", 0, "Stop after N refreshes in headless mode (0 = run forever).")
	fs.Float64Var(&o.fps, "fps", 0, "Override the scene frame rate.")
	fs.StringVar(&o.renderer, "renderer", window.RendererRaster, "Window renderer: raster or vector.")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error.")
	fs.BoolVar(&o.version, "version", false, "Print the build version and exit.")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.fps < 0 {
		return o, fmt.Errorf("-fps must be >= 0, got %v", o.fps)
	}
	return o, nil
}

func main() {
	o, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if o.version {
		fmt.Println(buildinfo.String())
		return
	}

	log := logx.NewConsole(o.logLevel)
	log.Info("framedemo starting", buildinfo.Fields()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, o, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("framedemo failed", logx.Err(err))
		os.Exit(1)
	}
}

// loadScene returns the scene to start with and, for a scene file, the
// manager that watches it.
func loadScene(o options, log logx.Logger) (*config.Scene, *config.Manager, error) {
	if o.scene == "" {
		s, err := config.Parse("scene.yaml", defaultScene)
		return s, nil, err
	}
	m := config.NewManager(o.scene)
	m.SetLogger(log)
	s, err := m.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", o.scene, err)
	}
	return s, m, nil
}

func run(ctx context.Context, o options, log logx.Logger) error {
	scene, m, err := loadScene(o, log)
	if err != nil {
		return err
	}

	cfg := app.Config{FPS: o.fps, Log: log}
	if !o.headless {
		cfg.Screen = window.Screen{}
	}
	sys, err := app.New(scene, cfg)
	if err != nil {
		return err
	}
	if err := sys.Start(); err != nil {
		return err
	}
	defer sys.Stop()

	if m != nil {
		updates := m.Subscribe(1)
		defer m.Unsubscribe(updates)
		go func() {
			if err := m.Watch(ctx); err != nil {
				log.Warn("scene watch stopped", logx.Err(err))
			}
		}()
		go func() { _ = sys.Follow(ctx, updates) }()
	}

	if o.headless {
		go notifySystemd(ctx, sys, log)
		return hal.RunHeadless(ctx, sys.Kernel(), nil, hal.HeadlessConfig{Hz: o.hz, Frames: o.frames})
	}
	return window.Run(ctx, sys.Kernel(), sys.Canvas(), sys.Framebuffer(), window.Config{
		FullScreen: scene.Canvas.FullScreen,
		Renderer:   o.renderer,
		OnContext:  sys.SetContext,
		Size:       sys.Size,
	})
}
