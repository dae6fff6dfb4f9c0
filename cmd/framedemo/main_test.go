package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"framekit/app"
	"framekit/config"
	"framekit/frameloop"
	"framekit/internal/logx"
	"framekit/object"
)

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("framedemo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	o, err := parseFlags(fs, []string{"-headless", "-hz", "120", "-frames", "3", "-fps", "24", "-renderer", "vector"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !o.headless || o.hz != 120 || o.frames != 3 || o.fps != 24 || o.renderer != "vector" {
		t.Fatalf("options = %+v", o)
	}

	fs = flag.NewFlagSet("framedemo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := parseFlags(fs, []string{"-fps", "-1"}); err == nil {
		t.Fatal("negative -fps accepted")
	}
}

func TestBuiltInSceneLoads(t *testing.T) {
	s, m, err := loadScene(options{}, logx.Nop())
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	if m != nil {
		t.Fatal("built-in scene has a file manager")
	}
	drawable := 0
	for _, oc := range s.Objects {
		if _, ok := oc.Build(nil).(object.Drawer); ok {
			drawable++
		}
	}
	if drawable != 4 {
		t.Fatalf("drawable objects = %d, want 4", drawable)
	}
}

func TestLoadSceneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("fps: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, m, err := loadScene(options{scene: path}, logx.Nop())
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	if s.FPS != 12 || m == nil || m.Get() != s {
		t.Fatalf("scene = %+v manager = %v", s, m)
	}

	if _, _, err := loadScene(options{scene: filepath.Join(t.TempDir(), "none.yaml")}, logx.Nop()); err == nil {
		t.Fatal("missing scene file accepted")
	}
}

func TestRunHeadless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("fps: 30\ncanvas: {width: 16, height: 16}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := options{scene: path, headless: true, hz: 120, frames: 6}
	if err := run(ctx, o, logx.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestHealthy(t *testing.T) {
	if healthy(nil) {
		t.Fatal("nil loop reported healthy")
	}
	s, err := config.Parse("scene.yaml", []byte("fps: 30\n"))
	if err != nil {
		t.Fatal(err)
	}
	sys, err := app.New(s, app.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := sys.Start(); err != nil {
		t.Fatal(err)
	}
	if !healthy(sys.Loop()) {
		t.Fatalf("running loop state %v reported unhealthy", sys.Loop().State())
	}
	l := sys.Loop()
	sys.Stop()
	if l.State() != frameloop.Idle || healthy(l) {
		t.Fatal("stopped loop reported healthy")
	}
}

func TestNotifySystemdOutsideSystemd(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	done := make(chan struct{})
	go func() {
		notifySystemd(context.Background(), nil, logx.Nop())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notifySystemd blocked without a notify socket")
	}
}
