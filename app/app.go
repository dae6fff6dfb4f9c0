// Package app runs a scene: it owns the kernel, the framebuffer-backed canvas
// and the frame loop that redraws the scene's objects every cycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"framekit/canvas"
	"framekit/config"
	"framekit/frameloop"
	"framekit/hal"
	"framekit/internal/logx"
	"framekit/kernel"
	"framekit/object"
)

// Config holds the runtime overrides for a System.
type Config struct {
	// FPS overrides the scene's frame rate when > 0.
	FPS float64
	// Clock defaults to the system clock.
	Clock hal.Clock
	Log   logx.Logger
	// Screen sizes fullscreen canvases. Without one they keep their
	// configured size.
	Screen hal.Screen
}

// System is one running scene.
type System struct {
	log     logx.Logger
	drawLog logx.Logger
	clock   hal.Clock
	fps     float64
	screen  hal.Screen

	k     *kernel.Kernel
	fb    *hal.MemFramebuffer
	doc   *canvas.Document
	cv    *canvas.Canvas
	meter *frameloop.Meter
	sched *frameloop.Scheduler

	mu        sync.Mutex
	scene     *config.Scene
	objects   []object.Object
	hues      []hue
	epoch     time.Time
	handle    frameloop.Handle
	watchdog  kernel.TimerID
	restarts  uint64
	lastPanic *kernel.PanicInfo
}

// New builds the canvas and objects for scene. The frame loop is not running
// until Start.
func New(scene *config.Scene, cfg Config) (*System, error) {
	if scene == nil {
		return nil, errors.New("app: nil scene")
	}
	if cfg.Clock == nil {
		cfg.Clock = hal.SystemClock{}
	}
	s := &System{
		log:    cfg.Log.With(logx.String("component", "app")),
		clock:  cfg.Clock,
		fps:    cfg.FPS,
		screen: cfg.Screen,
		doc:    canvas.NewDocument(),
		meter:  frameloop.NewMeter(frameloop.DefaultMeterWindow),
	}
	s.drawLog = s.log.Throttle(time.Second, 1)
	s.k = kernel.New(cfg.Clock, kernel.WithLogger(cfg.Log), kernel.WithPanicHandler(s.onPanic))
	s.sched = frameloop.NewScheduler(s.k, cfg.Log, s.meter)

	s.fb = hal.NewFramebuffer(scene.Canvas.Width, scene.Canvas.Height)
	s.cv = canvas.New(scene.Canvas.ID, scene.Canvas.Width, scene.Canvas.Height)
	s.cv.OnResize = s.fb.Resize
	s.doc.Add(s.cv)
	canvas.NewRasterContext(s.cv, hal.NewDisplayer(s.fb))

	if err := s.layoutLocked(scene); err != nil {
		return nil, err
	}
	s.scene = scene
	s.buildLocked()
	return s, nil
}

// Kernel is the driver the host runners pump.
func (s *System) Kernel() *kernel.Kernel { return s.k }

func (s *System) Framebuffer() *hal.MemFramebuffer { return s.fb }
func (s *System) Canvas() *canvas.Canvas           { return s.cv }
func (s *System) Document() *canvas.Document       { return s.doc }
func (s *System) Meter() *frameloop.Meter          { return s.meter }

// Scene returns the scene currently drawn.
func (s *System) Scene() *config.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Objects returns a copy of the built object list.
func (s *System) Objects() []object.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]object.Object(nil), s.objects...)
}

// Loop returns the running frame loop, or nil.
func (s *System) Loop() *frameloop.Loop {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.Loop()
}

// Restarts counts watchdog restarts of the frame loop.
func (s *System) Restarts() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// LastPanic returns the most recent recovered callback panic, or nil.
func (s *System) LastPanic() *kernel.PanicInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPanic
}

// SetContext swaps the drawing context of the canvas and every shape.
func (s *System) SetContext(ctx canvas.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cv.SetContext(ctx)
	for _, o := range s.objects {
		if sh, ok := o.(*object.Shape); ok {
			sh.SetCtx(ctx)
		}
	}
}

// Start begins drawing. Starting a running system is a no-op.
func (s *System) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle.Valid() {
		return nil
	}
	return s.startLocked()
}

// Stop halts the frame loop and the watchdog.
func (s *System) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Apply replaces the running scene. The loop is restarted at the new rate if
// it was running.
func (s *System) Apply(scene *config.Scene) error {
	if scene == nil {
		return errors.New("app: nil scene")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	running := s.handle.Valid()
	s.stopLocked()
	if err := s.layoutLocked(scene); err != nil {
		if running {
			_ = s.startLocked()
		}
		return err
	}
	s.scene = scene
	s.buildLocked()
	s.log.Info("scene applied",
		logx.Float64("fps", s.rateLocked()),
		logx.Int("objects", len(s.objects)),
		logx.String("canvas", s.cv.ID),
	)
	if running {
		return s.startLocked()
	}
	return nil
}

// Follow queues every scene received on updates until ctx is done or the
// channel closes. Each scene is applied by the kernel on the next Step, so the
// canvas only changes on the goroutine that drives it. A scene that fails to
// apply is logged and skipped.
func (s *System) Follow(ctx context.Context, updates <-chan *config.Scene) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case scene, ok := <-updates:
			if !ok {
				return nil
			}
			s.k.SetTimeout(0, func() {
				if err := s.Apply(scene); err != nil {
					s.log.Error("scene rejected", logx.Err(err))
				}
			})
		}
	}
}

// Size returns the canvas size. It is safe to call from any goroutine.
func (s *System) Size() (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cv.Width, s.cv.Height
}

func (s *System) rateLocked() float64 {
	if s.fps > 0 {
		return s.fps
	}
	return s.scene.FPS
}

func (s *System) startLocked() error {
	h, err := s.sched.Start(s.rateLocked(), s.draw)
	if err != nil {
		return fmt.Errorf("app: start frame loop: %w", err)
	}
	s.handle = h
	s.armWatchdogLocked()
	return nil
}

func (s *System) stopLocked() {
	s.sched.Stop(s.handle)
	s.handle = frameloop.Handle{}
	if s.watchdog != 0 {
		s.k.ClearTimeout(s.watchdog)
		s.watchdog = 0
	}
}

// layoutLocked sizes and names the canvas for scene.
func (s *System) layoutLocked(scene *config.Scene) error {
	if s.cv.ID != scene.Canvas.ID {
		s.doc.Remove(s.cv.ID)
		s.cv.ID = scene.Canvas.ID
		s.doc.Add(s.cv)
	}
	if scene.Canvas.FullScreen && s.screen != nil {
		err := canvas.FullScreen(s.cv, s.screen)
		if err == nil {
			return nil
		}
		s.log.Warn("fullscreen unavailable, using configured size", logx.Err(err))
	}
	return canvas.SetCanvasSize(s.cv, scene.Canvas.Width, scene.Canvas.Height)
}

func (s *System) buildLocked() {
	ctx := s.cv.Context()
	s.objects = s.objects[:0]
	s.hues = s.hues[:0]
	for i, oc := range s.scene.Objects {
		o := oc.Build(ctx)
		s.objects = append(s.objects, o)
		if sh, ok := o.(*object.Shape); ok && oc.Data.Hue != nil {
			s.hues = append(s.hues, newHue(sh, *oc.Data.Hue))
		}
		if _, ok := o.(object.Drawer); !ok {
			s.log.Debug("object is not drawable",
				logx.Int("index", i),
				logx.String("type", oc.Type),
			)
		}
	}
	s.epoch = s.clock.Now()
}

// draw is the frame callback.
func (s *System) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cv := s.doc.GetCanvas(s.scene.Canvas.ID)
	if cv == nil {
		return
	}
	ctx := cv.Context()
	if ctx == nil {
		return
	}

	canvas.Background(s.scene.Background, ctx)
	elapsed := s.clock.Now().Sub(s.epoch).Seconds()
	for _, h := range s.hues {
		h.apply(elapsed)
	}
	for i, o := range s.objects {
		d, ok := o.(object.Drawer)
		if !ok {
			continue
		}
		if err := d.Update(); err != nil {
			s.drawLog.Warn("draw failed", logx.Int("index", i), logx.Err(err))
		}
	}
	if s.scene.Overlay {
		s.drawOverlay(ctx)
	}
	_ = s.fb.Present()
}

func (s *System) drawOverlay(ctx canvas.Context) {
	tc, ok := ctx.(canvas.TextContext)
	if !ok {
		return
	}
	tc.SetFillStyle("lime")
	tc.FillText(fmt.Sprintf("%.1f fps", s.meter.FPS()), 2, 10)
}

func (s *System) armWatchdogLocked() {
	d := s.scene.WatchdogInterval()
	if d <= 0 {
		return
	}
	s.watchdog = s.k.SetTimeout(d, s.checkLoop)
}

// checkLoop restarts a stalled or failed frame loop.
func (s *System) checkLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchdog = 0

	l := s.handle.Loop()
	if l == nil {
		return
	}
	switch st := l.State(); st {
	case frameloop.Stalled, frameloop.Failed:
		s.restarts++
		s.log.Warn("restarting frame loop",
			logx.String("state", st.String()),
			logx.Uint64("restarts", s.restarts),
		)
		s.sched.Stop(s.handle)
		s.handle = frameloop.Handle{}
		if err := s.startLocked(); err != nil {
			s.log.Error("frame loop restart failed", logx.Err(err))
		}
	default:
		s.armWatchdogLocked()
	}
}

// hue cycles a shape's fill around the HSV wheel.
type hue struct {
	shape *object.Shape
	rate  float64
	base  float64
	sat   float64
	val   float64
}

func newHue(sh *object.Shape, rate float64) hue {
	h := hue{shape: sh, rate: rate, sat: 1, val: 1}
	fill, ok := sh.Fill.Get()
	if !ok {
		return h
	}
	rgba, err := canvas.ParseColor(fill)
	if err != nil {
		return h
	}
	c, _ := colorful.MakeColor(rgba)
	base, sat, val := c.Hsv()
	if sat > 0 && val > 0 {
		h.base, h.sat, h.val = base, sat, val
	}
	return h
}

func (h hue) apply(elapsed float64) {
	deg := math.Mod(h.base+h.rate*elapsed, 360)
	if deg < 0 {
		deg += 360
	}
	h.shape.Fill = object.Some(colorful.Hsv(deg, h.sat, h.val).Hex())
}
