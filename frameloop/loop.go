// Package frameloop throttles a callback to roughly fps invocations per
// second by chaining two host primitives: a coarse deferred check (timer)
// followed by a refresh-aligned frame callback.
//
// Each cycle arms a timer for 1000/fps ms. When it fires the loop computes
// tick = floor(fps * nowMillis / 1000). A tick equal to the one recorded by the
// current arm skips the cycle and nothing is rescheduled: the loop stalls.
// Otherwise a frame callback is requested; it invokes the user callback and
// arms the next cycle.
package frameloop

import (
	"errors"
	"math"
	"sync"
	"time"

	"framekit/internal/logx"
	"framekit/kernel"
)

var (
	ErrInvalidFPS  = errors.New("frameloop: fps must be a positive finite number")
	ErrNilCallback = errors.New("frameloop: nil callback")
	ErrNilHost     = errors.New("frameloop: nil host")
)

// Host is the event queue the loop schedules on. *kernel.Kernel implements it.
type Host interface {
	Now() time.Time
	SetTimeout(d time.Duration, fn func()) kernel.TimerID
	ClearTimeout(id kernel.TimerID)
	RequestFrame(fn func()) kernel.FrameID
	CancelFrame(id kernel.FrameID)
}

// State is the loop's position in its scheduling cycle.
type State uint8

const (
	Idle State = iota
	WaitingForTick
	WaitingForRefresh
	// Stalled means a deferred check saw no tick advance and nothing was
	// rescheduled. Only Stop leaves it.
	Stalled
	// Failed means the callback panicked; the loop was not re-armed.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WaitingForTick:
		return "waiting-for-tick"
	case WaitingForRefresh:
		return "waiting-for-refresh"
	case Stalled:
		return "stalled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loop is one running frame loop.
type Loop struct {
	host   Host
	fps    float64
	period time.Duration
	cb     func()
	log    logx.Logger
	meter  *Meter

	mu       sync.Mutex
	state    State
	gen      uint64
	timer    kernel.TimerID
	frame    kernel.FrameID
	prevTick int64
	lastTick int64
	frames   uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop logger.
func WithLogger(log logx.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// WithMeter records every callback invocation in m.
func WithMeter(m *Meter) Option {
	return func(l *Loop) { l.meter = m }
}

// Start validates its arguments and arms the first deferred check.
func Start(host Host, fps float64, callback func(), opts ...Option) (*Loop, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	if !(fps > 0) || math.IsInf(fps, 1) {
		return nil, ErrInvalidFPS
	}
	if callback == nil {
		return nil, ErrNilCallback
	}

	l := &Loop{
		host:   host,
		fps:    fps,
		period: Period(fps),
		cb:     callback,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.log = l.log.With(logx.String("component", "frameloop"), logx.Float64("fps", fps))

	l.mu.Lock()
	l.armLocked()
	l.mu.Unlock()
	return l, nil
}

// Period returns the deferred-check delay for fps: 1000/fps milliseconds.
func Period(fps float64) time.Duration {
	return time.Duration(float64(time.Second) / fps)
}

// Tick returns floor(fps * nowMillis / 1000).
func Tick(fps float64, now time.Time) int64 {
	return int64(math.Floor(fps * float64(now.UnixMilli()) / 1000))
}

// armLocked schedules the next deferred check. prevTick restarts from zero on
// every arm, so only a computed tick of exactly zero stalls the loop.
func (l *Loop) armLocked() {
	gen := l.gen
	l.prevTick = 0
	l.state = WaitingForTick
	l.timer = l.host.SetTimeout(l.period, func() { l.check(gen) })
}

func (l *Loop) check(gen uint64) {
	l.mu.Lock()
	if l.gen != gen || l.state != WaitingForTick {
		l.mu.Unlock()
		return
	}
	l.timer = 0

	tick := Tick(l.fps, l.host.Now())
	if tick == l.prevTick {
		l.state = Stalled
		l.mu.Unlock()
		// Kept as observed behavior; callers decide whether to restart.
		l.log.Warn("frame loop stalled: tick did not advance", logx.Int64("tick", tick))
		return
	}
	l.prevTick = tick
	l.lastTick = tick
	l.state = WaitingForRefresh
	l.frame = l.host.RequestFrame(func() { l.refresh(gen) })
	l.mu.Unlock()
}

func (l *Loop) refresh(gen uint64) {
	l.mu.Lock()
	if l.gen != gen || l.state != WaitingForRefresh {
		// Stopped after the frame was requested.
		l.mu.Unlock()
		return
	}
	l.frame = 0
	cb := l.cb
	l.mu.Unlock()

	completed := false
	defer func() {
		if completed {
			return
		}
		l.mu.Lock()
		if l.gen == gen {
			l.state = Failed
		}
		l.mu.Unlock()
		l.log.Error("frame callback panicked; loop halted")
	}()
	cb()
	completed = true

	if l.meter != nil {
		l.meter.Mark(l.host.Now())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames++
	if l.gen == gen && l.state == WaitingForRefresh {
		l.armLocked()
	}
}

// Stop cancels whatever the loop has pending and returns it to Idle. A frame
// callback already requested still fires on the host but no longer invokes
// the user callback or re-arms. Stop is idempotent and never blocks on the
// callback.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Idle {
		return
	}
	l.gen++
	if l.timer != 0 {
		l.host.ClearTimeout(l.timer)
		l.timer = 0
	}
	if l.frame != 0 {
		l.host.CancelFrame(l.frame)
		l.frame = 0
	}
	l.state = Idle
}

// State returns the loop's current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Frames returns how many times the callback completed.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// LastTick returns the tick recorded by the most recent successful check.
func (l *Loop) LastTick() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastTick
}

// FPS returns the target rate.
func (l *Loop) FPS() float64 { return l.fps }
