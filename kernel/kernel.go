// Package kernel is the host's single cooperative event queue.
//
// It owns two scheduling primitives: coarse timers (SetTimeout) and
// refresh-aligned frame callbacks (RequestFrame). A host driver pumps it by
// calling Step for timers and Frame once per display refresh. All callbacks run
// serially on the driver goroutine and never under the kernel lock, so a
// callback may schedule or cancel work freely.
package kernel

import (
	"container/heap"
	"sync"
	"time"

	"framekit/hal"
	"framekit/internal/logx"
)

// TimerID identifies a pending timer. The zero value is never issued.
type TimerID uint64

// FrameID identifies a pending frame request. The zero value is never issued.
type FrameID uint64

type timer struct {
	id  TimerID
	due time.Time
	seq uint64
	fn  func()
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(*timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

type frameReq struct {
	id FrameID
	fn func()
}

// Kernel is a cooperative timer + frame scheduler.
type Kernel struct {
	clock hal.Clock
	log   logx.Logger

	mu      sync.Mutex
	timers  timerHeap
	live    map[TimerID]*timer
	seq     uint64
	nextTID TimerID

	frames    []frameReq
	cancelled map[FrameID]struct{}
	nextFID   FrameID
	frameNo   uint64
	lastFrame time.Time

	panicHandler PanicHandler
	panics       uint64
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the kernel logger.
func WithLogger(log logx.Logger) Option {
	return func(k *Kernel) { k.log = log.With(logx.String("component", "kernel")) }
}

// WithPanicHandler installs the handler invoked for every recovered
// callback panic.
func WithPanicHandler(fn PanicHandler) Option {
	return func(k *Kernel) { k.panicHandler = fn }
}

// New creates a kernel reading time from clock. A nil clock uses the system clock.
func New(clock hal.Clock, opts ...Option) *Kernel {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	k := &Kernel{
		clock:     clock,
		live:      make(map[TimerID]*timer),
		cancelled: make(map[FrameID]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(k)
		}
	}
	return k
}

// Now returns the kernel clock's current time.
func (k *Kernel) Now() time.Time { return k.clock.Now() }

// SetTimeout schedules fn to run on the first Step at or after now+d.
// Negative delays are treated as zero.
func (k *Kernel) SetTimeout(d time.Duration, fn func()) TimerID {
	if fn == nil {
		return 0
	}
	if d < 0 {
		d = 0
	}
	due := k.clock.Now().Add(d)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.nextTID++
	k.seq++
	t := &timer{id: k.nextTID, due: due, seq: k.seq, fn: fn}
	heap.Push(&k.timers, t)
	k.live[t.id] = t
	return t.id
}

// ClearTimeout cancels a pending timer. Unknown, fired or already cleared
// ids are ignored.
func (k *Kernel) ClearTimeout(id TimerID) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if t, ok := k.live[id]; ok {
		t.fn = nil
		delete(k.live, id)
	}
}

// RequestFrame schedules fn to run on the next Frame. Requests made while a
// frame is running are deferred to the following frame.
func (k *Kernel) RequestFrame(fn func()) FrameID {
	if fn == nil {
		return 0
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.nextFID++
	k.frames = append(k.frames, frameReq{id: k.nextFID, fn: fn})
	return k.nextFID
}

// CancelFrame withdraws a frame request that has not run yet.
func (k *Kernel) CancelFrame(id FrameID) {
	if id == 0 {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, f := range k.frames {
		if f.id == id {
			k.cancelled[id] = struct{}{}
			return
		}
	}
}

// Step fires every timer due at or before now, in due order. Timers created
// by those callbacks wait for the next Step even if already due.
func (k *Kernel) Step(now time.Time) {
	k.mu.Lock()
	var batch []*timer
	for len(k.timers) > 0 && !k.timers[0].due.After(now) {
		batch = append(batch, heap.Pop(&k.timers).(*timer))
	}
	k.mu.Unlock()

	for _, t := range batch {
		k.mu.Lock()
		fn := t.fn
		if fn != nil {
			t.fn = nil
			delete(k.live, t.id)
		}
		k.mu.Unlock()

		if fn != nil {
			k.run("timer", fn)
		}
	}
}

// Frame runs the frame callbacks requested before this call.
func (k *Kernel) Frame(now time.Time) {
	k.mu.Lock()
	batch := k.frames
	k.frames = nil
	cancelled := k.cancelled
	if len(cancelled) > 0 {
		k.cancelled = make(map[FrameID]struct{})
	}
	k.frameNo++
	k.lastFrame = now
	k.mu.Unlock()

	for _, f := range batch {
		if _, skip := cancelled[f.id]; skip {
			continue
		}
		k.run("frame", f.fn)
	}
}

// Frames returns how many refreshes the kernel has seen.
func (k *Kernel) Frames() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.frameNo
}

// LastFrame returns the refresh time passed to the most recent Frame.
func (k *Kernel) LastFrame() time.Time {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lastFrame
}

// PendingTimers returns the number of armed timers.
func (k *Kernel) PendingTimers() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.live)
}

// PendingFrames returns the number of frame requests waiting for the next Frame.
func (k *Kernel) PendingFrames() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.frames) - len(k.cancelled)
}

var _ hal.Driver = (*Kernel)(nil)
