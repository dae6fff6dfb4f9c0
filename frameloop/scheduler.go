package frameloop

import (
	"sync"

	"framekit/internal/logx"
)

// Handle is the opaque token returned by Scheduler.Start. The zero Handle is
// valid to pass to Stop and does nothing.
type Handle struct {
	loop *Loop
}

// Valid reports whether h refers to a loop.
func (h Handle) Valid() bool { return h.loop != nil }

// Loop returns the loop behind h, or nil.
func (h Handle) Loop() *Loop { return h.loop }

// Scheduler starts loops on one host and tracks them so they can be stopped
// together.
type Scheduler struct {
	host  Host
	log   logx.Logger
	meter *Meter

	mu    sync.Mutex
	loops map[*Loop]struct{}
}

// NewScheduler creates a scheduler on host. The logger and meter are handed
// to every loop it starts.
func NewScheduler(host Host, log logx.Logger, meter *Meter) *Scheduler {
	return &Scheduler{
		host:  host,
		log:   log,
		meter: meter,
		loops: make(map[*Loop]struct{}),
	}
}

// Start begins throttled invocation of callback at roughly fps per second.
func (s *Scheduler) Start(fps float64, callback func()) (Handle, error) {
	l, err := Start(s.host, fps, callback, WithLogger(s.log), WithMeter(s.meter))
	if err != nil {
		return Handle{}, err
	}
	s.mu.Lock()
	s.loops[l] = struct{}{}
	s.mu.Unlock()
	s.log.Debug("frame loop started", logx.Float64("fps", fps))
	return Handle{loop: l}, nil
}

// Stop cancels the loop behind h. Unknown or already stopped handles are
// ignored.
func (s *Scheduler) Stop(h Handle) {
	if h.loop == nil {
		return
	}
	s.mu.Lock()
	_, ok := s.loops[h.loop]
	delete(s.loops, h.loop)
	s.mu.Unlock()

	h.loop.Stop()
	if ok {
		s.log.Debug("frame loop stopped", logx.Uint64("frames", h.loop.Frames()))
	}
}

// StopAll stops every loop started by s.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	loops := make([]*Loop, 0, len(s.loops))
	for l := range s.loops {
		loops = append(loops, l)
	}
	clear(s.loops)
	s.mu.Unlock()

	for _, l := range loops {
		l.Stop()
	}
}

// Active returns the number of loops started and not yet stopped. Stalled and
// failed loops count until stopped.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loops)
}
