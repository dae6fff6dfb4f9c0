package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Hz is the simulated display refresh rate.
	Hz int
	// Frames stops the runner after N refreshes (0 = run until ctx is done).
	Frames uint64
	// TimerResolution is how often due timers are polled.
	TimerResolution time.Duration
}

// RunHeadless pumps d without opening a window: timers are polled every
// TimerResolution and refresh-aligned callbacks run at Hz.
func RunHeadless(ctx context.Context, d Driver, clock Clock, cfg HeadlessConfig) error {
	if d == nil {
		return fmt.Errorf("headless: nil driver")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.TimerResolution <= 0 {
		cfg.TimerResolution = time.Millisecond
	}

	refresh := time.Second / time.Duration(cfg.Hz)
	if refresh <= 0 {
		return fmt.Errorf("headless: invalid hz: %d", cfg.Hz)
	}
	timers := time.NewTicker(cfg.TimerResolution)
	defer timers.Stop()
	vsync := time.NewTicker(refresh)
	defer vsync.Stop()

	var frames uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timers.C:
			d.Step(clock.Now())
		case <-vsync.C:
			now := clock.Now()
			d.Step(now)
			d.Frame(now)
			frames++
			if cfg.Frames > 0 && frames >= cfg.Frames {
				return nil
			}
		}
	}
}
