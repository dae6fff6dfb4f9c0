package main

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"framekit/app"
	"framekit/frameloop"
	"framekit/internal/logx"
)

// notifySystemd reports readiness to systemd and, when the unit sets
// WatchdogSec, pings the watchdog for as long as the frame loop is healthy.
// Outside systemd it returns immediately.
func notifySystemd(ctx context.Context, sys *app.System, log logx.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.Warn("sd_notify failed", logx.Err(err))
		return
	}
	if !sent {
		return
	}
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		<-ctx.Done()
		return
	}
	log.Debug("systemd watchdog enabled", logx.Duration("interval", interval))

	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if healthy(sys.Loop()) {
				_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}
	}
}

// healthy reports whether l is still cycling.
func healthy(l *frameloop.Loop) bool {
	if l == nil {
		return false
	}
	switch l.State() {
	case frameloop.Stalled, frameloop.Failed, frameloop.Idle:
		return false
	}
	return true
}
