package kernel

import (
	"testing"
	"time"

	"framekit/hal"
)

func newTestKernel(opts ...Option) (*Kernel, *hal.ManualClock) {
	clock := hal.NewManualClock(time.Unix(1_000, 0))
	return New(clock, opts...), clock
}

func TestTimersFireInDueOrder(t *testing.T) {
	k, clock := newTestKernel()

	var got []string
	k.SetTimeout(30*time.Millisecond, func() { got = append(got, "c") })
	k.SetTimeout(10*time.Millisecond, func() { got = append(got, "a") })
	k.SetTimeout(10*time.Millisecond, func() { got = append(got, "b") })

	k.Step(clock.Advance(5 * time.Millisecond))
	if len(got) != 0 {
		t.Fatalf("fired early: %v", got)
	}

	k.Step(clock.Advance(25 * time.Millisecond))
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if k.PendingTimers() != 0 {
		t.Fatalf("PendingTimers = %d, want 0", k.PendingTimers())
	}
}

func TestClearTimeout(t *testing.T) {
	k, clock := newTestKernel()

	fired := false
	id := k.SetTimeout(time.Millisecond, func() { fired = true })
	if id == 0 {
		t.Fatal("expected non-zero timer id")
	}
	k.ClearTimeout(id)
	k.ClearTimeout(id)
	k.ClearTimeout(TimerID(999))

	k.Step(clock.Advance(time.Second))
	if fired {
		t.Fatal("cleared timer fired")
	}
}

func TestClearTimeoutFromEarlierCallback(t *testing.T) {
	k, clock := newTestKernel()

	fired := false
	var second TimerID
	k.SetTimeout(time.Millisecond, func() { k.ClearTimeout(second) })
	second = k.SetTimeout(2*time.Millisecond, func() { fired = true })

	k.Step(clock.Advance(10 * time.Millisecond))
	if fired {
		t.Fatal("timer cleared by an earlier callback in the same step still fired")
	}
}

func TestTimerScheduledInCallbackWaitsForNextStep(t *testing.T) {
	k, clock := newTestKernel()

	n := 0
	var rearm func()
	rearm = func() {
		n++
		k.SetTimeout(0, rearm)
	}
	k.SetTimeout(0, rearm)

	k.Step(clock.Now())
	if n != 1 {
		t.Fatalf("n = %d after first step, want 1", n)
	}
	k.Step(clock.Now())
	if n != 2 {
		t.Fatalf("n = %d after second step, want 2", n)
	}
}

func TestFrameRequestsDeferredDuringFrame(t *testing.T) {
	k, clock := newTestKernel()

	var order []int
	k.RequestFrame(func() {
		order = append(order, 1)
		k.RequestFrame(func() { order = append(order, 2) })
	})

	k.Frame(clock.Now())
	if len(order) != 1 {
		t.Fatalf("order = %v after first frame", order)
	}
	if k.PendingFrames() != 1 {
		t.Fatalf("PendingFrames = %d, want 1", k.PendingFrames())
	}

	k.Frame(clock.Advance(16 * time.Millisecond))
	if len(order) != 2 || order[1] != 2 {
		t.Fatalf("order = %v after second frame", order)
	}
	if k.Frames() != 2 {
		t.Fatalf("Frames = %d, want 2", k.Frames())
	}
	if !k.LastFrame().Equal(clock.Now()) {
		t.Fatalf("LastFrame = %v", k.LastFrame())
	}
}

func TestCancelFrame(t *testing.T) {
	k, clock := newTestKernel()

	ran := false
	id := k.RequestFrame(func() { ran = true })
	k.CancelFrame(id)
	if k.PendingFrames() != 0 {
		t.Fatalf("PendingFrames = %d, want 0", k.PendingFrames())
	}

	k.Frame(clock.Now())
	if ran {
		t.Fatal("cancelled frame ran")
	}
}

func TestPanicIsolated(t *testing.T) {
	var infos []PanicInfo
	k, clock := newTestKernel(WithPanicHandler(func(info PanicInfo) {
		infos = append(infos, info)
	}))

	after := false
	k.SetTimeout(time.Millisecond, func() { panic("boom") })
	k.SetTimeout(2*time.Millisecond, func() { after = true })
	k.RequestFrame(func() { panic("frame boom") })

	k.Step(clock.Advance(5 * time.Millisecond))
	k.Frame(clock.Now())

	if !after {
		t.Fatal("timer after a panicking timer did not run")
	}
	if k.Panics() != 2 {
		t.Fatalf("Panics = %d, want 2", k.Panics())
	}
	if len(infos) != 2 {
		t.Fatalf("handler calls = %d, want 2", len(infos))
	}
	if infos[0].Source != "timer" || infos[0].Value != "boom" {
		t.Fatalf("first panic = %+v", infos[0])
	}
	if infos[1].Source != "frame" || len(infos[1].Stack) == 0 {
		t.Fatalf("second panic = %+v", infos[1])
	}
}

func TestNilCallbacksIgnored(t *testing.T) {
	k, _ := newTestKernel()
	if id := k.SetTimeout(time.Millisecond, nil); id != 0 {
		t.Fatalf("SetTimeout(nil) = %d, want 0", id)
	}
	if id := k.RequestFrame(nil); id != 0 {
		t.Fatalf("RequestFrame(nil) = %d, want 0", id)
	}
}
