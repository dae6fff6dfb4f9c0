package kernel

import (
	"fmt"
	"runtime/debug"

	"framekit/internal/logx"
)

// PanicInfo describes a callback panic recovered by the kernel.
type PanicInfo struct {
	// Source is "timer" or "frame".
	Source string
	Value  any
	Stack  []byte
}

func (p PanicInfo) Error() string {
	return fmt.Sprintf("kernel: %s callback panic: %v", p.Source, p.Value)
}

// PanicHandler receives recovered callback panics. It must not panic.
type PanicHandler func(PanicInfo)

// Panics returns how many callback panics have been recovered.
func (k *Kernel) Panics() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.panics
}

// run executes one callback. A panic ends that callback only: the queue keeps
// serving other timers and frames.
func (k *Kernel) run(source string, fn func()) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		info := PanicInfo{Source: source, Value: v, Stack: debug.Stack()}

		k.mu.Lock()
		k.panics++
		handler := k.panicHandler
		k.mu.Unlock()

		k.log.Error("callback panic",
			logx.String("source", source),
			logx.Any("panic", fmt.Sprint(v)),
			logx.Stack(info.Stack),
		)
		if handler != nil {
			handler(info)
		}
	}()
	fn()
}
