package kernel

import (
	"sync"
	"sync/atomic"
)

// PanicInfo describes a task panic.
type PanicInfo struct {
	TaskID TaskID
	Value  any
	Stack  []byte
}

var (
	panicActive  atomic.Bool
	panicOnce    sync.Once
	panicHandler atomic.Value // func(PanicInfo)
)

// InPanicMode reports whether a task has panicked.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs the process-wide panic handler. It runs at most once, on the
// first panic, and must not panic itself.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

func triggerPanic(info PanicInfo) {
	panicOnce.Do(func() {
		panicActive.Store(true)
		info.Stack = captureStack()
		if fn, ok := panicHandler.Load().(func(PanicInfo)); ok && fn != nil {
			fn(info)
		}
	})
}
