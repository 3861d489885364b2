package reactor

import (
	"runtime"
	"sync/atomic"
)

// loopThread records which goroutine a Poller's Run is executing on, so
// debug builds can assert that dispatch stays on that single goroutine
// (spec.md §5's single-thread-ownership model).
type loopThread struct {
	id atomic.Uint64
}

func (l *loopThread) markCurrent() {
	l.id.Store(getGoroutineID())
}

func (l *loopThread) clear() {
	l.id.Store(0)
}

func (l *loopThread) isCurrent() bool {
	id := l.id.Load()
	return id != 0 && id == getGoroutineID()
}

// getGoroutineID parses the current goroutine's ID out of runtime.Stack's
// "goroutine <N> [...]" header.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
