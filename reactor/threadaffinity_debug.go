//go:build coroio_debug

package reactor

// assertCurrent panics if called from any goroutine other than the one
// that last called markCurrent (i.e. Run's goroutine).
func (l *loopThread) assertCurrent(op string) {
	if !l.isCurrent() {
		panic("reactor: " + op + " called off the poller's own goroutine")
	}
}
