//go:build !coroio_debug

package reactor

// assertCurrent is a no-op in production builds; panicking on the
// reactor's hot dispatch path is worse than a missed assertion.
func (l *loopThread) assertCurrent(string) {}
