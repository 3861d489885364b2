// Package corort adapts github.com/tcard/coro's goroutine-based
// coroutines to package coroio's CoroutineRuntime contract: spawn of a
// procedure on a fresh stack, a handle to the current coroutine, suspend,
// resume.
//
// Grounded directly on the tcard/coro source (New/Resume/yield): New
// spawns a goroutine that blocks until first Resume, f is handed a
// yield func() that parks the goroutine until the next Resume, and
// Resume itself is the "handle to the current coroutine" the original
// Rust source fetched explicitly from inside the coroutine body — here
// it's simply the value New returns, captured once at spawn time.
package corort

import (
	"github.com/tcard/coro"

	"github.com/coroio/coroio"
)

type yielder struct {
	yield func()
}

func (y yielder) Yield() { y.yield() }

type handle struct {
	resume coro.Resume
}

func (h handle) Resume() (alive bool) { return h.resume() }

// Runtime is the default, production coroio.CoroutineRuntime
// implementation, backed by github.com/tcard/coro.
type Runtime struct{}

var _ coroio.CoroutineRuntime = Runtime{}

// Spawn creates a coroutine running body on a fresh goroutine. The
// coroutine does not execute until the first Resume call.
func (Runtime) Spawn(body func(y coroio.Yielder)) coroio.Coroutine {
	r := coro.New(func(yield func()) {
		body(yielder{yield: yield})
	})
	return handle{resume: r}
}
