package coroio

import (
	"sync"

	"github.com/coroio/coroio/reactor"
	"github.com/coroio/coroio/transport"
)

// Cell is the I/O Cell of spec.md §3: the per-connection record binding a
// transport, the owning Coroutine Record, the current reactor interest,
// the token, and the peer-hup flag. Bound to exactly one Record for life;
// a Record may have many Cells (spec.md §9's "back-references without
// cycles of ownership").
type Cell struct {
	mu        sync.Mutex
	transport transport.Transport
	reactor   reactor.Reactor
	token     reactor.Token
	interest  reactor.IOEvents // last mask communicated to the reactor
	peerHup   bool
	record    *Record
}

// reregister recomputes interest from the Record's current state and
// reregisters it with the reactor under edge+one-shot semantics. On
// reactor failure the error is logged and returned; the callers in this
// package do not act on the returned error.
func (c *Cell) reregister() error {
	state := c.record.State()
	want := state.InterestFor(c.token)

	c.mu.Lock()
	c.interest = want
	c.mu.Unlock()

	if err := c.reactor.Reregister(c.token, want); err != nil {
		logFatalReactorError("reregister", c.token, err)
		return err
	}
	return nil
}

// hup handles a peer half-close or hangup event, per spec.md §4.B: if the
// Cell's interest is exactly Hup (the coroutine has Finished and we've
// already narrowed interest down to the terminal sentinel), deregister
// for good; otherwise latch peer_hup and reregister so the coroutine
// observes end-of-stream through its next read/write.
func (c *Cell) hup() error {
	c.mu.Lock()
	exactlyHup := c.interest == reactor.EventHup
	c.mu.Unlock()

	if exactlyHup {
		return c.Close()
	}

	c.mu.Lock()
	c.peerHup = true
	c.mu.Unlock()
	return c.reregister()
}

// Close deregisters the Cell from the reactor and closes its transport.
// Idempotent, to preserve P4 (exactly one deregistration) even if both
// the hup path and an explicit caller race to close. Interest drops to
// none, the condition ExternalHandle.IsFinished checks for (spec.md §3's
// "reactor interest has fallen to none").
func (c *Cell) Close() error {
	if err := c.reactor.Deregister(c.token); err != nil {
		return err
	}
	c.mu.Lock()
	c.interest = 0
	c.mu.Unlock()
	return c.transport.Close()
}

// peerHalfClosed reports whether a peer hup has been observed.
func (c *Cell) peerHalfClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerHup
}
