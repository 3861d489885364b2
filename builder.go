package coroio

import (
	"github.com/coroio/coroio/reactor"
	"github.com/coroio/coroio/transport"
)

// Builder constructs a coroutine, attaches one or more I/O Cells with
// pre-registered tokens, and spawns and primes the coroutine, per
// spec.md §4.E.
type Builder struct {
	runtime CoroutineRuntime
	record  *Record
	handles []*InternalHandle
	cells   []*Cell
}

// NewBuilder creates a Builder in state Running, with no coroutine
// context handle yet and an empty list of Internal Handles.
func NewBuilder(runtime CoroutineRuntime) *Builder {
	return &Builder{
		runtime: runtime,
		record:  newRecord(),
		handles: make([]*InternalHandle, 0, 4),
	}
}

// WrapIO registers transport with r under a freshly allocated token, for
// both readable and writable, edge-triggered and one-shot (spec.md
// §4.E: "the initial dual-interest registration exists so the first
// readiness event arrives even though the coroutine has not yet
// parked"). It wraps the transport in a Cell bound to this Builder's
// Record, returns an ExternalHandle, and retains the paired
// InternalHandle to be delivered into the coroutine body.
func (b *Builder) WrapIO(r reactor.Reactor, t transport.Transport) (*ExternalHandle, error) {
	token := r.NextToken()

	cell := &Cell{
		transport: t,
		reactor:   r,
		token:     token,
		record:    b.record,
	}

	ext := &ExternalHandle{cell: cell}

	if err := r.Register(token, t.Fd(), reactor.EventReadable|reactor.EventWritable, func(_ reactor.Token, events reactor.IOEvents) {
		ext.OnEvent(events)
	}); err != nil {
		logFatalReactorError("register", token, err)
		return nil, err
	}

	b.handles = append(b.handles, &InternalHandle{cell: cell})
	b.cells = append(b.cells, cell)

	return ext, nil
}

// Start spawns a coroutine whose entry procedure invokes body with the
// accumulated Internal Handles and on return sets the Record to Finished.
// It records the coroutine handle into the Record and then immediately
// resumes the freshly spawned coroutine so it runs until its
// first yield, per spec.md §4.E.
func (b *Builder) Start(body func(handles []*InternalHandle)) {
	handles := b.handles
	record := b.record

	co := b.runtime.Spawn(func(y Yielder) {
		for _, h := range handles {
			h.yielder = y
		}
		body(handles)
		record.forceFinished()
	})

	// corort.Runtime.Spawn returns the coroutine handle synchronously,
	// before the goroutine body runs (unlike the original source, where
	// fetching "the current coroutine" required the body to already be
	// executing). Nothing can read Record.co before this Resume call
	// returns control to us, so setting it here is equivalent to setting
	// it "from within the coroutine on first entry" (spec.md invariant I3).
	record.setCoroutine(co)
	co.Resume()

	// This first resume is not driven by an External Handle event, so
	// nothing has reregistered yet: every Cell is still sitting at its
	// bootstrap dual-interest registration (spec.md §4.E). Narrow each
	// one to whatever the post-resume state actually calls for, the same
	// way ExternalHandle.resumeAndReregister does for every subsequent
	// resume — otherwise a coroutine that parks or finishes without ever
	// yielding leaves a stale wide-open registration (P1, S5).
	for _, cell := range b.cells {
		cell.reregister()
	}
}
