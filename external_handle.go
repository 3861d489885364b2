package coroio

import (
	"github.com/coroio/coroio/reactor"
	"github.com/coroio/coroio/transport"
)

// ExternalHandle is the out-of-coroutine façade the host reactor drives
// on readiness events, per spec.md §4.D. It remains valid after the
// coroutine finishes, so IsFinished can be observed.
type ExternalHandle struct {
	cell *Cell
}

// OnEvent is the entry point wired as the reactor.Callback for the
// Cell's token: it splits the raw event bits into the hup / readable /
// writable decision procedures of spec.md §4.D. A real mio-style host
// that delivers readable/writable as genuinely separate callbacks can
// instead call Readable/Writable directly; OnEvent exists for hosts
// (like this module's own reactor.Poller) that deliver one combined
// event per one-shot firing.
func (h *ExternalHandle) OnEvent(events reactor.IOEvents) {
	if events.IsHup() {
		h.hup()
		return
	}
	if events&reactor.EventReadable != 0 {
		h.Readable(events)
	}
	if events&reactor.EventWritable != 0 {
		h.Writable()
	}
}

// Readable implements spec.md §4.D's readable(token, hint) decision
// procedure for this Cell's token. hint carries the raw event bits so
// IsHup can be checked.
func (h *ExternalHandle) Readable(hint reactor.IOEvents) {
	if hint.IsHup() {
		h.hup()
		return
	}

	state := h.cell.record.State()
	switch state.Kind {
	case KindBlockedOnRead:
		if state.Token == h.cell.token {
			h.resumeAndReregister()
		} else {
			// Not for the currently blocking token, but we still own the
			// registration: reregister (masks to empty) so the Cell goes
			// quiet until the blocking operation changes (spec.md §4.D
			// step 3.b).
			h.cell.reregister()
		}
	case KindBlockedOnWrite:
		if state.Token == h.cell.token {
			// Wrong-direction one-shot event (spec.md Q2): defensive
			// reregister rather than an assert, since the reactor
			// "should not normally" deliver this, not "never can".
			h.cell.reregister()
		}
	case KindFinished:
		// Do nothing; the next hup deregisters.
	}
}

// Writable implements spec.md §4.D's writable(token) decision procedure,
// symmetric with Readable with read/write roles swapped.
func (h *ExternalHandle) Writable() {
	state := h.cell.record.State()
	switch state.Kind {
	case KindBlockedOnWrite:
		if state.Token == h.cell.token {
			h.resumeAndReregister()
		} else {
			h.cell.reregister()
		}
	case KindBlockedOnRead:
		if state.Token == h.cell.token {
			h.cell.reregister()
		}
	case KindFinished:
	}
}

// resumeAndReregister performs the Blocked→Running transition, resumes
// the coroutine, then reregisters using the *post-resume* state — never
// the pre-resume snapshot (spec.md §9 Q1). The transition to Running
// happens strictly before Resume is called, so any Internal Handle code
// that runs inside the resumed coroutine observes Running (spec.md's
// ordering guarantee, invariant P3).
func (h *ExternalHandle) resumeAndReregister() {
	h.cell.record.setState(Running())

	co := h.cell.record.coroutine()
	alive := h.resume(co)
	if !alive {
		h.cell.record.forceFinished()
	}

	h.cell.reregister()
}

// resume calls co.Resume, converting a panic into a forced Finished
// transition (spec.md §7: "coroutine resume failure ... fatal to the
// coroutine; its state is forced to Finished so subsequent events
// drain").
func (h *ExternalHandle) resume(co Coroutine) (alive bool) {
	defer func() {
		if r := recover(); r != nil {
			logResumeFailure(h.cell.token, r)
			h.cell.record.forceFinished()
			alive = false
		}
	}()
	return co.Resume()
}

func (h *ExternalHandle) hup() {
	h.cell.hup()
}

// IsFinished reports whether the coroutine has returned and the reactor
// interest has fallen to none (spec.md §3's Cell lifetime condition).
// Idempotent and monotonic (spec.md L2).
func (h *ExternalHandle) IsFinished() bool {
	state := h.cell.record.State()
	h.cell.mu.Lock()
	interest := h.cell.interest
	h.cell.mu.Unlock()
	return state.Kind == KindFinished && interest == 0
}

// WithRaw grants access to the wrapped transport.
func (h *ExternalHandle) WithRaw(f func(t transport.Transport)) {
	f(h.cell.transport)
}

// WithRawMut grants access to the wrapped transport for operations that
// mutate it directly (e.g. setting socket options). Go has no borrow
// checker to distinguish this from WithRaw; the method exists for API
// parity with spec.md's with_raw/with_raw_mut pair.
func (h *ExternalHandle) WithRawMut(f func(t transport.Transport)) {
	f(h.cell.transport)
}

// FatalError always returns nil. Reactor failures are only logged, and a
// resume panic is logged and forces the Record to Finished; no error is
// recorded on the handle for this method to return.
func (h *ExternalHandle) FatalError() error {
	return nil
}
