package coroio

import "sync"

// Record is the Coroutine Record of spec.md §3: it owns the Coroutine
// State and a nullable handle to the underlying coroutine, set exactly
// once by Builder.Start just before the first resume, and read
// thereafter by External Handles. Shared between one coroutine body and
// N External/Internal Handles.
//
// Record deliberately does not reference the Cells bound to it (spec.md
// §9, "back-references without cycles of ownership"): it is only ever
// read to derive interest, never to enumerate Cells.
type Record struct {
	mu    sync.Mutex
	state State
	co    Coroutine // set once, by setCoroutine
}

// newRecord creates a Record in the Running state with no coroutine
// handle yet.
func newRecord() *Record {
	return &Record{state: Running()}
}

// State returns a snapshot of the current Coroutine State.
func (r *Record) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// setState transitions the Coroutine State. Per spec.md §3, a coroutine
// moves out of Running only from inside an Internal Handle, and back
// into Running only immediately before an External Handle resumes it;
// once Finished, no further transitions occur (enforced here defensively
// rather than assumed).
func (r *Record) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Kind == KindFinished {
		assertOrLog("contract violation: transition attempted out of Finished state")
		return
	}
	r.state = s
}

// forceFinished transitions directly to Finished, bypassing the
// out-of-Finished guard in setState. Used only for the two terminal
// transitions spec.md allows outside the coroutine's own yield/return
// path: a normal return (handled by the spawn wrapper) and a resume
// panic (spec.md §7: "fatal to the coroutine; its state is forced to
// Finished").
func (r *Record) forceFinished() {
	r.mu.Lock()
	r.state = Finished()
	r.mu.Unlock()
}

// setCoroutine records the coroutine handle. Called exactly once, by
// Builder.Start before the coroutine first runs, so the handle is set
// before any Internal Handle I/O (spec.md invariant I3).
func (r *Record) setCoroutine(co Coroutine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.co = co
}

// coroutine returns the coroutine handle, or nil before setCoroutine.
func (r *Record) coroutine() Coroutine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.co
}
