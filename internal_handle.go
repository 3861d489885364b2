package coroio

import "github.com/coroio/coroio/transport"

// InternalHandle is the in-coroutine I/O façade of spec.md §4.C: passed
// into the coroutine body, it presents non-blocking-looking read/write/
// flush operations that transparently park the coroutine on would-block.
type InternalHandle struct {
	cell    *Cell
	yielder Yielder
}

// Read repeatedly attempts a non-blocking read, parking the coroutine on
// would-block and retrying on resume, per spec.md §4.C. The mutable
// access to the Cell/Record ends before Yield is called — the parking
// discipline of spec.md §9 ("drop the borrow, then call resume") is
// structural here: setState returns before Yield runs, so no lock is
// held across the suspension point.
func (h *InternalHandle) Read(buf []byte) (int, error) {
	for {
		n, outcome, err := h.cell.transport.Read(buf)
		switch outcome {
		case transport.OutcomeN:
			return n, err
		case transport.OutcomeError:
			return n, err
		case transport.OutcomeWouldBlock:
			h.cell.record.setState(BlockedOnRead(h.cell.token))
			h.yielder.Yield()
			// Resumed: state is Running again (External Handle's
			// ordering guarantee, spec.md §4.D). Retry from the top,
			// which also handles the spurious-wakeup case spec.md §4.C
			// calls out.
		}
	}
}

// Write is symmetric with Read, using BlockedOnWrite.
func (h *InternalHandle) Write(buf []byte) (int, error) {
	for {
		n, outcome, err := h.cell.transport.Write(buf)
		switch outcome {
		case transport.OutcomeN:
			return n, err
		case transport.OutcomeError:
			return n, err
		case transport.OutcomeWouldBlock:
			h.cell.record.setState(BlockedOnWrite(h.cell.token))
			h.yielder.Yield()
		}
	}
}

// Flush is a no-op; the transport owns any buffering policy (spec.md §4.C).
func (h *InternalHandle) Flush() error { return nil }
