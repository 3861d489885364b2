package coroio

import (
	"sync"
	"sync/atomic"

	"github.com/coroio/coroio/reactor"
	"github.com/coroio/coroio/transport"
)

// fakeReactor is an in-memory reactor.Reactor double: it records
// registrations and lets a test fire events synchronously, with no real
// polling loop. Grounded on the shape of reactor.Poller but without any
// OS dependency, so the coroio package's own tests don't require a real
// epoll/kqueue to exercise the state machine.
type fakeReactor struct {
	mu            sync.Mutex
	nextTok       atomic.Uint64
	regs          map[reactor.Token]fakeReg
	deregisterLog []reactor.Token
}

type fakeReg struct {
	fd     int
	events reactor.IOEvents
	cb     reactor.Callback
}

func newFakeReactor() *fakeReactor {
	return &fakeReactor{regs: make(map[reactor.Token]fakeReg)}
}

func (f *fakeReactor) NextToken() reactor.Token {
	return reactor.Token(f.nextTok.Add(1))
}

func (f *fakeReactor) Register(token reactor.Token, fd int, events reactor.IOEvents, cb reactor.Callback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[token] = fakeReg{fd: fd, events: events, cb: cb}
	return nil
}

func (f *fakeReactor) Reregister(token reactor.Token, events reactor.IOEvents) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[token]
	if !ok {
		return reactor.ErrTokenNotFound
	}
	reg.events = events
	f.regs[token] = reg
	return nil
}

func (f *fakeReactor) Deregister(token reactor.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.regs[token]; !ok {
		return nil
	}
	delete(f.regs, token)
	f.deregisterLog = append(f.deregisterLog, token)
	return nil
}

// fire synchronously invokes the registered callback for token, as if the
// reactor observed events.
func (f *fakeReactor) fire(token reactor.Token, events reactor.IOEvents) {
	f.mu.Lock()
	reg, ok := f.regs[token]
	f.mu.Unlock()
	if !ok || reg.cb == nil {
		return
	}
	reg.cb(token, events)
}

// interestOf returns the last interest mask Reregister/Register recorded
// for token, or 0 if deregistered.
func (f *fakeReactor) interestOf(token reactor.Token) reactor.IOEvents {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[token].events
}

func (f *fakeReactor) deregisterCount(token reactor.Token) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.deregisterLog {
		if t == token {
			n++
		}
	}
	return n
}

// fakeTransport is an in-memory transport.Transport double over two byte
// queues (in: what Reads drain, out: what Writes append), used to drive
// coroutine bodies deterministically without real sockets.
type fakeTransport struct {
	mu       sync.Mutex
	in       []byte
	inClosed bool
	out      []byte
	// writeCap caps how many bytes Write accepts before reporting
	// would-block, simulating a full peer buffer (spec.md S3); -1 means
	// no cap.
	writeCap int
	closed   bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{writeCap: -1}
}

func (f *fakeTransport) Read(buf []byte) (int, transport.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, transport.OutcomeError, transport.ErrClosed
	}
	if len(f.in) == 0 {
		if f.inClosed {
			return 0, transport.OutcomeN, nil // EOF
		}
		return 0, transport.OutcomeWouldBlock, nil
	}
	n := copy(buf, f.in)
	f.in = f.in[n:]
	return n, transport.OutcomeN, nil
}

func (f *fakeTransport) Write(buf []byte) (int, transport.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, transport.OutcomeError, transport.ErrClosed
	}
	if f.writeCap >= 0 && len(f.out) >= f.writeCap {
		return 0, transport.OutcomeWouldBlock, nil
	}
	n := len(buf)
	if f.writeCap >= 0 && len(f.out)+n > f.writeCap {
		n = f.writeCap - len(f.out)
	}
	f.out = append(f.out, buf[:n]...)
	return n, transport.OutcomeN, nil
}

func (f *fakeTransport) Fd() int { return 42 }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// feed appends bytes to the read queue, as if the peer sent them.
func (f *fakeTransport) feed(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in = append(f.in, b...)
}

// closeIn marks end-of-stream for subsequent reads.
func (f *fakeTransport) closeIn() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inClosed = true
}

// drainOut pops everything written so far.
func (f *fakeTransport) drainOut() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.out
	f.out = nil
	return out
}

// unblockWrites lifts the write cap, allowing previously would-blocked
// writes to make progress.
func (f *fakeTransport) unblockWrites() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCap = -1
}
