//go:build darwin

package reactor

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/coroio/coroio/internal/corolog"
)

// regInfo stores per-token registration state.
type regInfo struct {
	cb     Callback
	fd     int
	events IOEvents
	active bool
}

// Poller is a kqueue-backed Reactor (fd-to-token map; filters armed with
// EV_ADD, removed with EV_DELETE only on Deregister), adapted to
// edge-triggered, one-shot semantics via EV_CLEAR|EV_ONESHOT.
type Poller struct {
	kq       int
	nextTok  atomic.Uint64
	mu       sync.RWMutex
	byToken  map[Token]*regInfo
	fdToken  map[int]Token
	closed   atomic.Bool
	eventBuf [256]unix.Kevent_t
	thread   loopThread
}

// NewPoller creates and initializes a kqueue-backed Poller.
func NewPoller() (*Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	return &Poller{
		kq:      kq,
		byToken: make(map[Token]*regInfo),
		fdToken: make(map[int]Token),
	}, nil
}

// NextToken allocates a fresh, never-reused Token.
func (p *Poller) NextToken() Token {
	return Token(p.nextTok.Add(1))
}

// Register arms fd for events under token, edge-triggered, one-shot.
func (p *Poller) Register(token Token, fd int, events IOEvents, cb Callback) error {
	if p.closed.Load() {
		return ErrReactorClosed
	}
	if fd < 0 {
		return ErrFDOutOfRange
	}

	p.mu.Lock()
	if _, exists := p.byToken[token]; exists {
		p.mu.Unlock()
		return ErrTokenReused
	}
	info := &regInfo{cb: cb, fd: fd, events: events, active: true}
	p.byToken[token] = info
	p.fdToken[fd] = token
	p.mu.Unlock()

	kevents := eventsToKevents(fd, events, unix.EV_ADD|unix.EV_ENABLE|unix.EV_ONESHOT|unix.EV_CLEAR)
	if len(kevents) > 0 {
		if _, err := unix.Kevent(p.kq, kevents, nil, nil); err != nil {
			p.mu.Lock()
			delete(p.byToken, token)
			delete(p.fdToken, fd)
			p.mu.Unlock()
			return err
		}
	}
	return nil
}

// Reregister re-arms token's fd for events, edge-triggered, one-shot.
//
// kqueue drops a filter after EV_ONESHOT fires, so unlike epoll's
// EPOLL_CTL_MOD, re-arming always means a fresh EV_ADD.
func (p *Poller) Reregister(token Token, events IOEvents) error {
	p.mu.Lock()
	info, ok := p.byToken[token]
	if !ok {
		p.mu.Unlock()
		return ErrTokenNotFound
	}
	info.events = events
	fd := info.fd
	p.mu.Unlock()

	kevents := eventsToKevents(fd, events, unix.EV_ADD|unix.EV_ENABLE|unix.EV_ONESHOT|unix.EV_CLEAR)
	if len(kevents) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.kq, kevents, nil, nil)
	return err
}

// Deregister removes token's registration. Idempotent.
func (p *Poller) Deregister(token Token) error {
	p.mu.Lock()
	info, ok := p.byToken[token]
	if !ok {
		p.mu.Unlock()
		return nil
	}
	delete(p.byToken, token)
	delete(p.fdToken, info.fd)
	fd, events := info.fd, info.events
	p.mu.Unlock()

	kevents := eventsToKevents(fd, events, unix.EV_DELETE)
	if len(kevents) > 0 {
		if _, err := unix.Kevent(p.kq, kevents, nil, nil); err != nil {
			corolog.Default().Debug().Str("component", "reactor").Err(err).Log("kevent delete failed (fd likely already closed)")
		}
	}
	return nil
}

// Run polls until ctx is cancelled, dispatching events inline.
func (p *Poller) Run(ctx context.Context) error {
	p.thread.markCurrent()
	defer p.thread.clear()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ts := unix.NsecToTimespec(int64(100 * 1e6))
		n, err := unix.Kevent(p.kq, nil, p.eventBuf[:], &ts)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		p.dispatch(n)
	}
}

func (p *Poller) dispatch(n int) {
	p.thread.assertCurrent("dispatch")
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Ident)

		p.mu.RLock()
		tok := p.fdToken[fd]
		var info regInfo
		if tok != 0 {
			if ri, ok := p.byToken[tok]; ok {
				info = *ri
			}
		}
		p.mu.RUnlock()

		if info.active && info.cb != nil {
			info.cb(tok, keventToEvents(p.eventBuf[i]))
		}
	}
}

// Close shuts down the kqueue instance.
func (p *Poller) Close() error {
	p.closed.Store(true)
	return unix.Close(p.kq)
}

func eventsToKevents(fd int, events IOEvents, flags uint16) []unix.Kevent_t {
	var out []unix.Kevent_t
	if events&EventReadable != 0 {
		out = append(out, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: flags})
	}
	if events&EventWritable != 0 {
		out = append(out, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flags})
	}
	return out
}

func keventToEvents(ev unix.Kevent_t) IOEvents {
	var events IOEvents
	switch ev.Filter {
	case unix.EVFILT_READ:
		events |= EventReadable
	case unix.EVFILT_WRITE:
		events |= EventWritable
	}
	if ev.Flags&(unix.EV_EOF|unix.EV_ERROR) != 0 {
		events |= EventHup
	}
	return events
}
