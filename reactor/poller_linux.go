//go:build linux

package reactor

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/coroio/coroio/internal/corolog"
)

// maxFDs bounds direct-indexed lookup; beyond it registration fails with
// ErrFDOutOfRange rather than silently falling back to a map.
const maxFDs = 65536

// regInfo stores per-token registration state.
type regInfo struct {
	cb     Callback
	fd     int
	events IOEvents
	active bool
}

// Poller is an epoll-backed Reactor (direct fd-indexed table,
// RWMutex-guarded, lock-free poll, callbacks looked up under RLock and
// invoked outside it), using edge-triggered,
// one-shot registration (EPOLLET|EPOLLONESHOT), as spec.md §4.A requires.
type Poller struct {
	epfd     int
	nextTok  atomic.Uint64
	mu       sync.RWMutex
	byToken  map[Token]*regInfo
	fdToken  [maxFDs]Token // 0 means unregistered (tokens start at 1)
	closed   atomic.Bool
	eventBuf [256]unix.EpollEvent
	thread   loopThread
}

// NewPoller creates and initializes an epoll-backed Poller.
func NewPoller() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Poller{
		epfd:    epfd,
		byToken: make(map[Token]*regInfo),
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
	if fd < 0 || fd >= maxFDs {
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

	ev := &unix.EpollEvent{
		Events: eventsToEpoll(events),
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		p.mu.Lock()
		delete(p.byToken, token)
		p.fdToken[fd] = 0
		p.mu.Unlock()
		return err
	}
	return nil
}

// Reregister re-arms token's fd for events, edge-triggered, one-shot.
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

	ev := &unix.EpollEvent{
		Events: eventsToEpoll(events),
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
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
	p.fdToken[info.fd] = 0
	fd := info.fd
	p.mu.Unlock()

	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		corolog.Default().Debug().Str("component", "reactor").Err(err).Log("epoll_ctl del failed (fd likely already closed)")
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

		n, err := unix.EpollWait(p.epfd, p.eventBuf[:], 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		p.dispatch(n)
	}
}

// dispatch invokes callbacks for the n fired events. The callback is
// copied under RLock and invoked outside it, to avoid holding the lock
// during arbitrary application code, at the cost of a narrow race
// against a concurrent Deregister that the caller must tolerate, per
// Deregister's idempotency.
func (p *Poller) dispatch(n int) {
	p.thread.assertCurrent("dispatch")
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Fd)
		if fd < 0 || fd >= maxFDs {
			continue
		}

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
			info.cb(tok, epollToEvents(p.eventBuf[i].Events))
		}
	}
}

// Close shuts down the epoll instance.
func (p *Poller) Close() error {
	p.closed.Store(true)
	return unix.Close(p.epfd)
}

func eventsToEpoll(events IOEvents) uint32 {
	var e uint32
	if events&EventReadable != 0 {
		e |= unix.EPOLLIN
	}
	if events&EventWritable != 0 {
		e |= unix.EPOLLOUT
	}
	// edge-triggered, one-shot: every event consumed requires an explicit
	// Reregister call (spec.md §4.A).
	e |= unix.EPOLLET | unix.EPOLLONESHOT
	return e
}

func epollToEvents(epollEvents uint32) IOEvents {
	var events IOEvents
	if epollEvents&unix.EPOLLIN != 0 {
		events |= EventReadable
	}
	if epollEvents&unix.EPOLLOUT != 0 {
		events |= EventWritable
	}
	if epollEvents&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0 {
		events |= EventHup
	}
	return events
}
