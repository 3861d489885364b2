// Package reactor provides a minimal, edge-triggered, one-shot I/O
// multiplexer (epoll on Linux, kqueue on Darwin), serving as the reactor
// contract described by package coroio.
//
// # I/O Registration
//
// Descriptors are registered under an opaque Token with an interest mask
// over {readable, writable, hup}. Registrations are edge-triggered and
// one-shot: once an event fires, the descriptor is quiesced until
// Reregister is called.
//
//	tok := poller.NextToken()
//	err := poller.Register(tok, fd, reactor.EventReadable|reactor.EventWritable, onEvent)
//
// # Safety
//
// Always call Deregister before closing the underlying descriptor, to
// avoid stale event delivery caused by fd recycling.
package reactor

import "errors"

// Token is an opaque identifier naming a registration. Allocated by the
// Reactor; never reused within a process lifetime.
type Token uint64

// IOEvents is a bitmask over the readiness events the reactor can report.
type IOEvents uint8

const (
	// EventReadable indicates the descriptor is ready for reading.
	EventReadable IOEvents = 1 << iota
	// EventWritable indicates the descriptor is ready for writing.
	EventWritable
	// EventHup indicates the peer half-closed, or hangup/error occurred.
	EventHup
)

// Callback is invoked with the token and the fired events (EventHup is set
// on hangup or error, see IsHup; on Linux EPOLLRDHUP is not requested, so a
// peer half-close arrives there as a plain EventReadable). It runs on the
// reactor's own goroutine; it must not block.
type Callback func(Token, IOEvents)

// IsHup reports whether events includes the hangup bit.
func (e IOEvents) IsHup() bool { return e&EventHup != 0 }

// Reactor is the narrow interface package coroio depends on. A Poller (see
// poller_linux.go / poller_darwin.go) is the production implementation;
// tests may substitute a fake.
type Reactor interface {
	// NextToken allocates a fresh, never-reused Token. The caller
	// registers a descriptor under it with Register.
	NextToken() Token

	// Register arms fd for events under token, edge-triggered, one-shot.
	Register(token Token, fd int, events IOEvents, cb Callback) error

	// Reregister re-arms token for events after a one-shot event fires (or
	// narrows/widens interest in response to a coroutine state change).
	Reregister(token Token, events IOEvents) error

	// Deregister removes token's registration. Idempotent: deregistering an
	// already-gone token returns nil.
	Deregister(token Token) error
}

// Sentinel errors returned by Poller implementations.
var (
	ErrFDOutOfRange  = errors.New("reactor: fd out of range")
	ErrTokenNotFound = errors.New("reactor: token not registered")
	ErrReactorClosed = errors.New("reactor: closed")
	ErrTokenReused   = errors.New("reactor: token already registered")
)
