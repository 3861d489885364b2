//go:build linux || darwin

package transport

import (
	"errors"
	"net"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// TCP is a non-blocking Transport over a *net.TCPConn, built around
// readFD/writeFD-style raw syscalls via golang.org/x/sys/unix: the
// coroutine/reactor pair, not the Go runtime's netpoller, owns readiness
// for this descriptor, so reads and writes bypass *net.TCPConn entirely
// and go straight to the raw fd.
type TCP struct {
	conn   *net.TCPConn
	fd     int
	closed atomic.Bool
}

// New wraps conn for non-blocking use, setting O_NONBLOCK on the
// underlying descriptor.
func New(conn *net.TCPConn) (*TCP, error) {
	rc, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}

	var fd int
	var setErr error
	err = rc.Control(func(sysfd uintptr) {
		fd = int(sysfd)
		setErr = unix.SetNonblock(fd, true)
	})
	if err != nil {
		return nil, err
	}
	if setErr != nil {
		return nil, setErr
	}

	return &TCP{conn: conn, fd: fd}, nil
}

// Read implements Transport.
func (t *TCP) Read(buf []byte) (int, Outcome, error) {
	if t.closed.Load() {
		return 0, OutcomeError, ErrClosed
	}
	n, err := unix.Read(t.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, OutcomeWouldBlock, nil
		}
		return 0, OutcomeError, err
	}
	return n, OutcomeN, nil
}

// Write implements Transport.
func (t *TCP) Write(buf []byte) (int, Outcome, error) {
	if t.closed.Load() {
		return 0, OutcomeError, ErrClosed
	}
	n, err := unix.Write(t.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, OutcomeWouldBlock, nil
		}
		return 0, OutcomeError, err
	}
	return n, OutcomeN, nil
}

// Fd implements Transport.
func (t *TCP) Fd() int { return t.fd }

// Close implements Transport.
func (t *TCP) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.conn.Close()
}
