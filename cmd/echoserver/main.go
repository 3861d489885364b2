// Command echoserver is a worked example of package coroio: a TCP echo
// server where each connection is handled by a straight-line coroutine
// (spec.md §8 scenario S1), reading up to 4 bytes at a time and writing
// them back until the peer closes.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/coroio/coroio"
	"github.com/coroio/coroio/corort"
	"github.com/coroio/coroio/internal/corolog"
	"github.com/coroio/coroio/reactor"
	"github.com/coroio/coroio/transport"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:0", "listen address")
	flag.Parse()

	logger := corolog.Default()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Err().Err(err).Log("listen failed")
		os.Exit(1)
	}
	logger.Info().Str("addr", ln.Addr().String()).Log("echoserver listening")

	poller, err := reactor.NewPoller()
	if err != nil {
		logger.Err().Err(err).Log("failed to create poller")
		os.Exit(1)
	}
	defer poller.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go acceptLoop(ctx, ln.(*net.TCPListener), poller)

	if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Err().Err(err).Log("poller exited")
	}
}

// acceptLoop accepts connections and wires each one into a fresh
// Builder-spawned coroutine. It runs on its own goroutine; Register
// itself is safe for concurrent use with the Poller's dispatch loop (see
// package reactor).
func acceptLoop(ctx context.Context, ln *net.TCPListener, poller *reactor.Poller) {
	logger := corolog.Default()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Err().Err(err).Log("accept failed")
			continue
		}

		tcpConn, ok := conn.(*net.TCPConn)
		if !ok {
			conn.Close()
			continue
		}

		t, err := transport.New(tcpConn)
		if err != nil {
			logger.Err().Err(err).Log("failed to wrap connection")
			conn.Close()
			continue
		}

		b := coroio.NewBuilder(corort.Runtime{})
		ext, err := b.WrapIO(poller, t)
		if err != nil {
			logger.Err().Err(err).Log("failed to register connection")
			t.Close()
			continue
		}

		b.Start(func(handles []*coroio.InternalHandle) {
			echo(handles[0])
		})

		_ = ext // retained by the reactor's registered callback
	}
}

// echo is the coroutine body: read up to 4 bytes, write them back, until
// end-of-stream or error.
func echo(io *coroio.InternalHandle) {
	buf := make([]byte, 4)
	for {
		n, err := io.Read(buf)
		if n == 0 || err != nil {
			return
		}
		if _, err := io.Write(buf[:n]); err != nil {
			return
		}
	}
}
