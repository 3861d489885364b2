// Package coroio bridges an edge-triggered, one-shot I/O reactor with
// stackful-looking coroutines, so a connection handler can be written as
// a single straight-line function that cooperatively parks whenever an
// I/O operation would block.
//
// # Coroutine/reactor coupling
//
// The core of this package is the state machine tracking whether a
// coroutine is Running, BlockedOnRead(token), BlockedOnWrite(token), or
// Finished (see State), the rule mapping that state to a reactor interest
// mask (State.InterestFor), and the discipline for parking/resuming a
// coroutine without reentering it while it still holds a borrow on its
// own I/O object (see InternalHandle and ExternalHandle).
//
// # Usage
//
//	b := coroio.NewBuilder(corort.Runtime{})
//	ext, err := b.WrapIO(poller, tcpTransport)
//	b.Start(func(handles []*coroio.InternalHandle) {
//	    io := handles[0]
//	    buf := make([]byte, 4096)
//	    for {
//	        n, err := io.Read(buf)
//	        if n == 0 || err != nil {
//	            return
//	        }
//	        if _, err := io.Write(buf[:n]); err != nil {
//	            return
//	        }
//	    }
//	})
//
// See cmd/echoserver for a complete, runnable example.
//
// # Scope
//
// The underlying reactor, coroutine runtime, and transport are consumed
// through the narrow interfaces CoroutineRuntime/Coroutine/Yielder (this
// package) and reactor.Reactor / transport.Transport (sibling packages).
// Concrete implementations ship alongside (package reactor, package
// transport, package corort) so the library is usable end-to-end. The
// core in this package never imports corort, and uses package reactor and
// package transport only through their Reactor and Transport interfaces
// and value types.
package coroio
