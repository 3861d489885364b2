package coroio

import (
	"github.com/coroio/coroio/internal/corolog"
	"github.com/coroio/coroio/reactor"
)

// Kind enumerates the four Coroutine State variants of spec.md §3.
type Kind uint8

const (
	// KindRunning: the coroutine body is executing.
	KindRunning Kind = iota
	// KindBlockedOnRead: parked inside Internal Handle Read, waiting on Token.
	KindBlockedOnRead
	// KindBlockedOnWrite: parked inside Internal Handle Write, waiting on Token.
	KindBlockedOnWrite
	// KindFinished: the coroutine body has returned. Terminal.
	KindFinished
)

// State is the tagged Coroutine State value. Token is meaningful only for
// KindBlockedOnRead/KindBlockedOnWrite.
type State struct {
	Kind  Kind
	Token reactor.Token
}

// Running constructs the Running state.
func Running() State { return State{Kind: KindRunning} }

// BlockedOnRead constructs a state parked on a read of t.
func BlockedOnRead(t reactor.Token) State { return State{Kind: KindBlockedOnRead, Token: t} }

// BlockedOnWrite constructs a state parked on a write of t.
func BlockedOnWrite(t reactor.Token) State { return State{Kind: KindBlockedOnWrite, Token: t} }

// Finished constructs the terminal state.
func Finished() State { return State{Kind: KindFinished} }

// InterestFor maps (State, Token) to the reactor interest mask, per
// spec.md §4.A. Querying interest for KindRunning is a contract
// violation: debug builds (-tags coroio_debug) panic; production builds
// log at error level and return no interest, since panicking on the
// reactor's hot dispatch path is worse than a logged anomaly.
func (s State) InterestFor(token reactor.Token) reactor.IOEvents {
	switch s.Kind {
	case KindRunning:
		assertOrLog("contract violation: interest queried for a Running coroutine")
		return 0
	case KindBlockedOnRead:
		if s.Token == token {
			return reactor.EventReadable
		}
		return 0
	case KindBlockedOnWrite:
		if s.Token == token {
			return reactor.EventWritable
		}
		return 0
	case KindFinished:
		return reactor.EventHup
	default:
		assertOrLog("contract violation: unknown State.Kind")
		return 0
	}
}

func logContractViolation(msg string) {
	corolog.Default().Err().Str("component", "coroio").Log(msg)
}
