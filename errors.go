package coroio

import (
	"errors"

	"github.com/coroio/coroio/internal/corolog"
	"github.com/coroio/coroio/reactor"
)

// Sentinel errors, in plain errors.New style.
var (
	// ErrResumeFailed names a coroutine resume failure. No function in
	// this package returns it: ExternalHandle logs a resume panic and
	// forces the Record to Finished so subsequent events drain (spec.md §7).
	ErrResumeFailed = errors.New("coroio: coroutine resume failed")
)

// logFatalReactorError logs a reactor registration/reregistration/
// deregistration failure at error level. Builder.WrapIO also returns a
// Register failure to its caller; a reregister failure is only logged, and
// the affected Cell and its coroutine are left as they are.
func logFatalReactorError(op string, token reactor.Token, err error) {
	corolog.Default().Err().
		Str("component", "coroio").
		Str("op", op).
		Uint64("token", uint64(token)).
		Err(err).
		Log("fatal reactor error")
}

// logResumeFailure logs a coroutine resume failure at error level.
func logResumeFailure(token reactor.Token, recovered any) {
	corolog.Default().Err().
		Str("component", "coroio").
		Uint64("token", uint64(token)).
		Interface("recovered", recovered).
		Log("coroutine resume panicked")
}
