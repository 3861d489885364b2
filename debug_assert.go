//go:build coroio_debug

package coroio

// assertOrLog panics in debug builds (-tags coroio_debug), surfacing
// contract violations (spec.md §7) immediately during development/tests.
func assertOrLog(msg string) {
	panic("coroio: " + msg)
}
