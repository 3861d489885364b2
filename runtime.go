package coroio

// Yielder is handed to a coroutine body; calling Yield parks the
// coroutine until the next Resume. Satisfied structurally by
// github.com/coroio/coroio/corort's yielder — package coroio never
// imports corort, keeping the coroutine runtime a true external
// collaborator per spec.md §6.
type Yielder interface {
	Yield()
}

// Coroutine is the handle an External Handle resumes. Satisfied
// structurally by corort's handle type.
type Coroutine interface {
	// Resume runs the coroutine until its next yield or return, reporting
	// whether it is still alive.
	Resume() (alive bool)
}

// CoroutineRuntime spawns coroutine bodies. Satisfied structurally by
// corort.Runtime.
type CoroutineRuntime interface {
	Spawn(body func(y Yielder)) Coroutine
}
