package common

import (
	"fmt"
	"runtime"

	"github.com/devlights/gomy/output"
	"github.com/petermattis/goid"
	"github.com/sasha-s/go-deadlock"
)

// Assert panics with msg if condition is false. Used at the boundaries
// the spec calls invariants rather than recoverable errors (§8). Dumps
// every goroutine's stack first, since an invariant violation here is
// almost always a caller-side bug (e.g. a frame reference held past
// unpin, see spec §5) that's easier to place with the full stack dump
// than with the panicking goroutine alone.
func Assert(condition bool, msg string) {
	if !condition {
		DumpGoroutines()
		panic(msg)
	}
}

// RecursiveMutex is a mutex that the same goroutine may Lock more than
// once without deadlocking itself, unlocking only once the matching
// number of Unlock calls have been made. §5 requires the buffer pool
// manager's single guarding lock to behave this way, since teardown's
// flush-all path calls FlushPage (a public, locking method) while
// already holding the pool lock. Go's sync.Mutex has no such mode, so
// ownership is tracked by goroutine id, the standard recipe.
type RecursiveMutex struct {
	mu    deadlock.Mutex
	owner int64
	depth int32
}

// NewRecursiveMutex returns an unlocked RecursiveMutex.
func NewRecursiveMutex() *RecursiveMutex {
	return &RecursiveMutex{owner: -1}
}

// Lock acquires the mutex. Re-entrant calls from the goroutine that
// already holds it succeed immediately and increment the depth counter.
func (m *RecursiveMutex) Lock() {
	gid := goid.Get()
	if m.owner == gid {
		m.depth++
		return
	}
	m.mu.Lock()
	m.owner = gid
	m.depth = 1
}

// Unlock releases one level of recursion. The underlying lock is only
// released once depth returns to zero.
func (m *RecursiveMutex) Unlock() {
	gid := goid.Get()
	Assert(m.owner == gid, "RecursiveMutex: Unlock called by non-owning goroutine")
	m.depth--
	if m.depth == 0 {
		m.owner = -1
		m.mu.Unlock()
	}
}

// DumpGoroutines writes every goroutine's stack trace through the
// output package, for use when a caller-side bug (e.g. a frame
// reference held past unpin, see spec §5) needs to be tracked down.
func DumpGoroutines() {
	buf := make([]byte, 1<<16)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			output.Stdoutl("=== goroutine dump ===", fmt.Sprintf("%s", buf[:n]))
			return
		}
		buf = make([]byte, 2*len(buf))
	}
}
