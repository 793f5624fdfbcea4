// Package relock provides a re-entrant mutex with try and timed acquire
// variants. The goroutine holding the lock may acquire it again without
// blocking; every Lock must be balanced by an Unlock from the same
// goroutine.
package relock

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

// Mutex is a re-entrant mutual exclusion lock. The zero value is unlocked
// and ready for use. A Mutex must not be copied after first use.
type Mutex struct {
	sem   chan struct{}
	owner atomic.Int64
	depth int
	init  atomic.Bool
}

func (m *Mutex) semaphore() chan struct{} {
	if !m.init.Load() {
		if m.init.CompareAndSwap(false, true) {
			m.sem = make(chan struct{}, 1)
		} else {
			// lost the race, spin until the winner publishes
			for m.sem == nil {
				runtime.Gosched()
			}
		}
	}
	return m.sem
}

// Lock acquires the mutex, blocking until it is available. If the calling
// goroutine already holds the mutex the recursion depth is incremented and
// Lock returns immediately.
func (m *Mutex) Lock() {
	id := goid()
	if m.owner.Load() == id {
		m.depth++
		return
	}
	m.semaphore() <- struct{}{}
	m.owner.Store(id)
	m.depth = 1
}

// TryLock attempts to acquire the mutex without blocking. It reports
// whether the lock was acquired. Re-entrant acquisition always succeeds.
func (m *Mutex) TryLock() bool {
	id := goid()
	if m.owner.Load() == id {
		m.depth++
		return true
	}
	select {
	case m.semaphore() <- struct{}{}:
		m.owner.Store(id)
		m.depth = 1
		return true
	default:
		return false
	}
}

// LockTimeout acquires the mutex, giving up after d elapses. It reports
// whether the lock was acquired; false means "would block", a recoverable
// outcome rather than an error.
func (m *Mutex) LockTimeout(d time.Duration) bool {
	id := goid()
	if m.owner.Load() == id {
		m.depth++
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case m.semaphore() <- struct{}{}:
		m.owner.Store(id)
		m.depth = 1
		return true
	case <-t.C:
		return false
	}
}

// Unlock releases one level of the lock. It panics if the calling goroutine
// does not hold the mutex.
func (m *Mutex) Unlock() {
	if m.owner.Load() != goid() {
		panic("relock: unlock of mutex not held by this goroutine")
	}
	m.depth--
	if m.depth == 0 {
		m.owner.Store(0)
		<-m.sem
	}
}

// Held reports whether the calling goroutine currently holds the mutex.
func (m *Mutex) Held() bool {
	return m.owner.Load() == goid()
}

var goroutinePrefix = []byte("goroutine ")

// goid extracts the current goroutine id from the runtime stack header.
// There is no public API for this; the header format ("goroutine N [...]")
// has been stable across every Go release.
func goid() int64 {
	var buf [32]byte
	n := runtime.Stack(buf[:], false)
	s := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	i := bytes.IndexByte(s, ' ')
	if i < 0 {
		return -1
	}
	id, err := strconv.ParseInt(string(s[:i]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
