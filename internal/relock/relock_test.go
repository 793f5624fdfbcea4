package relock

import (
	"sync"
	"testing"
	"time"
)

func TestReentrantLock(t *testing.T) {
	var m Mutex
	m.Lock()
	m.Lock()
	m.Lock()
	if !m.Held() {
		t.Fatal("expected lock to be held")
	}
	m.Unlock()
	m.Unlock()
	if !m.Held() {
		t.Fatal("lock released too early")
	}
	m.Unlock()
	if m.Held() {
		t.Fatal("lock still held after final unlock")
	}
}

func TestTryLockContended(t *testing.T) {
	var m Mutex
	m.Lock()
	defer m.Unlock()

	got := make(chan bool)
	go func() {
		got <- m.TryLock()
	}()
	if <-got {
		t.Fatal("TryLock succeeded while another goroutine holds the lock")
	}
}

func TestTryLockReentrant(t *testing.T) {
	var m Mutex
	m.Lock()
	if !m.TryLock() {
		t.Fatal("re-entrant TryLock failed")
	}
	m.Unlock()
	m.Unlock()
}

func TestLockTimeout(t *testing.T) {
	var m Mutex
	m.Lock()

	got := make(chan bool)
	go func() {
		got <- m.LockTimeout(20 * time.Millisecond)
	}()
	if <-got {
		t.Fatal("LockTimeout succeeded while lock held elsewhere")
	}

	m.Unlock()
	go func() {
		ok := m.LockTimeout(time.Second)
		if ok {
			m.Unlock()
		}
		got <- ok
	}()
	if !<-got {
		t.Fatal("LockTimeout failed on free lock")
	}
}

func TestMutualExclusion(t *testing.T) {
	var m Mutex
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()
	if counter != 8000 {
		t.Fatalf("expected 8000 increments, got %d", counter)
	}
}

func TestUnlockByNonOwnerPanics(t *testing.T) {
	var m Mutex
	m.Lock()
	done := make(chan bool)
	go func() {
		defer func() {
			done <- recover() != nil
		}()
		m.Unlock()
	}()
	if !<-done {
		t.Fatal("expected panic when unlocking from a non-owner goroutine")
	}
	m.Unlock()
}
