package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotLocksMutualExclusion(t *testing.T) {
	locks := NewSlotLocks()

	const workers = 32
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Acquire("room-1", "2025-08-04")
			defer release()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, workers, counter)
}

func TestSlotLocksIndependentKeysDoNotBlock(t *testing.T) {
	locks := NewSlotLocks()

	release := locks.Acquire("room-1", "2025-08-04")
	defer release()

	done := make(chan struct{})
	go func() {
		other := locks.Acquire("room-1", "2025-08-05")
		other()
		close(done)
	}()
	<-done
}

func TestSlotLocksReleaseIsIdempotent(t *testing.T) {
	locks := NewSlotLocks()

	release := locks.Acquire("room-1", "2025-08-04")
	release()
	release()

	again := locks.Acquire("room-1", "2025-08-04")
	again()
}

func TestSlotLocksEntriesAreReclaimed(t *testing.T) {
	locks := NewSlotLocks()

	release := locks.Acquire("room-1", "2025-08-04")
	release()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.slots)
}

func TestSlotLocksAcquireAllReleasesEverything(t *testing.T) {
	locks := NewSlotLocks()

	release := locks.AcquireAll("room-1", []string{"2025-08-04", "2025-08-11", "2025-08-18"})
	release()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.slots)
}
