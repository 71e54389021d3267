package service

import "sync"

// SlotLocks serialises the check-then-insert sequence per (room, date) so
// two concurrent requests for the same room and overlapping time on the same
// date cannot both pass the availability check. Entries are reference
// counted and removed once released, keeping the registry bounded by the
// number of in-flight requests.
//
// The guard is per process. Running several instances against one database
// would need the lock moved into the store (advisory lock or exclusion
// constraint).
type SlotLocks struct {
	mu    sync.Mutex
	slots map[string]*slotEntry
}

type slotEntry struct {
	mu   sync.Mutex
	refs int
}

func NewSlotLocks() *SlotLocks {
	return &SlotLocks{slots: make(map[string]*slotEntry)}
}

// Acquire blocks until the (room, date) slot is exclusively held and returns
// the release function.
func (l *SlotLocks) Acquire(roomID, date string) func() {
	key := roomID + "|" + date

	l.mu.Lock()
	entry, ok := l.slots[key]
	if !ok {
		entry = &slotEntry{}
		l.slots[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.slots, key)
			}
			l.mu.Unlock()
		})
	}
}

// AcquireAll locks every date for the room in the order given. Callers pass
// dates in ascending order so concurrent multi-date requests cannot
// deadlock.
func (l *SlotLocks) AcquireAll(roomID string, dates []string) func() {
	releases := make([]func(), 0, len(dates))
	for _, date := range dates {
		releases = append(releases, l.Acquire(roomID, date))
	}
	return func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
}
