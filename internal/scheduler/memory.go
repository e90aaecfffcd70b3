package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	at        time.Time
	bookingID uuid.UUID
}

// MemoryScheduler keeps deadlines in process memory. It offers no durability
// and exists for tests and single-node development runs.
type MemoryScheduler struct {
	mu      sync.Mutex
	entries []memoryEntry
}

func NewMemoryScheduler() *MemoryScheduler {
	return &MemoryScheduler{}
}

func (s *MemoryScheduler) Schedule(ctx context.Context, at time.Time, bookingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, memoryEntry{at: at, bookingID: bookingID})
	return nil
}

// Due returns and removes every entry due at or before now, ordered by
// deadline. Entries whose handler fails should be re-scheduled by the caller.
func (s *MemoryScheduler) Due(now time.Time) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []memoryEntry
	var rest []memoryEntry
	for _, e := range s.entries {
		if !e.at.After(now) {
			due = append(due, e)
		} else {
			rest = append(rest, e)
		}
	}
	s.entries = rest

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })

	ids := make([]uuid.UUID, 0, len(due))
	for _, e := range due {
		ids = append(ids, e.bookingID)
	}
	return ids
}

// Pending reports how many deadlines are still queued
func (s *MemoryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
