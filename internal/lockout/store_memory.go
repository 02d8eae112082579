package lockout

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count        int
	windowExpiry time.Time
	lockedUntil  *time.Time
}

// InMemoryStore keeps lockout state in process memory. It backs development
// runs and unit tests; the semantics mirror the Redis store.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{entries: map[string]*memoryEntry{}}
}

func (s *InMemoryStore) RecordFailure(_ context.Context, identifier string, now time.Time, window time.Duration) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[identifier]
	if entry == nil || !entry.windowExpiry.After(now) {
		lockedUntil := (*time.Time)(nil)
		if entry != nil {
			lockedUntil = entry.lockedUntil
		}
		entry = &memoryEntry{windowExpiry: now.Add(window), lockedUntil: lockedUntil}
		s.entries[identifier] = entry
	}
	entry.count++
	return s.recordLocked(identifier, entry, now), nil
}

func (s *InMemoryStore) Get(_ context.Context, identifier string, now time.Time) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[identifier]
	if entry == nil {
		return nil, nil
	}
	return s.recordLocked(identifier, entry, now), nil
}

func (s *InMemoryStore) Lock(_ context.Context, identifier string, now time.Time, duration time.Duration) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until := now.Add(duration)
	entry := s.entries[identifier]
	if entry == nil {
		entry = &memoryEntry{}
		s.entries[identifier] = entry
	}
	entry.lockedUntil = &until
	return until, nil
}

func (s *InMemoryStore) Clear(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, identifier)
	return nil
}

// recordLocked snapshots an entry under the held mutex. Counts outside the
// window read as zero, matching key expiry in the Redis store.
func (s *InMemoryStore) recordLocked(identifier string, entry *memoryEntry, now time.Time) *Record {
	record := &Record{Identifier: identifier}
	if entry.windowExpiry.After(now) {
		record.FailureCount = entry.count
	}
	if entry.lockedUntil != nil && entry.lockedUntil.After(now) {
		until := *entry.lockedUntil
		record.LockedUntil = &until
	}
	return record
}
