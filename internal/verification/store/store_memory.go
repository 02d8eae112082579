package store

import (
	"context"
	"sync"
	"time"

	"vouch/internal/verification/models"
	"vouch/pkg/platform/sentinel"
)

// InMemoryStore keeps records in process memory. It backs development runs
// and unit tests; the semantics mirror the PostgreSQL store, including the
// conflict and inconsistency sentinels.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.Record
	nextID  int64
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Create(_ context.Context, record *models.Record, now time.Time) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		r := &s.records[i]
		if r.SourceUID == record.SourceUID && r.DestUID == record.DestUID && r.Active(now) {
			return nil, sentinel.ErrConflict
		}
	}

	var reverse *models.Record
	for i := range s.records {
		r := &s.records[i]
		if r.SourceUID == record.DestUID && r.DestUID == record.SourceUID && r.Active(now) {
			if reverse != nil {
				return nil, sentinel.ErrInconsistent
			}
			reverse = r
		}
	}

	created := *record
	created.ID = s.nextID
	s.nextID++
	if reverse != nil {
		reverse.Reciprocated = true
		created.Reciprocated = true
	}
	s.records = append(s.records, created)

	out := created
	return &out, nil
}

func (s *InMemoryStore) ExistsPair(_ context.Context, sourceUID, destUID string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		r := &s.records[i]
		if r.SourceUID == sourceUID && r.DestUID == destUID && r.Active(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].ID == id {
			out := s.records[i]
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindBySource(_ context.Context, uid string, now time.Time) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Record
	for i := range s.records {
		r := &s.records[i]
		if r.SourceUID == uid && r.Active(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) FindByDestination(_ context.Context, uid string, now time.Time) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Record
	for i := range s.records {
		r := &s.records[i]
		if r.DestUID == uid && r.Active(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) FindAllFor(_ context.Context, uid string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Record
	for i := range s.records {
		r := &s.records[i]
		if r.SourceUID == uid || r.DestUID == uid {
			out = append(out, *r)
		}
	}
	return out, nil
}
