package memory

import (
	"context"
	"sync"

	"leadgate/internal/lead/models"
	"leadgate/pkg/requestcontext"
)

// InMemoryStore keeps records in process memory. It backs local runs and
// tests; records do not survive a restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []*models.Record
	byIP    map[string]int
}

func New() *InMemoryStore {
	return &InMemoryStore{
		byIP: make(map[string]int),
	}
}

func (s *InMemoryStore) Count(_ context.Context, ip string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byIP[ip], nil
}

func (s *InMemoryStore) Insert(ctx context.Context, sub models.NormalizedSubmission) (*models.Record, error) {
	rec := models.NewRecord(sub, requestcontext.Now(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.byIP[sub.IPAddress]++

	out := *rec
	return &out, nil
}

// Records returns a snapshot of all stored records in insertion order.
func (s *InMemoryStore) Records() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	return out
}

func (s *InMemoryStore) Health(context.Context) error {
	return nil
}
