package history

import (
	"context"
	"sync"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
)

// MemoryStore keeps history in process. Lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	entries []models.GenerationResult // newest first
}

// NewMemoryStore creates an in-process store holding at most limit results
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{limit: limit}
}

func (s *MemoryStore) Append(_ context.Context, result models.GenerationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]models.GenerationResult{result}, s.entries...)
	if len(s.entries) > s.limit {
		s.entries = s.entries[:s.limit]
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]models.GenerationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.GenerationResult, n)
	copy(out, s.entries[:n])
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
