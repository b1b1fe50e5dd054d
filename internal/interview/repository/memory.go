package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
)

// MemoryRepo keeps sessions in process memory. It stores and returns deep copies so
// callers can never mutate stored state without going through Update.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*interview.Session
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*interview.Session)}
}

func (m *MemoryRepo) Create(_ context.Context, s *interview.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.store[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	m.store[s.ID] = s.Clone()
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*interview.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, interview.ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryRepo) Update(_ context.Context, s *interview.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[s.ID]
	if !ok {
		return interview.ErrNotFound
	}
	if cur.Version != s.Version {
		return interview.ErrConflict
	}
	s.Version++
	m.store[s.ID] = s.Clone()
	return nil
}

func (m *MemoryRepo) ListByOwner(_ context.Context, ownerID string) ([]*interview.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*interview.Session{}
	for _, s := range m.store {
		if s.OwnerID == ownerID {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
