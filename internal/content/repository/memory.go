package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/authorityai/authorityai/backend/go-services/internal/content"
)

// MemoryRepo is an in-memory content store used for local runs and unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*content.Artifact
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*content.Artifact)}
}

func (m *MemoryRepo) Create(_ context.Context, a *content.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[a.ID]; ok {
		return fmt.Errorf("content %s already exists", a.ID)
	}
	m.store[a.ID] = a.Clone()
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*content.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.store[id]; ok {
		return a.Clone(), nil
	}
	return nil, content.ErrNotFound
}

func (m *MemoryRepo) ListByOwner(_ context.Context, ownerID string, status content.Status) ([]*content.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*content.Artifact{}
	for _, a := range m.store {
		if a.OwnerID != ownerID || (status != "" && a.Status != status) {
			continue
		}
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) FindBySession(_ context.Context, ownerID, sessionID string) (*content.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *content.Artifact
	for _, a := range m.store {
		if a.OwnerID == ownerID && a.SessionID == sessionID {
			if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
				latest = a
			}
		}
	}
	return latest.Clone(), nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, p content.Patch) (*content.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Body != nil {
		a.Body = *p.Body
	}
	if p.Status != nil {
		a.Status = *p.Status
		if *p.Status == content.StatusPublished && a.PublishedAt == nil {
			at := p.At
			a.PublishedAt = &at
		}
	}
	if p.ExportKey != nil {
		a.ExportKey = *p.ExportKey
	}
	a.UpdatedAt = p.At
	return a.Clone(), nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return content.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) IncrementAnalytics(_ context.Context, id string, e content.Event) (*content.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	switch e {
	case content.EventView:
		a.Analytics.Views++
	case content.EventShare:
		a.Analytics.Shares++
	case content.EventEngagement:
		a.Analytics.Engagement++
	default:
		return nil, content.ErrInvalidInput
	}
	return a.Clone(), nil
}
