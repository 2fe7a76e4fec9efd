package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/workexp/workexp-api/internal/project"
	"github.com/workexp/workexp-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Repository interface {
	Insert(ctx context.Context, p *project.Project) error
	FindByID(ctx context.Context, id string) (*project.Project, error)
	Find(ctx context.Context, f project.Filter) ([]*project.Project, error)
	Replace(ctx context.Context, p *project.Project) error
	Delete(ctx context.Context, id string) error
}

type MemoryRepo struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*project.Project
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[primitive.ObjectID]*project.Project)}
}

func (m *MemoryRepo) Insert(ctx context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = store.Now()
	p.UpdatedAt = p.CreatedAt
	m.store[p.ID] = p.Clone()
	return nil
}

func (m *MemoryRepo) FindByID(ctx context.Context, id string) (*project.Project, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[oid]; ok {
		return p.Clone(), nil
	}
	return nil, store.ErrNotFound
}

// Find returns newest projects first.
func (m *MemoryRepo) Find(ctx context.Context, f project.Filter) ([]*project.Project, error) {
	m.mu.RLock()
	out := make([]*project.Project, 0, len(m.store))
	for _, p := range m.store {
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		out = append(out, p.Clone())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (m *MemoryRepo) Replace(ctx context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = store.Now()
	m.store[p.ID] = p.Clone()
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[oid]; !ok {
		return store.ErrNotFound
	}
	delete(m.store, oid)
	return nil
}
