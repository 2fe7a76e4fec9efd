package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/workexp/workexp-api/internal/experience"
	"github.com/workexp/workexp-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository is the persistence contract shared by the Mongo and memory stores.
type Repository interface {
	Insert(ctx context.Context, e *experience.Experience) error
	FindByID(ctx context.Context, id string) (*experience.Experience, error)
	Find(ctx context.Context, f experience.Filter) ([]*experience.Experience, int64, error)
	Replace(ctx context.Context, e *experience.Experience) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	SkillCounts(ctx context.Context) ([]experience.SkillCount, error)
}

// MemoryRepo keeps experiences in a map. It backs unit tests and the
// fallback mode used when MongoDB is unreachable at startup.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*experience.Experience
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[primitive.ObjectID]*experience.Experience), now: store.Now}
}

func (m *MemoryRepo) Insert(ctx context.Context, e *experience.Experience) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.CreatedAt = m.now()
	e.UpdatedAt = e.CreatedAt
	m.store[e.ID] = e.Clone()
	return nil
}

func (m *MemoryRepo) FindByID(ctx context.Context, id string) (*experience.Experience, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.store[oid]; ok {
		return e.Clone(), nil
	}
	return nil, store.ErrNotFound
}

func (m *MemoryRepo) Find(ctx context.Context, f experience.Filter) ([]*experience.Experience, int64, error) {
	m.mu.RLock()
	out := make([]*experience.Experience, 0, len(m.store))
	for _, e := range m.store {
		if matches(e, f) {
			out = append(out, e.Clone())
		}
	}
	m.mu.RUnlock()

	s := f.Sort
	if s.Field == "" {
		s, _ = experience.ParseSort("")
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], s.Field)
		if c == 0 {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		if s.Desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(out))
	if f.Paginated() {
		skip := f.Skip()
		if skip >= len(out) {
			return []*experience.Experience{}, total, nil
		}
		end := skip + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[skip:end]
	}
	return out, total, nil
}

func (m *MemoryRepo) Replace(ctx context.Context, e *experience.Experience) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[e.ID]
	if !ok {
		return store.ErrNotFound
	}
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = m.now()
	m.store[e.ID] = e.Clone()
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

func (m *MemoryRepo) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.store))
	m.store = make(map[primitive.ObjectID]*experience.Experience)
	return n, nil
}

func (m *MemoryRepo) SkillCounts(ctx context.Context) ([]experience.SkillCount, error) {
	m.mu.RLock()
	counts := map[string]int{}
	for _, e := range m.store {
		for _, s := range e.Skills {
			counts[s]++
		}
	}
	m.mu.RUnlock()

	out := make([]experience.SkillCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, experience.SkillCount{Skill: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matches(e *experience.Experience, f experience.Filter) bool {
	if f.Archived != nil && e.Archived != *f.Archived {
		return false
	}
	if f.Company != "" && !containsFold(e.Company, f.Company) {
		return false
	}
	if f.Position != "" && !containsFold(e.Position, f.Position) {
		return false
	}
	if f.Query != "" {
		if containsFold(e.Company, f.Query) || containsFold(e.Position, f.Query) || containsFold(e.Description, f.Query) {
			return true
		}
		for _, s := range e.Skills {
			if containsFold(s, f.Query) {
				return true
			}
		}
		return false
	}
	return true
}

// compare orders by field; a missing endDate sorts before any set date,
// matching how Mongo orders null against dates.
func compare(a, b *experience.Experience, field string) int {
	switch field {
	case "company":
		return strings.Compare(a.Company, b.Company)
	case "position":
		return strings.Compare(a.Position, b.Position)
	case "endDate":
		switch {
		case a.EndDate == nil && b.EndDate == nil:
			return 0
		case a.EndDate == nil:
			return -1
		case b.EndDate == nil:
			return 1
		}
		return a.EndDate.Compare(*b.EndDate)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.StartDate.Compare(b.StartDate)
	}
}
