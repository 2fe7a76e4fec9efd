package users

import (
	"context"
	"strings"
	"sync"

	"github.com/workexp/workexp-api/internal/models"
	"github.com/workexp/workexp-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository backs tests and the no-database fallback.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[primitive.ObjectID]models.User{}}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	now := store.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := store.Now()
	for id, existing := range r.users {
		if existing.Sub == u.Sub {
			existing.Email, existing.Name, existing.UpdatedAt = u.Email, u.Name, now
			r.users[id] = existing
			return &existing, nil
		}
	}
	created := *u
	created.ID = primitive.NewObjectID()
	created.CreatedAt, created.UpdatedAt = now, now
	r.users[created.ID] = created
	return &created, nil
}
