package users

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

// MemoryRepo is an in-memory UserRepository used by tests and local runs.
// It enforces the same unique email constraint as the Mongo index.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *MemoryRepo) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Favorites == nil {
		u.Favorites = []primitive.ObjectID{}
	}
	if u.Completed == nil {
		u.Completed = []primitive.ObjectID{}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(u), nil
}

func (m *MemoryRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemoryRepo) AddFavorite(_ context.Context, userID, nodeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !store.ContainsID(u.Favorites, nodeID) {
		u.Favorites = append(u.Favorites, nodeID)
		u.UpdatedAt = time.Now().UTC()
	}
	return append([]primitive.ObjectID(nil), u.Favorites...), nil
}

func (m *MemoryRepo) AddCompleted(_ context.Context, userID, nodeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !store.ContainsID(u.Completed, nodeID) {
		u.Completed = append(u.Completed, nodeID)
		u.UpdatedAt = time.Now().UTC()
	}
	return append([]primitive.ObjectID(nil), u.Completed...), nil
}

func clone(u *models.User) *models.User {
	cp := *u
	cp.Favorites = append([]primitive.ObjectID{}, u.Favorites...)
	cp.Completed = append([]primitive.ObjectID{}, u.Completed...)
	return &cp
}
