package badges

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

type awardKey struct{ user, badge primitive.ObjectID }

// MemoryRepo is an in-memory Repository. Award enforces the (user, badge)
// uniqueness the Mongo index provides.
type MemoryRepo struct {
	mu     sync.RWMutex
	badges map[string]*models.Badge
	awards map[awardKey]*models.UserBadge
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{badges: map[string]*models.Badge{}, awards: map[awardKey]*models.UserBadge{}}
}

func (m *MemoryRepo) UpsertBadge(_ context.Context, b *models.Badge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	cur, ok := m.badges[b.Code]
	if !ok {
		cur = &models.Badge{ID: primitive.NewObjectID(), Code: b.Code, CreatedAt: now}
		m.badges[b.Code] = cur
	}
	cur.Title = b.Title
	cur.Description = b.Description
	cur.Icon = b.Icon
	cur.UpdatedAt = now
	*b = *cur
	return nil
}

func (m *MemoryRepo) List(_ context.Context) ([]*models.Badge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Badge, 0, len(m.badges))
	for _, b := range m.badges {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MemoryRepo) GetByCode(_ context.Context, code string) (*models.Badge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.badges[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MemoryRepo) HasBadge(_ context.Context, userID, badgeID primitive.ObjectID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.awards[awardKey{userID, badgeID}]
	return ok, nil
}

func (m *MemoryRepo) Award(_ context.Context, ub *models.UserBadge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := awardKey{ub.User, ub.Badge}
	if _, ok := m.awards[k]; ok {
		return store.ErrDuplicate
	}
	ub.ID = primitive.NewObjectID()
	if ub.AchievedAt.IsZero() {
		ub.AchievedAt = time.Now().UTC()
	}
	cp := *ub
	m.awards[k] = &cp
	return nil
}

func (m *MemoryRepo) ListForUser(_ context.Context, userID primitive.ObjectID) ([]*models.UserBadge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.UserBadge{}
	for k, ub := range m.awards {
		if k.user == userID {
			cp := *ub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AchievedAt.Before(out[j].AchievedAt) })
	return out, nil
}
