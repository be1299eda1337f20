package trees

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

// MemoryRepo is an in-memory Repository used by tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	trees map[primitive.ObjectID]*models.Tree

	// FailAppend, when set, is returned by AppendNode.
	FailAppend error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{trees: make(map[primitive.ObjectID]*models.Tree)}
}

func (m *MemoryRepo) Create(_ context.Context, t *models.Tree) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	// keep createdAt strictly increasing so newest-first ordering is stable
	for _, existing := range m.trees {
		if !now.After(existing.CreatedAt) {
			now = existing.CreatedAt.Add(time.Millisecond)
		}
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Nodes == nil {
		t.Nodes = []primitive.ObjectID{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	m.trees[t.ID] = cloneTree(t)
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Tree, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneTree(t), nil
}

func (m *MemoryRepo) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]*models.Tree, error) {
	return m.filter(func(t *models.Tree) bool { return t.Owner == owner }, 0), nil
}

func (m *MemoryRepo) FindPublic(_ context.Context, q PublicQuery) ([]*models.Tree, error) {
	return m.filter(func(t *models.Tree) bool { return t.IsPublic && matches(t, q) }, q.Limit), nil
}

func (m *MemoryRepo) PublicTags(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, t := range m.trees {
		if !t.IsPublic {
			continue
		}
		for _, tag := range t.Tags {
			if tag != "" {
				seen[tag] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, t *models.Tree) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.trees[t.ID]
	if !ok {
		return store.ErrNotFound
	}
	cur.Name = t.Name
	cur.Description = t.Description
	cur.IsPublic = t.IsPublic
	cur.Tags = append([]string{}, t.Tags...)
	cur.UpdatedAt = time.Now().UTC()
	t.UpdatedAt = cur.UpdatedAt
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trees[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.trees, id)
	return nil
}

func (m *MemoryRepo) AppendNode(_ context.Context, treeID, nodeID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAppend != nil {
		return m.FailAppend
	}
	t, ok := m.trees[treeID]
	if !ok {
		return store.ErrNotFound
	}
	t.Nodes = append(t.Nodes, nodeID)
	return nil
}

func (m *MemoryRepo) RemoveNode(_ context.Context, treeID, nodeID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trees[treeID]
	if !ok {
		return store.ErrNotFound
	}
	t.Nodes = store.RemoveID(t.Nodes, nodeID)
	return nil
}

func (m *MemoryRepo) filter(keep func(*models.Tree) bool, limit int64) []*models.Tree {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Tree{}
	for _, t := range m.trees {
		if keep(t) {
			out = append(out, cloneTree(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func matches(t *models.Tree, q PublicQuery) bool {
	if q.Term == "" {
		return true
	}
	term := strings.ToLower(q.Term)
	if strings.Contains(strings.ToLower(t.Name), term) || strings.Contains(strings.ToLower(t.Description), term) {
		return true
	}
	for _, tag := range t.Tags {
		tag = strings.ToLower(tag)
		if (q.TagExact && tag == term) || (!q.TagExact && strings.Contains(tag, term)) {
			return true
		}
	}
	return false
}

func cloneTree(t *models.Tree) *models.Tree {
	cp := *t
	cp.Nodes = append([]primitive.ObjectID{}, t.Nodes...)
	cp.Tags = append([]string{}, t.Tags...)
	return &cp
}
