package nodes

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
	nodes map[primitive.ObjectID]*models.Node
	last  time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nodes: make(map[primitive.ObjectID]*models.Node)}
}

func (m *MemoryRepo) Create(_ context.Context, n *models.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if !now.After(m.last) {
		now = m.last.Add(time.Millisecond)
	}
	m.last = now
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.Children == nil {
		n.Children = []primitive.ObjectID{}
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	m.nodes[n.ID] = cloneNode(n)
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneNode(n), nil
}

func (m *MemoryRepo) List(_ context.Context) ([]*models.Node, error) {
	return m.filter(func(*models.Node) bool { return true }), nil
}

func (m *MemoryRepo) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.nodes[id]; ok {
			out = append(out, cloneNode(n))
		}
	}
	return out, nil
}

func (m *MemoryRepo) ListByTreeAndCreator(_ context.Context, treeID, creator primitive.ObjectID) ([]*models.Node, error) {
	return m.filter(func(n *models.Node) bool { return n.Tree == treeID && n.CreatedBy == creator }), nil
}

func (m *MemoryRepo) Search(_ context.Context, term string) ([]*models.Node, error) {
	term = strings.ToLower(term)
	return m.filter(func(n *models.Node) bool {
		return strings.Contains(strings.ToLower(n.Title), term) || strings.Contains(strings.ToLower(n.Description), term)
	}), nil
}

func (m *MemoryRepo) Update(_ context.Context, n *models.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.nodes[n.ID]
	if !ok {
		return store.ErrNotFound
	}
	cur.Title = n.Title
	cur.Description = n.Description
	cur.Type = n.Type
	cur.Tags = append([]string{}, n.Tags...)
	cur.UpdatedAt = time.Now().UTC()
	n.UpdatedAt = cur.UpdatedAt
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.nodes, id)
	return nil
}

func (m *MemoryRepo) DeleteByTree(_ context.Context, treeID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, node := range m.nodes {
		if node.Tree == treeID {
			delete(m.nodes, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) AddChild(_ context.Context, parentID, childID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.nodes[parentID]
	if !ok {
		return store.ErrNotFound
	}
	if !store.ContainsID(p.Children, childID) {
		p.Children = append(p.Children, childID)
	}
	return nil
}

func (m *MemoryRepo) RemoveChild(_ context.Context, parentID, childID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.nodes[parentID]
	if !ok {
		return store.ErrNotFound
	}
	p.Children = store.RemoveID(p.Children, childID)
	return nil
}

// filter returns matching nodes, oldest first.
func (m *MemoryRepo) filter(keep func(*models.Node) bool) []*models.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Node{}
	for _, n := range m.nodes {
		if keep(n) {
			out = append(out, cloneNode(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func cloneNode(n *models.Node) *models.Node {
	cp := *n
	if n.Parent != nil {
		p := *n.Parent
		cp.Parent = &p
	}
	cp.Children = append([]primitive.ObjectID{}, n.Children...)
	cp.Tags = append([]string{}, n.Tags...)
	return &cp
}
