package comments

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

type Repository interface {
	Create(ctx context.Context, c *models.Comment) error
	// ListByNode returns the comments of a node, newest first.
	ListByNode(ctx context.Context, nodeID primitive.ObjectID) ([]*models.Comment, error)
}

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, c *models.Comment) error {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := m.col.InsertOne(ctx, c)
	return store.MapError(err)
}

func (m *MongoRepo) ListByNode(ctx context.Context, nodeID primitive.ObjectID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"node": nodeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MemoryRepo is an in-memory Repository used by tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	comments []*models.Comment
	last     time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (m *MemoryRepo) Create(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if !now.After(m.last) {
		now = m.last.Add(time.Millisecond)
	}
	m.last = now
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	m.comments = append(m.comments, &cp)
	return nil
}

func (m *MemoryRepo) ListByNode(_ context.Context, nodeID primitive.ObjectID) ([]*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Comment{}
	for _, c := range m.comments {
		if c.Node == nodeID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
