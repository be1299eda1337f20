package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

// Repository persists UserProgress rows, one per (user, node).
type Repository interface {
	MarkCompleted(ctx context.Context, userID, nodeID primitive.ObjectID) (*models.UserProgress, error)
	CountCompleted(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// MarkCompleted upserts the (user, node) row. Two concurrent upserts can both
// miss and insert; the loser gets a duplicate key error and is retried once,
// at which point it matches the winner's row.
func (m *MongoRepo) MarkCompleted(ctx context.Context, userID, nodeID primitive.ObjectID) (*models.UserProgress, error) {
	p, err := m.upsert(ctx, userID, nodeID)
	if errors.Is(err, store.ErrDuplicate) {
		p, err = m.upsert(ctx, userID, nodeID)
	}
	return p, err
}

func (m *MongoRepo) upsert(ctx context.Context, userID, nodeID primitive.ObjectID) (*models.UserProgress, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"completed": true, "updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now, "completedAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var p models.UserProgress
	err := m.col.FindOneAndUpdate(ctx, bson.M{"user": userID, "node": nodeID}, update, opts).Decode(&p)
	if err != nil {
		return nil, store.MapError(err)
	}
	return &p, nil
}

func (m *MongoRepo) CountCompleted(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{"user": userID, "completed": true})
}

type progressKey struct{ user, node primitive.ObjectID }

// MemoryRepo is an in-memory Repository used by tests.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[progressKey]*models.UserProgress
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: map[progressKey]*models.UserProgress{}}
}

func (m *MemoryRepo) MarkCompleted(_ context.Context, userID, nodeID primitive.ObjectID) (*models.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := progressKey{userID, nodeID}
	now := time.Now().UTC()
	p, ok := m.rows[k]
	if !ok {
		p = &models.UserProgress{ID: primitive.NewObjectID(), User: userID, Node: nodeID, CreatedAt: now, CompletedAt: &now}
		m.rows[k] = p
	}
	p.Completed = true
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}

func (m *MemoryRepo) CountCompleted(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, p := range m.rows {
		if k.user == userID && p.Completed {
			n++
		}
	}
	return n, nil
}
