package trees

import (
	"context"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

// PublicQuery filters public trees. An empty Term matches every public tree.
type PublicQuery struct {
	// Term is matched case-insensitively as a literal substring of name and description.
	Term string
	// TagExact matches Term against whole tags instead of tag substrings.
	TagExact bool
	// Limit caps the result; 0 means no cap.
	Limit int64
}

// Repository defines persistence operations for trees
type Repository interface {
	Create(ctx context.Context, t *models.Tree) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Tree, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.Tree, error)
	// FindPublic returns public trees matching q, newest first.
	FindPublic(ctx context.Context, q PublicQuery) ([]*models.Tree, error)
	PublicTags(ctx context.Context) ([]string, error)
	// Update overwrites name, description, isPublic and tags.
	Update(ctx context.Context, t *models.Tree) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AppendNode(ctx context.Context, treeID, nodeID primitive.ObjectID) error
	RemoveNode(ctx context.Context, treeID, nodeID primitive.ObjectID) error
}

// MongoRepo implements Repository on a MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, t *models.Tree) error {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Nodes == nil {
		t.Nodes = []primitive.ObjectID{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	_, err := m.col.InsertOne(ctx, t)
	return store.MapError(err)
}

func (m *MongoRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Tree, error) {
	var t models.Tree
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, store.MapError(err)
	}
	return &t, nil
}

func (m *MongoRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.Tree, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return m.find(ctx, bson.M{"owner": owner}, opts)
}

func (m *MongoRepo) FindPublic(ctx context.Context, q PublicQuery) ([]*models.Tree, error) {
	filter := bson.M{"isPublic": true}
	if q.Term != "" {
		quoted := regexp.QuoteMeta(q.Term)
		tagPattern := quoted
		if q.TagExact {
			tagPattern = "^" + quoted + "$"
		}
		filter["$or"] = bson.A{
			bson.M{"name": primitive.Regex{Pattern: quoted, Options: "i"}},
			bson.M{"description": primitive.Regex{Pattern: quoted, Options: "i"}},
			bson.M{"tags": primitive.Regex{Pattern: tagPattern, Options: "i"}},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return m.find(ctx, filter, opts)
}

func (m *MongoRepo) PublicTags(ctx context.Context) ([]string, error) {
	raw, err := m.col.Distinct(ctx, "tags", bson.M{"isPublic": true})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MongoRepo) Update(ctx context.Context, t *models.Tree) error {
	t.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":        t.Name,
		"description": t.Description,
		"isPublic":    t.IsPublic,
		"tags":        t.Tags,
		"updatedAt":   t.UpdatedAt,
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) AppendNode(ctx context.Context, treeID, nodeID primitive.ObjectID) error {
	return m.updateNodes(ctx, treeID, bson.M{"$push": bson.M{"nodes": nodeID}})
}

func (m *MongoRepo) RemoveNode(ctx context.Context, treeID, nodeID primitive.ObjectID) error {
	return m.updateNodes(ctx, treeID, bson.M{"$pull": bson.M{"nodes": nodeID}})
}

func (m *MongoRepo) updateNodes(ctx context.Context, treeID primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": treeID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Tree, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Tree{}
	for cur.Next(ctx) {
		var t models.Tree
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, cur.Err()
}
