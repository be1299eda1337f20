package nodes

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

// Repository defines persistence operations for nodes
type Repository interface {
	Create(ctx context.Context, n *models.Node) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Node, error)
	List(ctx context.Context) ([]*models.Node, error)
	// ListByIDs returns the nodes in the order of ids, skipping missing ones.
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Node, error)
	// ListByTreeAndCreator returns oldest first.
	ListByTreeAndCreator(ctx context.Context, treeID, creator primitive.ObjectID) ([]*models.Node, error)
	// Search matches title or description against a case-insensitive literal substring.
	Search(ctx context.Context, term string) ([]*models.Node, error)
	// Update overwrites title, description, type and tags.
	Update(ctx context.Context, n *models.Node) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByTree(ctx context.Context, treeID primitive.ObjectID) (int64, error)
	AddChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	RemoveChild(ctx context.Context, parentID, childID primitive.ObjectID) error
}

// MongoRepo implements Repository on a MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, n *models.Node) error {
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.Children == nil {
		n.Children = []primitive.ObjectID{}
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	_, err := m.col.InsertOne(ctx, n)
	return store.MapError(err)
}

func (m *MongoRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Node, error) {
	var n models.Node
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return nil, store.MapError(err)
	}
	return &n, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*models.Node, error) {
	return m.find(ctx, bson.M{}, nil)
}

func (m *MongoRepo) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Node, error) {
	if len(ids) == 0 {
		return []*models.Node{}, nil
	}
	found, err := m.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids), nil
}

func (m *MongoRepo) ListByTreeAndCreator(ctx context.Context, treeID, creator primitive.ObjectID) ([]*models.Node, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return m.find(ctx, bson.M{"tree": treeID, "createdBy": creator}, opts)
}

func (m *MongoRepo) Search(ctx context.Context, term string) ([]*models.Node, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.M{"$or": bson.A{bson.M{"title": re}, bson.M{"description": re}}}
	return m.find(ctx, filter, nil)
}

func (m *MongoRepo) Update(ctx context.Context, n *models.Node) error {
	n.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":       n.Title,
		"description": n.Description,
		"type":        n.Type,
		"tags":        n.Tags,
		"updatedAt":   n.UpdatedAt,
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": n.ID}, bson.M{"$set": set})
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

func (m *MongoRepo) DeleteByTree(ctx context.Context, treeID primitive.ObjectID) (int64, error) {
	res, err := m.col.DeleteMany(ctx, bson.M{"tree": treeID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoRepo) AddChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	return m.updateChildren(ctx, parentID, bson.M{"$addToSet": bson.M{"children": childID}})
}

func (m *MongoRepo) RemoveChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	return m.updateChildren(ctx, parentID, bson.M{"$pull": bson.M{"children": childID}})
}

func (m *MongoRepo) updateChildren(ctx context.Context, parentID primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": parentID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Node, error) {
	if opts == nil {
		opts = options.Find()
	}
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Node{}
	for cur.Next(ctx) {
		var n models.Node
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, cur.Err()
}

func orderByIDs(found []*models.Node, ids []primitive.ObjectID) []*models.Node {
	byID := make(map[primitive.ObjectID]*models.Node, len(found))
	for _, n := range found {
		byID[n.ID] = n
	}
	out := make([]*models.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
