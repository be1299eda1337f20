package badges

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

// Repository persists the badge catalog and awarded badges.
type Repository interface {
	// UpsertBadge inserts or refreshes a catalog entry keyed by code.
	UpsertBadge(ctx context.Context, b *models.Badge) error
	List(ctx context.Context) ([]*models.Badge, error)
	GetByCode(ctx context.Context, code string) (*models.Badge, error)
	HasBadge(ctx context.Context, userID, badgeID primitive.ObjectID) (bool, error)
	// Award inserts a UserBadge. A second award of the same badge yields store.ErrDuplicate.
	Award(ctx context.Context, ub *models.UserBadge) error
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.UserBadge, error)
}

// MongoRepo implements Repository on the badges and userbadges collections.
type MongoRepo struct {
	badges     *mongo.Collection
	userBadges *mongo.Collection
}

func NewMongoRepo(badges, userBadges *mongo.Collection) *MongoRepo {
	return &MongoRepo{badges: badges, userBadges: userBadges}
}

func (m *MongoRepo) UpsertBadge(ctx context.Context, b *models.Badge) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":       b.Title,
			"description": b.Description,
			"icon":        b.Icon,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.Badge
	if err := m.badges.FindOneAndUpdate(ctx, bson.M{"code": b.Code}, update, opts).Decode(&out); err != nil {
		return store.MapError(err)
	}
	*b = out
	return nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*models.Badge, error) {
	cur, err := m.badges.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Badge{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) GetByCode(ctx context.Context, code string) (*models.Badge, error) {
	var b models.Badge
	if err := m.badges.FindOne(ctx, bson.M{"code": code}).Decode(&b); err != nil {
		return nil, store.MapError(err)
	}
	return &b, nil
}

func (m *MongoRepo) HasBadge(ctx context.Context, userID, badgeID primitive.ObjectID) (bool, error) {
	n, err := m.userBadges.CountDocuments(ctx, bson.M{"user": userID, "badge": badgeID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (m *MongoRepo) Award(ctx context.Context, ub *models.UserBadge) error {
	ub.ID = primitive.NewObjectID()
	if ub.AchievedAt.IsZero() {
		ub.AchievedAt = time.Now().UTC()
	}
	_, err := m.userBadges.InsertOne(ctx, ub)
	return store.MapError(err)
}

func (m *MongoRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.UserBadge, error) {
	cur, err := m.userBadges.Find(ctx, bson.M{"user": userID}, options.Find().SetSort(bson.D{{Key: "achievedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.UserBadge{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
