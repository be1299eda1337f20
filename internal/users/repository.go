package users

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

// UserRepository defines persistence operations for users
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// AddFavorite and AddCompleted append nodeID if absent and return the resulting list.
	AddFavorite(ctx context.Context, userID, nodeID primitive.ObjectID) ([]primitive.ObjectID, error)
	AddCompleted(ctx context.Context, userID, nodeID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
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
	_, err := r.col.InsertOne(ctx, u)
	return store.MapError(err)
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) AddFavorite(ctx context.Context, userID, nodeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	u, err := r.addToSet(ctx, userID, "favorites", nodeID)
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

func (r *MongoUserRepository) AddCompleted(ctx context.Context, userID, nodeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	u, err := r.addToSet(ctx, userID, "completed", nodeID)
	if err != nil {
		return nil, err
	}
	return u.Completed, nil
}

func (r *MongoUserRepository) addToSet(ctx context.Context, userID primitive.ObjectID, field string, nodeID primitive.ObjectID) (*models.User, error) {
	update := bson.M{
		"$addToSet": bson.M{field: nodeID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&u); err != nil {
		return nil, store.MapError(err)
	}
	return &u, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, store.MapError(err)
	}
	return &u, nil
}
