package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	Users          = "users"
	Trees          = "trees"
	Nodes          = "nodes"
	Comments       = "comments"
	Badges         = "badges"
	UserBadges     = "userbadges"
	UserProgresses = "userprogresses"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Indexes lists the indexes each collection needs. The unique ones back the
// duplicate checks of registration, badge awards and progress upserts.
func Indexes() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)
	return map[string][]mongo.IndexModel{
		Users:  {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		Badges: {{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique}},
		UserBadges: {{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "badge", Value: 1}},
			Options: unique,
		}},
		UserProgresses: {{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "node", Value: 1}},
			Options: unique,
		}},
		Nodes:    {{Keys: bson.D{{Key: "tree", Value: 1}, {Key: "createdAt", Value: 1}}}},
		Comments: {{Keys: bson.D{{Key: "node", Value: 1}, {Key: "createdAt", Value: -1}}}},
		Trees: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "isPublic", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
}

// EnsureIndexes creates every index from Indexes. Existing indexes are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range Indexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}
