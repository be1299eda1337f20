package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProgress tracks completion of one node by one user. (User, Node) is unique.
// CompletedAt is the first completion; later completions only bump UpdatedAt.
type UserProgress struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Node        primitive.ObjectID `bson:"node" json:"node"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
