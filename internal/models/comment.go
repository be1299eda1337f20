package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CommentMinLen = 2
	CommentMaxLen = 1000
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Node      primitive.ObjectID `bson:"node" json:"node"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CommentView is a comment with its author reduced to id and name.
type CommentView struct {
	Comment
	Author PublicUser `json:"author"`
}
