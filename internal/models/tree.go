package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tree is a named, optionally public collection of nodes.
type Tree struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	IsPublic    bool                 `bson:"isPublic" json:"isPublic"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Nodes       []primitive.ObjectID `bson:"nodes" json:"nodes"`
	Tags        []string             `bson:"tags" json:"tags"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// TreeSummary is the projection returned by the public listing.
type TreeSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	IsPublic    bool               `bson:"isPublic" json:"isPublic"`
	Tags        []string           `bson:"tags" json:"tags"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Summary projects t onto the public listing fields.
func (t *Tree) Summary() TreeSummary {
	return TreeSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsPublic:    t.IsPublic,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
	}
}

// TreeWithNodes is a tree whose node list has been resolved.
type TreeWithNodes struct {
	Tree
	Nodes []*Node `json:"nodes"`
}
