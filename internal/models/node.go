package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Node types.
const (
	NodeIdea     = "idea"
	NodeResource = "recurso"
	NodeSkill    = "skill"
)

// ValidNodeType reports whether t is one of the node type enum values.
func ValidNodeType(t string) bool {
	switch t {
	case NodeIdea, NodeResource, NodeSkill:
		return true
	}
	return false
}

// Node is a single entry of a tree.
type Node struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Type        string               `bson:"type" json:"type"`
	Parent      *primitive.ObjectID  `bson:"parent,omitempty" json:"parent"`
	Children    []primitive.ObjectID `bson:"children" json:"children"`
	Tags        []string             `bson:"tags" json:"tags"`
	Tree        primitive.ObjectID   `bson:"tree" json:"tree"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// NodeDetail is a node with its tree and creator resolved.
type NodeDetail struct {
	Node
	Tree      *Tree `json:"tree"`
	CreatedBy *User `json:"createdBy"`
}
