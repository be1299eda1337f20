package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Badge is a catalog entry. Icon is an object key in the icon store.
type Badge struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Code        string             `bson:"code" json:"code"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Icon        string             `bson:"icon,omitempty" json:"icon,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserBadge records that a user holds a badge. (User, Badge) is unique.
type UserBadge struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User       primitive.ObjectID `bson:"user" json:"user"`
	Badge      primitive.ObjectID `bson:"badge" json:"badge"`
	AchievedAt time.Time          `bson:"achievedAt" json:"achievedAt"`
}

// UserBadgeView is a UserBadge with the badge resolved.
type UserBadgeView struct {
	UserBadge
	Badge *Badge `json:"badge"`
}
