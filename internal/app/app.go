// Package app wires repositories into the domain services.
package app

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devtree/devtree/backend/api/internal/badges"
	"github.com/devtree/devtree/backend/api/internal/comments"
	"github.com/devtree/devtree/backend/api/internal/database"
	"github.com/devtree/devtree/backend/api/internal/nodes"
	"github.com/devtree/devtree/backend/api/internal/progress"
	"github.com/devtree/devtree/backend/api/internal/search"
	"github.com/devtree/devtree/backend/api/internal/storage"
	"github.com/devtree/devtree/backend/api/internal/trees"
	"github.com/devtree/devtree/backend/api/internal/users"
)

// Repos holds one repository per collection.
type Repos struct {
	Users    users.UserRepository
	Trees    trees.Repository
	Nodes    nodes.Repository
	Progress progress.Repository
	Comments comments.Repository
	Badges   badges.Repository
}

// MongoRepos returns repositories backed by the collections of db.
func MongoRepos(db *mongo.Database) Repos {
	return Repos{
		Users:    users.NewMongoUserRepository(db.Collection(database.Users)),
		Trees:    trees.NewMongoRepo(db.Collection(database.Trees)),
		Nodes:    nodes.NewMongoRepo(db.Collection(database.Nodes)),
		Progress: progress.NewMongoRepo(db.Collection(database.UserProgresses)),
		Comments: comments.NewMongoRepo(db.Collection(database.Comments)),
		Badges:   badges.NewMongoRepo(db.Collection(database.Badges), db.Collection(database.UserBadges)),
	}
}

// MemoryRepos returns in-memory repositories for tests and local runs.
func MemoryRepos() Repos {
	return Repos{
		Users:    users.NewMemoryRepo(),
		Trees:    trees.NewMemoryRepo(),
		Nodes:    nodes.NewMemoryRepo(),
		Progress: progress.NewMemoryRepo(),
		Comments: comments.NewMemoryRepo(),
		Badges:   badges.NewMemoryRepo(),
	}
}

type Services struct {
	Users    *users.Service
	Trees    *trees.Service
	Nodes    *nodes.Service
	Progress *progress.Service
	Comments *comments.Service
	Badges   *badges.Service
	Search   *search.Service
}

// NewServices builds every service over r. icons may be nil when object
// storage is not configured.
func NewServices(r Repos, icons storage.IconStore) *Services {
	badgeSvc := badges.NewService(r.Badges, r.Progress, icons)
	return &Services{
		Users:    users.NewService(r.Users),
		Trees:    trees.NewService(r.Trees, r.Nodes),
		Nodes:    nodes.NewService(r.Nodes, r.Trees, r.Users),
		Progress: progress.NewService(r.Progress, r.Users, r.Nodes, badgeSvc),
		Comments: comments.NewService(r.Comments, r.Nodes, r.Trees, r.Users),
		Badges:   badgeSvc,
		Search:   search.NewService(r.Trees, r.Nodes),
	}
}
