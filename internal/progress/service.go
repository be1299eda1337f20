package progress

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
)

// UserStore holds the favorites and completed lists of a user.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	AddFavorite(ctx context.Context, userID, nodeID primitive.ObjectID) ([]primitive.ObjectID, error)
	AddCompleted(ctx context.Context, userID, nodeID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type NodeStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Node, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Node, error)
}

// BadgeAwarder runs badge assignment after a completion.
type BadgeAwarder interface {
	CheckAndAssign(ctx context.Context, userID primitive.ObjectID) ([]*models.Badge, error)
}

// Completion is the outcome of marking a node completed.
type Completion struct {
	Completed []primitive.ObjectID
	NewBadges []*models.Badge
}

type Service struct {
	repo   Repository
	users  UserStore
	nodes  NodeStore
	badges BadgeAwarder
}

func NewService(repo Repository, users UserStore, nodes NodeStore, badges BadgeAwarder) *Service {
	return &Service{repo: repo, users: users, nodes: nodes, badges: badges}
}

// AddFavorite appends the node to the user's favorites if absent.
func (s *Service) AddFavorite(ctx context.Context, user *models.User, nodeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if _, err := s.nodes.Get(ctx, nodeID); err != nil {
		return nil, err
	}
	return s.users.AddFavorite(ctx, user.ID, nodeID)
}

// Complete records the node as completed for user and awards any badge the
// new total unlocks. Repeating it for the same node changes nothing.
func (s *Service) Complete(ctx context.Context, user *models.User, nodeID primitive.ObjectID) (*Completion, error) {
	if _, err := s.nodes.Get(ctx, nodeID); err != nil {
		return nil, err
	}
	completed, err := s.users.AddCompleted(ctx, user.ID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("add completed: %w", err)
	}
	if _, err := s.repo.MarkCompleted(ctx, user.ID, nodeID); err != nil {
		return nil, fmt.Errorf("mark progress: %w", err)
	}
	awarded, err := s.badges.CheckAndAssign(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("assign badges: %w", err)
	}
	return &Completion{Completed: completed, NewBadges: awarded}, nil
}

// Favorites returns the user's favorite nodes, resolved.
func (s *Service) Favorites(ctx context.Context, user *models.User) ([]*models.Node, error) {
	u, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.nodes.ListByIDs(ctx, u.Favorites)
}

// Completed returns the user's completed nodes, resolved.
func (s *Service) Completed(ctx context.Context, user *models.User) ([]*models.Node, error) {
	u, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.nodes.ListByIDs(ctx, u.Completed)
}
