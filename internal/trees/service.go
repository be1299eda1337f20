package trees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
)

// TrendingLimit caps the trending listing.
const TrendingLimit = 9

var (
	ErrNameRequired = errors.New("tree name is required")
	ErrInvalidNodes = errors.New("invalid node reference")
	ErrEmptyQuery   = errors.New("search term is required")
	ErrPrivate      = errors.New("tree is private")
	ErrForbidden    = errors.New("not the tree owner")
)

// NodeStore is the part of the node repository trees need for population and cascading deletes.
type NodeStore interface {
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Node, error)
	DeleteByTree(ctx context.Context, treeID primitive.ObjectID) (int64, error)
}

// Input carries the mutable fields of a tree.
type Input struct {
	Name        string
	Description string
	IsPublic    bool
	Tags        []string
	Nodes       []string
}

type Service struct {
	repo  Repository
	nodes NodeStore
}

func NewService(repo Repository, nodes NodeStore) *Service {
	return &Service{repo: repo, nodes: nodes}
}

// Create stores a tree owned by owner.
func (s *Service) Create(ctx context.Context, owner primitive.ObjectID, in Input) (*models.Tree, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	nodes := make([]primitive.ObjectID, 0, len(in.Nodes))
	for _, raw := range in.Nodes {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNodes, raw)
		}
		nodes = append(nodes, id)
	}
	t := &models.Tree{
		Name:        name,
		Description: in.Description,
		IsPublic:    in.IsPublic,
		Owner:       owner,
		Nodes:       nodes,
		Tags:        NormalizeTags(in.Tags),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tree: %w", err)
	}
	return t, nil
}

func (s *Service) Mine(ctx context.Context, owner primitive.ObjectID) ([]*models.Tree, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Public returns every public tree projected to its summary fields.
func (s *Service) Public(ctx context.Context) ([]models.TreeSummary, error) {
	list, err := s.repo.FindPublic(ctx, PublicQuery{})
	if err != nil {
		return nil, err
	}
	out := make([]models.TreeSummary, 0, len(list))
	for _, t := range list {
		out = append(out, t.Summary())
	}
	return out, nil
}

func (s *Service) Trending(ctx context.Context) ([]*models.Tree, error) {
	return s.repo.FindPublic(ctx, PublicQuery{Limit: TrendingLimit})
}

// ByCategory matches public trees carrying the tag (any case) or mentioning it in name or description.
func (s *Service) ByCategory(ctx context.Context, category string) ([]*models.Tree, error) {
	return s.repo.FindPublic(ctx, PublicQuery{Term: strings.TrimSpace(category), TagExact: true})
}

// Search matches public trees whose name, description or tags contain q.
func (s *Service) Search(ctx context.Context, q string) ([]*models.Tree, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	return s.repo.FindPublic(ctx, PublicQuery{Term: q})
}

func (s *Service) Tags(ctx context.Context) ([]string, error) {
	return s.repo.PublicTags(ctx)
}

// GetPublic returns a public tree with its nodes. Private trees yield ErrPrivate.
func (s *Service) GetPublic(ctx context.Context, id primitive.ObjectID) (*models.TreeWithNodes, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsPublic {
		return nil, ErrPrivate
	}
	return s.populate(ctx, t)
}

// GetOwned returns a tree of any visibility with its nodes, for its owner only.
func (s *Service) GetOwned(ctx context.Context, id primitive.ObjectID, user *models.User) (*models.TreeWithNodes, error) {
	t, err := s.owned(ctx, id, user)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, t)
}

// Update overwrites the mutable fields of an owned tree.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, user *models.User, in Input) (*models.Tree, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	t, err := s.owned(ctx, id, user)
	if err != nil {
		return nil, err
	}
	t.Name = name
	t.Description = in.Description
	t.IsPublic = in.IsPublic
	t.Tags = NormalizeTags(in.Tags)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update tree: %w", err)
	}
	return t, nil
}

// Delete removes an owned tree and then its nodes.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, user *models.User) error {
	if _, err := s.owned(ctx, id, user); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tree: %w", err)
	}
	if _, err := s.nodes.DeleteByTree(ctx, id); err != nil {
		return fmt.Errorf("delete tree nodes: %w", err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, id primitive.ObjectID, user *models.User) (*models.Tree, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || t.Owner != user.ID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *Service) populate(ctx context.Context, t *models.Tree) (*models.TreeWithNodes, error) {
	nodes, err := s.nodes.ListByIDs(ctx, t.Nodes)
	if err != nil {
		return nil, fmt.Errorf("load tree nodes: %w", err)
	}
	return &models.TreeWithNodes{Tree: *t, Nodes: nodes}, nil
}

// NormalizeTags trims every tag and drops empty ones.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
