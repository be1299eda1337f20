package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

var (
	ErrEmpty          = errors.New("comment text is empty")
	ErrLength         = errors.New("comment text length out of range")
	ErrNotCommentable = errors.New("node does not accept comments")
)

type NodeStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Node, error)
}

type TreeStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Tree, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Service struct {
	repo  Repository
	nodes NodeStore
	trees TreeStore
	users UserStore
}

func NewService(repo Repository, nodes NodeStore, trees TreeStore, users UserStore) *Service {
	return &Service{repo: repo, nodes: nodes, trees: trees, users: users}
}

// ValidateText trims text and checks its length in characters.
func ValidateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	if n := utf8.RuneCountInString(text); n < models.CommentMinLen || n > models.CommentMaxLen {
		return "", ErrLength
	}
	return text, nil
}

// Create adds a comment by author on a node of a public tree.
func (s *Service) Create(ctx context.Context, author *models.User, nodeID primitive.ObjectID, text string) (*models.CommentView, error) {
	text, err := ValidateText(text)
	if err != nil {
		return nil, err
	}
	node, err := s.nodes.Get(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	tree, err := s.trees.Get(ctx, node.Tree)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotCommentable
	}
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}
	if !tree.IsPublic {
		return nil, ErrNotCommentable
	}

	c := &models.Comment{Text: text, Author: author.ID, Node: node.ID}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &models.CommentView{Comment: *c, Author: models.PublicUser{ID: author.ID, Name: author.Name}}, nil
}

// List returns the comments of a node, newest first, with authors resolved.
func (s *Service) List(ctx context.Context, nodeID primitive.ObjectID) ([]*models.CommentView, error) {
	list, err := s.repo.ListByNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	authors := map[primitive.ObjectID]models.PublicUser{}
	out := make([]*models.CommentView, 0, len(list))
	for _, c := range list {
		a, ok := authors[c.Author]
		if !ok {
			a = models.PublicUser{ID: c.Author}
			u, err := s.users.GetByID(ctx, c.Author)
			switch {
			case err == nil:
				a.Name = u.Name
			case !errors.Is(err, store.ErrNotFound):
				return nil, fmt.Errorf("load comment author: %w", err)
			}
			authors[c.Author] = a
		}
		out = append(out, &models.CommentView{Comment: *c, Author: a})
	}
	return out, nil
}
