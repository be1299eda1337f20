// Package search looks up public trees and nodes by a literal, case-insensitive term.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/trees"
)

// Result types.
const (
	TypeTree = "tree"
	TypeNode = "node"
)

var ErrEmptyQuery = errors.New("search term is required")

// Result is one search hit. Trees report their name as Title.
type Result struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        string             `json:"type"`
}

type TreeFinder interface {
	FindPublic(ctx context.Context, q trees.PublicQuery) ([]*models.Tree, error)
}

type NodeSearcher interface {
	Search(ctx context.Context, term string) ([]*models.Node, error)
}

type Service struct {
	trees TreeFinder
	nodes NodeSearcher
}

func NewService(t TreeFinder, n NodeSearcher) *Service {
	return &Service{trees: t, nodes: n}
}

// Search returns matching public trees followed by matching nodes.
func (s *Service) Search(ctx context.Context, q string) ([]Result, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	ts, err := s.trees.FindPublic(ctx, trees.PublicQuery{Term: q})
	if err != nil {
		return nil, fmt.Errorf("search trees: %w", err)
	}
	ns, err := s.nodes.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search nodes: %w", err)
	}
	out := make([]Result, 0, len(ts)+len(ns))
	for _, t := range ts {
		out = append(out, Result{ID: t.ID, Title: t.Name, Description: t.Description, Type: TypeTree})
	}
	for _, n := range ns {
		out = append(out, Result{ID: n.ID, Title: n.Title, Description: n.Description, Type: TypeNode})
	}
	return out, nil
}
