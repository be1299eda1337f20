package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/pkg/logger"
)

var (
	ErrTreeRequired  = errors.New("tree is required")
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidType   = errors.New("invalid node type")
	ErrInvalidParent = errors.New("parent must be a node of the same tree")
	ErrTreeNotFound  = errors.New("tree not found")
	ErrForbidden     = errors.New("not allowed to modify this node")
)

// TreeStore is the part of the tree repository nodes need to keep tree node lists in sync.
type TreeStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Tree, error)
	AppendNode(ctx context.Context, treeID, nodeID primitive.ObjectID) error
	RemoveNode(ctx context.Context, treeID, nodeID primitive.ObjectID) error
}

// UserStore resolves node creators.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Input carries the fields accepted on create and update. Tree and Parent are
// only read on create.
type Input struct {
	Title       string
	Description string
	Type        string
	Tags        []string
	Tree        string
	Parent      string
}

type Service struct {
	repo  Repository
	trees TreeStore
	users UserStore
}

func NewService(repo Repository, trees TreeStore, users UserStore) *Service {
	return &Service{repo: repo, trees: trees, users: users}
}

// Create stores a node in a tree owned by user and appends it to the tree's
// node list. When the append fails the node is deleted again so that no node
// persists without its tree entry.
func (s *Service) Create(ctx context.Context, user *models.User, in Input) (*models.Node, error) {
	if strings.TrimSpace(in.Tree) == "" {
		return nil, ErrTreeRequired
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	treeID, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.Tree))
	if err != nil {
		return nil, ErrTreeNotFound
	}
	tree, err := s.trees.Get(ctx, treeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTreeNotFound
		}
		return nil, fmt.Errorf("load tree: %w", err)
	}
	if tree.Owner != user.ID {
		return nil, ErrForbidden
	}

	var parent *models.Node
	if p := strings.TrimSpace(in.Parent); p != "" {
		parent, err = s.parentIn(ctx, p, treeID)
		if err != nil {
			return nil, err
		}
	}

	n := &models.Node{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        in.Type,
		Tags:        normalizeTags(in.Tags),
		Tree:        treeID,
		CreatedBy:   user.ID,
	}
	if parent != nil {
		n.Parent = &parent.ID
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}

	if err := s.trees.AppendNode(ctx, treeID, n.ID); err != nil {
		s.compensate(ctx, n)
		return nil, fmt.Errorf("append node to tree: %w", err)
	}
	if parent != nil {
		if err := s.repo.AddChild(ctx, parent.ID, n.ID); err != nil {
			rctx, cancel := repairContext(ctx)
			defer cancel()
			if rerr := s.trees.RemoveNode(rctx, treeID, n.ID); rerr != nil {
				logger.Errorf("nodes: remove %s from tree %s after failed child link: %v", n.ID.Hex(), treeID.Hex(), rerr)
			}
			s.compensate(ctx, n)
			return nil, fmt.Errorf("link node to parent: %w", err)
		}
	}
	return n, nil
}

// repairTimeout bounds rollback writes that outlive a cancelled request.
const repairTimeout = 5 * time.Second

// repairContext keeps the request values but drops its cancellation, so a
// client that hangs up mid-create cannot strand the rollback.
func repairContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), repairTimeout)
}

func (s *Service) compensate(ctx context.Context, n *models.Node) {
	ctx, cancel := repairContext(ctx)
	defer cancel()
	if err := s.repo.Delete(ctx, n.ID); err != nil {
		logger.Errorf("nodes: compensating delete of %s failed: %v", n.ID.Hex(), err)
		return
	}
	logger.Warnf("nodes: rolled back node %s after failed tree update", n.ID.Hex())
}

func (s *Service) parentIn(ctx context.Context, raw string, treeID primitive.ObjectID) (*models.Node, error) {
	pid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, ErrInvalidParent
	}
	p, err := s.repo.Get(ctx, pid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidParent
		}
		return nil, fmt.Errorf("load parent: %w", err)
	}
	if p.Tree != treeID {
		return nil, ErrInvalidParent
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Node, error) {
	return s.repo.List(ctx)
}

// Get returns the node with its tree and creator. Either may be nil when the
// referenced document is gone.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.NodeDetail, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.NodeDetail{Node: *n}
	if t, err := s.trees.Get(ctx, n.Tree); err == nil {
		detail.Tree = t
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load node tree: %w", err)
	}
	if u, err := s.users.GetByID(ctx, n.CreatedBy); err == nil {
		detail.CreatedBy = u
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load node creator: %w", err)
	}
	return detail, nil
}

// ByTree lists the nodes of treeID created by user, oldest first.
func (s *Service) ByTree(ctx context.Context, treeID primitive.ObjectID, user *models.User) ([]*models.Node, error) {
	return s.repo.ListByTreeAndCreator(ctx, treeID, user.ID)
}

// Update overwrites title, description, type and tags of a node created by user.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, user *models.User, in Input) (*models.Node, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.CreatedBy != user.ID {
		return nil, ErrForbidden
	}
	n.Title = strings.TrimSpace(in.Title)
	n.Description = in.Description
	n.Type = in.Type
	n.Tags = normalizeTags(in.Tags)
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("update node: %w", err)
	}
	return n, nil
}

// Delete removes a node when user created it or is an admin, and unlinks it
// from its tree and parent.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, user *models.User) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.CreatedBy != user.ID && !user.IsAdmin() {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if err := s.trees.RemoveNode(ctx, n.Tree, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("unlink node from tree: %w", err)
	}
	if n.Parent != nil {
		if err := s.repo.RemoveChild(ctx, *n.Parent, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("unlink node from parent: %w", err)
		}
	}
	return nil
}

func validate(in Input) error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if !models.ValidNodeType(in.Type) {
		return ErrInvalidType
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
