package badges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/storage"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/pkg/logger"
	"github.com/devtree/devtree/backend/api/pkg/metrics"
)

// IconURLTTL is how long a presigned icon URL stays valid.
const IconURLTTL = 15 * time.Minute

var ErrNoIcon = errors.New("badge has no icon")

// ProgressCounter counts the nodes a user has completed.
type ProgressCounter interface {
	CountCompleted(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type Service struct {
	repo     Repository
	progress ProgressCounter
	icons    storage.IconStore
	rules    []Rule
}

// NewService builds the badge service. icons may be nil when object storage is not configured.
func NewService(repo Repository, progress ProgressCounter, icons storage.IconStore) *Service {
	return &Service{repo: repo, progress: progress, icons: icons, rules: Catalog}
}

// EnsureCatalog upserts every catalog badge by code. Safe to run on every start.
func (s *Service) EnsureCatalog(ctx context.Context) error {
	for _, r := range s.rules {
		b := r.Badge
		if err := s.repo.UpsertBadge(ctx, &b); err != nil {
			return fmt.Errorf("seed badge %s: %w", b.Code, err)
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*models.Badge, error) {
	return s.repo.List(ctx)
}

// ForUser returns the user's awarded badges with the badge resolved.
func (s *Service) ForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.UserBadgeView, error) {
	awarded, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Badge, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}
	out := make([]*models.UserBadgeView, 0, len(awarded))
	for _, ub := range awarded {
		out = append(out, &models.UserBadgeView{UserBadge: *ub, Badge: byID[ub.Badge]})
	}
	return out, nil
}

// CheckAndAssign awards every catalog badge whose threshold the user meets
// and returns the badges awarded by this call. The HasBadge lookup only
// skips work; a duplicate insert means a concurrent call won and is not an error.
func (s *Service) CheckAndAssign(ctx context.Context, userID primitive.ObjectID) ([]*models.Badge, error) {
	completed, err := s.progress.CountCompleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}

	awarded := []*models.Badge{}
	for _, r := range s.rules {
		if completed < r.MinCompleted {
			continue
		}
		b, err := s.repo.GetByCode(ctx, r.Badge.Code)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return awarded, fmt.Errorf("load badge %s: %w", r.Badge.Code, err)
		}
		has, err := s.repo.HasBadge(ctx, userID, b.ID)
		if err != nil {
			return awarded, fmt.Errorf("check badge %s: %w", b.Code, err)
		}
		if has {
			continue
		}
		err = s.repo.Award(ctx, &models.UserBadge{User: userID, Badge: b.ID})
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return awarded, fmt.Errorf("award badge %s: %w", b.Code, err)
		}
		metrics.BadgesAwarded.WithLabelValues(b.Code).Inc()
		logger.WithFields(map[string]interface{}{"user": userID.Hex(), "badge": b.Code}).Infof("badge awarded: %s", b.Title)
		awarded = append(awarded, b)
	}
	return awarded, nil
}

// IconURL returns a short-lived URL for the badge icon.
func (s *Service) IconURL(ctx context.Context, code string) (string, error) {
	b, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if b.Icon == "" || s.icons == nil {
		return "", ErrNoIcon
	}
	return s.icons.PresignedURL(ctx, b.Icon, IconURLTTL)
}
