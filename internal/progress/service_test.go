package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/badges"
	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/nodes"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/internal/users"
)

type fixture struct {
	svc    *Service
	repo   *MemoryRepo
	badges *badges.MemoryRepo
	user   *models.User
	nodes  []*models.Node
}

func newFixture(t *testing.T, nodeCount int) *fixture {
	t.Helper()
	ctx := context.Background()
	userRepo := users.NewMemoryRepo()
	nodeRepo := nodes.NewMemoryRepo()
	f := &fixture{repo: NewMemoryRepo(), badges: badges.NewMemoryRepo()}

	badgeSvc := badges.NewService(f.badges, f.repo, nil)
	require.NoError(t, badgeSvc.EnsureCatalog(ctx))
	f.svc = NewService(f.repo, userRepo, nodeRepo, badgeSvc)

	f.user = &models.User{Name: "A", Email: "a@x.com", Role: models.RoleUser}
	require.NoError(t, userRepo.Create(ctx, f.user))
	tree := primitive.NewObjectID()
	for i := 0; i < nodeCount; i++ {
		n := &models.Node{Title: "n", Type: models.NodeIdea, Tree: tree, CreatedBy: f.user.ID}
		require.NoError(t, nodeRepo.Create(ctx, n))
		f.nodes = append(f.nodes, n)
	}
	return f
}

func TestAddFavorite(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	favs, err := f.svc.AddFavorite(ctx, f.user, f.nodes[0].ID)
	require.NoError(t, err)
	favs, err = f.svc.AddFavorite(ctx, f.user, f.nodes[0].ID)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{f.nodes[0].ID}, favs)

	_, err = f.svc.AddFavorite(ctx, f.user, primitive.NewObjectID())
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := f.svc.Favorites(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, f.nodes[0].ID, list[0].ID)
}

func TestMarkCompleted_KeepsFirstCompletion(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	user, node := primitive.NewObjectID(), primitive.NewObjectID()

	first, err := repo.MarkCompleted(ctx, user, node)
	require.NoError(t, err)
	require.True(t, first.Completed)
	require.NotNil(t, first.CompletedAt)
	require.False(t, first.CreatedAt.IsZero())
	require.Equal(t, first.CreatedAt, first.UpdatedAt)

	time.Sleep(2 * time.Millisecond)
	again, err := repo.MarkCompleted(ctx, user, node)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, *first.CompletedAt, *again.CompletedAt)
	require.Equal(t, first.CreatedAt, again.CreatedAt)
	require.True(t, again.UpdatedAt.After(first.UpdatedAt))

	n, err := repo.CountCompleted(ctx, user)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestComplete_AwardsBadges(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	res, err := f.svc.Complete(ctx, f.user, f.nodes[0].ID)
	require.NoError(t, err)
	require.Len(t, res.NewBadges, 1)
	require.Equal(t, badges.FirstSteps, res.NewBadges[0].Code)

	// repeating the same node is a no-op
	res, err = f.svc.Complete(ctx, f.user, f.nodes[0].ID)
	require.NoError(t, err)
	require.Empty(t, res.NewBadges)
	require.Len(t, res.Completed, 1)

	for _, n := range f.nodes[1:] {
		res, err = f.svc.Complete(ctx, f.user, n.ID)
		require.NoError(t, err)
	}
	require.Len(t, res.NewBadges, 1)
	require.Equal(t, badges.TreeClimber, res.NewBadges[0].Code)
	require.Len(t, res.Completed, 10)

	done, err := f.svc.Completed(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, done, 10)
}

func TestComplete_ConcurrentFirstStepsOnce(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Complete(ctx, f.user, f.nodes[0].ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	held, err := f.badges.ListForUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	n, err := f.repo.CountCompleted(ctx, f.user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
