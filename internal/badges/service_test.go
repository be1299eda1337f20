package badges

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/storage"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/pkg/metrics"
)

type fixedCounter int64

func (f fixedCounter) CountCompleted(context.Context, primitive.ObjectID) (int64, error) {
	return int64(f), nil
}

// racyRepo hides existing awards so every caller reaches Award, as two
// requests racing past the lookup would.
type racyRepo struct{ *MemoryRepo }

func (racyRepo) HasBadge(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error) {
	return false, nil
}

func seeded(t *testing.T, repo Repository, completed int64) *Service {
	t.Helper()
	svc := NewService(repo, fixedCounter(completed), nil)
	require.NoError(t, svc.EnsureCatalog(context.Background()))
	return svc
}

func TestEnsureCatalog_Idempotent(t *testing.T) {
	repo := NewMemoryRepo()
	svc := seeded(t, repo, 0)
	require.NoError(t, svc.EnsureCatalog(context.Background()))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, len(Catalog))
}

func TestCheckAndAssign_Thresholds(t *testing.T) {
	ctx := context.Background()
	user := primitive.NewObjectID()

	none, err := seeded(t, NewMemoryRepo(), 0).CheckAndAssign(ctx, user)
	require.NoError(t, err)
	require.Empty(t, none)

	one, err := seeded(t, NewMemoryRepo(), 1).CheckAndAssign(ctx, user)
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, FirstSteps, one[0].Code)

	svc := seeded(t, NewMemoryRepo(), 10)
	both, err := svc.CheckAndAssign(ctx, user)
	require.NoError(t, err)
	require.Len(t, both, 2)

	again, err := svc.CheckAndAssign(ctx, user)
	require.NoError(t, err)
	require.Empty(t, again)

	views, err := svc.ForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Badge)
}

func TestCheckAndAssign_ConcurrentAwardsOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	svc := seeded(t, racyRepo{repo}, 1)
	user := primitive.NewObjectID()
	before := testutil.ToFloat64(metrics.BadgesAwarded.WithLabelValues(FirstSteps))

	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.CheckAndAssign(ctx, user)
			assert.NoError(t, err)
			mu.Lock()
			total += len(got)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, total)
	held, err := repo.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, held, 1)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.BadgesAwarded.WithLabelValues(FirstSteps)))
}

func TestIconURL(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	_, err := seeded(t, repo, 0).IconURL(ctx, FirstSteps)
	require.ErrorIs(t, err, ErrNoIcon)

	icons := storage.NewMemoryStorage("http://icons.test")
	require.NoError(t, icons.Upload(ctx, Catalog[0].Badge.Icon, strings.NewReader("<svg/>"), 6, "image/svg+xml"))
	svc := NewService(repo, fixedCounter(0), icons)

	u, err := svc.IconURL(ctx, FirstSteps)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://icons.test/badges/first_steps.svg"))

	_, err = svc.IconURL(ctx, "unknown")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUploadIcons(t *testing.T) {
	ctx := context.Background()
	icons := storage.NewMemoryStorage("http://icons.local")
	svc := NewService(NewMemoryRepo(), fixedCounter(0), icons)
	require.NoError(t, svc.EnsureCatalog(ctx))

	n, err := svc.UploadIcons(ctx)
	require.NoError(t, err)
	require.Equal(t, len(Catalog), n)
	data, ok := icons.Object("badges/tree_climber.svg")
	require.True(t, ok)
	require.Contains(t, string(data), "<svg")

	u, err := svc.IconURL(ctx, TreeClimber)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://icons.local/badges/tree_climber.svg"))

	_, err = NewService(NewMemoryRepo(), fixedCounter(0), nil).UploadIcons(ctx)
	require.ErrorIs(t, err, ErrNoIcon)
}
