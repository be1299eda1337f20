package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devtree/devtree/backend/api/internal/app"
	"github.com/devtree/devtree/backend/api/internal/badges"
	"github.com/devtree/devtree/backend/api/internal/storage"
)

func services(icons storage.IconStore) *app.Services {
	svc := app.NewServices(app.MemoryRepos(), icons)
	svc.Users.WithHashCost(bcrypt.MinCost)
	return svc
}

func TestBadges_UploadsIcons(t *testing.T) {
	ctx := context.Background()
	icons := storage.NewMemoryStorage("http://icons.local")
	svc := services(icons)

	res, err := Badges(ctx, svc)
	require.NoError(t, err)
	require.Equal(t, len(badges.Catalog), res.Icons)
	list, err := svc.Badges.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(badges.Catalog))
}

func TestBadges_WithoutIconStore(t *testing.T) {
	res, err := Badges(context.Background(), services(nil))
	require.NoError(t, err)
	require.Zero(t, res.Icons)
}

func TestDemo_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := services(nil)

	res, err := Demo(ctx, svc)
	require.NoError(t, err)
	require.Equal(t, 2, res.Trees)
	require.Equal(t, 7, res.Nodes)

	public, err := svc.Trees.Public(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)

	res, err = Demo(ctx, svc)
	require.NoError(t, err)
	require.Zero(t, res.Trees)
	public, err = svc.Trees.Public(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)
}
