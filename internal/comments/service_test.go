package comments

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/nodes"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/internal/trees"
	"github.com/devtree/devtree/backend/api/internal/users"
)

func TestValidateText(t *testing.T) {
	_, err := ValidateText("   ")
	require.ErrorIs(t, err, ErrEmpty)
	_, err = ValidateText(" a ")
	require.ErrorIs(t, err, ErrLength)
	_, err = ValidateText(strings.Repeat("x", models.CommentMaxLen+1))
	require.ErrorIs(t, err, ErrLength)

	// length counts characters, not bytes
	got, err := ValidateText(" ñá ")
	require.NoError(t, err)
	require.Equal(t, "ñá", got)
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	userRepo := users.NewMemoryRepo()
	treeRepo := trees.NewMemoryRepo()
	nodeRepo := nodes.NewMemoryRepo()
	svc := NewService(NewMemoryRepo(), nodeRepo, treeRepo, userRepo)

	alice := &models.User{Name: "Alice", Email: "alice@x.com"}
	bob := &models.User{Name: "Bob", Email: "bob@x.com"}
	require.NoError(t, userRepo.Create(ctx, alice))
	require.NoError(t, userRepo.Create(ctx, bob))

	public := &models.Tree{Name: "pub", IsPublic: true, Owner: alice.ID}
	private := &models.Tree{Name: "priv", Owner: alice.ID}
	require.NoError(t, treeRepo.Create(ctx, public))
	require.NoError(t, treeRepo.Create(ctx, private))
	open := &models.Node{Title: "open", Type: models.NodeIdea, Tree: public.ID}
	closed := &models.Node{Title: "closed", Type: models.NodeIdea, Tree: private.ID}
	require.NoError(t, nodeRepo.Create(ctx, open))
	require.NoError(t, nodeRepo.Create(ctx, closed))

	_, err := svc.Create(ctx, bob, closed.ID, "hola mundo")
	require.ErrorIs(t, err, ErrNotCommentable)
	_, err = svc.Create(ctx, bob, primitive.NewObjectID(), "hola mundo")
	require.ErrorIs(t, err, store.ErrNotFound)

	first, err := svc.Create(ctx, alice, open.ID, "  primero  ")
	require.NoError(t, err)
	require.Equal(t, "primero", first.Text)
	require.Equal(t, "Alice", first.Author.Name)
	second, err := svc.Create(ctx, bob, open.ID, "segundo")
	require.NoError(t, err)

	list, err := svc.List(ctx, open.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, "Bob", list[0].Author.Name)
	require.Equal(t, first.ID, list[1].ID)

	empty, err := svc.List(ctx, closed.ID)
	require.NoError(t, err)
	require.Empty(t, empty)
}
