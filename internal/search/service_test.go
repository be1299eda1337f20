package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/nodes"
	"github.com/devtree/devtree/backend/api/internal/trees"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	treeRepo := trees.NewMemoryRepo()
	nodeRepo := nodes.NewMemoryRepo()
	svc := NewService(treeRepo, nodeRepo)
	owner := primitive.NewObjectID()

	tagged := &models.Tree{Name: "Backend", IsPublic: true, Owner: owner, Tags: []string{"golang"}}
	hidden := &models.Tree{Name: "golang secrets", Owner: owner}
	require.NoError(t, treeRepo.Create(ctx, tagged))
	require.NoError(t, treeRepo.Create(ctx, hidden))
	node := &models.Node{Title: "Intro to GoLang", Description: "basics", Type: models.NodeIdea, Tree: tagged.ID}
	require.NoError(t, nodeRepo.Create(ctx, node))

	res, err := svc.Search(ctx, " lang ")
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, Result{ID: tagged.ID, Title: "Backend", Type: TypeTree}, res[0])
	require.Equal(t, TypeNode, res[1].Type)
	require.Equal(t, node.ID, res[1].ID)

	res, err = svc.Search(ctx, "zzz")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Empty(t, res)

	// regex metacharacters are matched literally
	res, err = svc.Search(ctx, ".*")
	require.NoError(t, err)
	require.Empty(t, res)

	_, err = svc.Search(ctx, "  ")
	require.ErrorIs(t, err, ErrEmptyQuery)
}
