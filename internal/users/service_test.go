package users

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo()).WithHashCost(bcrypt.MinCost)
}

func TestRegister(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "  A@X.com ", "secret1")
	require.NoError(t, err)
	require.False(t, u.ID.IsZero())
	require.Equal(t, "a@x.com", u.Email)
	require.Equal(t, models.RoleUser, u.Role)
	require.NotEqual(t, "secret1", u.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret1")))

	_, err = svc.Register(ctx, "B", "a@x.com", "other")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "long@x.com", strings.Repeat("p", 80))
	require.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = svc.repo.GetByEmail(ctx, "long@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Register(ctx, "A", "long@x.com", strings.Repeat("p", MaxPasswordBytes))
	require.NoError(t, err)
}

// Concurrent registrations with one email must produce exactly one user.
func TestRegister_ConcurrentDuplicate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "A", "race@x.com", "secret1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrUserExists)
	}
	require.Equal(t, 1, ok)
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	created, err := svc.Register(ctx, "A", "a@x.com", "secret1")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "A@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@x.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@x.com", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "  ", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemoryRepo_AddToSetSemantics(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	u := &models.User{Name: "A", Email: "a@x.com"}
	require.NoError(t, repo.Create(ctx, u))

	node := u.ID // any id works for set semantics
	favs, err := repo.AddFavorite(ctx, u.ID, node)
	require.NoError(t, err)
	favs, err = repo.AddFavorite(ctx, u.ID, node)
	require.NoError(t, err)
	require.Len(t, favs, 1)

	done, err := repo.AddCompleted(ctx, u.ID, node)
	require.NoError(t, err)
	require.Len(t, done, 1)

	got, err := NewService(repo).GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Favorites, 1)
	require.Len(t, got.Completed, 1)

	_, err = repo.AddFavorite(ctx, primitive.NewObjectID(), node)
	require.ErrorIs(t, err, store.ErrNotFound)
}
