package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/devtree/devtree/backend/api/internal/app"
	"github.com/devtree/devtree/backend/api/internal/badges"
	"github.com/devtree/devtree/backend/api/internal/config"
	"github.com/devtree/devtree/backend/api/internal/storage"
	"github.com/devtree/devtree/backend/api/internal/tokens"
	"github.com/devtree/devtree/backend/api/internal/trees"
	"github.com/devtree/devtree/backend/api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type apiFixture struct {
	t      *testing.T
	cfg    *config.Config
	repos  app.Repos
	icons  *storage.MemoryStorage
	router *gin.Engine
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	return newAPIWith(t, nil)
}

// newAPIWith lets a test adjust the config before the router is built.
func newAPIWith(t *testing.T, tune func(*config.Config)) *apiFixture {
	t.Helper()
	m, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "handlers-test-secret", TTL: time.Hour}}
	if tune != nil {
		tune(cfg)
	}
	repos := app.MemoryRepos()
	icons := storage.NewMemoryStorage("http://icons.test")
	svc := app.NewServices(repos, icons)
	svc.Users.WithHashCost(bcrypt.MinCost)
	require.NoError(t, svc.Badges.EnsureCatalog(context.Background()))

	r := NewRouter(cfg, svc, RouterOptions{
		Blacklist: tokens.NewBlacklist(rc),
		Checks: map[string]func(context.Context) error{
			"redis": func(ctx context.Context) error { return rc.Ping(ctx).Err() },
		},
	})
	return &apiFixture{t: t, cfg: cfg, repos: repos, icons: icons, router: r}
}

func (f *apiFixture) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func msgOf(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]any](t, w)["message"].(string)
}

// register creates an account and returns its id and token.
func (f *apiFixture) register(name, email string) (string, string) {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/auth/register", gin.H{"name": name, "email": email, "password": "secret1"}, "")
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[AuthResponse](f.t, w)
	return res.ID, res.Token
}

func (f *apiFixture) createTree(token, name string, public bool, tags ...string) string {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/trees", gin.H{"name": name, "isPublic": public, "tags": tags}, token)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](f.t, w)["_id"].(string)
}

func (f *apiFixture) createNode(token, treeID, title string) string {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/nodes", gin.H{"title": title, "type": "idea", "tree": treeID}, token)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](f.t, w)["_id"].(string)
}

func TestRegister_ThenDuplicateRejected(t *testing.T) {
	f := newAPI(t)
	body := gin.H{"name": "A", "email": "a@x.com", "password": "secret1"}

	w := f.do(http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode[AuthResponse](t, w)
	require.NotEmpty(t, res.ID)
	require.Equal(t, "A", res.Name)
	require.Equal(t, "a@x.com", res.Email)
	require.Equal(t, "user", res.Role)
	require.NotEmpty(t, res.Token)

	w = f.do(http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "El usuario ya existe", msgOf(t, w))
}

func TestRegister_InvalidBody(t *testing.T) {
	f := newAPI(t)
	w := f.do(http.MethodPost, "/api/auth/register", gin.H{"name": "A", "password": "secret1"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode[map[string]any](t, w)["errors"].(map[string]any)
	require.Contains(t, errs, "email")
}

func TestRegister_PasswordTooLong(t *testing.T) {
	f := newAPI(t)
	w := f.do(http.MethodPost, "/api/auth/register", gin.H{"name": "A", "email": "a@x.com", "password": strings.Repeat("x", 80)}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Equal(t, "La contraseña no puede superar 72 bytes", msgOf(t, w))
}

func TestLogin_MissingCredentials(t *testing.T) {
	f := newAPI(t)
	f.register("A", "a@x.com")

	w := f.do(http.MethodPost, "/api/auth/login", gin.H{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Credenciales inválidas", msgOf(t, w))

	w = f.do(http.MethodPost, "/api/auth/login", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Credenciales inválidas", msgOf(t, w))
}

func TestLogin_TokenNamesUser(t *testing.T) {
	f := newAPI(t)
	id, _ := f.register("A", "a@x.com")

	w := f.do(http.MethodPost, "/api/auth/login", gin.H{"email": "A@X.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	claims, err := tokens.ParseAccessToken(f.cfg, decode[AuthResponse](t, w).Token)
	require.NoError(t, err)
	require.Equal(t, id, claims.UserID)

	w = f.do(http.MethodPost, "/api/auth/login", gin.H{"email": "a@x.com", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Credenciales inválidas", msgOf(t, w))
}

func TestMe_AndLogoutRevokesToken(t *testing.T) {
	f := newAPI(t)
	_, token := f.register("A", "a@x.com")

	w := f.do(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a@x.com", decode[map[string]any](t, w)["email"])
	require.NotContains(t, w.Body.String(), "password")

	w = f.do(http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Token inválido", msgOf(t, w))
}

func TestProtectedRoute_NoToken(t *testing.T) {
	f := newAPI(t)
	w := f.do(http.MethodGet, "/api/trees/mine", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "No autorizado, token no encontrado", msgOf(t, w))
}

// The limiter runs ahead of Protect, so each token holder must still get
// their own bucket even when everyone shares one client IP.
func TestRateLimit_KeysByTokenUser(t *testing.T) {
	f := newAPIWith(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.01, Burst: 3}
	})
	// two registrations spend two of the IP bucket's three tokens
	_, tokenA := f.register("A", "a@x.com")
	_, tokenB := f.register("B", "b@x.com")

	for i := 0; i < 3; i++ {
		w := f.do(http.MethodGet, "/api/trees/mine", nil, tokenA)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
	w := f.do(http.MethodGet, "/api/trees/mine", nil, tokenA)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = f.do(http.MethodGet, "/api/trees/mine", nil, tokenB)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// a forged token does not buy a fresh bucket
	w = f.do(http.MethodGet, "/health", nil, "not.a.jwt")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCreateNode_AppendsOnceToTree(t *testing.T) {
	f := newAPI(t)
	_, token := f.register("A", "a@x.com")
	treeID := f.createTree(token, "Go", false)
	nodeID := f.createNode(token, treeID, "Goroutines")

	w := f.do(http.MethodGet, "/api/trees/"+treeID+"/private", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode[struct {
		Nodes []struct {
			ID string `json:"_id"`
		} `json:"nodes"`
	}](t, w)
	require.Len(t, tree.Nodes, 1)
	require.Equal(t, nodeID, tree.Nodes[0].ID)
}

func TestCreateNode_MissingTree(t *testing.T) {
	f := newAPI(t)
	_, token := f.register("A", "a@x.com")
	w := f.do(http.MethodPost, "/api/nodes", gin.H{"title": "x", "type": "idea"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Falta el campo tree", msgOf(t, w))
}

func TestCreateNode_NotPersistedWhenAppendFails(t *testing.T) {
	f := newAPI(t)
	_, token := f.register("A", "a@x.com")
	treeID := f.createTree(token, "Go", true)
	f.repos.Trees.(*trees.MemoryRepo).FailAppend = errors.New("append failed")

	w := f.do(http.MethodPost, "/api/nodes", gin.H{"title": "x", "type": "idea", "tree": treeID}, token)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	w = f.do(http.MethodGet, "/api/nodes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[[]any](t, w))
}

func TestTreeVisibility(t *testing.T) {
	f := newAPI(t)
	_, owner := f.register("A", "a@x.com")
	_, other := f.register("B", "b@x.com")
	treeID := f.createTree(owner, "Secret", false)

	w := f.do(http.MethodGet, "/api/trees/"+treeID, nil, "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Este árbol es privado", msgOf(t, w))

	w = f.do(http.MethodGet, "/api/trees/"+treeID+"/private", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/trees/"+treeID+"/private", nil, other)
	require.Equal(t, http.StatusForbidden, w.Code)

	missing := primitive.NewObjectID().Hex()
	w = f.do(http.MethodGet, "/api/trees/"+missing, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Árbol no encontrado", msgOf(t, w))
	w = f.do(http.MethodGet, "/api/trees/"+missing+"/private", nil, owner)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(http.MethodGet, "/api/trees/not-an-id", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTreeUpdateAndDelete(t *testing.T) {
	f := newAPI(t)
	_, owner := f.register("A", "a@x.com")
	_, other := f.register("B", "b@x.com")
	treeID := f.createTree(owner, "Go", false)
	nodeID := f.createNode(owner, treeID, "Channels")

	w := f.do(http.MethodPut, "/api/trees/"+treeID, gin.H{"name": "Go avanzado", "isPublic": true, "tags": []string{"go"}}, other)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPut, "/api/trees/"+treeID, gin.H{"name": " ", "isPublic": true}, owner)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "El nombre es obligatorio", msgOf(t, w))

	w = f.do(http.MethodPut, "/api/trees/"+treeID, gin.H{"name": "Go avanzado", "isPublic": true, "tags": []string{"go"}}, owner)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/api/trees/"+treeID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Go avanzado", decode[map[string]any](t, w)["name"])

	w = f.do(http.MethodDelete, "/api/trees/"+treeID, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Árbol eliminado correctamente", msgOf(t, w))

	w = f.do(http.MethodGet, "/api/trees/"+treeID, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(http.MethodGet, "/api/nodes/"+nodeID, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicListings(t *testing.T) {
	f := newAPI(t)
	_, token := f.register("A", "a@x.com")
	f.createTree(token, "Frontend", true, "react", "web")
	f.createTree(token, "Backend", true, "golang")
	f.createTree(token, "Privado", false, "hidden")

	w := f.do(http.MethodGet, "/api/trees/public", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]any](t, w), 2)

	w = f.do(http.MethodGet, "/api/trees/tags/all", nil, "")
	require.Equal(t, []string{"golang", "react", "web"}, decode[[]string](t, w))

	w = f.do(http.MethodGet, "/api/trees/category/web", nil, "")
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	require.Equal(t, "Frontend", list[0]["name"])

	w = f.do(http.MethodGet, "/api/trees/trending", nil, "")
	list = decode[[]map[string]any](t, w)
	require.Len(t, list, 2)
	require.Equal(t, "Backend", list[0]["name"])

	w = f.do(http.MethodGet, "/api/trees/mine", nil, token)
	require.Len(t, decode[[]any](t, w), 3)
}

func TestSearch(t *testing.T) {
	f := newAPI(t)
	_, token := f.register("A", "a@x.com")
	treeID := f.createTree(token, "Backend", true, "golang")

	w := f.do(http.MethodGet, "/api/search?q=lang", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[[]map[string]any](t, w)
	require.Len(t, res, 1)
	require.Equal(t, treeID, res[0]["_id"])
	require.Equal(t, "tree", res[0]["type"])
	require.Equal(t, "Backend", res[0]["title"])

	w = f.do(http.MethodGet, "/api/search?q=zzz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())

	w = f.do(http.MethodGet, "/api/search?q=%20", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Se requiere un término de búsqueda (q)", msgOf(t, w))
}

func TestCompleteAwardsFirstStepsOnce(t *testing.T) {
	f := newAPI(t)
	userID, token := f.register("A", "a@x.com")
	treeID := f.createTree(token, "Go", true)
	nodeID := f.createNode(token, treeID, "Interfaces")

	type completion struct {
		Message   string   `json:"message"`
		Completed []string `json:"completed"`
		NewBadges []struct {
			Code string `json:"code"`
		} `json:"newBadges"`
	}
	w := f.do(http.MethodPost, "/api/progress/completed/"+nodeID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := decode[completion](t, w)
	require.Equal(t, "Nodo marcado como completado", c.Message)
	require.Equal(t, []string{nodeID}, c.Completed)
	require.Len(t, c.NewBadges, 1)
	require.Equal(t, badges.FirstSteps, c.NewBadges[0].Code)

	w = f.do(http.MethodPost, "/api/progress/completed/"+nodeID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	c = decode[completion](t, w)
	require.Equal(t, []string{nodeID}, c.Completed)
	require.Empty(t, c.NewBadges)

	w = f.do(http.MethodGet, "/api/badges/"+userID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	held := decode[[]struct {
		Badge struct {
			Code string `json:"code"`
		} `json:"badge"`
	}](t, w)
	require.Len(t, held, 1)
	require.Equal(t, badges.FirstSteps, held[0].Badge.Code)

	w = f.do(http.MethodGet, "/api/progress/completed", nil, token)
	require.Len(t, decode[[]any](t, w), 1)
}

func TestFavorites(t *testing.T) {
	f := newAPI(t)
	_, token := f.register("A", "a@x.com")
	treeID := f.createTree(token, "Go", true)
	nodeID := f.createNode(token, treeID, "Maps")

	for i := 0; i < 2; i++ {
		w := f.do(http.MethodPost, "/api/progress/favorites/"+nodeID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[map[string]any](t, w)
		require.Equal(t, "Nodo añadido a favoritos", res["message"])
		require.Len(t, res["favorites"], 1)
	}

	w := f.do(http.MethodPost, "/api/progress/favorites/"+primitive.NewObjectID().Hex(), nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/progress/favorites", nil, token)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	require.Equal(t, "Maps", list[0]["title"])
}

func TestComments(t *testing.T) {
	f := newAPI(t)
	_, token := f.register("Ana", "a@x.com")
	publicNode := f.createNode(token, f.createTree(token, "Go", true), "Slices")
	privateNode := f.createNode(token, f.createTree(token, "Notas", false), "Borrador")

	w := f.do(http.MethodPost, "/api/comments/"+publicNode, gin.H{"text": "a"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Debe tener entre 2 y 1000 caracteres", msgOf(t, w))

	w = f.do(http.MethodPost, "/api/comments/"+publicNode, gin.H{"text": "   "}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "El comentario no puede estar vacío", msgOf(t, w))

	w = f.do(http.MethodPost, "/api/comments/"+publicNode, gin.H{"text": strings.Repeat("x", 1001)}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/comments/"+privateNode, gin.H{"text": "Hola"}, token)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "No se puede comentar en este nodo", msgOf(t, w))

	w = f.do(http.MethodPost, "/api/comments/"+publicNode, gin.H{"text": "  Muy útil  "}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[map[string]any](t, w)
	require.Equal(t, "Muy útil", created["text"])
	require.Equal(t, "Ana", created["author"].(map[string]any)["name"])

	w = f.do(http.MethodGet, "/api/comments/"+publicNode+"/comments", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]any](t, w), 1)
}

func TestNodeDetailAndPermissions(t *testing.T) {
	f := newAPI(t)
	_, owner := f.register("A", "a@x.com")
	_, other := f.register("B", "b@x.com")
	treeID := f.createTree(owner, "Go", true)
	nodeID := f.createNode(owner, treeID, "Errores")

	w := f.do(http.MethodGet, "/api/nodes/"+nodeID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[map[string]any](t, w)
	require.Equal(t, "Go", detail["tree"].(map[string]any)["name"])
	require.Equal(t, "A", detail["createdBy"].(map[string]any)["name"])

	w = f.do(http.MethodPost, "/api/nodes", gin.H{"title": "x", "type": "idea", "tree": treeID}, other)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPut, "/api/nodes/"+nodeID, gin.H{"title": "Errores en Go", "type": "skill"}, other)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(http.MethodPut, "/api/nodes/"+nodeID, gin.H{"title": "Errores en Go", "type": "video"}, owner)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPut, "/api/nodes/"+nodeID, gin.H{"title": "Errores en Go", "type": "skill"}, owner)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "skill", decode[map[string]any](t, w)["type"])

	w = f.do(http.MethodGet, "/api/nodes/tree/"+treeID, nil, owner)
	require.Len(t, decode[[]any](t, w), 1)
	w = f.do(http.MethodGet, "/api/nodes/tree/"+treeID, nil, other)
	require.Empty(t, decode[[]any](t, w))

	w = f.do(http.MethodDelete, "/api/nodes/"+nodeID, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/api/trees/"+treeID, nil, "")
	require.Empty(t, decode[map[string]any](t, w)["nodes"])
}

func TestBadgeIconRedirect(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.icons.Upload(context.Background(), "badges/first_steps.svg", strings.NewReader("<svg/>"), 6, "image/svg+xml"))

	w := f.do(http.MethodGet, "/api/badges/icons/"+badges.FirstSteps, nil, "")
	require.Equal(t, http.StatusFound, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "http://icons.test/badges/first_steps.svg"))

	w = f.do(http.MethodGet, "/api/badges/icons/unknown", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/badges", nil, "")
	require.Len(t, decode[[]any](t, w), len(badges.Catalog))
}

func TestOperationalEndpoints(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "¡Backend DEVTREE funcionando!", w.Body.String())

	w = f.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, "healthy", w.Body.String())

	w = f.do(http.MethodGet, "/ready", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestReady_FailingDependency(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s", TTL: time.Hour}}
	r := NewRouter(cfg, app.NewServices(app.MemoryRepos(), nil), RouterOptions{
		Checks: map[string]func(context.Context) error{
			"mongo": func(context.Context) error { return errors.New("down") },
		},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"mongo":false`)
}
