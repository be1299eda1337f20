package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/internal/trees"
	"github.com/devtree/devtree/backend/api/pkg/middleware"
)

const msgTreeNotFound = "Árbol no encontrado"

// TreeRequest is the body of tree create and update.
type TreeRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags"`
	Nodes       []string `json:"nodes"`
}

func (r TreeRequest) input() trees.Input {
	return trees.Input{Name: r.Name, Description: r.Description, IsPublic: r.IsPublic, Tags: r.Tags, Nodes: r.Nodes}
}

type TreeHandler struct {
	svc *trees.Service
}

func NewTreeHandler(svc *trees.Service) *TreeHandler {
	return &TreeHandler{svc: svc}
}

// Register routes under /trees
func (h *TreeHandler) Register(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	t := rg.Group("/trees")
	t.POST("", protect, middleware.WithUser(h.Create))
	t.GET("/mine", protect, middleware.WithUser(h.Mine))
	t.GET("/public", h.Public)
	t.GET("/trending", h.Trending)
	t.GET("/search", h.Search)
	t.GET("/category/:category", h.ByCategory)
	t.GET("/tags/all", h.Tags)
	t.GET("/:id", h.Get)
	t.GET("/:id/private", protect, middleware.WithUser(h.GetPrivate))
	t.PUT("/:id", protect, middleware.WithUser(h.Update))
	t.DELETE("/:id", protect, middleware.WithUser(h.Delete))
}

func (h *TreeHandler) Create(c *gin.Context, user *models.User) {
	var req TreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), user.ID, req.input())
	if err != nil {
		h.fail(c, err, "Error al crear árbol", "")
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TreeHandler) Mine(c *gin.Context, user *models.User) {
	list, err := h.svc.Mine(c.Request.Context(), user.ID)
	if err != nil {
		serverError(c, "Error al obtener árboles", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TreeHandler) Public(c *gin.Context) {
	list, err := h.svc.Public(c.Request.Context())
	if err != nil {
		serverError(c, "Error al obtener árboles públicos", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TreeHandler) Trending(c *gin.Context) {
	list, err := h.svc.Trending(c.Request.Context())
	if err != nil {
		serverError(c, "Error al obtener árboles en tendencia", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TreeHandler) Search(c *gin.Context) {
	list, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, trees.ErrEmptyQuery) {
			message(c, http.StatusBadRequest, msgEmptyQuery)
			return
		}
		serverError(c, "Error al buscar árboles", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TreeHandler) ByCategory(c *gin.Context) {
	list, err := h.svc.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		serverError(c, "Error al obtener árboles por categoría", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TreeHandler) Tags(c *gin.Context) {
	tags, err := h.svc.Tags(c.Request.Context())
	if err != nil {
		serverError(c, "Error al obtener etiquetas", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// Get returns a public tree with its nodes.
func (h *TreeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", msgTreeNotFound)
	if !ok {
		return
	}
	t, err := h.svc.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Error al obtener árbol", "")
		return
	}
	c.JSON(http.StatusOK, t)
}

// GetPrivate returns an owned tree of any visibility with its nodes.
func (h *TreeHandler) GetPrivate(c *gin.Context, user *models.User) {
	id, ok := pathID(c, "id", msgTreeNotFound)
	if !ok {
		return
	}
	t, err := h.svc.GetOwned(c.Request.Context(), id, user)
	if err != nil {
		h.fail(c, err, "Error al obtener árbol", "No tienes permiso para ver este árbol")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TreeHandler) Update(c *gin.Context, user *models.User) {
	id, ok := pathID(c, "id", msgTreeNotFound)
	if !ok {
		return
	}
	var req TreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, user, req.input())
	if err != nil {
		h.fail(c, err, "Error al actualizar árbol", "No tienes permiso para editar este árbol")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TreeHandler) Delete(c *gin.Context, user *models.User) {
	id, ok := pathID(c, "id", msgTreeNotFound)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, user); err != nil {
		h.fail(c, err, "Error al eliminar árbol", "No tienes permiso para eliminar este árbol")
		return
	}
	message(c, http.StatusOK, "Árbol eliminado correctamente")
}

// fail maps tree service errors to responses.
func (h *TreeHandler) fail(c *gin.Context, err error, msg, forbidden string) {
	switch {
	case errors.Is(err, trees.ErrNameRequired):
		message(c, http.StatusBadRequest, "El nombre es obligatorio")
	case errors.Is(err, trees.ErrInvalidNodes):
		message(c, http.StatusBadRequest, "Nodos inválidos")
	case errors.Is(err, store.ErrNotFound):
		message(c, http.StatusNotFound, msgTreeNotFound)
	case errors.Is(err, trees.ErrPrivate):
		message(c, http.StatusForbidden, "Este árbol es privado")
	case errors.Is(err, trees.ErrForbidden):
		message(c, http.StatusForbidden, forbidden)
	default:
		serverError(c, msg, err)
	}
}
