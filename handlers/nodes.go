package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/nodes"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/pkg/middleware"
)

const msgNodeNotFound = "Nodo no encontrado"

// NodeRequest is the body of node create and update. Tree and Parent are
// ignored on update.
type NodeRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	Tree        string   `json:"tree"`
	Parent      string   `json:"parent"`
}

func (r NodeRequest) input() nodes.Input {
	return nodes.Input{Title: r.Title, Description: r.Description, Type: r.Type, Tags: r.Tags, Tree: r.Tree, Parent: r.Parent}
}

type NodeHandler struct {
	svc *nodes.Service
}

func NewNodeHandler(svc *nodes.Service) *NodeHandler {
	return &NodeHandler{svc: svc}
}

// Register routes under /nodes
func (h *NodeHandler) Register(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	n := rg.Group("/nodes")
	n.POST("", protect, middleware.WithUser(h.Create))
	n.GET("", h.List)
	n.GET("/:id", h.Get)
	n.GET("/tree/:treeId", protect, middleware.WithUser(h.ByTree))
	n.PUT("/:id", protect, middleware.WithUser(h.Update))
	n.DELETE("/:id", protect, middleware.WithUser(h.Delete))
}

func (h *NodeHandler) Create(c *gin.Context, user *models.User) {
	var req NodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	n, err := h.svc.Create(c.Request.Context(), user, req.input())
	if err != nil {
		h.fail(c, err, "Error al crear nodo", "No tienes permiso para añadir nodos a este árbol")
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *NodeHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		serverError(c, "Error al obtener nodos", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NodeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", msgNodeNotFound)
	if !ok {
		return
	}
	n, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Error al obtener nodo", "")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NodeHandler) ByTree(c *gin.Context, user *models.User) {
	treeID, ok := pathID(c, "treeId", msgTreeNotFound)
	if !ok {
		return
	}
	list, err := h.svc.ByTree(c.Request.Context(), treeID, user)
	if err != nil {
		serverError(c, "Error al obtener nodos del árbol", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NodeHandler) Update(c *gin.Context, user *models.User) {
	id, ok := pathID(c, "id", msgNodeNotFound)
	if !ok {
		return
	}
	var req NodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	n, err := h.svc.Update(c.Request.Context(), id, user, req.input())
	if err != nil {
		h.fail(c, err, "Error al actualizar el nodo", "No tienes permiso para editar este nodo")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NodeHandler) Delete(c *gin.Context, user *models.User) {
	id, ok := pathID(c, "id", msgNodeNotFound)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, user); err != nil {
		h.fail(c, err, "Error al eliminar nodo", "No tienes permiso para eliminar este nodo")
		return
	}
	message(c, http.StatusOK, "Nodo eliminado")
}

// fail maps node service errors to responses.
func (h *NodeHandler) fail(c *gin.Context, err error, msg, forbidden string) {
	switch {
	case errors.Is(err, nodes.ErrTreeRequired):
		message(c, http.StatusBadRequest, "Falta el campo tree")
	case errors.Is(err, nodes.ErrTitleRequired):
		message(c, http.StatusBadRequest, "El título es obligatorio")
	case errors.Is(err, nodes.ErrInvalidType):
		message(c, http.StatusBadRequest, "El tipo debe ser idea, recurso o skill")
	case errors.Is(err, nodes.ErrInvalidParent):
		message(c, http.StatusBadRequest, "El nodo padre no pertenece a este árbol")
	case errors.Is(err, nodes.ErrTreeNotFound):
		message(c, http.StatusNotFound, msgTreeNotFound)
	case errors.Is(err, store.ErrNotFound):
		message(c, http.StatusNotFound, msgNodeNotFound)
	case errors.Is(err, nodes.ErrForbidden):
		message(c, http.StatusForbidden, forbidden)
	default:
		serverError(c, msg, err)
	}
}
