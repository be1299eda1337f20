package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtree/devtree/backend/api/internal/comments"
	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/pkg/middleware"
)

// CommentRequest is the body of POST /comments/:nodeId.
type CommentRequest struct {
	Text string `json:"text"`
}

type CommentHandler struct {
	svc *comments.Service
}

func NewCommentHandler(svc *comments.Service) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// Register routes under /comments
func (h *CommentHandler) Register(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	g := rg.Group("/comments")
	g.POST("/:nodeId", protect, middleware.WithUser(h.Create))
	g.GET("/:nodeId/comments", h.List)
}

func (h *CommentHandler) Create(c *gin.Context, user *models.User) {
	nodeID, ok := pathID(c, "nodeId", msgNodeNotFound)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	view, err := h.svc.Create(c.Request.Context(), user, nodeID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, comments.ErrEmpty):
			message(c, http.StatusBadRequest, "El comentario no puede estar vacío")
		case errors.Is(err, comments.ErrLength):
			message(c, http.StatusBadRequest, "Debe tener entre 2 y 1000 caracteres")
		case errors.Is(err, store.ErrNotFound):
			message(c, http.StatusNotFound, msgNodeNotFound)
		case errors.Is(err, comments.ErrNotCommentable):
			message(c, http.StatusForbidden, "No se puede comentar en este nodo")
		default:
			serverError(c, "Error al crear comentario", err)
		}
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *CommentHandler) List(c *gin.Context) {
	nodeID, ok := pathID(c, "nodeId", msgNodeNotFound)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), nodeID)
	if err != nil {
		serverError(c, "Error al obtener comentarios", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
