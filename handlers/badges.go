package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtree/devtree/backend/api/internal/badges"
	"github.com/devtree/devtree/backend/api/internal/storage"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/pkg/middleware"
)

const msgBadgeNotFound = "Insignia no encontrada"

type BadgeHandler struct {
	svc *badges.Service
}

func NewBadgeHandler(svc *badges.Service) *BadgeHandler {
	return &BadgeHandler{svc: svc}
}

// Register routes under /badges. None require a user.
func (h *BadgeHandler) Register(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	b := rg.Group("/badges")
	b.GET("", h.List)
	b.GET("/icons/:code", h.Icon)
	b.GET("/:userId", h.ForUser)
}

func (h *BadgeHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		serverError(c, "Error al obtener insignias", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BadgeHandler) ForUser(c *gin.Context) {
	userID, ok := pathID(c, "userId", middleware.MsgUserNotFound)
	if !ok {
		return
	}
	list, err := h.svc.ForUser(c.Request.Context(), userID)
	if err != nil {
		serverError(c, "Error al obtener insignias del usuario", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Icon redirects to a presigned URL of the badge icon.
func (h *BadgeHandler) Icon(c *gin.Context) {
	url, err := h.svc.IconURL(c.Request.Context(), c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			message(c, http.StatusNotFound, msgBadgeNotFound)
		case errors.Is(err, badges.ErrNoIcon), errors.Is(err, storage.ErrNotConfigured):
			message(c, http.StatusNotFound, "Icono no disponible")
		default:
			serverError(c, "Error al obtener el icono", err)
		}
		return
	}
	c.Redirect(http.StatusFound, url)
}
