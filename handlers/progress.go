package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/progress"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/pkg/middleware"
)

type ProgressHandler struct {
	svc *progress.Service
}

func NewProgressHandler(svc *progress.Service) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// Register routes under /progress. All of them require a user.
func (h *ProgressHandler) Register(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	p := rg.Group("/progress", protect)
	p.POST("/favorites/:nodeId", middleware.WithUser(h.AddFavorite))
	p.POST("/completed/:nodeId", middleware.WithUser(h.Complete))
	p.GET("/favorites", middleware.WithUser(h.Favorites))
	p.GET("/completed", middleware.WithUser(h.Completed))
}

func (h *ProgressHandler) AddFavorite(c *gin.Context, user *models.User) {
	nodeID, ok := pathID(c, "nodeId", msgNodeNotFound)
	if !ok {
		return
	}
	favorites, err := h.svc.AddFavorite(c.Request.Context(), user, nodeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			message(c, http.StatusNotFound, msgNodeNotFound)
			return
		}
		serverError(c, "Error al añadir favorito", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Nodo añadido a favoritos", "favorites": favorites})
}

func (h *ProgressHandler) Complete(c *gin.Context, user *models.User) {
	nodeID, ok := pathID(c, "nodeId", msgNodeNotFound)
	if !ok {
		return
	}
	res, err := h.svc.Complete(c.Request.Context(), user, nodeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			message(c, http.StatusNotFound, msgNodeNotFound)
			return
		}
		serverError(c, "Error al marcar como completado", err)
		return
	}
	newBadges := res.NewBadges
	if newBadges == nil {
		newBadges = []*models.Badge{}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Nodo marcado como completado",
		"completed": res.Completed,
		"newBadges": newBadges,
	})
}

func (h *ProgressHandler) Favorites(c *gin.Context, user *models.User) {
	list, err := h.svc.Favorites(c.Request.Context(), user)
	if err != nil {
		serverError(c, "Error al obtener favoritos", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProgressHandler) Completed(c *gin.Context, user *models.User) {
	list, err := h.svc.Completed(c.Request.Context(), user)
	if err != nil {
		serverError(c, "Error al obtener completados", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
