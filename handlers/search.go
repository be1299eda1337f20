package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtree/devtree/backend/api/internal/search"
)

const msgEmptyQuery = "Se requiere un término de búsqueda (q)"

type SearchHandler struct {
	svc *search.Service
}

func NewSearchHandler(svc *search.Service) *SearchHandler {
	return &SearchHandler{svc: svc}
}

func (h *SearchHandler) Register(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	rg.GET("/search", h.Search)
}

// Search looks for q in public trees and in nodes.
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			message(c, http.StatusBadRequest, msgEmptyQuery)
			return
		}
		serverError(c, "Error en la búsqueda", err)
		return
	}
	c.JSON(http.StatusOK, results)
}
