package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/pkg/logger"
	"github.com/devtree/devtree/backend/api/pkg/middleware"
	"github.com/devtree/devtree/backend/api/pkg/validation"
)

// message writes {"message": msg} with status.
func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// invalid answers 400 for a binding or validation error.
func invalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": validation.FirstMessage(err), "errors": validation.ToDetails(err)})
}

// serverError logs err and answers 500 with the error text.
func serverError(c *gin.Context, msg string, err error) {
	logger.WithFields(map[string]interface{}{
		"request_id": middleware.GetRequestID(c),
		"path":       c.Request.URL.Path,
	}).Errorf("%s: %v", msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg, "error": err.Error()})
}

// pathID parses an ObjectID path parameter. Malformed ids answer 404 with notFound.
func pathID(c *gin.Context, param, notFound string) (primitive.ObjectID, bool) {
	id, err := store.ParseID(c.Param(param))
	if err != nil {
		message(c, http.StatusNotFound, notFound)
		return primitive.NilObjectID, false
	}
	return id, true
}
