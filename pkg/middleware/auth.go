package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/config"
	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/store"
	"github.com/devtree/devtree/backend/api/internal/tokens"
	"github.com/devtree/devtree/backend/api/pkg/logger"
)

const (
	userKey   = "user"
	tokenKey  = "access_token"
	claimsKey = "claims"
)

// Auth error messages returned to clients.
const (
	MsgNoToken      = "No autorizado, token no encontrado"
	MsgInvalidToken = "Token inválido"
	MsgUserNotFound = "Usuario no encontrado"
)

// UserLoader resolves the account a token was issued for.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Protect verifies the Bearer token, rejects revoked tokens and loads the
// user it names. The user is stored in the context for WithUser.
func Protect(cfg *config.Config, users UserLoader, blacklist *tokens.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		// Expect 'Bearer <token>'
		var raw string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &raw); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgNoToken})
			return
		}

		claims, err := tokens.ParseAccessToken(cfg, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgInvalidToken})
			return
		}
		revoked, err := blacklist.IsRevoked(c.Request.Context(), raw)
		if err != nil {
			logger.Errorf("auth: blacklist lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error al verificar el token", "error": err.Error()})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgInvalidToken})
			return
		}

		id, err := store.ParseID(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgInvalidToken})
			return
		}
		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgUserNotFound})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error al verificar el token", "error": err.Error()})
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, raw)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the user stored by Protect.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

// AccessToken returns the raw token and its claims stored by Protect.
func AccessToken(c *gin.Context) (string, *tokens.Claims) {
	raw := c.GetString(tokenKey)
	claims, _ := c.Get(claimsKey)
	tc, _ := claims.(*tokens.Claims)
	return raw, tc
}

// WithUser adapts a handler that needs the authenticated user. It must run after Protect.
func WithUser(h func(c *gin.Context, user *models.User)) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgNoToken})
			return
		}
		h(c, u)
	}
}
