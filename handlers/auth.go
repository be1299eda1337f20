package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtree/devtree/backend/api/internal/config"
	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/tokens"
	"github.com/devtree/devtree/backend/api/internal/users"
	"github.com/devtree/devtree/backend/api/pkg/middleware"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /auth/login. Missing fields are answered
// as bad credentials, not as a validation error.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg       *config.Config
	usersSvc  *users.Service
	blacklist *tokens.Blacklist
}

func NewAuthHandler(cfg *config.Config, u *users.Service, bl *tokens.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, blacklist: bl}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.GET("/me", protect, middleware.WithUser(h.Me))
	a.POST("/logout", protect, middleware.WithUser(h.Logout))
}

// SignUp creates an account and returns it with a token.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			message(c, http.StatusBadRequest, "El usuario ya existe")
			return
		}
		if errors.Is(err, users.ErrPasswordTooLong) {
			message(c, http.StatusBadRequest, "La contraseña no puede superar 72 bytes")
			return
		}
		serverError(c, "Error al registrar usuario", err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, u)
}

// Login checks credentials and returns the user with a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	u, err := h.usersSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			message(c, http.StatusUnauthorized, "Credenciales inválidas")
			return
		}
		serverError(c, "Error al iniciar sesión", err)
		return
	}
	h.respondWithToken(c, http.StatusOK, u)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, user)
}

// Logout revokes the presented access token until it expires.
func (h *AuthHandler) Logout(c *gin.Context, _ *models.User) {
	raw, claims := middleware.AccessToken(c)
	if claims != nil {
		if err := h.blacklist.Revoke(c.Request.Context(), raw, claims.Remaining()); err != nil {
			serverError(c, "Error al cerrar sesión", err)
			return
		}
	}
	message(c, http.StatusOK, "Sesión cerrada")
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, u *models.User) {
	token, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.TTL)
	if err != nil {
		serverError(c, "Error al generar el token", err)
		return
	}
	c.JSON(status, AuthResponse{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Token: token,
	})
}
