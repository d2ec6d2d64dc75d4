package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/cotraj-backend-go/internal/config"
	"github.com/jengzang/cotraj-backend-go/internal/middleware"
	"github.com/jengzang/cotraj-backend-go/pkg/response"
)

// AuthHandler issues API tokens
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Token handles POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid credentials payload", err)
		return
	}

	if req.Username != h.cfg.AuthUsername || req.Password != h.cfg.AuthPassword {
		response.Error(c, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	token, err := middleware.IssueToken(h.cfg.JWTSecret, req.Username, 24*time.Hour)
	if err != nil {
		response.InternalError(c, "Failed to issue token", err)
		return
	}

	response.Success(c, gin.H{
		"token":     token,
		"expiresIn": int64((24 * time.Hour).Seconds()),
	})
}
