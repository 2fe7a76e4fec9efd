package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workexp/workexp-api/internal/config"
	"github.com/workexp/workexp-api/internal/models"
	"github.com/workexp/workexp-api/internal/sessions"
	"github.com/workexp/workexp-api/internal/store"
	"github.com/workexp/workexp-api/internal/tokens"
	"github.com/workexp/workexp-api/internal/users"
	"github.com/workexp/workexp-api/pkg/httpx"
	"github.com/workexp/workexp-api/pkg/logger"
	"github.com/workexp/workexp-api/pkg/middleware"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         config.JWTConfig
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
	blacklist   sessions.Blacklist
	verifier    *tokens.Verifier
}

func NewAuthHandler(cfg config.JWTConfig, u *users.Service, s *sessions.Service, bl sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s, blacklist: bl, verifier: tokens.NewVerifier(cfg.Secret)}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg gin.IRouter) {
	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// SignUp creates an account and signs it in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var in users.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.BadRequest(c, "Invalid JSON body: "+err.Error())
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), in)
	if errors.Is(err, users.ErrEmailTaken) {
		httpx.BadRequest(c, "User already exists")
		return
	}
	if err != nil {
		httpx.Error(c, err, "User not found")
		return
	}
	h.issue(c, http.StatusCreated, u)
}

// Login checks the password and returns an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, "email and password are required")
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		httpx.Error(c, err, "User not found")
		return
	}
	h.issue(c, http.StatusOK, u)
}

func (h *AuthHandler) issue(c *gin.Context, status int, u *models.User) {
	rft, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.ID.Hex(), h.cfg.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg.Secret, u, h.cfg.AccessTokenTTL)
	if err != nil {
		logger.Errorf("failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(status, gin.H{
		"accessToken":  access,
		"refreshToken": rft,
		"user":         u,
		"expiresIn":    int(h.cfg.AccessTokenTTL.Seconds()),
	})
}

// Refresh accepts a refresh token and returns a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, "refresh_token is required")
		return
	}
	sess, err := h.sessionsSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if errors.Is(err, sessions.ErrInvalidRefresh) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	if err != nil {
		logger.Errorf("refresh validation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	u, err := h.usersSvc.GetByID(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg.Secret, u, h.cfg.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access, "expires_in": int(h.cfg.AccessTokenTTL.Seconds())})
}

// Logout invalidates the refresh token and blacklists the presented access
// token for the rest of its lifetime. Only tokens this service signed are
// blacklisted, and never for longer than the access token TTL.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, "refresh_token is required")
		return
	}
	if at, ok := middleware.BearerToken(c); ok && h.blacklist != nil {
		if exp, err := h.verifier.ExpiresAt(at); err == nil {
			if ttl := min(time.Until(exp), h.cfg.AccessTokenTTL); ttl > 0 {
				if err := h.blacklist.Add(c.Request.Context(), at, ttl); err != nil {
					logger.Errorf("blacklist access token: %v", err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
					return
				}
			}
		}
	}
	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the caller. It must run behind middleware.AuthMiddleware.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token, authorization denied"})
		return
	}
	u, err := h.usersSvc.FromClaims(c.Request.Context(), claims)
	if err != nil {
		httpx.Error(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, u)
}
