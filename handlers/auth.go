package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/internal/config"
	"github.com/authorityai/authorityai/backend/go-services/internal/models"
	"github.com/authorityai/authorityai/backend/go-services/internal/sessions"
	"github.com/authorityai/authorityai/backend/go-services/internal/tokens"
	"github.com/authorityai/authorityai/backend/go-services/internal/users"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// LoginRequest is a local email/password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
}

func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s}
}

// Register mounts the public auth routes (register, login, refresh) on rg under /auth
// and the routes needing a bearer token (me, profile, logout) on protected.
func (h *AuthHandler) Register(rg gin.IRouter, protected gin.IRouter) {
	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)

	p := protected.Group("/auth")
	p.GET("/me", h.Me)
	p.PUT("/profile", h.UpdateProfile)
	p.POST("/logout", h.Logout)
}

func (h *AuthHandler) accessTTL() time.Duration {
	if h.cfg.JWT.AccessTokenTTL > 0 {
		return h.cfg.JWT.AccessTokenTTL
	}
	return 15 * time.Minute
}

func (h *AuthHandler) refreshTTL() time.Duration {
	if h.cfg.JWT.RefreshTokenTTL > 0 {
		return h.cfg.JWT.RefreshTokenTTL
	}
	return 7 * 24 * time.Hour
}

// issue creates a refresh session and an access token for u and writes the login response.
func (h *AuthHandler) issue(c *gin.Context, status int, u *models.User) {
	rft, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.ID, h.refreshTTL())
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.accessTTL())
	if err != nil {
		logger.Errorf("failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(status, gin.H{
		"token":        access,
		"refreshToken": rft,
		"expiresIn":    int(h.accessTTL().Seconds()),
		"user":         u,
	})
}

// SignUp creates a local account and logs it in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var in users.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.isDemoEmail(in.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), in)
	switch {
	case errors.Is(err, users.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		return
	case errors.Is(err, users.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.Errorf("register: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	h.issue(c, http.StatusCreated, u)
}

func (h *AuthHandler) isDemoEmail(email string) bool {
	return h.cfg.Demo.Enabled && strings.EqualFold(strings.TrimSpace(email), h.cfg.Demo.Email)
}

// Login accepts local credentials, including the built-in demo account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.isDemoEmail(req.Email) {
		if req.Password != h.cfg.Demo.Password {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
			return
		}
		h.issue(c, http.StatusOK, models.DemoUser(h.cfg.Demo.Email))
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		logger.Errorf("login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.issue(c, http.StatusOK, u)
}

func (h *AuthHandler) lookup(c *gin.Context, id string) (*models.User, error) {
	if id == models.DemoUserID {
		return models.DemoUser(h.cfg.Demo.Email), nil
	}
	return h.usersSvc.GetByID(c.Request.Context(), id)
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
		return
	}
	u, err := h.lookup(c, id.UserID)
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		logger.Errorf("me: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UpdateProfile completes onboarding for the caller.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
		return
	}
	if id.IsDemo() {
		c.JSON(http.StatusForbidden, gin.H{"error": "the demo profile is read-only"})
		return
	}
	var in users.OnboardingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.usersSvc.CompleteOnboarding(c.Request.Context(), id.UserID, in)
	switch {
	case errors.Is(err, users.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case err != nil:
		logger.Errorf("profile update: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"user": u})
	}
}

// Refresh rotates a refresh token and returns a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, rft, err := h.sessionsSvc.Rotate(c.Request.Context(), req.RefreshToken, h.refreshTTL())
	if errors.Is(err, sessions.ErrInvalidRefresh) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	if err != nil {
		logger.Errorf("refresh: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	u, err := h.lookup(c, sess.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.accessTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": access, "refreshToken": rft, "expiresIn": int(h.accessTTL().Seconds())})
}

// Logout invalidates the refresh token and blacklists the presented access token
// for the rest of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var at string
	if n, _ := fmt.Sscanf(c.GetHeader("Authorization"), "Bearer %s", &at); n == 1 {
		if exp, err := parseExpFromJWT(at); err == nil {
			if err := sessions.BlacklistAccessToken(c.Request.Context(), at, time.Until(exp)); err != nil {
				logger.Errorf("blacklist access token: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
				return
			}
		}
	}
	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// parseExpFromJWT decodes the JWT payload and returns the `exp` claim as time.Time.
// The signature is not checked; the caller has already passed AuthMiddleware.
func parseExpFromJWT(tok string) (time.Time, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}, err
	}
	var claims struct {
		Exp json.Number `json:"exp"`
	}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.Exp == "" {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	f, err := claims.Exp.Float64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(f), 0), nil
}
