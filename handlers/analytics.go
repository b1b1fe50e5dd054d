package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/authorityai/authorityai/backend/go-services/internal/config"
	"github.com/authorityai/authorityai/backend/go-services/internal/content/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/models"
	"github.com/authorityai/authorityai/backend/go-services/internal/users"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// UserLookup resolves the caller's profile for the dashboard.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// RegisterAnalytics mounts GET /api/analytics/dashboard.
func RegisterAnalytics(r gin.IRouter, cfg *config.Config, contentSvc *service.Service, usersSvc UserLookup) {
	r.GET("/api/analytics/dashboard", func(c *gin.Context) {
		id, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}
		d, err := contentSvc.Dashboard(c.Request.Context(), id.UserID)
		if err != nil {
			logger.Errorf("dashboard: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard failed"})
			return
		}

		authority := 0
		if id.IsDemo() {
			authority = models.DemoUser(cfg.Demo.Email).Profile.AuthorityScore
		} else if u, err := usersSvc.GetByID(c.Request.Context(), id.UserID); err == nil {
			authority = u.Profile.AuthorityScore
		} else if !errors.Is(err, users.ErrNotFound) {
			logger.Warnf("dashboard: profile lookup for %s: %v", id.UserID, err)
		}
		c.JSON(http.StatusOK, gin.H{"dashboard": d, "authorityScore": authority})
	})
}
