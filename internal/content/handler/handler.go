package handler

import (
	"errors"
	"net/http"

	"github.com/authorityai/authorityai/backend/go-services/internal/content"
	"github.com/authorityai/authorityai/backend/go-services/internal/content/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterContentRoutes mounts artifact generation and the content library on r,
// which must already run AuthMiddleware.
func RegisterContentRoutes(r gin.IRouter, svc *service.Service) {
	r.POST("/api/content/generate", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		var req service.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.OwnerID = id.UserID
		res, err := svc.Generate(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.GET("/api/content", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		list, err := svc.List(c.Request.Context(), id.UserID, c.Query("status"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": list})
	})

	r.GET("/api/content/:id", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		a, err := svc.Get(c.Request.Context(), id.UserID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	})

	r.PUT("/api/content/:id", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		var req service.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a, err := svc.Update(c.Request.Context(), id.UserID, c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	})

	r.DELETE("/api/content/:id", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id.UserID, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.POST("/api/content/:id/publish", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		a, err := svc.Publish(c.Request.Context(), id.UserID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	})

	r.POST("/api/content/:id/track", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		var req struct {
			Event content.Event `json:"event" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		stats, err := svc.Track(c.Request.Context(), id.UserID, c.Param("id"), req.Event)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"analytics": stats})
	})

	r.GET("/api/content/:id/html", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		html, err := svc.HTML(c.Request.Context(), id.UserID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	})

	r.POST("/api/content/:id/export", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		res, err := svc.Export(c.Request.Context(), id.UserID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
}

func identity(c *gin.Context) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
	}
	return id, ok
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
	case errors.Is(err, interview.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "interview session not found"})
	case errors.Is(err, content.ErrInvalidInput), errors.Is(err, interview.ErrPreconditionFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, content.ErrExportUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.Errorf("content %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
