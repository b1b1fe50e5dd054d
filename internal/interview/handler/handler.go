package handler

import (
	"errors"
	"net/http"

	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview/service"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterInterviewRoutes mounts the interview endpoints on r, which must already run
// AuthMiddleware.
func RegisterInterviewRoutes(r gin.IRouter, svc *service.Service) {
	r.GET("/api/interview/templates", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"templates": svc.Templates()})
	})

	r.GET("/api/interview", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		list, err := svc.List(c.Request.Context(), id.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": list})
	})

	r.POST("/api/interview/start", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		var req service.StartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.OwnerID = id.UserID
		res, err := svc.Start(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	})

	r.GET("/api/interview/:sessionId", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		view, err := svc.Get(c.Request.Context(), id.UserID, c.Param("sessionId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	r.POST("/api/interview/:sessionId/respond", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		var req service.RespondRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.OwnerID = id.UserID
		req.SessionID = c.Param("sessionId")
		res, err := svc.Respond(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.POST("/api/interview/:sessionId/complete", func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		res, err := svc.Complete(c.Request.Context(), id.UserID, c.Param("sessionId"))
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

// writeError maps interview errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interview.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "interview session not found"})
	case errors.Is(err, interview.ErrInvalidInput),
		errors.Is(err, interview.ErrAlreadyCompleted),
		errors.Is(err, interview.ErrPreconditionFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, interview.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Errorf("interview %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
