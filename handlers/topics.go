package handlers

import (
	"net/http"

	"github.com/authorityai/authorityai/backend/go-services/internal/trends"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RegisterTopics mounts GET /api/viral-velocity/topics?category=.
func RegisterTopics(r gin.IRouter, p trends.TopicProvider) {
	r.GET("/api/viral-velocity/topics", func(c *gin.Context) {
		topics, err := p.Topics(c.Request.Context(), c.Query("category"))
		if err != nil {
			logger.Errorf("topics fetch: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "topics fetch failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"topics": topics})
	})
}
