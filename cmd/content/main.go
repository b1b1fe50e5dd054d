// Command content runs the content library on its own port. It shares the main
// API's MongoDB collections and token secret, so artifacts and completed interviews
// written by either process are visible to both.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/authorityai/authorityai/backend/go-services/internal/config"
	"github.com/authorityai/authorityai/backend/go-services/internal/content"
	"github.com/authorityai/authorityai/backend/go-services/internal/content/handler"
	"github.com/authorityai/authorityai/backend/go-services/internal/content/repository"
	"github.com/authorityai/authorityai/backend/go-services/internal/content/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/database"
	"github.com/authorityai/authorityai/backend/go-services/internal/generation"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
	interviewrepo "github.com/authorityai/authorityai/backend/go-services/internal/interview/repository"
	interviewsvc "github.com/authorityai/authorityai/backend/go-services/internal/interview/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/storage"
	"github.com/authorityai/authorityai/backend/go-services/internal/tokens"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	port := os.Getenv("CONTENT_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()

	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery())

	var (
		store    content.Store
		sessions interview.Store
	)
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3)
		if err != nil {
			logger.Warnf("cannot connect to MongoDB (%v); using memory-backed repos", err)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			cr := repository.NewMongoRepo(db.Collection("content"))
			if err := cr.EnsureIndexes(ctx); err != nil {
				logger.Warnf("ensure content indexes: %v", err)
			}
			store = cr
			sessions = interviewrepo.NewMongoRepo(db.Collection("interviews"))
		}
	}
	if store == nil {
		store = repository.NewMemoryRepo()
		sessions = interviewrepo.NewMemoryRepo()
	}

	var gen generation.Generator
	if g, err := generation.NewFromConfig(ctx, cfg.LLM); err != nil {
		logger.Warnf("text generation unavailable, using fallbacks: %v", err)
	} else {
		gen = g
	}
	// Only the read side of the interview service is used here.
	interviews := interviewsvc.NewService(sessions, nil, generation.NewQuestionGenerator(gen), interview.DefaultPolicy())

	var opts []service.Option
	opts = append(opts, service.WithHTMLCacheSize(cfg.Content.HTMLCacheSize))
	if cfg.MinIO.Endpoint != "" {
		if objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO); err != nil {
			logger.Warnf("MinIO unavailable, export disabled: %v", err)
		} else {
			opts = append(opts, service.WithObjectStore(objects, cfg.Content.ExportURLTTL))
		}
	}
	svc, err := service.NewService(store, interviews, generation.NewSynthesizer(gen), nil, opts...)
	if err != nil {
		logger.Fatalf("content service: %v", err)
	}

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "healthy") })
	handler.RegisterContentRoutes(r.Group("/", middleware.AuthMiddleware(tokens.NewJWTVerifier(cfg.JWT.Secret))), svc)

	logger.Infof("content service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
