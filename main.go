package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/handlers"
	"github.com/authorityai/authorityai/backend/go-services/internal/config"
	"github.com/authorityai/authorityai/backend/go-services/internal/content"
	contenthandler "github.com/authorityai/authorityai/backend/go-services/internal/content/handler"
	contentrepo "github.com/authorityai/authorityai/backend/go-services/internal/content/repository"
	contentsvc "github.com/authorityai/authorityai/backend/go-services/internal/content/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/database"
	"github.com/authorityai/authorityai/backend/go-services/internal/generation"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
	interviewhandler "github.com/authorityai/authorityai/backend/go-services/internal/interview/handler"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview/lock"
	interviewrepo "github.com/authorityai/authorityai/backend/go-services/internal/interview/repository"
	interviewsvc "github.com/authorityai/authorityai/backend/go-services/internal/interview/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/oidc"
	"github.com/authorityai/authorityai/backend/go-services/internal/sessions"
	"github.com/authorityai/authorityai/backend/go-services/internal/storage"
	"github.com/authorityai/authorityai/backend/go-services/internal/tokens"
	"github.com/authorityai/authorityai/backend/go-services/internal/trends"
	"github.com/authorityai/authorityai/backend/go-services/internal/users"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/metrics"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v llm=%s", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.LLM.Provider)

	ctx := context.Background()
	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery(), cors())

	// Redis first so the rate limiter, blacklist and locker can share the client.
	logger.Infof("MAIN checkpoint: before Redis check")
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			rdb = client
			sessions.SetBlacklistClient(rdb)
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Persistence: MongoDB when reachable, in-memory otherwise.
	logger.Infof("MAIN checkpoint: before MongoDB connect")
	var db *mongo.Database
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			logger.Warnf("%v; falling back to in-memory storage", err)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db = client.Database(cfg.MongoDB.Database)
		}
	}

	var (
		userRepo      users.UserRepository
		sessionRepo   sessions.Repository
		interviewRepo interview.Store
		contentRepo   content.Store
	)
	if db != nil {
		userRepo = users.NewMongoUserRepository(db.Collection("users"))
		ir := interviewrepo.NewMongoRepo(db.Collection("interviews"))
		cr := contentrepo.NewMongoRepo(db.Collection("content"))
		sr := sessions.NewMongoRepository(db.Collection("sessions"))
		for name, ensure := range map[string]func(context.Context) error{"interviews": ir.EnsureIndexes, "content": cr.EnsureIndexes, "sessions": sr.EnsureIndexes} {
			if err := ensure(ctx); err != nil {
				logger.Warnf("ensure %s indexes: %v", name, err)
			}
		}
		interviewRepo, contentRepo, sessionRepo = ir, cr, sr
	} else {
		logger.Warn("MongoDB unavailable: users, interviews and content are kept in memory")
		userRepo = users.NewMemoryRepository()
		interviewRepo = interviewrepo.NewMemoryRepo()
		contentRepo = contentrepo.NewMemoryRepo()
		sessionRepo = sessions.NewMemoryRepository()
	}
	if rdb != nil {
		sessionRepo = sessions.NewRedisRepository(rdb, "session:")
		logger.Infof("using Redis for session storage")
	}
	userSvc := users.NewService(userRepo, nil)
	sessionsSvc := sessions.NewService(sessionRepo)

	// Bearer verification: local HS256 tokens first, then Keycloak when configured.
	logger.Infof("MAIN checkpoint: before verifier setup")
	chain := middleware.ChainVerifier{}
	if cfg.JWT.Secret != "" {
		chain = append(chain, tokens.NewJWTVerifier(cfg.JWT.Secret))
	}
	oidcReady := true
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, oidc.IssuerURL(cfg.Keycloak.URL, cfg.Keycloak.Realm), cfg.Keycloak.ClientID, userSvc)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
			oidcReady = false
		} else {
			chain = append(chain, ver)
		}
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure OIDC verifier (integration mode)")
		chain = append(chain, oidc.NewInsecureVerifier(userSvc))
	}
	if len(chain) == 0 {
		logger.Warn("no token verifier configured: every protected route will answer 403")
	}

	// Text generation: a missing or broken provider leaves gen nil and every call
	// takes the fallback path.
	var gen generation.Generator
	if g, err := generation.NewFromConfig(ctx, cfg.LLM); err != nil {
		logger.Warnf("text generation unavailable, using fallbacks: %v", err)
	} else {
		gen = g
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Interview.DistributedLocker && rdb != nil {
		locker = lock.NewRedisLocker(rdb, cfg.Interview.LockTTL)
		logger.Infof("using Redis interview locks")
	}
	policy := interview.Policy{
		TargetTurns:      cfg.Interview.TargetTurns,
		EarlyStopPercent: cfg.Interview.EarlyStopPercent,
		Cap:              cfg.Interview.ProgressCap,
	}
	if err := policy.Validate(); err != nil {
		logger.Warnf("invalid interview policy (%v); using defaults", err)
		policy = interview.DefaultPolicy()
	}
	interviews := interviewsvc.NewService(interviewRepo, locker, generation.NewQuestionGenerator(gen), policy)

	contentOpts := []contentsvc.Option{contentsvc.WithHTMLCacheSize(cfg.Content.HTMLCacheSize), contentsvc.WithLocker(locker)}
	minioReady := true
	if cfg.MinIO.Endpoint != "" {
		objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("MinIO unavailable, export disabled: %v", err)
			minioReady = false
		} else {
			contentOpts = append(contentOpts, contentsvc.WithObjectStore(objects, cfg.Content.ExportURLTTL))
		}
	}
	contentService, err := contentsvc.NewService(contentRepo, interviews, generation.NewSynthesizer(gen), nil, contentOpts...)
	if err != nil {
		logger.Fatalf("content service: %v", err)
	}

	topics, err := trends.DefaultProvider()
	if err != nil {
		logger.Fatalf("topics: %v", err)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC()})
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo":      cfg.MongoDB.URI == "" || db != nil,
			"redis":      cfg.Redis.Host == "" || rdb != nil,
			"oidc":       oidcReady,
			"minio":      minioReady,
			"generation": gen != nil,
			"verifier":   len(chain) > 0,
		}
		ready := deps["mongo"] && deps["redis"] && deps["verifier"]
		body := gin.H{"deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})

	logger.Infof("MAIN checkpoint: before registering handlers")
	handlers.RegisterSwagger(r)
	public := r.Group("/api")
	protected := r.Group("/", middleware.AuthMiddleware(chain))
	handlers.NewAuthHandler(cfg, userSvc, sessionsSvc).Register(public, protected.Group("/api"))
	handlers.RegisterTopics(protected, topics)
	handlers.RegisterAnalytics(protected, cfg, contentService, userSvc)
	interviewhandler.RegisterInterviewRoutes(protected, interviews)
	contenthandler.RegisterContentRoutes(protected, contentService)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Config summary: keycloak=%v mongo=%v redis=%v jwt_secret_set=%v generation=%v", cfg.Keycloak.URL != "", db != nil, rdb != nil, cfg.JWT.Secret != "", gen != nil)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Infof("Starting AuthorityAI API on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server failed: %v", err)
	}
}

// cors is the permissive dev policy: common headers plus an OPTIONS short-circuit.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
