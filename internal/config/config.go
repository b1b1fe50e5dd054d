package config

import (
	"os"
	"strings"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	LLM       LLMConfig
	Interview InterviewConfig
	Content   ContentConfig
	MinIO     MinIOConfig
	Demo      DemoConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KeycloakConfig struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LLMConfig selects and configures the external text generator.
type LLMConfig struct {
	Provider string // openai | gemini | mock
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// InterviewConfig carries the progress policy constants.
type InterviewConfig struct {
	TargetTurns       int
	EarlyStopPercent  int
	ProgressCap       int
	LockTTL           time.Duration
	DistributedLocker bool
}

type ContentConfig struct {
	HTMLCacheSize int
	ExportURLTTL  time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// DemoConfig controls the built-in demo account accepted by /api/auth/login.
type DemoConfig struct {
	Enabled  bool
	Email    string
	Password string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "authorityai")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	viper.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_USE_REDIS", false)
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("LLM_PROVIDER", "openai")
	viper.SetDefault("LLM_TIMEOUT_SECONDS", 30)
	viper.SetDefault("INTERVIEW_TARGET_TURNS", 6)
	viper.SetDefault("INTERVIEW_EARLY_STOP_PERCENT", 90)
	viper.SetDefault("INTERVIEW_PROGRESS_CAP", 89)
	viper.SetDefault("INTERVIEW_LOCK_TTL_SECONDS", 120)
	viper.SetDefault("CONTENT_HTML_CACHE_SIZE", 256)
	viper.SetDefault("CONTENT_EXPORT_URL_TTL_MINUTES", 60)
	viper.SetDefault("MINIO_BUCKET", "authorityai")
	viper.SetDefault("DEMO_ENABLED", true)
	viper.SetDefault("DEMO_EMAIL", "demo@authorityai.com")
	viper.SetDefault("DEMO_PASSWORD", "demo123")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:          viper.GetString("KEYCLOAK_URL"),
			Realm:        viper.GetString("KEYCLOAK_REALM"),
			ClientID:     viper.GetString("KEYCLOAK_CLIENT_ID"),
			ClientSecret: viper.GetString("KEYCLOAK_CLIENT_SECRET"),
		},
		JWT: JWTConfig{
			Secret:          os.Getenv("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(viper.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(viper.GetString("LLM_PROVIDER")),
			APIKey:   os.Getenv("LLM_API_KEY"),
			BaseURL:  viper.GetString("LLM_BASE_URL"),
			Model:    viper.GetString("LLM_MODEL"),
			Timeout:  time.Duration(viper.GetInt("LLM_TIMEOUT_SECONDS")) * time.Second,
		},
		Interview: InterviewConfig{
			TargetTurns:       viper.GetInt("INTERVIEW_TARGET_TURNS"),
			EarlyStopPercent:  viper.GetInt("INTERVIEW_EARLY_STOP_PERCENT"),
			ProgressCap:       viper.GetInt("INTERVIEW_PROGRESS_CAP"),
			LockTTL:           time.Duration(viper.GetInt("INTERVIEW_LOCK_TTL_SECONDS")) * time.Second,
			DistributedLocker: viper.GetBool("INTERVIEW_REDIS_LOCK"),
		},
		Content: ContentConfig{
			HTMLCacheSize: viper.GetInt("CONTENT_HTML_CACHE_SIZE"),
			ExportURLTTL:  time.Duration(viper.GetInt("CONTENT_EXPORT_URL_TTL_MINUTES")) * time.Minute,
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		Demo: DemoConfig{
			Enabled:  viper.GetBool("DEMO_ENABLED"),
			Email:    viper.GetString("DEMO_EMAIL"),
			Password: viper.GetString("DEMO_PASSWORD"),
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET is not set; set a secure value in production")
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
		logger.Warn("LLM_API_KEY is not set; every generation will use fallback text")
	}
	if cfg.Interview.TargetTurns <= 0 {
		cfg.Interview.TargetTurns = 6
	}

	return cfg, nil
}
