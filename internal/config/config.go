package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/workexp/workexp-api/pkg/logger"
)

const defaultMongoURI = "mongodb://localhost:27017/workexp"

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OIDC      OIDCConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	MinIO     MinIOConfig
	Export    ExportConfig
	LogLevel  string
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
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

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// AuthRequired protects every mutating route with a bearer token.
	AuthRequired bool
}

// OIDCConfig enables an external issuer next to the locally signed tokens.
type OIDCConfig struct {
	Issuer   string
	ClientID string
}

func (o OIDCConfig) Enabled() bool { return o.Issuer != "" && o.ClientID != "" }

type CORSConfig struct {
	Whitelist []string
}

// RateLimitConfig mirrors the fixed window used on /api: Max requests per Window.
type RateLimitConfig struct {
	Enabled  bool
	UseRedis bool
	Max      int
	Window   time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

func (m MinIOConfig) Enabled() bool { return m.Endpoint != "" }

type ExportConfig struct {
	// Schedule is a cron expression; empty disables scheduled exports.
	Schedule string
	URLTTL   time.Duration
}

// LoadConfig loads configuration from environment variables and an optional .env file.
// Values are read once; there is no reload.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("MONGODB_DATABASE", "workexp")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("CORS_WHITELIST", "*")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_MAX", 500)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 600)
	v.SetDefault("MINIO_BUCKET", "workexp")
	v.SetDefault("EXPORT_URL_TTL_MINUTES", 15)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:            firstNonEmpty(v.GetString("PORT"), v.GetString("SERVER_PORT"), "4000"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      firstNonEmpty(v.GetString("MONGO_URI"), v.GetString("MONGODB_URI")),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(v.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
			AuthRequired:    v.GetBool("AUTH_REQUIRED"),
		},
		OIDC: OIDCConfig{
			Issuer:   v.GetString("OIDC_ISSUER"),
			ClientID: v.GetString("OIDC_CLIENT_ID"),
		},
		CORS: CORSConfig{
			Whitelist: splitList(v.GetString("CORS_WHITELIST")),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			Max:      v.GetInt("RATE_LIMIT_MAX"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Export: ExportConfig{
			Schedule: strings.TrimSpace(v.GetString("EXPORT_SCHEDULE")),
			URLTTL:   time.Duration(v.GetInt("EXPORT_URL_TTL_MINUTES")) * time.Minute,
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.MongoDB.URI == "" {
		logger.Warnf("MONGO_URI not set; using local database %s", defaultMongoURI)
		cfg.MongoDB.URI = defaultMongoURI
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET is not set; auth routes are disabled")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.AuthRequired && c.JWT.Secret == "" && !c.OIDC.Enabled() {
		return fmt.Errorf("AUTH_REQUIRED=true needs JWT_SECRET or OIDC_ISSUER/OIDC_CLIENT_ID")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	if c.MongoDB.Timeout <= 0 {
		return fmt.Errorf("MONGODB_TIMEOUT must be positive")
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
