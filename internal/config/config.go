package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AuthModeJWKS   = "jwks"
	AuthModeSecret = "secret"
	AuthModeClaims = "claims"

	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

type Config struct {
	// Server
	Port            string
	CORSOrigins     string
	AppEnv          string
	BodyLimit       int
	RateLimitPerMin int

	// Database
	StoreBackend string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string

	// Auth
	AuthMode     string
	JWTSecret    string
	AuthJWKSURL  string
	AuthIssuer   string
	AuthAudience string

	// Object storage (S3-compatible)
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicURL  string
	S3PresignTTL time.Duration

	// Uploads
	UploadMaxBytes int64

	// Observability
	SentryDSN        string
	LogRetentionDays int
}

func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		AppEnv:          getEnv("APP_ENV", "development"),
		BodyLimit:       parseInt(getEnv("BODY_LIMIT", ""), 8*1024*1024),
		RateLimitPerMin: parseInt(getEnv("RATE_LIMIT_PER_MIN", ""), 60),

		StoreBackend: getEnv("STORE_BACKEND", StoreBackendPostgres),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBName:       getEnv("DB_NAME", "identity_finder"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),

		AuthMode:     getEnv("AUTH_MODE", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		AuthJWKSURL:  getEnv("AUTH_JWKS_URL", ""),
		AuthIssuer:   getEnv("AUTH_ISSUER", ""),
		AuthAudience: getEnv("AUTH_AUDIENCE", ""),

		S3Bucket:     getEnv("S3_BUCKET", "identity-finder"),
		S3Region:     getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:  getEnv("S3_PUBLIC_URL", ""),
		S3PresignTTL: parseDuration(getEnv("S3_PRESIGN_TTL", "168h"), 168*time.Hour),

		UploadMaxBytes: int64(parseInt(getEnv("UPLOAD_MAX_BYTES", ""), 5*1024*1024)),

		SentryDSN:        getEnv("SENTRY_DSN", ""),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", ""), 30),
	}

	if cfg.AuthMode == "" {
		cfg.AuthMode = defaultAuthMode(cfg)
	}
	return cfg
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModeJWKS:
		if c.AuthJWKSURL == "" {
			return errors.New("AUTH_JWKS_URL is required when AUTH_MODE=jwks")
		}
	case AuthModeSecret:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=secret")
		}
	case AuthModeClaims:
	case "":
		return errors.New("no token verification configured: set AUTH_JWKS_URL or JWT_SECRET")
	default:
		return errors.New("unknown AUTH_MODE: " + c.AuthMode)
	}

	switch c.StoreBackend {
	case StoreBackendPostgres:
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required")
		}
	case StoreBackendMemory:
	default:
		return errors.New("unknown STORE_BACKEND: " + c.StoreBackend)
	}

	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if int64(c.BodyLimit) <= c.UploadMaxBytes {
		return errors.New("BODY_LIMIT must be larger than UPLOAD_MAX_BYTES")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func defaultAuthMode(c *Config) string {
	switch {
	case c.AuthJWKSURL != "":
		return AuthModeJWKS
	case c.JWTSecret != "":
		return AuthModeSecret
	default:
		return ""
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
