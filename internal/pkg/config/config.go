package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port        string        `env:"PORT,                default=8080"`
	Env         string        `env:"ENV,                 default=development"`
	LogLevel    string        `env:"LOG_LEVEL,           default=info"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTExpires  time.Duration `env:"JWT_EXPIRES,         default=168h"`
	CookieDays  int           `env:"COOKIE_EXPIRES_DAYS, default=7"`
	FrontendURL string        `env:"FRONTEND_URL,        default=http://localhost:3000"`

	SalesCacheTTL  time.Duration `env:"SALES_CACHE_TTL, default=1m"`
	CleanupWorkers int           `env:"CLEANUP_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
	S3    S3Config
	SMTP  SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type S3Config struct {
	Bucket    string `env:"S3_BUCKET,     default=storefront-avatars"`
	Region    string `env:"S3_REGION,     default=us-east-1"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Endpoint  string `env:"S3_ENDPOINT"`
	PublicURL string `env:"S3_PUBLIC_URL"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST,      default=localhost"`
	Port     int    `env:"SMTP_PORT,      default=1025"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM,      default=noreply@storefront.local"`
	FromName string `env:"SMTP_FROM_NAME, default=Storefront"`
	Insecure bool   `env:"SMTP_INSECURE,  default=false"`
}

// IsProduction reports whether the service runs with production settings
// (secure cookies, JSON logs).
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CookieTTL is the lifetime of the session cookie.
func (c *Config) CookieTTL() time.Duration {
	return time.Duration(c.CookieDays) * 24 * time.Hour
}

// Load reads a .env file when one is present, then configuration from
// environment variables using go-envconfig. Variables already set in the
// environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 characters in production")
	}
	if c.JWTExpires <= 0 {
		return errors.New("config: JWT_EXPIRES must be positive")
	}
	if c.CookieDays <= 0 {
		return errors.New("config: COOKIE_EXPIRES_DAYS must be positive")
	}
	return nil
}
