package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string `env:"APP_NAME" envDefault:"Lab Works Tracker"`
	AppEnv  string `env:"APP_ENV,required"` // 'development' or 'production'
	Port    string `env:"PORT" envDefault:"8090"`

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBConnection string `env:"DB_CONNECTION" envDefault:"./data/labworks.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"`

	// Security
	JWTSecret  string        `env:"JWT_SECRET,required"`
	JWTExpiry  time.Duration `env:"JWT_EXPIRY" envDefault:"168h"` // 7 days
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	// Text polishing (Groq, OpenAI-compatible). Polishing is disabled without a key.
	GroqAPIKey       string        `env:"GROQ_API_KEY"`
	GroqBaseURL      string        `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1/"`
	GroqModel        string        `env:"GROQ_MODEL" envDefault:"llama3-8b-8192"`
	PolishTimeout    time.Duration `env:"POLISH_TIMEOUT" envDefault:"30s"`
	PolishMaxRetries int           `env:"POLISH_MAX_RETRIES" envDefault:"1"`

	// Observability (optional)
	SentryDSN string `env:"SENTRY_DSN"`

	// Export snapshots (optional, S3-compatible: MinIO, AWS S3, R2, ...)
	S3Region        string        `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket        string        `env:"S3_BUCKET"`
	S3AccessKey     string        `env:"S3_ACCESS_KEY"`
	S3SecretKey     string        `env:"S3_SECRET_KEY"`
	S3Endpoint      string        `env:"S3_ENDPOINT"`
	S3PresignExpiry time.Duration `env:"S3_PRESIGN_EXPIRY" envDefault:"1h"`
}

// Load reads an optional .env file and parses the process environment.
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return Parse(env.Options{})
}

// Parse builds a Config from opts. Tests pass opts.Environment to avoid
// touching the process environment.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	err := env.ParseWithOptions(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AppEnv {
	case "development", "production":
	default:
		return fmt.Errorf("APP_ENV must be 'development' or 'production', got %q", c.AppEnv)
	}

	switch c.DBDriver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be 'sqlite' or 'pgx', got %q", c.DBDriver)
	}

	if c.PolishMaxRetries < 0 {
		return fmt.Errorf("POLISH_MAX_RETRIES must not be negative")
	}

	// Production: signing key must be at least 32 bytes
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}

	if !strings.HasSuffix(c.GroqBaseURL, "/") {
		c.GroqBaseURL += "/"
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PolishEnabled reports whether a Groq key is configured.
func (c *Config) PolishEnabled() bool {
	return c.GroqAPIKey != ""
}

// ExportStorageEnabled reports whether export snapshots can be stored.
func (c *Config) ExportStorageEnabled() bool {
	return c.S3Bucket != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:          c.AppName,
		AppEnv:           c.AppEnv,
		Port:             c.Port,
		DBDriver:         c.DBDriver,
		GroqBaseURL:      c.GroqBaseURL,
		GroqModel:        c.GroqModel,
		PolishTimeout:    c.PolishTimeout,
		PolishMaxRetries: c.PolishMaxRetries,
		S3Region:         c.S3Region,
		S3Bucket:         c.S3Bucket,
		S3Endpoint:       c.S3Endpoint,
	}
}
