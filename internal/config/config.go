package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Plagiarism providers
const (
	PlagiarismLocal = "local"
	PlagiarismHTTP  = "http"
)

type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	Environment   string `envconfig:"ENVIRONMENT" default:"dev"`
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	TablePrefix   string `envconfig:"TABLE_PREFIX"` // Derived from Environment when empty
	CORSOrigins   string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	// Public URLs are PublicBaseURL + PublicPath + "/" + submission id
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	PublicPath    string `envconfig:"PUBLIC_PATH" default:"/blogs"`

	// Submission policy
	MinWordCount   int   `envconfig:"MIN_WORD_COUNT" default:"800"`
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	// Email transport; an empty SMTPHost disables delivery
	SMTPHost     string        `envconfig:"SMTP_HOST"`
	SMTPPort     int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword string        `envconfig:"SMTP_PASSWORD"`
	EmailFrom    string        `envconfig:"EMAIL_FROM"`
	EmailTimeout time.Duration `envconfig:"EMAIL_TIMEOUT" default:"10s"`

	// Plagiarism detection
	PlagiarismProvider  string        `envconfig:"PLAGIARISM_PROVIDER" default:"local"`
	PlagiarismAPIURL    string        `envconfig:"PLAGIARISM_API_URL"`
	PlagiarismAPIKey    string        `envconfig:"PLAGIARISM_API_KEY"`
	PlagiarismTimeout   time.Duration `envconfig:"PLAGIARISM_TIMEOUT" default:"15s"`
	PlagiarismThreshold float64       `envconfig:"PLAGIARISM_THRESHOLD" default:"50"`

	// Upload archive; an empty S3Bucket disables archiving
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogDir      string `envconfig:"LOG_DIR"`
	LogMaxFiles int    `envconfig:"LOG_MAX_FILES" default:"10"`
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	// Silently ignore a missing .env file (production)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.TablePrefix == "" {
		cfg.TablePrefix = getTablePrefix(cfg.Environment)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe fallback
func (c *Config) Validate() error {
	if c.MinWordCount <= 0 {
		return fmt.Errorf("MIN_WORD_COUNT must be positive, got %d", c.MinWordCount)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.PublicBaseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL is required")
	}

	if c.EmailEnabled() && c.Sender() == "" {
		return fmt.Errorf("EMAIL_FROM is required when SMTP_HOST is set without SMTP_USERNAME")
	}

	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s storage driver", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.PlagiarismProvider {
	case PlagiarismLocal:
	case PlagiarismHTTP:
		if c.PlagiarismAPIURL == "" {
			return fmt.Errorf("PLAGIARISM_API_URL is required for the %s plagiarism provider", PlagiarismHTTP)
		}
	default:
		return fmt.Errorf("unknown PLAGIARISM_PROVIDER %q", c.PlagiarismProvider)
	}

	if c.PlagiarismThreshold < 0 || c.PlagiarismThreshold > 100 {
		return fmt.Errorf("PLAGIARISM_THRESHOLD must be within 0..100, got %v", c.PlagiarismThreshold)
	}
	return nil
}

// EmailEnabled reports whether an SMTP relay is configured. Credentials are
// optional; relays without auth are supported.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

// ArchiveEnabled reports whether uploads should be copied to object storage
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// Sender returns the From address, falling back to the SMTP username
func (c *Config) Sender() string {
	if c.EmailFrom != "" {
		return c.EmailFrom
	}
	return c.SMTPUsername
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}
