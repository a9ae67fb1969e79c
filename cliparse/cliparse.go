package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins []string
	LegacyVoting   bool

	ImageStore   string
	ImageDir     string
	ImageBaseURL string
	S3           S3Config

	LogLevel  string
	LogFormat string
}

// S3Config holds the object storage settings for candidate images
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

const (
	DefaultPort     = 3318
	DefaultTokenTTL = 24 * time.Hour
)

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins, tokenTTL, legacy string

	fs := flag.NewFlagSet("votedesk", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&origins, "origins", "", "Comma separated list of allowed CORS origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Token signing secret (prefer env)")
	fs.StringVar(&tokenTTL, "token-ttl", "", "Token lifetime, e.g. 24h")

	fs.StringVar(&legacy, "legacy-voting", "", "Enable per-candidate voting (true or false)")

	fs.StringVar(&cfg.ImageStore, "image-store", "", "Candidate image store (disk or s3)")
	fs.StringVar(&cfg.ImageDir, "image-dir", "", "Directory for the disk image store")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", "", "S3 bucket for candidate images")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if tokenTTL == "" {
		tokenTTL = os.Getenv("TOKEN_TTL")
	}
	cfg.TokenTTL = DefaultTokenTTL
	if tokenTTL != "" {
		ttl, err := time.ParseDuration(tokenTTL)
		if err != nil || ttl <= 0 {
			return Config{}, errors.New("invalid TOKEN_TTL")
		}
		cfg.TokenTTL = ttl
	}

	if origins == "" {
		origins = os.Getenv("ALLOWED_ORIGINS")
	}
	cfg.AllowedOrigins = splitOrigins(origins)

	if legacy == "" {
		legacy = os.Getenv("LEGACY_VOTING")
	}
	cfg.LegacyVoting = true
	if legacy != "" {
		enabled, err := strconv.ParseBool(legacy)
		if err != nil {
			return Config{}, errors.New("invalid LEGACY_VOTING value")
		}
		cfg.LegacyVoting = enabled
	}

	if cfg.ImageStore == "" {
		cfg.ImageStore = envOr("IMAGE_STORE", "disk")
	}
	if cfg.ImageStore != "disk" && cfg.ImageStore != "s3" {
		return Config{}, errors.New("image store must be disk or s3")
	}
	if cfg.ImageDir == "" {
		cfg.ImageDir = envOr("IMAGE_DIR", "uploads")
	}
	cfg.ImageBaseURL = strings.TrimRight(os.Getenv("IMAGE_BASE_URL"), "/")

	if cfg.S3.Bucket == "" {
		cfg.S3.Bucket = os.Getenv("S3_BUCKET")
	}
	cfg.S3.Region = envOr("S3_REGION", "us-east-1")
	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if cfg.ImageStore == "s3" && cfg.S3.Bucket == "" {
		return Config{}, errors.New("S3_BUCKET required when IMAGE_STORE=s3")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = envOr("LOG_FORMAT", "text")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitOrigins normalizes a comma separated origin list, dropping trailing slashes
func splitOrigins(raw string) []string {
	var out []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
