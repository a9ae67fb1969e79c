// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

main loads a .env file (if present) before calling ParseFlags, so values
from the file behave like regular environment variables.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - JWTSecret: Secret used to sign bearer tokens (required)
  - TokenTTL: Bearer token lifetime (default: 24h)
  - AllowedOrigins: CORS allow-list (empty echoes the request origin)
  - LegacyVoting: Enables POST /candidates/vote/{id} (default: true)
  - ImageStore, ImageDir, ImageBaseURL, S3: Candidate image storage
  - LogLevel, LogFormat: slog handler settings

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	-jwt-secret     Token signing secret
	-token-ttl      Token lifetime
	-origins        Allowed CORS origins
	-legacy-voting  Enable per-candidate voting
	-image-store    disk or s3
	-image-dir      Disk store directory
	-s3-bucket      S3 bucket
	-log-level      Log level
	-log-format     text or json

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	JWT_SECRET      → -jwt-secret
	TOKEN_TTL       → -token-ttl
	ALLOWED_ORIGINS → -origins
	LEGACY_VOTING   → -legacy-voting
	IMAGE_STORE     → -image-store
	IMAGE_DIR       → -image-dir
	S3_BUCKET       → -s3-bucket
	LOG_LEVEL       → -log-level
	LOG_FORMAT      → -log-format

Environment only: IMAGE_BASE_URL, S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY_ID,
S3_SECRET_ACCESS_KEY.

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - JWT_SECRET must be provided
  - S3_BUCKET must be provided when IMAGE_STORE=s3
*/
package cliparse
