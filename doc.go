// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the VoteDesk API server.

VoteDesk is an online voting backend: voters register and log in, admins
manage candidates and elections, and each eligible voter casts at most one
ballot per election. Results, per-state breakdowns and audit trails are
derived from the stored ballots.

# Starting the Server

The server reads a .env file if present, then environment variables or CLI
flags:

	DATABASE_URL=votedesk.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): HMAC key for bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - TOKEN_TTL (-token-ttl): token lifetime (default: 24h)
  - ALLOWED_ORIGINS (-origins): comma-separated CORS allow-list
  - LEGACY_VOTING (-legacy-voting): POST /candidates/vote/{id} (default: true)
  - IMAGE_STORE (-image-store): disk (default) or s3, plus IMAGE_DIR,
    IMAGE_BASE_URL and the S3_* settings
  - LOG_LEVEL, LOG_FORMAT: slog level and text or json output

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (users, candidates, elections, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, bearer auth, error mapping, JSON helpers
  - models: Request, response and domain types plus error sentinels
  - auth: IDs, password hashing and JWT issuing
  - imagestore: Candidate images on local disk or S3
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
