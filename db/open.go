// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the database of the given type and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case TypePostgres:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		return conn, nil

	case TypeSQLite:
		conn, err := sql.Open("sqlite", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// One writer at a time; also keeps in-memory databases on a single connection
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to configure sqlite: %w", err)
		}
		return conn, nil
	}

	return nil, fmt.Errorf("unsupported database type %q", dbType)
}

// IsUniqueViolation reports whether err is a unique constraint failure.
// When column is non-empty the violated key must include that column.
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return false
		}
		// Detail looks like: Key (election_id, voter_id)=(e1, v1) already exists.
		return column == "" || slices.Contains(pqKeyColumns(pqErr.Detail), column)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		case sqlite3.SQLITE_CONSTRAINT:
			// Primary code only; fall back to the message
			if !strings.Contains(liteErr.Error(), "UNIQUE constraint failed") {
				return false
			}
		default:
			return false
		}
		// Message looks like: UNIQUE constraint failed: ballot.election_id, ballot.voter_id
		return column == "" || slices.Contains(sqliteKeyColumns(liteErr.Error()), column)
	}

	return false
}

func pqKeyColumns(detail string) []string {
	_, rest, ok := strings.Cut(detail, "Key (")
	if !ok {
		return nil
	}
	cols, _, ok := strings.Cut(rest, ")=")
	if !ok {
		return nil
	}
	return strings.Split(cols, ", ")
}

func sqliteKeyColumns(msg string) []string {
	// modernc prefixes the sqlite message with its own "constraint failed: "
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return nil
	}
	rest := msg[i+len(marker):]
	// Drop any trailing "(code)" annotation
	rest, _, _ = strings.Cut(rest, " (")

	var cols []string
	for _, qualified := range strings.Split(rest, ", ") {
		_, col, found := strings.Cut(strings.TrimSpace(qualified), ".")
		if !found {
			col = strings.TrimSpace(qualified)
		}
		cols = append(cols, col)
	}
	return cols
}
