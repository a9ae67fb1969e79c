// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is shared by postgres and sqlite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Voters and the single admin account
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    age INTEGER NOT NULL CHECK (age > 0),
    email TEXT,
    password_hash TEXT NOT NULL,
    phone TEXT NOT NULL,
    address_street TEXT,
    address_city TEXT NOT NULL,
    address_state TEXT,
    address_pincode TEXT NOT NULL,
    sex TEXT NOT NULL CHECK (sex IN ('Male', 'Female', 'Other')),
    relation_type TEXT NOT NULL CHECK (relation_type IN ('S/O', 'W/O', 'D/O')),
    relative_name TEXT NOT NULL,
    national_id TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL DEFAULT 'voter' CHECK (role IN ('voter', 'admin')),
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    dob DATE,
    profile_photo TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- At most one admin
CREATE UNIQUE INDEX IF NOT EXISTS idx_voter_single_admin ON voter(role) WHERE role = 'admin';

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    party TEXT NOT NULL,
    age INTEGER NOT NULL DEFAULT 25,
    image_url TEXT,
    image_key TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date_of_election TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_election_date ON election(date_of_election);

-- Participation entries. candidate_id is deliberately not a foreign key:
-- deleting a candidate leaves the entry in place.
CREATE TABLE IF NOT EXISTS election_candidate (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL,
    vote_count INTEGER NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (election_id, candidate_id)
);

-- Ballots: one per voter per election
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    voter_state TEXT,
    cast_at TIMESTAMP NOT NULL,
    FOREIGN KEY (election_id, candidate_id) REFERENCES election_candidate(election_id, candidate_id) ON DELETE CASCADE,
    UNIQUE (election_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_ballot_election_id ON ballot(election_id);

-- Per-candidate votes outside of any election: one per voter, ever
CREATE TABLE IF NOT EXISTS candidate_vote (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL UNIQUE REFERENCES voter(id) ON DELETE CASCADE,
    cast_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_vote_candidate_id ON candidate_vote(candidate_id);
`
