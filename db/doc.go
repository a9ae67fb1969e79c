// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

postgres uses github.com/lib/pq. sqlite uses modernc.org/sqlite, limited to a
single open connection with foreign keys enabled.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on both drivers.

# Tables

  - voter: Voter and admin accounts
  - candidate: Candidate registry
  - election: Election metadata
  - election_candidate: Participation entries with vote counts
  - ballot: One vote record per voter per election
  - candidate_vote: Per-candidate votes, one per voter overall

# Relationships

	election 1──* election_candidate
	election_candidate 1──* ballot
	voter 1──* ballot
	candidate 1──* candidate_vote
	voter 1──1 candidate_vote

election_candidate.candidate_id is not a foreign key: removing a candidate
does not touch the elections that referenced it.

# Constraints

  - voter.national_id is unique
  - idx_voter_single_admin allows one row with role = 'admin'
  - ballot.(election_id, voter_id) is unique
  - candidate_vote.voter_id is unique

IsUniqueViolation classifies constraint errors from either driver:

	if db.IsUniqueViolation(err, "national_id") {
		// duplicate registration
	}
*/
package db
