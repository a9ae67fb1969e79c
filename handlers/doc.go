// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the VoteDesk API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - UserHandler: Signup, login, profile and password changes
  - CandidateHandler: Candidate CRUD with image uploads, plus per-candidate votes
  - ElectionHandler: Election CRUD and the current-election lookup
  - VotingHandler: Ballot casting within an election
  - ResultsHandler: Results, tallies, audit trails and geographic breakdowns

Handlers are created via constructor functions that accept *sql.DB and Config:

	electionHandler := handlers.NewElectionHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, cfg, issuer)
	candidateHandler := handlers.NewCandidateHandler(db, cfg, images)

# Errors

Operations return errors wrapping the sentinels in models
(models.ErrNotFound, models.ErrDuplicateVote, ...). Handlers pass them to
middleware.WriteError, which picks the status code.

# Casting a Vote

	POST /elections/{id}/vote → CastVote

Preconditions are checked in order: admins are refused, the voter must have
a date of birth and a state, be at least 18 on the day of the vote, the
election must exist, the voter must not have voted in it yet and the
candidate must participate in it. The ballot insert and the count increment
run in one transaction; a unique key on (election, voter) is the final guard
against concurrent duplicates.

	POST /candidates/vote/{id} → CandidateHandler.Vote

The per-candidate vote is independent of elections. Each voter gets one in
total, tracked by the voter's hasVoted flag. It is only routed when legacy
voting is enabled.

# Reports

	GET /elections/results        → Results (elections dated before now)
	GET /elections/{id}/tally     → Tally
	GET /elections/{id}/audit     → Audit (admin)
	GET /elections/{id}/map-results → MapResults

DeclareResult, CompletedElections, GeographicBreakdown and CurrentElection
are pure functions over loaded elections and vote records. Candidates that
have been deleted stay in their elections but are left out of reports.
*/
package handlers
