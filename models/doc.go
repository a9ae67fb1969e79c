// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API,
plus the error sentinels shared by handlers and middleware.

# Request Types

Types for parsing incoming JSON:

  - SignupRequest, LoginRequest, ChangePasswordRequest
  - CandidateRequest: name, party, age
  - CreateElectionRequest: title, dateOfElection, parties (candidate IDs)
  - UpdateElectionRequest: optional title and dateOfElection
  - CastVoteRequest: candidateId

# Response Types

  - AuthResponse: token and user
  - CastVoteResponse, CandidateVoteResponse, MessageResponse
  - ErrorResponse: error

# Domain Types

  - Voter: account and profile; PasswordHash is never serialized
  - Candidate: stored image URL and key
  - Election with Participation entries; Candidate is nil once deleted
  - VoteRecord: a ballot joined with party and voter state

# Report Types

  - CandidateTally, ParticipantResult, ElectionResult
  - AuditReport with AuditVoter
  - StateBreakdown with PartyVotes

# Errors

Wrap a sentinel with detail for the client:

	fmt.Errorf("%w: Election not found", models.ErrNotFound)

middleware.WriteError maps each sentinel to its HTTP status.
*/
package models
