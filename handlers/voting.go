// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/cliparse"
	"github.com/danielhkuo/votedesk/db"
	"github.com/danielhkuo/votedesk/middleware"
	"github.com/danielhkuo/votedesk/models"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// ComputeAge returns completed years between dob and now, by calendar date
func ComputeAge(dob, now time.Time) int {
	dob = dob.UTC()
	now = now.UTC()

	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// CastVote records one ballot for the caller in an election.
// Checks run in order and the first failure wins: admin, profile, age,
// election, duplicate, candidate. The ballot insert and the count increment
// commit together.
func CastVote(ctx context.Context, conn *sql.DB, claims *auth.Claims, electionID, candidateID string, now time.Time) (*models.CastVoteResponse, error) {
	if claims.IsAdmin() {
		return nil, fmt.Errorf("%w: Admins are not allowed to vote", models.ErrForbidden)
	}

	var dob sql.NullTime
	var state sql.NullString
	err := conn.QueryRowContext(ctx, `
		SELECT dob, address_state FROM voter WHERE id = $1
	`, claims.VoterID).Scan(&dob, &state)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: Voter not found", models.ErrIncompleteProfile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voter: %w", err)
	}
	if !dob.Valid || !state.Valid || state.String == "" {
		return nil, fmt.Errorf("%w: date of birth and address state are required to vote", models.ErrIncompleteProfile)
	}

	if ComputeAge(dob.Time, now) < models.MinVotingAge {
		return nil, models.ErrIneligibleAge
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := electionExists(ctx, tx, electionID); err != nil {
		return nil, err
	}

	var exists int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM ballot WHERE election_id = $1 AND voter_id = $2
	`, electionID, claims.VoterID).Scan(&exists)
	if err == nil {
		return nil, fmt.Errorf("%w: You have already voted in this election", models.ErrDuplicateVote)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query ballot: %w", err)
	}

	castAt := now.UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO ballot (id, election_id, candidate_id, voter_id, voter_state, cast_at)
		SELECT $1, election_id, candidate_id, $2, $3, $4
		FROM election_candidate
		WHERE election_id = $5 AND candidate_id = $6
	`, auth.GenerateID(), claims.VoterID, state.String, castAt, electionID, candidateID)
	if err != nil {
		if db.IsUniqueViolation(err, "voter_id") {
			return nil, fmt.Errorf("%w: You have already voted in this election", models.ErrDuplicateVote)
		}
		return nil, fmt.Errorf("failed to insert ballot: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: Candidate not found in this election", models.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE election_candidate SET vote_count = vote_count + 1
		WHERE election_id = $1 AND candidate_id = $2
	`, electionID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to update vote count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err, "voter_id") {
			return nil, fmt.Errorf("%w: You have already voted in this election", models.ErrDuplicateVote)
		}
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	return &models.CastVoteResponse{
		Message:     "Vote cast successfully",
		ElectionID:  electionID,
		CandidateID: candidateID,
		CastAt:      castAt,
	}, nil
}

// CastVote handles POST /elections/:id/vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	electionID := r.PathValue("id")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidateId is required")
		return
	}

	resp, err := CastVote(r.Context(), h.db, claims, electionID, req.CandidateID, time.Now())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("vote cast", "election_id", electionID, "voter_id", claims.VoterID)

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CastLegacyVote records a per-candidate vote outside any election.
// Each voter gets one such vote in total, tracked by voter.has_voted.
func CastLegacyVote(ctx context.Context, conn *sql.DB, claims *auth.Claims, candidateID string, now time.Time) (*models.Candidate, error) {
	candidate, err := loadCandidate(ctx, conn, candidateID)
	if err != nil {
		return nil, err
	}

	var hasVoted bool
	err = conn.QueryRowContext(ctx, `SELECT has_voted FROM voter WHERE id = $1`, claims.VoterID).Scan(&hasVoted)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: User not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voter: %w", err)
	}
	if hasVoted {
		return nil, fmt.Errorf("%w: You have already voted", models.ErrDuplicateVote)
	}

	if claims.IsAdmin() {
		return nil, fmt.Errorf("%w: Admins are not allowed to vote", models.ErrForbidden)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	castAt := now.UTC()
	result, err := tx.ExecContext(ctx, `
		UPDATE voter SET has_voted = TRUE, updated_at = $1
		WHERE id = $2 AND has_voted = FALSE
	`, castAt, claims.VoterID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark voter: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: You have already voted", models.ErrDuplicateVote)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO candidate_vote (id, candidate_id, voter_id, cast_at)
		VALUES ($1, $2, $3, $4)
	`, auth.GenerateID(), candidateID, claims.VoterID, castAt)
	if err != nil {
		if db.IsUniqueViolation(err, "voter_id") {
			return nil, fmt.Errorf("%w: You have already voted", models.ErrDuplicateVote)
		}
		return nil, fmt.Errorf("failed to insert candidate vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	return candidate, nil
}
