// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/cliparse"
	"github.com/danielhkuo/votedesk/middleware"
	"github.com/danielhkuo/votedesk/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// parseDate accepts YYYY-MM-DD or RFC3339 and returns UTC
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Create handles POST /elections/add
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	election, err := CreateElection(r.Context(), h.db, req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("election created", "election_id", election.ID, "participants", len(election.Parties))

	middleware.JSONResponse(w, http.StatusCreated, election)
}

// CreateElection validates the request and stores the election with its participants
func CreateElection(ctx context.Context, db *sql.DB, req models.CreateElectionRequest) (*models.Election, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if req.DateOfElection == "" {
		return nil, fmt.Errorf("%w: dateOfElection is required", models.ErrValidation)
	}
	date, err := parseDate(req.DateOfElection)
	if err != nil {
		return nil, fmt.Errorf("%w: dateOfElection must be YYYY-MM-DD or RFC3339", models.ErrValidation)
	}
	if len(req.Parties) == 0 {
		return nil, fmt.Errorf("%w: parties must be a non-empty array of candidate IDs", models.ErrValidation)
	}

	seen := make(map[string]bool, len(req.Parties))
	for _, candidateID := range req.Parties {
		if candidateID == "" {
			return nil, fmt.Errorf("%w: candidate ID cannot be empty", models.ErrValidation)
		}
		if seen[candidateID] {
			return nil, fmt.Errorf("%w: candidate %s is listed more than once", models.ErrValidation, candidateID)
		}
		seen[candidateID] = true
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, candidateID := range req.Parties {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM candidate WHERE id = $1`, candidateID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: candidate %s does not exist", models.ErrValidation, candidateID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query candidate: %w", err)
		}
	}

	electionID := auth.GenerateID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO election (id, title, date_of_election, created_at)
		VALUES ($1, $2, $3, $4)
	`, electionID, title, date, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to insert election: %w", err)
	}

	for i, candidateID := range req.Parties {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO election_candidate (election_id, candidate_id, vote_count, position)
			VALUES ($1, $2, 0, $3)
		`, electionID, candidateID, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit election: %w", err)
	}

	return loadElection(ctx, db, electionID)
}

// Patch handles PATCH /elections/:id
func (h *ElectionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sets := []string{}
	args := []any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		args = append(args, title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if req.DateOfElection != nil {
		date, err := parseDate(*req.DateOfElection)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "dateOfElection must be YYYY-MM-DD or RFC3339")
			return
		}
		args = append(args, date)
		sets = append(sets, fmt.Sprintf("date_of_election = $%d", len(args)))
	}

	if len(sets) > 0 {
		args = append(args, electionID)
		query := fmt.Sprintf("UPDATE election SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		result, err := h.db.ExecContext(r.Context(), query, args...)
		if err != nil {
			slog.Error("failed to update election", "error", err, "election_id", electionID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update election")
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
	}

	election, err := loadElection(r.Context(), h.db, electionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("election updated", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusOK, election)
}

// Delete handles DELETE /elections/:id
// Participation entries and ballots cascade.
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	result, err := h.db.ExecContext(r.Context(), `DELETE FROM election WHERE id = $1`, electionID)
	if err != nil {
		slog.Error("failed to delete election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete election")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	slog.Info("election deleted", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Election deleted successfully"})
}

// List handles GET /elections, newest first
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	elections, err := loadElections(r.Context(), h.db)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, elections)
}

// Current handles GET /elections/current
// Returns the election held today (UTC) or null.
func (h *ElectionHandler) Current(w http.ResponseWriter, r *http.Request) {
	elections, err := loadElections(r.Context(), h.db)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, CurrentElection(elections, time.Now().UTC()))
}

// CurrentElection returns the first election dated within the UTC day of now
func CurrentElection(elections []models.Election, now time.Time) *models.Election {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	for i := range elections {
		date := elections[i].DateOfElection.UTC()
		if !date.Before(start) && date.Before(end) {
			return &elections[i]
		}
	}
	return nil
}

// Get handles GET /elections/:id
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	election, err := loadElection(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, election)
}

// loadElection fetches one election with its candidates populated
func loadElection(ctx context.Context, q querier, electionID string) (*models.Election, error) {
	var e models.Election
	err := q.QueryRowContext(ctx, `
		SELECT id, title, date_of_election, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(&e.ID, &e.Title, &e.DateOfElection, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: Election not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query election: %w", err)
	}

	parties, err := loadParticipants(ctx, q, electionID)
	if err != nil {
		return nil, err
	}
	e.Parties = parties[electionID]
	if e.Parties == nil {
		e.Parties = []models.Participation{}
	}

	return &e, nil
}

// loadElections fetches every election, newest first, with candidates populated
func loadElections(ctx context.Context, q querier) ([]models.Election, error) {
	elections, err := queryElections(ctx, q)
	if err != nil {
		return nil, err
	}

	parties, err := loadParticipants(ctx, q, "")
	if err != nil {
		return nil, err
	}

	for i := range elections {
		elections[i].Parties = parties[elections[i].ID]
		if elections[i].Parties == nil {
			elections[i].Parties = []models.Participation{}
		}
	}

	return elections, nil
}

func queryElections(ctx context.Context, q querier) ([]models.Election, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, title, date_of_election, created_at
		FROM election
		ORDER BY date_of_election DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.Title, &e.DateOfElection, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, e)
	}
	return elections, rows.Err()
}

// loadParticipants returns participation entries keyed by election ID.
// An empty electionID loads entries for all elections.
// Entries whose candidate was deleted keep a nil Candidate.
func loadParticipants(ctx context.Context, q querier, electionID string) (map[string][]models.Participation, error) {
	query := `
		SELECT ec.election_id, ec.candidate_id, ec.vote_count, c.id, c.name, c.party, c.image_url
		FROM election_candidate ec
		LEFT JOIN candidate c ON c.id = ec.candidate_id`
	var args []any
	if electionID != "" {
		query += ` WHERE ec.election_id = $1`
		args = append(args, electionID)
	}
	query += ` ORDER BY ec.election_id, ec.position`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Participation)
	for rows.Next() {
		var eid string
		var p models.Participation
		var cid, name, party, image sql.NullString
		if err := rows.Scan(&eid, &p.CandidateID, &p.VoteCount, &cid, &name, &party, &image); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if cid.Valid {
			p.Candidate = &models.CandidateRef{
				ID:    cid.String,
				Name:  name.String,
				Party: party.String,
				Image: image.String,
			}
		}
		out[eid] = append(out[eid], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}

	return out, nil
}

// electionExists reports whether the election is present
func electionExists(ctx context.Context, q querier, electionID string) error {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM election WHERE id = $1`, electionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: Election not found", models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query election: %w", err)
	}
	return nil
}
