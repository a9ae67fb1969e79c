// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/danielhkuo/votedesk/cliparse"
	"github.com/danielhkuo/votedesk/middleware"
	"github.com/danielhkuo/votedesk/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// Results handles GET /elections/results
// Declares a result for every election dated before now.
func (h *ResultsHandler) Results(w http.ResponseWriter, r *http.Request) {
	elections, err := loadElections(r.Context(), h.db)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	completed := CompletedElections(elections, time.Now().UTC())

	results := make([]models.ElectionResult, 0, len(completed))
	for _, e := range completed {
		results = append(results, DeclareResult(e))
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// Tally handles GET /elections/:id/tally
func (h *ResultsHandler) Tally(w http.ResponseWriter, r *http.Request) {
	tally, err := Tally(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tally)
}

// Audit handles GET /elections/:id/audit (admin only)
func (h *ResultsHandler) Audit(w http.ResponseWriter, r *http.Request) {
	report, err := AuditTrail(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, report)
}

// MapResults handles GET /elections/:id/map-results
func (h *ResultsHandler) MapResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if err := electionExists(r.Context(), h.db, electionID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	records, err := loadVoteRecords(r.Context(), h.db, electionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, GeographicBreakdown(records))
}

// CandidateVoteCounts counts per-candidate votes cast outside elections, highest first
func CandidateVoteCounts(ctx context.Context, q querier) ([]models.CandidateTally, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name, c.party, COUNT(cv.id) AS votes
		FROM candidate c
		LEFT JOIN candidate_vote cv ON cv.candidate_id = c.id
		GROUP BY c.id, c.name, c.party
		ORDER BY votes DESC, c.name, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate votes: %w", err)
	}
	defer rows.Close()

	counts := []models.CandidateTally{}
	for rows.Next() {
		var t models.CandidateTally
		if err := rows.Scan(&t.CandidateID, &t.Name, &t.Party, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan candidate votes: %w", err)
		}
		counts = append(counts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate votes: %w", err)
	}

	return counts, nil
}
