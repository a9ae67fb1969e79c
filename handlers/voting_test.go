// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/middleware"
	"github.com/danielhkuo/votedesk/models"
	"github.com/danielhkuo/votedesk/testutil"
)

func TestComputeAge(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"18th birthday today", time.Date(2008, 3, 15, 0, 0, 0, 0, time.UTC), 18},
		{"18th birthday tomorrow", time.Date(2008, 3, 16, 0, 0, 0, 0, time.UTC), 17},
		{"birthday later in the year", time.Date(1990, 12, 1, 0, 0, 0, 0, time.UTC), 35},
		{"birthday earlier in the year", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 36},
		{"born today", now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeAge(tt.dob, now); got != tt.want {
				t.Errorf("ComputeAge() = %d, want %d", got, tt.want)
			}
		})
	}
}

// voteCounts returns the stored count and number of ballots for an entry
func voteCounts(t *testing.T, db *sql.DB, electionID, candidateID string) (count, ballots int) {
	t.Helper()

	err := db.QueryRow(`
		SELECT vote_count FROM election_candidate WHERE election_id = $1 AND candidate_id = $2
	`, electionID, candidateID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to read vote_count: %v", err)
	}
	err = db.QueryRow(`
		SELECT COUNT(*) FROM ballot WHERE election_id = $1 AND candidate_id = $2
	`, electionID, candidateID).Scan(&ballots)
	if err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	return count, ballots
}

func TestCastVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	candidate := testutil.CreateTestCandidate(t, db, "Asha", "Green")
	outsider := testutil.CreateTestCandidate(t, db, "Bilal", "Blue")
	electionID := testutil.CreateTestElection(t, db, "General", now, candidate)

	eighteenToday := time.Date(2008, 3, 15, 0, 0, 0, 0, time.UTC)
	eighteenTomorrow := time.Date(2008, 3, 16, 0, 0, 0, 0, time.UTC)

	voter := testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "Kerala"})
	birthdayVoter := testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "Kerala", DOB: &eighteenToday})
	minor := testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "Kerala", DOB: &eighteenTomorrow})
	noState := testutil.CreateTestVoter(t, db, testutil.TestVoter{})
	noDOB := testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "Kerala", NoDOB: true})
	admin := testutil.CreateTestVoter(t, db, testutil.TestVoter{Role: models.RoleAdmin, State: "Kerala"})

	claims := func(id, role string) *auth.Claims {
		return &auth.Claims{VoterID: id, Role: role}
	}

	tests := []struct {
		name        string
		claims      *auth.Claims
		electionID  string
		candidateID string
		wantErr     error
	}{
		{"admin is refused", claims(admin, models.RoleAdmin), electionID, candidate, models.ErrForbidden},
		{"admin refused before any lookup", claims("nobody", models.RoleAdmin), "missing", "missing", models.ErrForbidden},
		{"unknown voter", claims("nobody", models.RoleVoter), electionID, candidate, models.ErrIncompleteProfile},
		{"missing state", claims(noState, models.RoleVoter), electionID, candidate, models.ErrIncompleteProfile},
		{"missing dob", claims(noDOB, models.RoleVoter), electionID, candidate, models.ErrIncompleteProfile},
		{"one day short of 18", claims(minor, models.RoleVoter), electionID, candidate, models.ErrIneligibleAge},
		{"unknown election", claims(voter, models.RoleVoter), "missing", candidate, models.ErrNotFound},
		{"candidate not in election", claims(voter, models.RoleVoter), electionID, outsider, models.ErrNotFound},
		{"eligible voter", claims(voter, models.RoleVoter), electionID, candidate, nil},
		{"18th birthday today", claims(birthdayVoter, models.RoleVoter), electionID, candidate, nil},
		{"second vote", claims(voter, models.RoleVoter), electionID, candidate, models.ErrDuplicateVote},
		{"duplicate checked before candidate", claims(voter, models.RoleVoter), electionID, outsider, models.ErrDuplicateVote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := CastVote(ctx, db, tt.claims, tt.electionID, tt.candidateID, now)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CastVote() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CastVote() error = %v", err)
			}
			if resp.ElectionID != tt.electionID || resp.CandidateID != tt.candidateID {
				t.Errorf("CastVote() = %+v", resp)
			}
		})
	}

	count, ballots := voteCounts(t, db, electionID, candidate)
	if count != 2 || ballots != 2 {
		t.Errorf("vote_count = %d, ballots = %d, want 2 and 2", count, ballots)
	}

	// The ballot keeps the voter's state at the time of voting
	var state string
	if err := db.QueryRow(`SELECT voter_state FROM ballot WHERE voter_id = $1`, voter).Scan(&state); err != nil {
		t.Fatalf("Failed to read ballot: %v", err)
	}
	if state != "Kerala" {
		t.Errorf("voter_state = %q, want Kerala", state)
	}
}

func TestCastVote_AdminNeverMutates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	candidate := testutil.CreateTestCandidate(t, db, "Asha", "Green")
	electionID := testutil.CreateTestElection(t, db, "General", time.Now(), candidate)
	admin := testutil.CreateTestVoter(t, db, testutil.TestVoter{Role: models.RoleAdmin, State: "Kerala"})

	for i := 0; i < 3; i++ {
		_, err := CastVote(context.Background(), db, &auth.Claims{VoterID: admin, Role: models.RoleAdmin}, electionID, candidate, time.Now())
		if !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("attempt %d: error = %v, want ErrForbidden", i, err)
		}
	}

	count, ballots := voteCounts(t, db, electionID, candidate)
	if count != 0 || ballots != 0 {
		t.Errorf("admin attempts changed state: vote_count = %d, ballots = %d", count, ballots)
	}
}

func TestCastVoteHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	issuer := testutil.GetTestIssuer()
	handler := middleware.RequireAuth(issuer, NewVotingHandler(db, cfg).CastVote)

	candidate := testutil.CreateTestCandidate(t, db, "Asha", "Green")
	electionID := testutil.CreateTestElection(t, db, "General", time.Now(), candidate)
	voter := testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "Kerala"})
	admin := testutil.CreateTestVoter(t, db, testutil.TestVoter{Role: models.RoleAdmin, State: "Kerala"})

	voterToken := testutil.TokenFor(t, voter, models.RoleVoter)
	adminToken := testutil.TokenFor(t, admin, models.RoleAdmin)

	tests := []struct {
		name           string
		token          string
		body           interface{}
		expectedStatus int
	}{
		{"no token", "", models.CastVoteRequest{CandidateID: candidate}, http.StatusUnauthorized},
		{"bad token", "not-a-token", models.CastVoteRequest{CandidateID: candidate}, http.StatusUnauthorized},
		{"missing candidate", voterToken, models.CastVoteRequest{}, http.StatusBadRequest},
		{"admin", adminToken, models.CastVoteRequest{CandidateID: candidate}, http.StatusForbidden},
		{"unknown candidate", voterToken, models.CastVoteRequest{CandidateID: "missing"}, http.StatusNotFound},
		{"valid vote", voterToken, models.CastVoteRequest{CandidateID: candidate}, http.StatusOK},
		{"repeat vote", voterToken, models.CastVoteRequest{CandidateID: candidate}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers = testutil.BearerHeader(tt.token)
			}
			req := testutil.MakeRequest("POST", "/elections/"+electionID+"/vote", tt.body, headers)
			req.SetPathValue("id", electionID)
			w := httptest.NewRecorder()

			handler(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.CastVoteResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.ElectionID != electionID || resp.CandidateID != candidate {
					t.Errorf("unexpected response %+v", resp)
				}
			} else {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Error == "" {
					t.Error("expected an error message")
				}
			}
		})
	}
}

func TestCastLegacyVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	candidate := testutil.CreateTestCandidate(t, db, "Asha", "Green")
	other := testutil.CreateTestCandidate(t, db, "Bilal", "Blue")
	voter := testutil.CreateTestVoter(t, db, testutil.TestVoter{})
	admin := testutil.CreateTestVoter(t, db, testutil.TestVoter{Role: models.RoleAdmin})

	tests := []struct {
		name        string
		claims      *auth.Claims
		candidateID string
		wantErr     error
	}{
		{"unknown candidate", &auth.Claims{VoterID: voter, Role: models.RoleVoter}, "missing", models.ErrNotFound},
		{"unknown voter", &auth.Claims{VoterID: "nobody", Role: models.RoleVoter}, candidate, models.ErrNotFound},
		{"admin", &auth.Claims{VoterID: admin, Role: models.RoleAdmin}, candidate, models.ErrForbidden},
		{"first vote", &auth.Claims{VoterID: voter, Role: models.RoleVoter}, candidate, nil},
		{"second vote for another candidate", &auth.Claims{VoterID: voter, Role: models.RoleVoter}, other, models.ErrDuplicateVote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CastLegacyVote(ctx, db, tt.claims, tt.candidateID, time.Now())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CastLegacyVote() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CastLegacyVote() error = %v", err)
			}
			if got.ID != tt.candidateID {
				t.Errorf("candidate = %s, want %s", got.ID, tt.candidateID)
			}
		})
	}

	var hasVoted bool
	if err := db.QueryRow(`SELECT has_voted FROM voter WHERE id = $1`, voter).Scan(&hasVoted); err != nil {
		t.Fatalf("Failed to read voter: %v", err)
	}
	if !hasVoted {
		t.Error("has_voted should be set after a legacy vote")
	}

	counts, err := CandidateVoteCounts(ctx, db)
	if err != nil {
		t.Fatalf("CandidateVoteCounts() error = %v", err)
	}
	if len(counts) != 2 || counts[0].CandidateID != candidate || counts[0].Count != 1 || counts[1].Count != 0 {
		t.Errorf("CandidateVoteCounts() = %+v", counts)
	}
}
