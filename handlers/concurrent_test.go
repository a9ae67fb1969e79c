// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/votedesk/middleware"
	"github.com/danielhkuo/votedesk/models"
	"github.com/danielhkuo/votedesk/testutil"
)

// TestConcurrentVotes verifies that many voters voting at once are all
// counted and that vote_count matches the number of ballots
func TestConcurrentVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := middleware.RequireAuth(testutil.GetTestIssuer(), NewVotingHandler(db, cfg).CastVote)

	c1 := testutil.CreateTestCandidate(t, db, "Asha", "Green")
	c2 := testutil.CreateTestCandidate(t, db, "Bilal", "Blue")
	electionID := testutil.CreateTestElection(t, db, "General", time.Now(), c1, c2)

	numVoters := 10
	tokens := make([]string, numVoters)
	for i := 0; i < numVoters; i++ {
		voterID := testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "Kerala"})
		tokens[i] = testutil.TokenFor(t, voterID, models.RoleVoter)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			candidate := c1
			if voterIdx%2 == 1 {
				candidate = c2
			}
			req := testutil.MakeRequest("POST", "/elections/"+electionID+"/vote",
				models.CastVoteRequest{CandidateID: candidate}, testutil.BearerHeader(tokens[voterIdx]))
			req.SetPathValue("id", electionID)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	for _, candidate := range []string{c1, c2} {
		count, ballots := voteCounts(t, db, electionID, candidate)
		if count != numVoters/2 || ballots != numVoters/2 {
			t.Errorf("candidate %s: vote_count = %d, ballots = %d, want %d", candidate, count, ballots, numVoters/2)
		}
	}
}

// TestConcurrentDuplicateVotes verifies that one voter racing against
// itself gets exactly one ballot
func TestConcurrentDuplicateVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := middleware.RequireAuth(testutil.GetTestIssuer(), NewVotingHandler(db, cfg).CastVote)

	candidate := testutil.CreateTestCandidate(t, db, "Asha", "Green")
	electionID := testutil.CreateTestElection(t, db, "General", time.Now(), candidate)
	voterID := testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "Kerala"})
	token := testutil.TokenFor(t, voterID, models.RoleVoter)

	// Second election for the same voter
	otherElection := testutil.CreateTestElection(t, db, "By-election", time.Now(), candidate)

	numAttempts := 8
	var successCount, duplicateCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/elections/"+electionID+"/vote",
				models.CastVoteRequest{CandidateID: candidate}, testutil.BearerHeader(token))
			req.SetPathValue("id", electionID)
			w := httptest.NewRecorder()

			handler(w, req)

			switch w.Code {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				duplicateCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful vote, got %d", successCount.Load())
	}
	if duplicateCount.Load() != int32(numAttempts-1) {
		t.Errorf("Expected %d duplicate rejections, got %d", numAttempts-1, duplicateCount.Load())
	}

	count, ballots := voteCounts(t, db, electionID, candidate)
	if count != 1 || ballots != 1 {
		t.Errorf("vote_count = %d, ballots = %d, want 1 and 1", count, ballots)
	}

	// Voting in one election does not block another
	req := testutil.MakeRequest("POST", "/elections/"+otherElection+"/vote",
		models.CastVoteRequest{CandidateID: candidate}, testutil.BearerHeader(token))
	req.SetPathValue("id", otherElection)
	w := httptest.NewRecorder()
	handler(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
}
