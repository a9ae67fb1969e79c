// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/danielhkuo/votedesk/models"
	"github.com/danielhkuo/votedesk/testutil"
)

func participation(id, name, party string, votes int) models.Participation {
	return models.Participation{
		CandidateID: id,
		Candidate:   &models.CandidateRef{ID: id, Name: name, Party: party},
		VoteCount:   votes,
	}
}

func TestDeclareResult(t *testing.T) {
	tests := []struct {
		name          string
		parties       []models.Participation
		wantResult    string
		wantTotal     int
		wantWinner    string
		wantTiedNames []string
	}{
		{
			name:       "no participants",
			parties:    nil,
			wantResult: models.ResultNoParticipants,
		},
		{
			name: "clear winner",
			parties: []models.Participation{
				participation("c1", "Asha", "Green", 2),
				participation("c2", "Bilal", "Blue", 5),
			},
			wantResult: models.ResultWinner,
			wantTotal:  7,
			wantWinner: "Bilal",
		},
		{
			name: "two-way tie at the top",
			parties: []models.Participation{
				participation("c1", "Asha", "Green", 3),
				participation("c2", "Bilal", "Blue", 3),
				participation("c3", "Chen", "Red", 1),
			},
			wantResult:    models.ResultTie,
			wantTotal:     7,
			wantTiedNames: []string{"Asha", "Bilal"},
		},
		{
			name: "single participant without votes still wins",
			parties: []models.Participation{
				participation("c1", "Asha", "Green", 0),
			},
			wantResult: models.ResultWinner,
			wantWinner: "Asha",
		},
		{
			name: "deleted candidate is skipped",
			parties: []models.Participation{
				participation("c1", "Asha", "Green", 3),
				{CandidateID: "gone", VoteCount: 9},
			},
			wantResult: models.ResultWinner,
			wantTotal:  3,
			wantWinner: "Asha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeclareResult(models.Election{ID: "e1", Title: "General", Parties: tt.parties})

			if got.Result != tt.wantResult {
				t.Errorf("Result = %q, want %q", got.Result, tt.wantResult)
			}
			if got.TotalVotes != tt.wantTotal {
				t.Errorf("TotalVotes = %d, want %d", got.TotalVotes, tt.wantTotal)
			}

			if tt.wantWinner == "" {
				if got.Winner != nil {
					t.Errorf("Winner = %+v, want none", got.Winner)
				}
			} else if got.Winner == nil || got.Winner.Name != tt.wantWinner {
				t.Errorf("Winner = %+v, want %s", got.Winner, tt.wantWinner)
			}

			var tied []string
			for _, p := range got.TiedWinners {
				tied = append(tied, p.Name)
			}
			if !reflect.DeepEqual(tied, tt.wantTiedNames) {
				t.Errorf("TiedWinners = %v, want %v", tied, tt.wantTiedNames)
			}

			for i := 1; i < len(got.Participants); i++ {
				if got.Participants[i-1].VoteCount < got.Participants[i].VoteCount {
					t.Errorf("participants not sorted by votes: %+v", got.Participants)
				}
			}
		})
	}
}

func TestCompletedElections(t *testing.T) {
	asOf := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	elections := []models.Election{
		{ID: "past", DateOfElection: asOf.AddDate(0, 0, -1)},
		{ID: "exact", DateOfElection: asOf},
		{ID: "future", DateOfElection: asOf.AddDate(0, 0, 1)},
	}

	got := CompletedElections(elections, asOf)
	if len(got) != 1 || got[0].ID != "past" {
		t.Errorf("CompletedElections() = %+v, want only the past election", got)
	}
}

func TestCurrentElection(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)

	elections := []models.Election{
		{ID: "tomorrow", DateOfElection: time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "today", DateOfElection: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "yesterday", DateOfElection: time.Date(2026, 5, 9, 23, 59, 0, 0, time.UTC)},
	}

	got := CurrentElection(elections, now)
	if got == nil || got.ID != "today" {
		t.Errorf("CurrentElection() = %+v, want today", got)
	}

	if got := CurrentElection(elections[:1], now); got != nil {
		t.Errorf("CurrentElection() = %+v, want nil", got)
	}
}

func TestGeographicBreakdown(t *testing.T) {
	records := []models.VoteRecord{
		{VoterID: "v1", Party: "A", VoterState: "X"},
		{VoterID: "v2", Party: "A", VoterState: "X"},
		{VoterID: "v3", Party: "B", VoterState: "Y"},
		{VoterID: "v4", Party: "A", VoterState: ""},  // no state
		{VoterID: "v5", Party: "", VoterState: "Y"},  // candidate deleted
	}

	got := GeographicBreakdown(records)

	want := []models.StateBreakdown{
		{State: "X", Results: []models.PartyVotes{{Party: "A", Votes: 2}}, TotalVotes: 2, WinningParty: "A"},
		{State: "Y", Results: []models.PartyVotes{{Party: "B", Votes: 1}}, TotalVotes: 1, WinningParty: "B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GeographicBreakdown() = %+v, want %+v", got, want)
	}
}

func TestGeographicBreakdown_PartyOrdering(t *testing.T) {
	records := []models.VoteRecord{
		{Party: "Zeta", VoterState: "Kerala"},
		{Party: "Alpha", VoterState: "Kerala"},
		{Party: "Beta", VoterState: "Kerala"},
		{Party: "Beta", VoterState: "Kerala"},
	}

	got := GeographicBreakdown(records)
	if len(got) != 1 {
		t.Fatalf("expected 1 state, got %d", len(got))
	}

	wantOrder := []string{"Beta", "Alpha", "Zeta"}
	for i, pv := range got[0].Results {
		if pv.Party != wantOrder[i] {
			t.Errorf("Results[%d] = %s, want %s", i, pv.Party, wantOrder[i])
		}
	}
	if got[0].WinningParty != "Beta" {
		t.Errorf("WinningParty = %s, want Beta", got[0].WinningParty)
	}
	if got[0].TotalVotes != 4 {
		t.Errorf("TotalVotes = %d, want 4", got[0].TotalVotes)
	}
}

func TestGeographicBreakdown_Empty(t *testing.T) {
	got := GeographicBreakdown(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("GeographicBreakdown(nil) = %#v, want empty slice", got)
	}
}

func TestDedupeVoters(t *testing.T) {
	voters := []models.AuditVoter{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}, {ID: "b"}}

	got := dedupeVoters(voters)

	var ids []string
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Errorf("dedupeVoters() = %v", ids)
	}
}

func TestTally(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	c1 := testutil.CreateTestCandidate(t, db, "Chen", "Red")
	c2 := testutil.CreateTestCandidate(t, db, "Asha", "Green")
	c3 := testutil.CreateTestCandidate(t, db, "Bilal", "Blue")
	electionID := testutil.CreateTestElection(t, db, "General", time.Now().AddDate(0, 0, -1), c1, c2, c3)

	for i := 0; i < 3; i++ {
		testutil.CastTestBallot(t, db, electionID, c1, testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "X"}), "X")
		testutil.CastTestBallot(t, db, electionID, c3, testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "X"}), "X")
	}
	testutil.CastTestBallot(t, db, electionID, c2, testutil.CreateTestVoter(t, db, testutil.TestVoter{State: "Y"}), "Y")

	first, err := Tally(ctx, db, electionID)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}

	// 3/3 tie ordered by name, then the single vote
	wantNames := []string{"Bilal", "Chen", "Asha"}
	wantCounts := []int{3, 3, 1}
	if len(first) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(first))
	}
	for i := range first {
		if first[i].Name != wantNames[i] || first[i].Count != wantCounts[i] {
			t.Errorf("tally[%d] = %+v, want %s with %d", i, first[i], wantNames[i], wantCounts[i])
		}
	}

	second, err := Tally(ctx, db, electionID)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Tally() not idempotent: %+v vs %+v", first, second)
	}

	election, err := loadElection(ctx, db, electionID)
	if err != nil {
		t.Fatalf("loadElection() error = %v", err)
	}
	result := DeclareResult(*election)
	if result.Result != models.ResultTie || result.TotalVotes != 7 || len(result.TiedWinners) != 2 {
		t.Errorf("DeclareResult() = %+v, want a tie over 7 votes", result)
	}
}

func TestTally_UnknownElection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	_, err := Tally(context.Background(), db, "missing")
	if !isNotFound(err) {
		t.Errorf("Tally() error = %v, want not found", err)
	}
}
