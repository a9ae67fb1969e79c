// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/danielhkuo/votedesk/models"
)

// Tally returns per-candidate vote counts for an election, highest first.
// Ties are ordered by name then ID so repeated calls agree.
func Tally(ctx context.Context, q querier, electionID string) ([]models.CandidateTally, error) {
	election, err := loadElection(ctx, q, electionID)
	if err != nil {
		return nil, err
	}

	tally := []models.CandidateTally{}
	for _, p := range election.Parties {
		if p.Candidate == nil {
			continue
		}
		tally = append(tally, models.CandidateTally{
			CandidateID: p.CandidateID,
			Name:        p.Candidate.Name,
			Party:       p.Candidate.Party,
			Count:       p.VoteCount,
		})
	}

	slices.SortStableFunc(tally, func(a, b models.CandidateTally) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.CandidateID, b.CandidateID),
		)
	})

	return tally, nil
}

// participantResults lists resolvable participants sorted by votes, highest first
func participantResults(e models.Election) []models.ParticipantResult {
	results := []models.ParticipantResult{}
	for _, p := range e.Parties {
		if p.Candidate == nil {
			continue
		}
		results = append(results, models.ParticipantResult{
			CandidateID: p.CandidateID,
			Name:        p.Candidate.Name,
			Party:       p.Candidate.Party,
			VoteCount:   p.VoteCount,
		})
	}

	slices.SortStableFunc(results, func(a, b models.ParticipantResult) int {
		return cmp.Or(
			cmp.Compare(b.VoteCount, a.VoteCount),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return results
}

// DeclareResult decides the outcome of an election from its vote counts.
// Two or more participants sharing the highest count is a tie.
func DeclareResult(e models.Election) models.ElectionResult {
	participants := participantResults(e)

	result := models.ElectionResult{
		ElectionID:     e.ID,
		Title:          e.Title,
		DateOfElection: e.DateOfElection,
		Participants:   participants,
	}

	if len(participants) == 0 {
		result.Result = models.ResultNoParticipants
		return result
	}

	for _, p := range participants {
		result.TotalVotes += p.VoteCount
	}

	top := participants[0].VoteCount
	var leaders []models.ParticipantResult
	for _, p := range participants {
		if p.VoteCount == top {
			leaders = append(leaders, p)
		}
	}

	if len(leaders) > 1 {
		result.Result = models.ResultTie
		result.TiedWinners = leaders
		return result
	}

	winner := leaders[0]
	result.Result = models.ResultWinner
	result.Winner = &winner
	return result
}

// CompletedElections keeps elections dated strictly before asOf
func CompletedElections(elections []models.Election, asOf time.Time) []models.Election {
	completed := []models.Election{}
	for _, e := range elections {
		if e.DateOfElection.Before(asOf) {
			completed = append(completed, e)
		}
	}
	return completed
}

// GeographicBreakdown groups votes by the voter's state, then by party.
// Records without a state or a resolvable party are skipped.
// States are sorted by name; parties by votes, highest first, then name.
func GeographicBreakdown(records []models.VoteRecord) []models.StateBreakdown {
	byState := make(map[string]map[string]int)
	for _, rec := range records {
		if rec.VoterState == "" || rec.Party == "" {
			continue
		}
		if byState[rec.VoterState] == nil {
			byState[rec.VoterState] = make(map[string]int)
		}
		byState[rec.VoterState][rec.Party]++
	}

	breakdown := make([]models.StateBreakdown, 0, len(byState))
	for state, parties := range byState {
		sb := models.StateBreakdown{State: state}
		for party, votes := range parties {
			sb.Results = append(sb.Results, models.PartyVotes{Party: party, Votes: votes})
			sb.TotalVotes += votes
		}
		slices.SortFunc(sb.Results, func(a, b models.PartyVotes) int {
			return cmp.Or(cmp.Compare(b.Votes, a.Votes), cmp.Compare(a.Party, b.Party))
		})
		sb.WinningParty = sb.Results[0].Party
		breakdown = append(breakdown, sb)
	}

	slices.SortFunc(breakdown, func(a, b models.StateBreakdown) int {
		return cmp.Compare(a.State, b.State)
	})
	return breakdown
}

// dedupeVoters keeps the first occurrence of each voter
func dedupeVoters(voters []models.AuditVoter) []models.AuditVoter {
	seen := make(map[string]bool, len(voters))
	out := []models.AuditVoter{}
	for _, v := range voters {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}

// loadVoteRecords returns every ballot of an election with the candidate's party.
// Party is empty when the candidate no longer exists.
func loadVoteRecords(ctx context.Context, q querier, electionID string) ([]models.VoteRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT b.voter_id, b.candidate_id, COALESCE(c.party, ''), COALESCE(b.voter_state, ''), b.cast_at
		FROM ballot b
		LEFT JOIN candidate c ON c.id = b.candidate_id
		WHERE b.election_id = $1
		ORDER BY b.cast_at
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	records := []models.VoteRecord{}
	for rows.Next() {
		var rec models.VoteRecord
		if err := rows.Scan(&rec.VoterID, &rec.CandidateID, &rec.Party, &rec.VoterState, &rec.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ballots: %w", err)
	}

	return records, nil
}

// AuditTrail lists every voter who cast a ballot in the election
func AuditTrail(ctx context.Context, q querier, electionID string) (*models.AuditReport, error) {
	election, err := loadElection(ctx, q, electionID)
	if err != nil {
		return nil, err
	}

	voters, err := loadBallotVoters(ctx, q, electionID)
	if err != nil {
		return nil, err
	}
	voters = dedupeVoters(voters)

	return &models.AuditReport{
		ElectionID:     election.ID,
		Title:          election.Title,
		DateOfElection: election.DateOfElection,
		TotalVotes:     len(voters),
		Participants:   participantResults(*election),
		Voters:         voters,
	}, nil
}

func loadBallotVoters(ctx context.Context, q querier, electionID string) ([]models.AuditVoter, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT v.id, v.name, v.national_id, v.profile_photo, v.dob,
			COALESCE(v.address_street, ''), v.address_city, COALESCE(v.address_state, ''), v.address_pincode,
			v.is_verified, v.sex, v.relation_type, v.relative_name
		FROM ballot b
		JOIN voter v ON v.id = b.voter_id
		WHERE b.election_id = $1
		ORDER BY b.cast_at
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballot voters: %w", err)
	}
	defer rows.Close()

	voters := []models.AuditVoter{}
	for rows.Next() {
		var v models.AuditVoter
		var dob sql.NullTime
		err := rows.Scan(&v.ID, &v.Name, &v.NationalID, &v.ProfilePhoto, &dob,
			&v.Address.Street, &v.Address.City, &v.Address.State, &v.Address.Pincode,
			&v.IsVerified, &v.Sex, &v.Relative.RelationType, &v.Relative.RelativeName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ballot voter: %w", err)
		}
		v.DOB = timePtr(dob)
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ballot voters: %w", err)
	}

	return voters, nil
}
