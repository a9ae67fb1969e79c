// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/cliparse"
	"github.com/danielhkuo/votedesk/db"
	"github.com/danielhkuo/votedesk/models"
)

const (
	TestJWTSecret = "test-jwt-secret"
	TestPassword  = "password123"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, "file:"+auth.GenerateID()+"?mode=memory")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         cliparse.DefaultPort,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		JWTSecret:    TestJWTSecret,
		TokenTTL:     cliparse.DefaultTokenTTL,
		LegacyVoting: true,
		ImageStore:   "disk",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// GetTestIssuer returns a token issuer matching GetTestConfig
func GetTestIssuer() *auth.Issuer {
	return auth.NewIssuer(TestJWTSecret, cliparse.DefaultTokenTTL)
}

// TestVoter describes a voter fixture; zero fields get sensible defaults
type TestVoter struct {
	Name       string
	NationalID string
	Role       string
	State      string
	DOB        *time.Time
	NoDOB      bool
}

// Adult returns a date of birth that makes the voter 30 today
func Adult() *time.Time {
	dob := time.Now().UTC().AddDate(-30, 0, 0)
	return &dob
}

// CreateTestVoter inserts a voter with password TestPassword and returns its ID
func CreateTestVoter(t *testing.T, conn *sql.DB, v TestVoter) string {
	t.Helper()

	id := auth.GenerateID()
	if v.Name == "" {
		v.Name = "Voter " + id[:8]
	}
	if v.NationalID == "" {
		v.NationalID = "NID-" + id
	}
	if v.Role == "" {
		v.Role = models.RoleVoter
	}
	if v.DOB == nil && !v.NoDOB {
		v.DOB = Adult()
	}

	var state *string
	if v.State != "" {
		state = &v.State
	}

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	_, err = conn.Exec(`
		INSERT INTO voter (id, name, age, password_hash, phone, address_city, address_state,
			address_pincode, sex, relation_type, relative_name, national_id, role, dob,
			profile_photo, created_at, updated_at)
		VALUES ($1, $2, 30, $3, '5550100', 'Springfield', $4, '123456', 'Other', 'S/O', 'Parent',
			$5, $6, $7, 'photo.png', $8, $8)
	`, id, v.Name, hash, state, v.NationalID, v.Role, v.DOB, now)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return id
}

// CreateTestCandidate inserts a candidate and returns its ID
func CreateTestCandidate(t *testing.T, conn *sql.DB, name, party string) string {
	t.Helper()

	id := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO candidate (id, name, party, age, created_at)
		VALUES ($1, $2, $3, 40, $4)
	`, id, name, party, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return id
}

// CreateTestElection inserts an election with the given participants
func CreateTestElection(t *testing.T, conn *sql.DB, title string, date time.Time, candidateIDs ...string) string {
	t.Helper()

	id := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO election (id, title, date_of_election, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, title, date.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	for i, candidateID := range candidateIDs {
		_, err := conn.Exec(`
			INSERT INTO election_candidate (election_id, candidate_id, vote_count, position)
			VALUES ($1, $2, 0, $3)
		`, id, candidateID, i)
		if err != nil {
			t.Fatalf("Failed to add test participant: %v", err)
		}
	}

	return id
}

// CastTestBallot records a ballot directly, keeping vote_count in step
func CastTestBallot(t *testing.T, conn *sql.DB, electionID, candidateID, voterID, state string) {
	t.Helper()

	var voterState *string
	if state != "" {
		voterState = &state
	}

	_, err := conn.Exec(`
		INSERT INTO ballot (id, election_id, candidate_id, voter_id, voter_state, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, auth.GenerateID(), electionID, candidateID, voterID, voterState, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to cast test ballot: %v", err)
	}

	_, err = conn.Exec(`
		UPDATE election_candidate SET vote_count = vote_count + 1
		WHERE election_id = $1 AND candidate_id = $2
	`, electionID, candidateID)
	if err != nil {
		t.Fatalf("Failed to bump vote count: %v", err)
	}
}

// TokenFor issues a bearer token for the voter
func TokenFor(t *testing.T, voterID, role string) string {
	t.Helper()

	token, err := GetTestIssuer().Issue(voterID, role)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// BearerHeader builds the Authorization header map for MakeRequest
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
