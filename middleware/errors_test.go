// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/votedesk/models"
)

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{"validation", fmt.Errorf("%w: name is required", models.ErrValidation), http.StatusBadRequest, "name is required"},
		{"conflict", fmt.Errorf("%w: Admin user already exists", models.ErrConflict), http.StatusBadRequest, "Admin user already exists"},
		{"unauthorized", models.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"invalid token", models.ErrInvalidToken, http.StatusUnauthorized, "invalid or expired token"},
		{"forbidden", fmt.Errorf("%w: Admins are not allowed to vote", models.ErrForbidden), http.StatusForbidden, "Admins are not allowed to vote"},
		{"underage", models.ErrIneligibleAge, http.StatusForbidden, "voters must be at least 18 years old"},
		{"incomplete profile", models.ErrIncompleteProfile, http.StatusNotFound, "voter profile is incomplete"},
		{"not found", fmt.Errorf("%w: Election not found", models.ErrNotFound), http.StatusNotFound, "Election not found"},
		{"duplicate vote", models.ErrDuplicateVote, http.StatusConflict, "vote already cast"},
		{"doubly wrapped", fmt.Errorf("cast vote: %w", fmt.Errorf("%w: Candidate not found", models.ErrNotFound)), http.StatusNotFound, "cast vote: not found: Candidate not found"},
		{"internal", errors.New(`pq: relation "ballot" does not exist`), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteError(w, tc.err)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, w.Code)
			}
			if StatusFor(tc.err) != tc.expectedStatus {
				t.Errorf("StatusFor() = %d, want %d", StatusFor(tc.err), tc.expectedStatus)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != tc.expectedMessage {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedMessage, resp.Error)
			}
		})
	}
}
