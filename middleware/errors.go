// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/votedesk/models"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{models.ErrValidation, http.StatusBadRequest},
	{models.ErrConflict, http.StatusBadRequest},
	{models.ErrUnauthorized, http.StatusUnauthorized},
	{models.ErrInvalidToken, http.StatusUnauthorized},
	{models.ErrForbidden, http.StatusForbidden},
	{models.ErrIneligibleAge, http.StatusForbidden},
	{models.ErrIncompleteProfile, http.StatusNotFound},
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrDuplicateVote, http.StatusConflict},
}

// StatusFor maps an error to its HTTP status; unknown errors are 500
func StatusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// WriteError writes err as a JSON error body.
// Internal errors are logged and replaced with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			ErrorResponse(w, e.status, errorMessage(err, e.err))
			return
		}
	}

	slog.Error("internal error", "error", err)
	ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
}

// errorMessage drops the "sentinel: " prefix added by fmt.Errorf("%w: detail")
func errorMessage(err, sentinel error) string {
	msg := err.Error()
	if detail, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok && detail != "" {
		return detail
	}
	return msg
}
