// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /elections", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
	}

An empty allow-list echoes the request origin. With a list, only those
origins receive CORS headers and preflights from other origins get 403.
Allows methods GET, POST, PUT, PATCH, DELETE, OPTIONS with headers
Content-Type and Authorization.

# Bearer Authentication

	mux.HandleFunc("GET /user/profile", middleware.RequireAuth(issuer, h.Profile))
	mux.HandleFunc("POST /elections/add", middleware.RequireAdmin(issuer, h.Create))

RequireAuth verifies "Authorization: Bearer <jwt>" and stores the claims on
the request context (read them with ClaimsFromContext). A missing or invalid
token is 401. RequireAdmin additionally checks the token's role claim and
returns 403 for non-admins; the role is never re-read from storage.

# Errors

Handlers return errors wrapping the sentinels in models and hand them to
WriteError:

	middleware.WriteError(w, fmt.Errorf("%w: Election not found", models.ErrNotFound))

WriteError maps the sentinel to a status (StatusFor) and writes
{"error": "Election not found"}. Unrecognized errors are logged and answered
with a generic 500 so storage details never reach the client.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used in request logs.
*/
package middleware
