// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/models"
)

type claimsKey struct{}

// ClaimsFromContext returns the verified token claims stored by RequireAuth
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// WithClaims stores claims on the context
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(issuer *auth.Issuer, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			WriteError(w, fmt.Errorf("%w: no token provided", models.ErrUnauthorized))
			return
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			WriteError(w, err)
			return
		}

		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// RequireAdmin is RequireAuth plus a role check on the token claim
func RequireAdmin(issuer *auth.Issuer, next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(issuer, func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if !claims.IsAdmin() {
			WriteError(w, fmt.Errorf("%w: admin access required", models.ErrForbidden))
			return
		}
		next(w, r)
	})
}
