// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/cliparse"
	"github.com/danielhkuo/votedesk/handlers"
	"github.com/danielhkuo/votedesk/imagestore"
	"github.com/danielhkuo/votedesk/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, issuer *auth.Issuer, images imagestore.Store) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg, issuer)
	candidateHandler := handlers.NewCandidateHandler(db, cfg, images)
	electionHandler := handlers.NewElectionHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(issuer, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(issuer, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /user/signup", middleware.WithLogging(userHandler.Signup))
	mux.HandleFunc("POST /user/login", middleware.WithLogging(userHandler.Login))
	mux.HandleFunc("GET /user/profile", authed(userHandler.Profile))
	mux.HandleFunc("PUT /user/profile/password", authed(userHandler.ChangePassword))

	// Candidates
	mux.HandleFunc("GET /candidates", middleware.WithLogging(candidateHandler.List))
	mux.HandleFunc("POST /candidates", admin(candidateHandler.Create))
	mux.HandleFunc("PUT /candidates/{id}", admin(candidateHandler.Update))
	mux.HandleFunc("DELETE /candidates/{id}", admin(candidateHandler.Delete))
	mux.HandleFunc("GET /candidates/vote/count", middleware.WithLogging(candidateHandler.VoteCount))
	if cfg.LegacyVoting {
		mux.HandleFunc("POST /candidates/vote/{id}", authed(candidateHandler.Vote))
	}

	// Elections
	mux.HandleFunc("GET /elections", middleware.WithLogging(electionHandler.List))
	mux.HandleFunc("GET /elections/current", middleware.WithLogging(electionHandler.Current))
	mux.HandleFunc("POST /elections/add", admin(electionHandler.Create))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.Get))
	mux.HandleFunc("PATCH /elections/{id}", admin(electionHandler.Patch))
	mux.HandleFunc("DELETE /elections/{id}", admin(electionHandler.Delete))

	// Voting
	mux.HandleFunc("POST /elections/{id}/vote", authed(votingHandler.CastVote))

	// Results
	mux.HandleFunc("GET /elections/results", middleware.WithLogging(resultsHandler.Results))
	mux.HandleFunc("GET /elections/{id}/tally", middleware.WithLogging(resultsHandler.Tally))
	mux.HandleFunc("GET /elections/{id}/map-results", middleware.WithLogging(resultsHandler.MapResults))
	mux.HandleFunc("GET /elections/{id}/audit", admin(resultsHandler.Audit))

	// Locally stored candidate images
	if disk, ok := images.(*imagestore.DiskStore); ok {
		mux.Handle("GET "+imagestore.URLPrefix, disk.Handler())
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("votedesk API v1"))
	})

	return mux
}
