// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the VoteDesk API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, issuer, images)

Wrap it with middleware.CORS before serving.

# Endpoints

Health:

	GET /health
	GET /

Accounts:

	POST /user/signup           - Register, returns a token
	POST /user/login            - Exchange national ID and password for a token
	GET  /user/profile          - Own profile (bearer)
	PUT  /user/profile/password - Change password (bearer)

Candidates:

	GET    /candidates            - List
	POST   /candidates            - Create, JSON or multipart with image (admin)
	PUT    /candidates/{id}       - Update (admin)
	DELETE /candidates/{id}       - Delete and release image (admin)
	POST   /candidates/vote/{id}  - Per-candidate vote (bearer, legacy voting only)
	GET    /candidates/vote/count - Per-candidate counts

Elections:

	GET    /elections                  - List, newest first
	GET    /elections/current          - Election held today, or null
	POST   /elections/add              - Create (admin)
	GET    /elections/{id}             - Details
	PATCH  /elections/{id}             - Update title or date (admin)
	DELETE /elections/{id}             - Delete with its ballots (admin)
	POST   /elections/{id}/vote        - Cast a ballot (bearer)
	GET    /elections/results          - Results of completed elections
	GET    /elections/{id}/tally       - Vote counts
	GET    /elections/{id}/map-results - Votes by state
	GET    /elections/{id}/audit       - Voters who cast a ballot (admin)

Images (disk store only):

	GET /images/{key}
*/
package router
