// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/cliparse"
	"github.com/danielhkuo/votedesk/imagestore"
	"github.com/danielhkuo/votedesk/middleware"
	"github.com/danielhkuo/votedesk/models"
)

const (
	defaultCandidateAge = 25
	maxImageSize        = 5 << 20
)

type CandidateHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	images imagestore.Store
}

func NewCandidateHandler(db *sql.DB, cfg cliparse.Config, images imagestore.Store) *CandidateHandler {
	return &CandidateHandler{db: db, cfg: cfg, images: images}
}

// candidateInput is a parsed create/update body plus an optional image upload
type candidateInput struct {
	req         models.CandidateRequest
	image       multipart.File
	imageName   string
	imageType   string
	ageProvided bool
}

func (in *candidateInput) close() {
	if in.image != nil {
		in.image.Close()
	}
}

// parseCandidateInput reads a JSON body or a multipart form with an "image" file
func parseCandidateInput(r *http.Request) (*candidateInput, error) {
	in := &candidateInput{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var raw struct {
			Name  string `json:"name"`
			Party string `json:"party"`
			Age   *int   `json:"age"`
		}
		if err := middleware.ParseJSONBody(r, &raw); err != nil {
			return nil, fmt.Errorf("%w: Invalid JSON", models.ErrValidation)
		}
		in.req.Name = raw.Name
		in.req.Party = raw.Party
		if raw.Age != nil {
			in.req.Age = *raw.Age
			in.ageProvided = true
		}
		return in, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return nil, fmt.Errorf("%w: invalid multipart form", models.ErrValidation)
	}

	in.req.Name = r.FormValue("name")
	in.req.Party = r.FormValue("party")
	if ageStr := r.FormValue("age"); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			return nil, fmt.Errorf("%w: age must be a number", models.ErrValidation)
		}
		in.req.Age = age
		in.ageProvided = true
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return in, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid image upload", models.ErrValidation)
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		file.Close()
		return nil, fmt.Errorf("%w: image must be an image file", models.ErrValidation)
	}

	in.image = file
	in.imageName = header.Filename
	in.imageType = contentType
	return in, nil
}

// List handles GET /candidates
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, name, party, age, image_url, image_key, created_at
		FROM candidate
		ORDER BY created_at, name
	`)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			slog.Error("failed to scan candidate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// Create handles POST /candidates
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := parseCandidateInput(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	defer in.close()

	c := models.Candidate{
		ID:        auth.GenerateID(),
		Name:      strings.TrimSpace(in.req.Name),
		Party:     strings.TrimSpace(in.req.Party),
		Age:       defaultCandidateAge,
		CreatedAt: time.Now().UTC(),
	}
	if c.Name == "" || c.Party == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name and party are required")
		return
	}
	if in.ageProvided {
		if in.req.Age <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "age must be positive")
			return
		}
		c.Age = in.req.Age
	}

	if in.image != nil {
		obj, err := h.images.Put(r.Context(), in.imageName, in.imageType, in.image)
		if err != nil {
			slog.Error("failed to store candidate image", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
			return
		}
		c.Image = obj.URL
		c.ImageKey = obj.Key
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO candidate (id, name, party, age, image_url, image_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Name, c.Party, c.Age, nullable(c.Image), nullable(c.ImageKey), c.CreatedAt)
	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		h.releaseImage(r.Context(), c.ImageKey)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	slog.Info("candidate created", "candidate_id", c.ID)

	middleware.JSONResponse(w, http.StatusCreated, c)
}

// Update handles PUT /candidates/:id
// A new image replaces the stored one; the old object is released first.
func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")

	in, err := parseCandidateInput(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	defer in.close()

	c, err := loadCandidate(r.Context(), h.db, candidateID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if name := strings.TrimSpace(in.req.Name); name != "" {
		c.Name = name
	}
	if party := strings.TrimSpace(in.req.Party); party != "" {
		c.Party = party
	}
	if in.ageProvided {
		if in.req.Age <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "age must be positive")
			return
		}
		c.Age = in.req.Age
	}

	var storedKey string
	if in.image != nil {
		oldKey := c.ImageKey
		h.releaseImage(r.Context(), oldKey)
		c.Image, c.ImageKey = "", ""

		obj, err := h.images.Put(r.Context(), in.imageName, in.imageType, in.image)
		if err != nil {
			slog.Error("failed to store candidate image", "error", err, "candidate_id", candidateID)
			// The old object is gone; the row must not keep pointing at it
			if oldKey != "" {
				if _, err := h.db.ExecContext(r.Context(), `
					UPDATE candidate SET image_url = NULL, image_key = NULL WHERE id = $1
				`, candidateID); err != nil {
					slog.Error("failed to clear candidate image", "error", err, "candidate_id", candidateID)
				}
			}
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
			return
		}
		c.Image = obj.URL
		c.ImageKey = obj.Key
		storedKey = obj.Key
	}

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE candidate SET name = $1, party = $2, age = $3, image_url = $4, image_key = $5
		WHERE id = $6
	`, c.Name, c.Party, c.Age, nullable(c.Image), nullable(c.ImageKey), candidateID)
	if err != nil {
		slog.Error("failed to update candidate", "error", err, "candidate_id", candidateID)
		h.releaseImage(r.Context(), storedKey)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update candidate")
		return
	}

	slog.Info("candidate updated", "candidate_id", candidateID)

	middleware.JSONResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /candidates/:id
// Election participation entries are left in place.
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")

	c, err := loadCandidate(r.Context(), h.db, candidateID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if _, err := h.db.ExecContext(r.Context(), `DELETE FROM candidate WHERE id = $1`, candidateID); err != nil {
		slog.Error("failed to delete candidate", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}

	h.releaseImage(r.Context(), c.ImageKey)

	slog.Info("candidate deleted", "candidate_id", candidateID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Candidate deleted successfully"})
}

// Vote handles POST /candidates/vote/:id
func (h *CandidateHandler) Vote(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	candidate, err := CastLegacyVote(r.Context(), h.db, claims, r.PathValue("id"), time.Now())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("candidate vote recorded", "candidate_id", candidate.ID, "voter_id", claims.VoterID)

	middleware.JSONResponse(w, http.StatusOK, models.CandidateVoteResponse{
		Message:   "Vote recorded successfully",
		Candidate: *candidate,
	})
}

// VoteCount handles GET /candidates/vote/count
func (h *CandidateHandler) VoteCount(w http.ResponseWriter, r *http.Request) {
	counts, err := CandidateVoteCounts(r.Context(), h.db)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, counts)
}

// releaseImage deletes a stored image; failures are logged only
func (h *CandidateHandler) releaseImage(ctx context.Context, key string) {
	if key == "" || h.images == nil {
		return
	}
	if err := h.images.Delete(ctx, key); err != nil {
		slog.Warn("failed to release candidate image", "error", err, "image_key", key)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	var image, key sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Party, &c.Age, &image, &key, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Image = image.String
	c.ImageKey = key.String
	return &c, nil
}

func loadCandidate(ctx context.Context, q querier, candidateID string) (*models.Candidate, error) {
	c, err := scanCandidate(q.QueryRowContext(ctx, `
		SELECT id, name, party, age, image_url, image_key, created_at
		FROM candidate WHERE id = $1
	`, candidateID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: Candidate not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

// nullable stores empty strings as NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
