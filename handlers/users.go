// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/cliparse"
	"github.com/danielhkuo/votedesk/db"
	"github.com/danielhkuo/votedesk/middleware"
	"github.com/danielhkuo/votedesk/models"
)

const minPasswordLength = 6

var pincodePattern = regexp.MustCompile(`^\d{6}$`)

type UserHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	issuer *auth.Issuer
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config, issuer *auth.Issuer) *UserHandler {
	return &UserHandler{db: db, cfg: cfg, issuer: issuer}
}

// validateSignup checks required fields and enums and returns the parsed date of birth
func validateSignup(req *models.SignupRequest) (time.Time, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.NationalID = strings.TrimSpace(req.NationalID)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Name == "":
		return time.Time{}, fmt.Errorf("%w: name is required", models.ErrValidation)
	case len(req.Password) < minPasswordLength:
		return time.Time{}, fmt.Errorf("%w: password must be at least %d characters", models.ErrValidation, minPasswordLength)
	case req.Phone == "":
		return time.Time{}, fmt.Errorf("%w: phone is required", models.ErrValidation)
	case req.Address.City == "" || req.Address.State == "":
		return time.Time{}, fmt.Errorf("%w: address city and state are required", models.ErrValidation)
	case !pincodePattern.MatchString(req.Address.Pincode):
		return time.Time{}, fmt.Errorf("%w: pincode must be exactly 6 digits", models.ErrValidation)
	case req.NationalID == "":
		return time.Time{}, fmt.Errorf("%w: nationalId is required", models.ErrValidation)
	case req.ProfilePhoto == "":
		return time.Time{}, fmt.Errorf("%w: profilePhoto is required", models.ErrValidation)
	case req.Relative.RelativeName == "":
		return time.Time{}, fmt.Errorf("%w: relative name is required", models.ErrValidation)
	}

	switch req.Sex {
	case models.SexMale, models.SexFemale, models.SexOther:
	default:
		return time.Time{}, fmt.Errorf("%w: sex must be Male, Female or Other", models.ErrValidation)
	}

	switch req.Relative.RelationType {
	case models.RelationSonOf, models.RelationWifeOf, models.RelationDaughterOf:
	default:
		return time.Time{}, fmt.Errorf("%w: relation type must be S/O, W/O or D/O", models.ErrValidation)
	}

	switch req.Role {
	case "":
		req.Role = models.RoleVoter
	case models.RoleVoter, models.RoleAdmin:
	default:
		return time.Time{}, fmt.Errorf("%w: role must be voter or admin", models.ErrValidation)
	}

	if req.DOB == "" {
		return time.Time{}, fmt.Errorf("%w: dob is required", models.ErrValidation)
	}
	dob, err := parseBirthDate(req.DOB)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dob must be YYYY-MM-DD or RFC3339", models.ErrValidation)
	}
	if dob.After(time.Now().UTC()) {
		return time.Time{}, fmt.Errorf("%w: dob cannot be in the future", models.ErrValidation)
	}

	return dob, nil
}

// parseBirthDate accepts YYYY-MM-DD or RFC3339 and keeps the calendar date
// as written, whatever the offset
func parseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Register validates and stores a new voter and issues a token for it
func Register(ctx context.Context, conn *sql.DB, issuer *auth.Issuer, req models.SignupRequest) (*models.Voter, string, error) {
	dob, err := validateSignup(&req)
	if err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	v := &models.Voter{
		ID:           auth.GenerateID(),
		Name:         req.Name,
		Age:          ComputeAge(dob, now),
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
		Sex:          req.Sex,
		Relative:     req.Relative,
		NationalID:   req.NationalID,
		Role:         req.Role,
		DOB:          &dob,
		ProfilePhoto: req.ProfilePhoto,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Email != "" {
		v.Email = &req.Email
	}

	_, err = conn.ExecContext(ctx, `
		INSERT INTO voter (id, name, age, email, password_hash, phone,
			address_street, address_city, address_state, address_pincode,
			sex, relation_type, relative_name, national_id, role,
			has_voted, is_verified, dob, profile_photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			FALSE, FALSE, $16, $17, $18, $19)
	`, v.ID, v.Name, v.Age, v.Email, v.PasswordHash, v.Phone,
		nullable(v.Address.Street), v.Address.City, v.Address.State, v.Address.Pincode,
		v.Sex, v.Relative.RelationType, v.Relative.RelativeName, v.NationalID, v.Role,
		dob, v.ProfilePhoto, now, now)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, "national_id"):
			return nil, "", fmt.Errorf("%w: A voter with this national ID already exists", models.ErrValidation)
		case db.IsUniqueViolation(err, "role"):
			return nil, "", fmt.Errorf("%w: Admin user already exists", models.ErrConflict)
		}
		return nil, "", fmt.Errorf("failed to insert voter: %w", err)
	}

	token, err := issuer.Issue(v.ID, v.Role)
	if err != nil {
		return nil, "", err
	}

	return v, token, nil
}

// Signup handles POST /user/signup
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voter, token, err := Register(r.Context(), h.db, h.issuer, req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("voter registered", "voter_id", voter.ID, "role", voter.Role)

	middleware.JSONResponse(w, http.StatusCreated, models.AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    *voter,
	})
}

// Login handles POST /user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.NationalID == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nationalId and password are required")
		return
	}

	voter, err := loadVoterBy(r.Context(), h.db, "national_id", strings.TrimSpace(req.NationalID))
	if err != nil && !isNotFound(err) {
		middleware.WriteError(w, err)
		return
	}
	// Same answer for unknown IDs and wrong passwords
	if voter == nil || !auth.CheckPassword(voter.PasswordHash, req.Password) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid national ID or password")
		return
	}

	token, err := h.issuer.Issue(voter.ID, voter.Role)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("voter logged in", "voter_id", voter.ID)

	middleware.JSONResponse(w, http.StatusOK, models.AuthResponse{
		Token: token,
		User:  *voter,
	})
}

// Profile handles GET /user/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	voter, err := loadVoterBy(r.Context(), h.db, "id", claims.VoterID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voter)
}

// ChangePassword handles PUT /user/profile/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.ChangePasswordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "currentPassword and newPassword are required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("new password must be at least %d characters", minPasswordLength))
		return
	}

	voter, err := loadVoterBy(r.Context(), h.db, "id", claims.VoterID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if !auth.CheckPassword(voter.PasswordHash, req.CurrentPassword) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid current password")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE voter SET password_hash = $1, updated_at = $2 WHERE id = $3
	`, hash, time.Now().UTC(), voter.ID)
	if err != nil {
		slog.Error("failed to update password", "error", err, "voter_id", voter.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	slog.Info("password changed", "voter_id", voter.ID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Password updated successfully"})
}

const voterColumns = `id, name, age, email, password_hash, phone,
	address_street, address_city, address_state, address_pincode,
	sex, relation_type, relative_name, national_id, role,
	has_voted, is_verified, dob, profile_photo, created_at, updated_at`

// loadVoterBy fetches a voter by id or national_id
func loadVoterBy(ctx context.Context, q querier, column, value string) (*models.Voter, error) {
	if column != "id" && column != "national_id" {
		return nil, fmt.Errorf("unsupported voter lookup column %q", column)
	}

	var v models.Voter
	var email, street, state sql.NullString
	var dob sql.NullTime
	err := q.QueryRowContext(ctx, `SELECT `+voterColumns+` FROM voter WHERE `+column+` = $1`, value).Scan(
		&v.ID, &v.Name, &v.Age, &email, &v.PasswordHash, &v.Phone,
		&street, &v.Address.City, &state, &v.Address.Pincode,
		&v.Sex, &v.Relative.RelationType, &v.Relative.RelativeName, &v.NationalID, &v.Role,
		&v.HasVoted, &v.IsVerified, &dob, &v.ProfilePhoto, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: User not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voter: %w", err)
	}

	if email.Valid {
		v.Email = &email.String
	}
	v.Address.Street = street.String
	v.Address.State = state.String
	v.DOB = timePtr(dob)

	return &v, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
