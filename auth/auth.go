// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/votedesk/models"
)

var (
	ErrMissingSigningKey = errors.New("token signing key is not configured")
	// ErrInvalidToken covers every verification failure: malformed, expired, bad signature
	ErrInvalidToken = models.ErrInvalidToken
)

// GenerateID creates a random UUID for database records
func GenerateID() string {
	return uuid.NewString()
}

// HashPassword hashes a password with bcrypt at the default cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims is the payload carried by a bearer token
type Claims struct {
	VoterID string `json:"voter_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token was issued to the admin account
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// Issuer signs and verifies HS256 bearer tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for the voter that expires after the issuer's TTL
func (i *Issuer) Issue(voterID, role string) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingSigningKey
	}

	now := i.now()
	claims := &Claims{
		VoterID: voterID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   voterID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the token claims
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	if len(i.secret) == 0 {
		return nil, ErrMissingSigningKey
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.VoterID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
