// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, bearer tokens and ID generation.

# Passwords

Passwords are hashed with bcrypt at the default cost:

	hash, err := auth.HashPassword("secret")
	ok := auth.CheckPassword(hash, "secret")

Hashes are one-way. Login re-hashes the candidate password through
bcrypt.CompareHashAndPassword; nothing is ever decrypted.

# Bearer Tokens

An Issuer signs HS256 JWTs carrying the voter ID and role:

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	token, err := issuer.Issue(voter.ID, voter.Role)
	claims, err := issuer.Verify(token)

Tokens expire after the configured TTL (24h by default). Any verification
failure (malformed token, bad signature, expired, unexpected algorithm)
returns ErrInvalidToken so callers cannot tell the cases apart. An issuer
without a secret returns ErrMissingSigningKey.

The role claim is trusted for admin checks once the signature is verified.

# ID Generation

Random UUIDs for database records:

	id := auth.GenerateID()
*/
package auth
