// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [identity.TokenProvider] interface.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the payload embedded inside a JWT access token.
//
// The subject ('sub') carries the username. Validity is purely computational:
// signature plus expiry check. The subject is NOT re-validated against the
// user store here — callers decide whether to re-resolve it.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies JWT access tokens signed with HS256.
//
// # Why symmetric signing?
//
// Tokens are both issued and verified by this single service, so a shared
// secret suffices. The key is process-wide configuration supplied at startup;
// construction fails on an empty key rather than degrading to a default.
type TokenService struct {
	signingKey []byte
	issuer     string
	timeToLive time.Duration
}

// NewTokenService creates a TokenService from the configured signing secret.
//
// # Parameters
//   - secret: The symmetric signing key. Must be non-empty.
//   - issuer: The standard 'iss' claim value.
//   - timeToLive: Lifetime of issued tokens.
func NewTokenService(secret, issuer string, timeToLive time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: no signing key configured for token authentication")
	}

	return &TokenService{
		signingKey: []byte(secret),
		issuer:     issuer,
		timeToLive: timeToLive,
	}, nil
}

// Issue creates a signed access token for the given username.
func (service *TokenService) Issue(username string) (string, error) {
	currentTime := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.timeToLive)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.signingKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and expiry of a token string.
//
// # Returns
//   - The embedded [*Claims] when the token is authentic and unexpired.
//   - An error when the token is malformed, the signature does not match,
//     or the expiry instant has passed. All three failure modes are
//     indistinguishable to external callers.
func (service *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.signingKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("sec: token has no subject")
	}

	return claims, nil
}
