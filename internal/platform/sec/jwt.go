// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

// Package sec provides cryptographic primitives and token verification.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. The
// catalog service only VERIFIES staff access tokens — issuance (login,
// refresh) belongs to the separate identity service, which signs tokens with
// the matching RSA private key.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID, Username, and Role directly inside the JWT,
// the [middleware.Authenticate] can reconstruct the active staff context
// WITHOUT querying the identity service on every single API request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// TokenVerifier validates RS256 JWT access tokens against a public key.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewTokenVerifier creates a new TokenVerifier.
// It reads the RSA public key from the provided filesystem path.
func NewTokenVerifier(publicKeyPath, issuer string) (*TokenVerifier, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenVerifier{
		publicKey: publicKey,
		issuer:    issuer,
	}, nil
}

// VerifyToken parses and validates a signed access token string.
//
// # Validation
//
//   - Signature must verify against the configured RSA public key (RS256 only).
//   - The 'iss' claim must match the expected issuer.
//   - Standard expiry/not-before claims are enforced by the jwt library.
func (verifier *TokenVerifier) VerifyToken(tokenStr string) (*AuthClaims, error) {
	claims := &AuthClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return verifier.publicKey, nil
		},
		jwt.WithIssuer(verifier.issuer),
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: token verification failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("sec: token is invalid")
	}

	return claims, nil
}
