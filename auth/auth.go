// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// encoding is URL-safe base64 without padding, for header-friendly tokens
var encoding = base64.RawURLEncoding

// sign computes the HMAC of an identity under the salt
func sign(identity, salt string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(identity))
	return h.Sum(nil)
}

// IssueIdentityToken creates a token vouching for a caller identity.
// Tokens are deterministic: the same identity and salt always produce
// the same token, so nothing needs to be stored to verify them.
func IssueIdentityToken(identity, salt string) string {
	return encoding.EncodeToString([]byte(identity)) + "." + encoding.EncodeToString(sign(identity, salt))
}

// VerifyIdentityToken checks a token's signature and returns the identity
// it carries
func VerifyIdentityToken(token, salt string) (string, error) {
	payload, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || payload == "" || sig == "" {
		return "", ErrInvalidToken
	}

	identity, err := encoding.DecodeString(payload)
	if err != nil || len(identity) == 0 {
		return "", ErrInvalidToken
	}
	got, err := encoding.DecodeString(sig)
	if err != nil {
		return "", ErrInvalidToken
	}

	if !hmac.Equal(got, sign(string(identity), salt)) {
		return "", ErrInvalidSignature
	}
	return string(identity), nil
}
