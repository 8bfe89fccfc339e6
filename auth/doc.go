// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and verifies caller identity tokens.

The election manager treats the caller identity as authentic. Over HTTP
that authenticity comes from an identity token sent in the
X-Identity-Token header.

# Identity Tokens

A token is the identity and its HMAC-SHA256 under a server salt, both
URL-safe base64 without padding, joined by a dot:

	token := auth.IssueIdentityToken("alice", salt)
	identity, err := auth.VerifyIdentityToken(token, salt)

Tokens are deterministic, so the server stores nothing to verify them. Anyone
holding the salt can mint tokens; the `token` command does that
for operators.

# Errors

  - ErrInvalidToken: malformed token
  - ErrInvalidSignature: well-formed but not signed with this salt
*/
package auth
