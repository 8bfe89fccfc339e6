// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
)

// statusFor maps an election error kind onto an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, election.ErrElectionNotClosed):
		return http.StatusForbidden
	case errors.Is(err, election.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, election.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, election.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, election.ErrInvalidState), errors.Is(err, election.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the status for err. Unclassified errors are
// logged and replaced with a generic message naming the failed action.
func writeError(w http.ResponseWriter, err error, action string) {
	status := statusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, status, "Failed to "+action)
	case errors.Is(err, election.ErrElectionNotClosed):
		middleware.ErrorResponse(w, status, "Results are sealed until the election is closed")
	default:
		middleware.ErrorResponse(w, status, err.Error())
	}
}

// callerIdentity extracts the verified caller or writes a 401
func callerIdentity(w http.ResponseWriter, r *http.Request, salt string) (string, bool) {
	identity, err := middleware.CallerIdentity(r, salt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid "+middleware.IdentityHeader+" header required")
		return "", false
	}
	return identity, true
}
