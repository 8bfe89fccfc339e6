// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

type VotingHandler struct {
	mgr *election.Manager
	cfg cliparse.Config
}

func NewVotingHandler(mgr *election.Manager, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{mgr: mgr, cfg: cfg}
}

// Candidates handles GET /elections/{id}/candidates
func (h *VotingHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.mgr.AvailableCandidates(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "list candidates")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// Vote handles POST /elections/{id}/votes
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	// Neither the caller nor the candidate is logged.
	if err := h.mgr.Vote(r.Context(), caller, r.PathValue("id"), req.CandidateID); err != nil {
		writeError(w, err, "record vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{Message: "Vote recorded"})
}

// MyVote handles GET /elections/{id}/my-vote
func (h *VotingHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	electionID := r.PathValue("id")
	voted, err := h.mgr.HasVoted(r.Context(), caller, electionID)
	if err != nil {
		writeError(w, err, "check vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{ElectionID: electionID, HasVoted: voted})
}

// Voters handles GET /elections/{id}/voters
func (h *VotingHandler) Voters(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	voters, err := h.mgr.ApprovedVoterInfo(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, err, "list voters")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// Results handles GET /elections/{id}/results
func (h *VotingHandler) Results(w http.ResponseWriter, r *http.Request) {
	e, results, err := h.mgr.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "get results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{Election: e, Results: results})
}
