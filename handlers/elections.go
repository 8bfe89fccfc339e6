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

type ElectionHandler struct {
	mgr *election.Manager
	cfg cliparse.Config
}

func NewElectionHandler(mgr *election.Manager, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{mgr: mgr, cfg: cfg}
}

// Create handles POST /elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := h.mgr.CreateElection(r.Context(), caller, election.ElectionSpec{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		writeError(w, err, "create election")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{ElectionID: e.ID})
}

// List handles GET /elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	elections, err := h.mgr.ListElections(r.Context())
	if err != nil {
		writeError(w, err, "list elections")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, elections)
}

// Get handles GET /elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.mgr.GetElection(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "get election")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, e)
}

// State handles GET /elections/{id}/state
func (h *ElectionHandler) State(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	state, err := h.mgr.State(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "get election state")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StateResponse{ElectionID: electionID, State: state})
}

// Open handles POST /elections/{id}/open
func (h *ElectionHandler) Open(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	e, err := h.mgr.OpenElection(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, err, "open election")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, e)
}

// Close handles POST /elections/{id}/close
func (h *ElectionHandler) Close(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	e, err := h.mgr.CloseElection(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, err, "close election")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, e)
}

// CloseExpired handles POST /elections/close-expired
func (h *ElectionHandler) CloseExpired(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	closed, err := h.mgr.CloseExpired(r.Context(), caller)
	if err != nil {
		writeError(w, err, "close expired elections")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CloseExpiredResponse{Closed: closed})
}

// Join handles POST /elections/{id}/members
func (h *ElectionHandler) Join(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.JoinElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	mem, err := h.mgr.RegisterInElection(r.Context(), caller, r.PathValue("id"), req.Kind)
	if err != nil {
		writeError(w, err, "register in election")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, mem)
}

// Pending handles GET /elections/{id}/members/pending?kind=
func (h *ElectionHandler) Pending(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	kind := models.MembershipKind(r.URL.Query().Get("kind"))
	pending, err := h.mgr.PendingMembers(r.Context(), caller, r.PathValue("id"), kind)
	if err != nil {
		writeError(w, err, "list pending members")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, pending)
}

// Decide handles POST /elections/{id}/members/{mid}/approval
func (h *ElectionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.ApprovalDecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	mem, err := h.mgr.SetApproval(r.Context(), caller, r.PathValue("id"), r.PathValue("mid"), req.Decision)
	if err != nil {
		writeError(w, err, "decide membership")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, mem)
}
