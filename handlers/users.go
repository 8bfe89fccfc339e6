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

type UserHandler struct {
	mgr *election.Manager
	cfg cliparse.Config
}

func NewUserHandler(mgr *election.Manager, cfg cliparse.Config) *UserHandler {
	return &UserHandler{mgr: mgr, cfg: cfg}
}

// Register handles POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.RegisterUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.mgr.RegisterUser(r.Context(), caller, models.UserProfile{
		Name:    req.Name,
		Surname: req.Surname,
		DNI:     req.DNI,
	})
	if err != nil {
		writeError(w, err, "register user")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, user)
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	user, err := h.mgr.GetUser(r.Context(), caller)
	if err != nil {
		writeError(w, err, "get user")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	users, err := h.mgr.ListUsers(r.Context(), caller)
	if err != nil {
		writeError(w, err, "list users")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, users)
}

// AssignRole handles POST /users/{identity}/role
func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.AssignRoleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.mgr.AssignRole(r.Context(), caller, r.PathValue("identity"), req.Role)
	if err != nil {
		writeError(w, err, "assign role")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// SetApproval handles POST /users/{identity}/approval
func (h *UserHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.SetUserApprovalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.mgr.SetUserApproval(r.Context(), caller, r.PathValue("identity"), req.Approved)
	if err != nil {
		writeError(w, err, "set user approval")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// Deactivate handles POST /users/{identity}/deactivate
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	user, err := h.mgr.DeactivateUser(r.Context(), caller, r.PathValue("identity"))
	if err != nil {
		writeError(w, err, "deactivate user")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// DelegateAdmin handles POST /admin/delegate
func (h *UserHandler) DelegateAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.DelegateAdminRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.mgr.DelegateAdmin(r.Context(), caller, req.Identity); err != nil {
		writeError(w, err, "delegate admin")
		return
	}

	admin, err := h.mgr.Admin(r.Context())
	if err != nil {
		writeError(w, err, "load admin")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AdminResponse{Admin: admin})
}

// BindGateway handles POST /admin/reporting-gateway
func (h *UserHandler) BindGateway(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r, h.cfg.IdentitySalt)
	if !ok {
		return
	}

	var req models.BindGatewayRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.mgr.BindReportingGateway(r.Context(), caller, req.Ref); err != nil {
		writeError(w, err, "bind reporting gateway")
		return
	}

	ref, err := h.mgr.ReportingGateway(r.Context())
	if err != nil {
		writeError(w, err, "load reporting gateway")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GatewayResponse{Ref: ref})
}
