// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/reports"
)

// ReportHandler serves the reporting gateway's read-only reports. It needs
// no caller identity; the gateway reads under its own bound reference.
type ReportHandler struct {
	gw *reports.Gateway
}

func NewReportHandler(gw *reports.Gateway) *ReportHandler {
	return &ReportHandler{gw: gw}
}

// Voters handles GET /reports/{id}/voters
func (h *ReportHandler) Voters(w http.ResponseWriter, r *http.Request) {
	report, err := h.gw.VoterReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "build voter report")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, report)
}

// Participation handles GET /reports/{id}/participation
func (h *ReportHandler) Participation(w http.ResponseWriter, r *http.Request) {
	report, err := h.gw.ParticipationReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "build participation report")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, report)
}

// Results handles GET /reports/{id}/results
func (h *ReportHandler) Results(w http.ResponseWriter, r *http.Request) {
	report, err := h.gw.ResultReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "build result report")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, report)
}
