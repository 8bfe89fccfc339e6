// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/reports"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *election.Manager) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	mgr := testutil.NewTestManager(t, db)
	gw := reports.NewGateway(cfg.GatewayRef, mgr, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return NewRouter(mgr, gw, cfg), mgr
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "quickly-elect API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/no-such-route", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// 400, 401, 403 and 404 are all valid; only 405 means the route is missing
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/"},

		{"POST", "/users"},
		{"GET", "/users/me"},
		{"GET", "/users"},
		{"POST", "/users/someone/role"},
		{"POST", "/users/someone/approval"},
		{"POST", "/users/someone/deactivate"},
		{"POST", "/admin/delegate"},
		{"POST", "/admin/reporting-gateway"},

		{"POST", "/elections"},
		{"GET", "/elections"},
		{"POST", "/elections/close-expired"},
		{"GET", "/elections/test-id"},
		{"GET", "/elections/test-id/state"},
		{"POST", "/elections/test-id/open"},
		{"POST", "/elections/test-id/close"},
		{"POST", "/elections/test-id/members"},
		{"GET", "/elections/test-id/members/pending"},
		{"POST", "/elections/test-id/members/m1/approval"},

		{"GET", "/elections/test-id/candidates"},
		{"POST", "/elections/test-id/votes"},
		{"GET", "/elections/test-id/voters"},
		{"GET", "/elections/test-id/my-vote"},
		{"GET", "/elections/test-id/results"},

		{"GET", "/reports/test-id/voters"},
		{"GET", "/reports/test-id/participation"},
		{"GET", "/reports/test-id/results"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"PUT to votes endpoint", "PUT", "/elections/test-id/votes", http.StatusMethodNotAllowed},
		{"DELETE an election", "DELETE", "/elections/test-id", http.StatusMethodNotAllowed},
		{"POST to report", "POST", "/reports/test-id/results", http.StatusMethodNotAllowed},
		{"CORS preflight", "OPTIONS", "/elections", http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	mux, mgr := newTestRouter(t)
	electionID := testutil.CreateTestElection(t, mgr, "Council")

	req := httptest.NewRequest("GET", "/elections/"+electionID+"/state", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.StateResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ElectionID != electionID {
		t.Errorf("Expected election_id %s, got %s", electionID, resp.ElectionID)
	}
	if resp.State != models.StateCreated {
		t.Errorf("Expected state created, got %s", resp.State)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Two misses on a patterned route, recorded under the pattern
	for range 2 {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/elections/missing", nil))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	want := `electd_http_requests_total{code="404",route="GET /elections/{id}"} 2`
	if !strings.Contains(body, want) {
		t.Errorf("Expected metrics to contain %q", want)
	}
	if strings.Contains(body, "/elections/missing") {
		t.Error("Metrics must not carry raw paths")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("Expected Go runtime metrics")
	}
}
