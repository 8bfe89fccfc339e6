// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func TestCreateElection(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewElectionHandler(mgr, cfg)

	reqBody := models.CreateElectionRequest{Name: "Council Vote"}
	req := testutil.MakeRequest("POST", "/elections", reqBody, as(cfg, testutil.TestAdmin))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreateElectionResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.ElectionID == "" {
		t.Error("Expected election_id in response")
	}

	state, err := mgr.State(req.Context(), resp.ElectionID)
	if err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}
	if state != models.StateCreated {
		t.Errorf("Expected state created, got %s", state)
	}
}

func TestCreateElectionValidation(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewElectionHandler(mgr, cfg)
	testutil.RegisterTestUser(t, mgr, "vera")

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := []struct {
		name           string
		caller         string
		body           any
		expectedStatus int
	}{
		{"missing name", testutil.TestAdmin, models.CreateElectionRequest{}, http.StatusBadRequest},
		{"ends before start", testutil.TestAdmin, models.CreateElectionRequest{Name: "Board", StartsAt: &start, EndsAt: &before}, http.StatusBadRequest},
		{"non-admin", "vera", models.CreateElectionRequest{Name: "Board"}, http.StatusForbidden},
		{"unknown field", testutil.TestAdmin, map[string]string{"name": "Board", "method": "ranked"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/elections", tt.body, as(cfg, tt.caller))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	t.Run("missing token", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/elections", models.CreateElectionRequest{Name: "Board"}, nil)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestGetElection(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewElectionHandler(mgr, cfg)
	electionID := testutil.CreateTestElection(t, mgr, "Council")

	req := testutil.MakeRequest("GET", "/elections/"+electionID, nil, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.Get(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var e models.Election
	testutil.AssertJSON(t, w, &e)
	if e.Name != "Council" {
		t.Errorf("Expected name Council, got %s", e.Name)
	}
	if e.CreatedBy != testutil.TestAdmin {
		t.Errorf("Expected created_by %s, got %s", testutil.TestAdmin, e.CreatedBy)
	}

	req = testutil.MakeRequest("GET", "/elections/missing", nil, nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	handler.Get(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	handler.List(w, testutil.MakeRequest("GET", "/elections", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var list []models.Election
	testutil.AssertJSON(t, w, &list)
	if len(list) != 1 || list[0].ID != electionID {
		t.Errorf("Expected the one election, got %+v", list)
	}
}

func TestElectionLifecycle(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewElectionHandler(mgr, cfg)
	electionID := testutil.CreateTestElection(t, mgr, "Council")

	transition := func(fn http.HandlerFunc, caller string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/elections/"+electionID, nil, as(cfg, caller))
		req.SetPathValue("id", electionID)
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	// No approved candidate yet
	w := transition(handler.Open, testutil.TestAdmin)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Closing before opening skips a state
	w = transition(handler.Close, testutil.TestAdmin)
	testutil.AssertStatus(t, w, http.StatusConflict)

	testutil.AdmitTestMember(t, mgr, electionID, "carol", models.KindCandidate)

	w = transition(handler.Open, "carol")
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = transition(handler.Open, testutil.TestAdmin)
	testutil.AssertStatus(t, w, http.StatusOK)

	var e models.Election
	testutil.AssertJSON(t, w, &e)
	if e.State != models.StateOpen {
		t.Errorf("Expected state open, got %s", e.State)
	}
	if e.OpenedAt == nil {
		t.Error("Expected opened_at to be set")
	}

	w = transition(handler.Open, testutil.TestAdmin)
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = transition(handler.Close, testutil.TestAdmin)
	testutil.AssertStatus(t, w, http.StatusOK)

	req := testutil.MakeRequest("GET", "/elections/"+electionID+"/state", nil, nil)
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	handler.State(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var state models.StateResponse
	testutil.AssertJSON(t, w, &state)
	if state.State != models.StateClosed {
		t.Errorf("Expected state closed, got %s", state.State)
	}

	// Closed is terminal
	w = transition(handler.Open, testutil.TestAdmin)
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestCloseExpiredEndpoint(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	mgr := testutil.NewTestManager(t, conn)
	cfg := testutil.GetTestConfig()
	handler := NewElectionHandler(mgr, cfg)

	end := time.Now().Add(time.Hour)
	req := testutil.MakeRequest("POST", "/elections", models.CreateElectionRequest{Name: "Ending", EndsAt: &end}, as(cfg, testutil.TestAdmin))
	w := httptest.NewRecorder()
	handler.Create(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.CreateElectionResponse
	testutil.AssertJSON(t, w, &created)

	testutil.AdmitTestMember(t, mgr, created.ElectionID, "carol", models.KindCandidate)
	if _, err := mgr.OpenElection(req.Context(), testutil.TestAdmin, created.ElectionID); err != nil {
		t.Fatalf("Failed to open election: %v", err)
	}

	// Move the end time behind the real clock
	_, err := conn.Exec(`UPDATE election SET ends_at = $1 WHERE id = $2`, time.Now().Add(-time.Minute).UTC(), created.ElectionID)
	if err != nil {
		t.Fatalf("Failed to move end time: %v", err)
	}

	w = httptest.NewRecorder()
	handler.CloseExpired(w, testutil.MakeRequest("POST", "/elections/close-expired", nil, as(cfg, "carol")))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = httptest.NewRecorder()
	handler.CloseExpired(w, testutil.MakeRequest("POST", "/elections/close-expired", nil, as(cfg, testutil.TestAdmin)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CloseExpiredResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Closed) != 1 || resp.Closed[0] != created.ElectionID {
		t.Errorf("Expected %s to be closed, got %v", created.ElectionID, resp.Closed)
	}
}

func TestJoinElection(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewElectionHandler(mgr, cfg)
	electionID := testutil.CreateTestElection(t, mgr, "Council")
	testutil.RegisterTestUser(t, mgr, "vera")

	join := func(caller string, kind models.MembershipKind) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/elections/"+electionID+"/members", models.JoinElectionRequest{Kind: kind}, as(cfg, caller))
		req.SetPathValue("id", electionID)
		w := httptest.NewRecorder()
		handler.Join(w, req)
		return w
	}

	w := join("vera", models.KindElector)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var mem models.Membership
	testutil.AssertJSON(t, w, &mem)
	if mem.Status != models.StatusPending {
		t.Errorf("Expected status pending, got %s", mem.Status)
	}
	if mem.Position != 1 {
		t.Errorf("Expected position 1, got %d", mem.Position)
	}

	testutil.AssertStatus(t, join("vera", models.KindElector), http.StatusConflict)
	testutil.AssertStatus(t, join("vera", "observer"), http.StatusBadRequest)
	testutil.AssertStatus(t, join("ghost", models.KindElector), http.StatusNotFound)

	// Both sides of the same election are allowed
	testutil.AssertStatus(t, join("vera", models.KindCandidate), http.StatusCreated)
}

func TestPendingAndDecide(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewElectionHandler(mgr, cfg)
	electionID := testutil.CreateTestElection(t, mgr, "Council")
	testutil.RegisterTestUser(t, mgr, "carol")

	mem, err := mgr.RegisterInElection(t.Context(), "carol", electionID, models.KindCandidate)
	if err != nil {
		t.Fatalf("Failed to join: %v", err)
	}

	pending := func(caller, kind string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/elections/"+electionID+"/members/pending?kind="+kind, nil, as(cfg, caller))
		req.SetPathValue("id", electionID)
		w := httptest.NewRecorder()
		handler.Pending(w, req)
		return w
	}

	w := pending(testutil.TestAdmin, "candidate")
	testutil.AssertStatus(t, w, http.StatusOK)

	var list []models.Membership
	testutil.AssertJSON(t, w, &list)
	if len(list) != 1 || list[0].ID != mem.ID {
		t.Fatalf("Expected carol's request pending, got %+v", list)
	}

	testutil.AssertStatus(t, pending(testutil.TestAdmin, ""), http.StatusBadRequest)
	testutil.AssertStatus(t, pending("carol", "candidate"), http.StatusForbidden)

	decide := func(caller, membershipID string, decision models.ApprovalStatus) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/elections/"+electionID+"/members/"+membershipID+"/approval",
			models.ApprovalDecisionRequest{Decision: decision}, as(cfg, caller))
		req.SetPathValue("id", electionID)
		req.SetPathValue("mid", membershipID)
		w := httptest.NewRecorder()
		handler.Decide(w, req)
		return w
	}

	testutil.AssertStatus(t, decide(testutil.TestAdmin, mem.ID, models.StatusPending), http.StatusBadRequest)
	testutil.AssertStatus(t, decide(testutil.TestAdmin, "missing", models.StatusApproved), http.StatusNotFound)
	testutil.AssertStatus(t, decide("carol", mem.ID, models.StatusApproved), http.StatusForbidden)

	w = decide(testutil.TestAdmin, mem.ID, models.StatusApproved)
	testutil.AssertStatus(t, w, http.StatusOK)

	var decided models.Membership
	testutil.AssertJSON(t, w, &decided)
	if decided.Status != models.StatusApproved {
		t.Errorf("Expected status approved, got %s", decided.Status)
	}

	// Decisions are final
	testutil.AssertStatus(t, decide(testutil.TestAdmin, mem.ID, models.StatusRejected), http.StatusConflict)

	w = pending(testutil.TestAdmin, "candidate")
	testutil.AssertStatus(t, w, http.StatusOK)
	list = nil
	testutil.AssertJSON(t, w, &list)
	if len(list) != 0 {
		t.Errorf("Expected no pending requests, got %d", len(list))
	}
}
