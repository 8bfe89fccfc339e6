// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

// setupManager returns a manager over a fresh database with the test
// admin bootstrapped
func setupManager(t *testing.T) (*election.Manager, cliparse.Config) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return testutil.NewTestManager(t, db), testutil.GetTestConfig()
}

func as(cfg cliparse.Config, identity string) map[string]string {
	return testutil.AuthHeader(cfg, identity)
}

func TestRegisterUser(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewUserHandler(mgr, cfg)

	reqBody := models.RegisterUserRequest{Name: "Carol", Surname: "Candidate", DNI: "2000"}
	req := testutil.MakeRequest("POST", "/users", reqBody, as(cfg, "carol"))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var user models.User
	testutil.AssertJSON(t, w, &user)

	if user.Identity != "carol" {
		t.Errorf("Expected identity carol, got %s", user.Identity)
	}
	if user.Role != models.RoleUnassigned {
		t.Errorf("Expected role unassigned, got %s", user.Role)
	}
	if user.Approved {
		t.Error("New users must not be approved")
	}
	if !user.Active {
		t.Error("New users must be active")
	}
}

func TestRegisterUserValidation(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewUserHandler(mgr, cfg)
	testutil.RegisterTestUser(t, mgr, "taken")

	tests := []struct {
		name           string
		body           any
		headers        map[string]string
		expectedStatus int
	}{
		{
			name:           "missing token",
			body:           models.RegisterUserRequest{Name: "A", Surname: "B"},
			headers:        nil,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "forged token",
			body:           models.RegisterUserRequest{Name: "A", Surname: "B"},
			headers:        map[string]string{middleware.IdentityHeader: "bWFsbG9yeQ.AAAA"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid JSON",
			body:           "not-an-object",
			headers:        as(cfg, "someone"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty name",
			body:           models.RegisterUserRequest{Name: " ", Surname: "B"},
			headers:        as(cfg, "someone"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "already registered",
			body:           models.RegisterUserRequest{Name: "A", Surname: "B"},
			headers:        as(cfg, "taken"),
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/users", tt.body, tt.headers)
			w := httptest.NewRecorder()

			handler.Register(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestMe(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewUserHandler(mgr, cfg)
	testutil.RegisterTestUser(t, mgr, "vera")

	w := httptest.NewRecorder()
	handler.Me(w, testutil.MakeRequest("GET", "/users/me", nil, as(cfg, "vera")))
	testutil.AssertStatus(t, w, http.StatusOK)

	var user models.User
	testutil.AssertJSON(t, w, &user)
	if user.Name != "Name vera" {
		t.Errorf("Expected name 'Name vera', got %s", user.Name)
	}

	w = httptest.NewRecorder()
	handler.Me(w, testutil.MakeRequest("GET", "/users/me", nil, as(cfg, "stranger")))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestListUsers(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewUserHandler(mgr, cfg)
	testutil.RegisterTestUser(t, mgr, "vera")

	w := httptest.NewRecorder()
	handler.List(w, testutil.MakeRequest("GET", "/users", nil, as(cfg, testutil.TestAdmin)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var users []models.User
	testutil.AssertJSON(t, w, &users)
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}

	w = httptest.NewRecorder()
	handler.List(w, testutil.MakeRequest("GET", "/users", nil, as(cfg, "vera")))
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestUserAdministration(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewUserHandler(mgr, cfg)
	testutil.RegisterTestUser(t, mgr, "vera")

	call := func(fn http.HandlerFunc, path, target string, body any, caller string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", path, body, as(cfg, caller))
		req.SetPathValue("identity", target)
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	t.Run("assign role", func(t *testing.T) {
		w := call(handler.AssignRole, "/users/vera/role", "vera", models.AssignRoleRequest{Role: models.RoleElector}, testutil.TestAdmin)
		testutil.AssertStatus(t, w, http.StatusOK)

		var user models.User
		testutil.AssertJSON(t, w, &user)
		if user.Role != models.RoleElector {
			t.Errorf("Expected role elector, got %s", user.Role)
		}
	})

	t.Run("admin role cannot be assigned", func(t *testing.T) {
		w := call(handler.AssignRole, "/users/vera/role", "vera", models.AssignRoleRequest{Role: models.RoleAdmin}, testutil.TestAdmin)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("non-admin", func(t *testing.T) {
		w := call(handler.AssignRole, "/users/vera/role", "vera", models.AssignRoleRequest{Role: models.RoleCandidate}, "vera")
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := call(handler.SetApproval, "/users/ghost/approval", "ghost", models.SetUserApprovalRequest{Approved: true}, testutil.TestAdmin)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("approve", func(t *testing.T) {
		w := call(handler.SetApproval, "/users/vera/approval", "vera", models.SetUserApprovalRequest{Approved: true}, testutil.TestAdmin)
		testutil.AssertStatus(t, w, http.StatusOK)

		var user models.User
		testutil.AssertJSON(t, w, &user)
		if !user.Approved {
			t.Error("Expected user to be approved")
		}
	})

	t.Run("admin is protected", func(t *testing.T) {
		w := call(handler.Deactivate, "/users/admin/deactivate", testutil.TestAdmin, nil, testutil.TestAdmin)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("deactivate", func(t *testing.T) {
		w := call(handler.Deactivate, "/users/vera/deactivate", "vera", nil, testutil.TestAdmin)
		testutil.AssertStatus(t, w, http.StatusOK)

		var user models.User
		testutil.AssertJSON(t, w, &user)
		if user.Active {
			t.Error("Expected user to be inactive")
		}
	})
}

func TestDelegateAdmin(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewUserHandler(mgr, cfg)
	testutil.RegisterTestUser(t, mgr, "bob")

	req := testutil.MakeRequest("POST", "/admin/delegate", models.DelegateAdminRequest{Identity: "bob"}, as(cfg, testutil.TestAdmin))
	w := httptest.NewRecorder()
	handler.DelegateAdmin(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AdminResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Admin != "bob" {
		t.Errorf("Expected admin bob, got %s", resp.Admin)
	}

	// The former admin lost every admin capability
	w = httptest.NewRecorder()
	handler.List(w, testutil.MakeRequest("GET", "/users", nil, as(cfg, testutil.TestAdmin)))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	req = testutil.MakeRequest("POST", "/admin/delegate", models.DelegateAdminRequest{Identity: "ghost"}, as(cfg, "bob"))
	w = httptest.NewRecorder()
	handler.DelegateAdmin(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestBindGateway(t *testing.T) {
	mgr, cfg := setupManager(t)
	handler := NewUserHandler(mgr, cfg)

	req := testutil.MakeRequest("POST", "/admin/reporting-gateway", models.BindGatewayRequest{Ref: cfg.GatewayRef}, as(cfg, testutil.TestAdmin))
	w := httptest.NewRecorder()
	handler.BindGateway(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.GatewayResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Ref != cfg.GatewayRef {
		t.Errorf("Expected ref %s, got %s", cfg.GatewayRef, resp.Ref)
	}

	// A registered identity cannot double as the gateway
	req = testutil.MakeRequest("POST", "/admin/reporting-gateway", models.BindGatewayRequest{Ref: testutil.TestAdmin}, as(cfg, testutil.TestAdmin))
	w = httptest.NewRecorder()
	handler.BindGateway(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	req = testutil.MakeRequest("POST", "/admin/reporting-gateway", models.BindGatewayRequest{Ref: ""}, as(cfg, testutil.TestAdmin))
	w = httptest.NewRecorder()
	handler.BindGateway(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
