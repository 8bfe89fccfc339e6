// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// TestAdmin is the identity bootstrapped as admin by NewTestManager
const TestAdmin = "admin-ada"

// TestGatewayRef is the reporting gateway reference in GetTestConfig
const TestGatewayRef = "reports-test"

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          cliparse.DefaultPort,
		DatabaseURL:   ":memory:",
		DatabaseType:  db.TypeSQLite,
		IdentitySalt:  "test-identity-salt",
		AdminIdentity: TestAdmin,
		AdminName:     "Ada",
		GatewayRef:    TestGatewayRef,
	}
}

// NewTestManager returns a quiet manager over conn with TestAdmin
// bootstrapped
func NewTestManager(t *testing.T, conn *sql.DB) *election.Manager {
	t.Helper()

	mgr := election.NewManager(conn, election.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	err := mgr.Bootstrap(context.Background(), TestAdmin, models.UserProfile{Name: "Ada", Surname: "Admin", DNI: "1000"})
	if err != nil {
		t.Fatalf("Failed to bootstrap admin: %v", err)
	}

	return mgr
}

// AuthHeader returns request headers carrying a valid token for identity
func AuthHeader(cfg cliparse.Config, identity string) map[string]string {
	return map[string]string{
		middleware.IdentityHeader: auth.IssueIdentityToken(identity, cfg.IdentitySalt),
	}
}

// RegisterTestUser registers identity with a generated profile
func RegisterTestUser(t *testing.T, mgr *election.Manager, identity string) {
	t.Helper()

	_, err := mgr.RegisterUser(context.Background(), identity, models.UserProfile{
		Name:    "Name " + identity,
		Surname: "Surname " + identity,
	})
	if err != nil {
		t.Fatalf("Failed to register test user %s: %v", identity, err)
	}
}

// CreateTestElection creates an unscheduled election as TestAdmin and
// returns its ID
func CreateTestElection(t *testing.T, mgr *election.Manager, name string) string {
	t.Helper()

	e, err := mgr.CreateElection(context.Background(), TestAdmin, election.ElectionSpec{Name: name})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return e.ID
}

// AdmitTestMember registers identity if needed, joins it to the election
// as kind and approves it. Returns the membership ID.
func AdmitTestMember(t *testing.T, mgr *election.Manager, electionID, identity string, kind models.MembershipKind) string {
	t.Helper()
	ctx := context.Background()

	if _, err := mgr.GetUser(ctx, identity); err != nil {
		RegisterTestUser(t, mgr, identity)
	}

	mem, err := mgr.RegisterInElection(ctx, identity, electionID, kind)
	if err != nil {
		t.Fatalf("Failed to join %s as %s: %v", identity, kind, err)
	}

	if _, err := mgr.SetApproval(ctx, TestAdmin, electionID, mem.ID, models.StatusApproved); err != nil {
		t.Fatalf("Failed to approve %s: %v", identity, err)
	}

	return mem.ID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
