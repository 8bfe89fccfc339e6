// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

const testAdmin = "admin-ada"

type fixture struct {
	t   *testing.T
	ctx context.Context
	mgr *Manager
	now time.Time
}

// newFixture returns a manager over a fresh in-memory database with
// testAdmin bootstrapped.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(conn))

	f := &fixture{
		t:   t,
		ctx: context.Background(),
		now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.mgr = NewManager(conn,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return f.now }),
	)
	require.NoError(t, f.mgr.Bootstrap(f.ctx, testAdmin, models.UserProfile{Name: "Ada", Surname: "Admin", DNI: "1000"}))
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) register(identities ...string) {
	f.t.Helper()
	for _, id := range identities {
		_, err := f.mgr.RegisterUser(f.ctx, id, models.UserProfile{Name: "Name " + id, Surname: "Surname " + id})
		require.NoError(f.t, err)
	}
}

func (f *fixture) election(name string) string {
	f.t.Helper()
	e, err := f.mgr.CreateElection(f.ctx, testAdmin, ElectionSpec{Name: name})
	require.NoError(f.t, err)
	return e.ID
}

func (f *fixture) join(identity, electionID string, kind models.MembershipKind) string {
	f.t.Helper()
	mem, err := f.mgr.RegisterInElection(f.ctx, identity, electionID, kind)
	require.NoError(f.t, err)
	return mem.ID
}

func (f *fixture) decide(electionID, membershipID string, decision models.ApprovalStatus) {
	f.t.Helper()
	_, err := f.mgr.SetApproval(f.ctx, testAdmin, electionID, membershipID, decision)
	require.NoError(f.t, err)
}

// admit registers identity if needed, joins it to the election and
// approves the membership.
func (f *fixture) admit(identity, electionID string, kind models.MembershipKind) string {
	f.t.Helper()
	if _, err := f.mgr.GetUser(f.ctx, identity); err != nil {
		f.register(identity)
	}
	id := f.join(identity, electionID, kind)
	f.decide(electionID, id, models.StatusApproved)
	return id
}

func (f *fixture) open(electionID string) {
	f.t.Helper()
	_, err := f.mgr.OpenElection(f.ctx, testAdmin, electionID)
	require.NoError(f.t, err)
}

func (f *fixture) close(electionID string) {
	f.t.Helper()
	_, err := f.mgr.CloseElection(f.ctx, testAdmin, electionID)
	require.NoError(f.t, err)
}

func (f *fixture) state(electionID string) models.ElectionState {
	f.t.Helper()
	s, err := f.mgr.State(f.ctx, electionID)
	require.NoError(f.t, err)
	return s
}
