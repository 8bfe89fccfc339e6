// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the election manager: the user registry, the
permission guard, the election lifecycle, the approval workflow, and the
voting engine.

# State

All state lives in the database created by db.CreateSchema. A Manager is
the only writer. Each public method runs in one transaction and mutations
are serialized, so a call either applies completely or not at all:

	mgr := election.NewManager(conn, election.WithLogger(logger))
	err := mgr.Bootstrap(ctx, "alice", models.UserProfile{Name: "Alice"})

Every committed mutation bumps a version counter, readable with Version.

# Lifecycle

Elections move forward only:

	created → open → closed

Memberships are requested and decided while an election is in created.
Opening needs at least one approved candidate. Votes are accepted only
while open.

# Permissions

Guard.Check decides whether a caller holds a Capability (IsAdmin,
IsApprovedElector, IsApprovedCandidate, CanManage). Missing users, missing
memberships, deactivated users and unknown states all deny.

# Confidentiality

Per-candidate counts are read in exactly one place and only once an
election is closed. Until then Results fails with ErrElectionNotClosed for
every caller. The elector's choice is never stored: a vote increments the
candidate's counter and sets the elector's has-voted flag.

# Errors

Every rejected precondition returns a package sentinel that matches one of
ErrUnauthorized, ErrNotFound, ErrInvalidState, ErrConflict or
ErrInvalidInput with errors.Is. Storage failures are wrapped and match
none of them.
*/
package election
