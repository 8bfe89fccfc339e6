// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The SQL is kept to the subset shared by PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

var schema = []string{
	// Single-row system state: the one admin, the bound reporting gateway
	`CREATE TABLE IF NOT EXISTS system_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    admin_identity TEXT NOT NULL,
    reporting_gateway TEXT,
    version INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL
)`,

	// Users (append-only, deactivation is a flag)
	`CREATE TABLE IF NOT EXISTS app_user (
    identity TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    surname TEXT NOT NULL DEFAULT '',
    dni TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'unassigned' CHECK (role IN ('unassigned', 'elector', 'candidate', 'admin')),
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    registered_at TIMESTAMP NOT NULL
)`,

	// Elections
	`CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    seq INTEGER NOT NULL UNIQUE,
    name TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT 'created' CHECK (state IN ('created', 'open', 'closed')),
    created_by TEXT NOT NULL REFERENCES app_user(identity),
    starts_at TIMESTAMP,
    ends_at TIMESTAMP,
    opened_at TIMESTAMP,
    closed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_election_state ON election(state)`,

	// Memberships: electors and candidates per election.
	// votes is only read by the aggregate release path.
	`CREATE TABLE IF NOT EXISTS membership (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id),
    identity TEXT NOT NULL REFERENCES app_user(identity),
    kind TEXT NOT NULL CHECK (kind IN ('elector', 'candidate')),
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    seq INTEGER NOT NULL,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    votes INTEGER NOT NULL DEFAULT 0,
    requested_at TIMESTAMP NOT NULL,
    decided_at TIMESTAMP,
    UNIQUE (election_id, kind, identity),
    UNIQUE (election_id, kind, seq)
)`,
	`CREATE INDEX IF NOT EXISTS idx_membership_election ON membership(election_id, kind, status)`,
	`CREATE INDEX IF NOT EXISTS idx_membership_identity ON membership(identity)`,
}
