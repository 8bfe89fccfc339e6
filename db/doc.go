// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections and schema creation.

# Connecting

Open selects the driver from the database type:

	conn, err := db.Open(db.TypePostgres, "postgres://...")
	conn, err := db.Open(db.TypeSQLite, "file:elections.db")

SQLite pools are limited to one connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - system_state: single row holding the admin and bound reporting gateway
  - app_user: registered participants
  - election: lifecycle state and schedule
  - membership: elector and candidate admissions, has-voted flag, counter

# Relationships

	app_user 1──* election (created_by)
	election 1──* membership
	app_user 1──* membership

There is no ballot table. A vote only flips the elector's has_voted flag
and increments the candidate's votes counter.
*/
package db
