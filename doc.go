// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides electd, the Quickly Elect server and admin CLI.

Quickly Elect runs closed-membership elections: an admin creates elections,
users ask to join as electors or candidates, the admin approves them, and
each approved elector casts one confidential vote. Counts stay sealed
until the election is closed.

# Commands

	electd serve                       - Run the HTTP API
	electd migrate                     - Create the schema and exit
	electd token <identity>            - Mint an X-Identity-Token
	electd report voters <id>          - Approved electors
	electd report participation <id>   - Votes cast against the electorate
	electd report results <id>         - Ranked results (closed only)

# Configuration

Every setting is a persistent flag with an environment fallback. A .env
file is loaded first when present (--env-file).

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: file:elections.db)
  - IDENTITY_TOKEN_SALT (--identity-salt): Secret for identity tokens
  - ADMIN_IDENTITY (--admin): Identity bootstrapped as the first admin
  - ADMIN_NAME (--admin-name): Display name of the bootstrap admin
  - REPORTING_GATEWAY_REF (--gateway-ref): Reference the reports read under

For example:

	IDENTITY_TOKEN_SALT=dev ADMIN_IDENTITY=ada electd serve -p 3318

# Architecture

  - election: Manager, guard and every state-changing operation
  - reports: Reporting gateway over the manager's read surface
  - handlers: HTTP request handlers
  - router: Route definitions, metrics and CORS
  - middleware: Logging, metrics, JSON helpers, caller identity
  - models: Domain, request and response types
  - auth: Identity token signing and verification
  - db: Driver selection and schema creation
  - cliparse: Flag and environment configuration

See package documentation for each component.
*/
package main
