// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Elect API.

# Handler Types

Each handler is a struct over the election manager and config:

  - UserHandler: Registration, user administration, admin delegation
  - ElectionHandler: Election lifecycle and admission requests
  - VotingHandler: Candidates, voting, electorate info and results
  - ReportHandler: Reports read through the reporting gateway

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(mgr, cfg)

# Caller Identity

Every operation that acts for a caller reads the X-Identity-Token header.
A missing or forged token is answered with 401 before the manager is
called. Report endpoints take no token.

# Errors

Manager errors map onto status codes by kind:

	InvalidInput            400
	Unauthorized            403
	ErrElectionNotClosed    403 (results are sealed)
	NotFound                404
	InvalidState, Conflict  409

Anything else is logged and answered with 500.
*/
package handlers
