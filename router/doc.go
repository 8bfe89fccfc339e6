// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Elect API.

# Route Registration

NewRouter returns the mux wrapped in CORS, with every endpoint wired:

	h := router.NewRouter(mgr, gw, cfg)

Each route is wrapped in request logging and Prometheus instrumentation
labelled with its pattern. The registry is private to the router and is
served at GET /metrics.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Users (X-Identity-Token required):

	POST /users                       - Register the caller
	GET  /users/me                    - Caller profile
	GET  /users                       - List users (admin)
	POST /users/{identity}/role       - Assign role (admin)
	POST /users/{identity}/approval   - Global approval (admin)
	POST /users/{identity}/deactivate - Deactivate (admin)
	POST /admin/delegate              - Hand the admin role over
	POST /admin/reporting-gateway     - Bind the gateway reference

Elections:

	POST /elections                              - Create (admin)
	GET  /elections                              - List
	POST /elections/close-expired                - Close past end time (admin)
	GET  /elections/{id}                         - Details
	GET  /elections/{id}/state                   - Lifecycle state
	POST /elections/{id}/open                    - Open voting
	POST /elections/{id}/close                   - Close voting
	POST /elections/{id}/members                 - Request admission
	GET  /elections/{id}/members/pending?kind=   - Pending requests
	POST /elections/{id}/members/{mid}/approval  - Approve or reject

Voting and results:

	GET  /elections/{id}/candidates - Approved candidates
	POST /elections/{id}/votes      - Cast the caller's vote
	GET  /elections/{id}/voters     - Electorate with has-voted flags
	GET  /elections/{id}/my-vote    - Whether the caller voted
	GET  /elections/{id}/results    - Counts (closed only)

Reports, read through the reporting gateway:

	GET /reports/{id}/voters
	GET /reports/{id}/participation
	GET /reports/{id}/results
*/
package router
