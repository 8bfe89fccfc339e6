// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reports builds read-only reports over an election manager.

A Gateway is constructed against one Source, normally *election.Manager,
and identifies itself with a reference the manager's admin binds once:

	gw := reports.NewGateway("reporting-gateway", mgr, logger)
	err := mgr.BindReportingGateway(ctx, admin, gw.Ref())

Until bound, electorate reads fail with election.ErrGatewayNotBound.

# Reports

  - VoterReport: approved electors, any state
  - ParticipationReport: votes cast, approved electors, percentage; open or closed
  - ResultReport: ranked per-candidate counts; closed only

Per-candidate counts come from Source.Results, which refuses them before
an election closes.
*/
package reports
