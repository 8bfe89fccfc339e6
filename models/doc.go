// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the API.

# Variants

Roles, membership kinds, approval statuses and election states are string
variants. Each has a Valid method so decision code can switch over every
case and reject anything else:

	Role:           unassigned, elector, candidate, admin
	MembershipKind: elector, candidate
	ApprovalStatus: pending, approved, rejected
	ElectionState:  created → open → closed

# Domain Types

  - User: identity, profile, global role, approval and active flags
  - Election: lifecycle state, schedule markers, creator
  - Membership: a user's admission request in one election
  - Candidate: public view of an approved candidate
  - VoterInfo: approved elector with has-voted flag
  - CandidateResult: per-candidate count, only produced after closure

Membership deliberately has no vote fields. Per-candidate counts only
appear in CandidateResult.

# Report Types

  - VoterReport: approved electors of an election
  - ParticipationReport: votes cast, approved electors, percentage
  - ResultReport: ranked candidate results

# Request and Response Types

JSON bodies for the HTTP handlers (RegisterUserRequest,
CreateElectionRequest, CastVoteRequest, ...) and ErrorResponse.
*/
package models
