// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Role is a user's global role.
type Role string

const (
	RoleUnassigned Role = "unassigned"
	RoleElector    Role = "elector"
	RoleCandidate  Role = "candidate"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUnassigned, RoleElector, RoleCandidate, RoleAdmin:
		return true
	default:
		return false
	}
}

// MembershipKind is the side a user asks to join an election on.
type MembershipKind string

const (
	KindElector   MembershipKind = "elector"
	KindCandidate MembershipKind = "candidate"
)

func (k MembershipKind) Valid() bool {
	switch k {
	case KindElector, KindCandidate:
		return true
	default:
		return false
	}
}

// ApprovalStatus is the admission state of a membership.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsDecision reports whether s can be the outcome of an approval decision.
func (s ApprovalStatus) IsDecision() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// ElectionState is the forward-only lifecycle phase of an election.
type ElectionState string

const (
	StateCreated ElectionState = "created"
	StateOpen    ElectionState = "open"
	StateClosed  ElectionState = "closed"
)

func (s ElectionState) Valid() bool {
	switch s {
	case StateCreated, StateOpen, StateClosed:
		return true
	default:
		return false
	}
}

// Domain types

// UserProfile is the personal data supplied at registration.
type UserProfile struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	DNI     string `json:"dni"`
}

type User struct {
	Identity     string    `json:"identity"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	DNI          string    `json:"dni,omitempty"`
	Role         Role      `json:"role"`
	Approved     bool      `json:"approved"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Election struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	State     ElectionState `json:"state"`
	CreatedBy string        `json:"created_by"`
	StartsAt  *time.Time    `json:"starts_at,omitempty"`
	EndsAt    *time.Time    `json:"ends_at,omitempty"`
	OpenedAt  *time.Time    `json:"opened_at,omitempty"`
	ClosedAt  *time.Time    `json:"closed_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Membership never carries vote data: neither the candidate counter nor
// the elector's has-voted flag.
type Membership struct {
	ID          string         `json:"id"`
	ElectionID  string         `json:"election_id"`
	Identity    string         `json:"identity"`
	Kind        MembershipKind `json:"kind"`
	Status      ApprovalStatus `json:"status"`
	Position    int            `json:"position"`
	RequestedAt time.Time      `json:"requested_at"`
	DecidedAt   *time.Time     `json:"decided_at,omitempty"`
}

// Candidate is the public view of an approved candidate.
type Candidate struct {
	MembershipID string `json:"membership_id"`
	Identity     string `json:"identity"`
	Name         string `json:"name"`
	Surname      string `json:"surname"`
}

// VoterInfo is an approved elector and whether they have voted. It never
// says for whom.
type VoterInfo struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	HasVoted bool   `json:"has_voted"`
}

type CandidateResult struct {
	MembershipID string `json:"membership_id"`
	Identity     string `json:"identity"`
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Votes        int    `json:"votes"`
	Rank         int    `json:"rank"` // 1-indexed ranking
}

// Report types

type VoterReportEntry struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

type VoterReport struct {
	ElectionID string             `json:"election_id"`
	Voters     []VoterReportEntry `json:"voters"`
}

type ParticipationReport struct {
	ElectionID       string        `json:"election_id"`
	State            ElectionState `json:"state"`
	VotesCast        int           `json:"votes_cast"`
	ApprovedElectors int           `json:"approved_electors"`
	Percentage       float64       `json:"percentage"`
}

type ResultReport struct {
	ElectionID string            `json:"election_id"`
	Name       string            `json:"name"`
	ClosedAt   *time.Time        `json:"closed_at,omitempty"`
	Results    []CandidateResult `json:"results"`
}

// Request types

type RegisterUserRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	DNI     string `json:"dni"`
}

type AssignRoleRequest struct {
	Role Role `json:"role"`
}

type SetUserApprovalRequest struct {
	Approved bool `json:"approved"`
}

type DelegateAdminRequest struct {
	Identity string `json:"identity"`
}

type BindGatewayRequest struct {
	Ref string `json:"ref"`
}

type CreateElectionRequest struct {
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

type JoinElectionRequest struct {
	Kind MembershipKind `json:"kind"`
}

type ApprovalDecisionRequest struct {
	Decision ApprovalStatus `json:"decision"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
}

type StateResponse struct {
	ElectionID string        `json:"election_id"`
	State      ElectionState `json:"state"`
}

type CastVoteResponse struct {
	Message string `json:"message"`
}

type HasVotedResponse struct {
	ElectionID string `json:"election_id"`
	HasVoted   bool   `json:"has_voted"`
}

type AdminResponse struct {
	Admin string `json:"admin"`
}

type GatewayResponse struct {
	Ref string `json:"ref"`
}

type CloseExpiredResponse struct {
	Closed []string `json:"closed"`
}

type ResultsResponse struct {
	Election Election          `json:"election"`
	Results  []CandidateResult `json:"results"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
