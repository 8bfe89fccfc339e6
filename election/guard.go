// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/models"
)

type capabilityKind int

const (
	capAdmin capabilityKind = iota + 1
	capApprovedElector
	capApprovedCandidate
	capManage
)

// Capability is something a caller may be allowed to do, optionally
// scoped to one election.
type Capability struct {
	kind     capabilityKind
	election string
}

func IsAdmin() Capability {
	return Capability{kind: capAdmin}
}

func IsApprovedElector(electionID string) Capability {
	return Capability{kind: capApprovedElector, election: electionID}
}

func IsApprovedCandidate(electionID string) Capability {
	return Capability{kind: capApprovedCandidate, election: electionID}
}

// CanManage holds for the current admin on an existing election. The
// single admin is the election's creator or the creator's delegate.
func CanManage(electionID string) Capability {
	return Capability{kind: capManage, election: electionID}
}

func (c Capability) String() string {
	switch c.kind {
	case capAdmin:
		return "IsAdmin"
	case capApprovedElector:
		return fmt.Sprintf("IsApprovedElector(%s)", c.election)
	case capApprovedCandidate:
		return fmt.Sprintf("IsApprovedCandidate(%s)", c.election)
	case capManage:
		return fmt.Sprintf("CanManage(%s)", c.election)
	default:
		return "unknown"
	}
}

// Guard decides whether a caller holds a capability. It has no state of
// its own and reads the registry and elections through q. Anything
// missing or unexpected denies.
type Guard struct{}

// Check returns nil when caller holds c, an Unauthorized error when it
// does not, and ErrElectionNotFound when a scoped election is missing.
func (g Guard) Check(ctx context.Context, q querier, caller string, c Capability) error {
	denied := denial(c)
	if caller == "" {
		return denied
	}

	user, err := loadUser(ctx, q, caller)
	if errors.Is(err, ErrUserNotFound) {
		return denied
	}
	if err != nil {
		return err
	}
	if !user.Active {
		return ErrUserInactive
	}

	switch c.kind {
	case capAdmin:
		return g.checkAdmin(ctx, q, user)
	case capManage:
		if err := g.checkAdmin(ctx, q, user); err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return denied
			}
			return err
		}
		_, err := loadElection(ctx, q, c.election)
		return err
	case capApprovedElector:
		return g.checkMember(ctx, q, user, c.election, models.KindElector, denied)
	case capApprovedCandidate:
		return g.checkMember(ctx, q, user, c.election, models.KindCandidate, denied)
	default:
		return denied
	}
}

func (g Guard) checkAdmin(ctx context.Context, q querier, user models.User) error {
	sys, err := loadSystem(ctx, q)
	if errors.Is(err, ErrNotBootstrapped) {
		return ErrNotAdmin
	}
	if err != nil {
		return err
	}
	// The system record and the user's role must agree.
	if sys.admin != user.Identity || user.Role != models.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

func (g Guard) checkMember(ctx context.Context, q querier, user models.User, electionID string, kind models.MembershipKind, denied error) error {
	if _, err := loadElection(ctx, q, electionID); err != nil {
		return err
	}
	mem, err := loadMembershipOf(ctx, q, electionID, kind, user.Identity)
	if errors.Is(err, ErrMembershipNotFound) {
		return denied
	}
	if err != nil {
		return err
	}
	switch mem.Status {
	case models.StatusApproved:
		return nil
	case models.StatusPending, models.StatusRejected:
		return denied
	default:
		return denied
	}
}

// checkReader admits the bound reporting gateway or a manager of the
// election.
func (g Guard) checkReader(ctx context.Context, q querier, caller, electionID string) error {
	sys, err := loadSystem(ctx, q)
	if err != nil && !errors.Is(err, ErrNotBootstrapped) {
		return err
	}
	if sys.gateway != "" && caller == sys.gateway {
		_, err := loadElection(ctx, q, electionID)
		return err
	}
	err = g.Check(ctx, q, caller, CanManage(electionID))
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}
	// Not a user either: an unbound or foreign gateway.
	if _, uerr := loadUser(ctx, q, caller); errors.Is(uerr, ErrUserNotFound) {
		return ErrGatewayNotBound
	}
	return err
}

func denial(c Capability) error {
	switch c.kind {
	case capAdmin:
		return ErrNotAdmin
	case capManage:
		return ErrNotManager
	case capApprovedElector:
		return ErrNotElector
	case capApprovedCandidate:
		return ErrNotCandidate
	default:
		return ErrUnauthorized
	}
}

// Check reports whether caller holds c right now.
func (m *Manager) Check(ctx context.Context, caller string, c Capability) error {
	return m.view(ctx, func(q querier) error {
		return m.guard.Check(ctx, q, caller, c)
	})
}
