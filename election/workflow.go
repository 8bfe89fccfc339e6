// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/models"
)

// PendingMembers lists the memberships of a kind still awaiting a decision,
// in request order.
func (m *Manager) PendingMembers(ctx context.Context, caller, electionID string, kind models.MembershipKind) ([]models.Membership, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	var pending []models.Membership
	err := m.view(ctx, func(q querier) error {
		if err := m.guard.Check(ctx, q, caller, CanManage(electionID)); err != nil {
			return err
		}

		rows, err := q.QueryContext(ctx, `
			SELECT `+membershipColumns+` FROM membership
			WHERE election_id = $1 AND kind = $2 AND status = $3
			ORDER BY seq
		`, electionID, string(kind), string(models.StatusPending))
		if err != nil {
			return errors.Wrap(err, "query pending memberships")
		}
		defer rows.Close()

		pending = []models.Membership{}
		for rows.Next() {
			mem, err := scanMembership(rows)
			if err != nil {
				return errors.Wrap(err, "scan membership")
			}
			pending = append(pending, mem)
		}
		return errors.Wrap(rows.Err(), "iterate memberships")
	})
	return pending, err
}

// AvailableCandidates lists the approved candidates of an election in
// registration order, leaving out deactivated users. Anyone may read it.
func (m *Manager) AvailableCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := m.view(ctx, func(q querier) error {
		if _, err := loadElection(ctx, q, electionID); err != nil {
			return err
		}

		rows, err := q.QueryContext(ctx, `
			SELECT m.id, m.identity, u.name, u.surname
			FROM membership m
			JOIN app_user u ON u.identity = m.identity
			WHERE m.election_id = $1 AND m.kind = $2 AND m.status = $3 AND u.active = $4
			ORDER BY m.seq
		`, electionID, string(models.KindCandidate), string(models.StatusApproved), true)
		if err != nil {
			return errors.Wrap(err, "query candidates")
		}
		defer rows.Close()

		candidates = []models.Candidate{}
		for rows.Next() {
			var c models.Candidate
			if err := rows.Scan(&c.MembershipID, &c.Identity, &c.Name, &c.Surname); err != nil {
				return errors.Wrap(err, "scan candidate")
			}
			candidates = append(candidates, c)
		}
		return errors.Wrap(rows.Err(), "iterate candidates")
	})
	return candidates, err
}

// SetApproval records a decision on a pending membership. Decisions are
// final and only possible before the election opens.
func (m *Manager) SetApproval(ctx context.Context, caller, electionID, membershipID string, decision models.ApprovalStatus) (models.Membership, error) {
	if !decision.IsDecision() {
		return models.Membership{}, ErrInvalidDecision
	}

	var mem models.Membership
	err := m.update(ctx, func(tx *sql.Tx) error {
		if err := m.guard.Check(ctx, tx, caller, CanManage(electionID)); err != nil {
			return err
		}

		e, err := loadElection(ctx, tx, electionID)
		if err != nil {
			return err
		}
		switch e.State {
		case models.StateCreated:
		case models.StateOpen, models.StateClosed:
			return ErrElectionLocked
		default:
			return ErrElectionLocked
		}

		mem, err = loadMembership(ctx, tx, electionID, membershipID)
		if err != nil {
			return err
		}
		if mem.Status != models.StatusPending {
			return ErrInvalidTransition
		}

		now := m.timestamp()
		res, err := tx.ExecContext(ctx, `
			UPDATE membership SET status = $1, decided_at = $2
			WHERE id = $3 AND election_id = $4 AND status = $5
		`, string(decision), now, mem.ID, electionID, string(models.StatusPending))
		if err != nil {
			return errors.Wrap(err, "update membership status")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "update membership status")
		}
		if n != 1 {
			return ErrInvalidTransition
		}

		mem.Status = decision
		mem.DecidedAt = &now
		return nil
	})
	if err != nil {
		return models.Membership{}, err
	}

	m.logger.Info("membership decided",
		"election_id", electionID,
		"membership_id", mem.ID,
		"kind", mem.Kind,
		"status", mem.Status,
	)
	return mem, nil
}
