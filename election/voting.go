// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/models"
)

// Vote casts the caller's single vote for an approved candidate of an open
// election. Only the candidate's counter and the elector's has-voted flag
// change; which elector voted for whom is not stored anywhere.
func (m *Manager) Vote(ctx context.Context, caller, electionID, candidateID string) error {
	err := m.update(ctx, func(tx *sql.Tx) error {
		e, err := loadElection(ctx, tx, electionID)
		if err != nil {
			return err
		}
		switch e.State {
		case models.StateOpen:
		case models.StateCreated, models.StateClosed:
			return ErrElectionNotOpen
		default:
			return ErrElectionNotOpen
		}

		if err := m.guard.Check(ctx, tx, caller, IsApprovedElector(e.ID)); err != nil {
			return err
		}

		voted, err := hasVoted(ctx, tx, e.ID, caller)
		if err != nil {
			return err
		}
		if voted {
			return ErrAlreadyVoted
		}

		candidate, err := loadMembership(ctx, tx, e.ID, candidateID)
		if err != nil {
			return err
		}
		if candidate.Kind != models.KindCandidate {
			return ErrMembershipNotFound
		}
		err = m.guard.Check(ctx, tx, candidate.Identity, IsApprovedCandidate(e.ID))
		if errors.Is(err, ErrUnauthorized) {
			return ErrCandidateNotApproved
		}
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE membership SET has_voted = $1
			WHERE election_id = $2 AND kind = $3 AND identity = $4 AND has_voted = $5
		`, true, e.ID, string(models.KindElector), caller, false)
		if err != nil {
			return errors.Wrap(err, "mark elector voted")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "mark elector voted")
		}
		if n != 1 {
			return ErrAlreadyVoted
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE membership SET votes = votes + 1 WHERE id = $1 AND election_id = $2
		`, candidate.ID, e.ID)
		return errors.Wrap(err, "count vote")
	})
	if err != nil {
		return err
	}

	m.logger.Info("vote recorded", "election_id", electionID)
	return nil
}

// HasVoted reports whether the caller, an approved elector, has voted.
func (m *Manager) HasVoted(ctx context.Context, caller, electionID string) (bool, error) {
	var voted bool
	err := m.view(ctx, func(q querier) error {
		if err := m.guard.Check(ctx, q, caller, IsApprovedElector(electionID)); err != nil {
			return err
		}
		var err error
		voted, err = hasVoted(ctx, q, electionID, caller)
		return err
	})
	return voted, err
}

// ApprovedVoterInfo lists every approved elector with their has-voted
// flag, in registration order. It is readable by a manager of the election
// and by the bound reporting gateway.
func (m *Manager) ApprovedVoterInfo(ctx context.Context, caller, electionID string) ([]models.VoterInfo, error) {
	var voters []models.VoterInfo
	err := m.view(ctx, func(q querier) error {
		if err := m.guard.checkReader(ctx, q, caller, electionID); err != nil {
			return err
		}

		rows, err := q.QueryContext(ctx, `
			SELECT m.identity, u.name, u.surname, m.has_voted
			FROM membership m
			JOIN app_user u ON u.identity = m.identity
			WHERE m.election_id = $1 AND m.kind = $2 AND m.status = $3
			ORDER BY m.seq
		`, electionID, string(models.KindElector), string(models.StatusApproved))
		if err != nil {
			return errors.Wrap(err, "query approved electors")
		}
		defer rows.Close()

		voters = []models.VoterInfo{}
		for rows.Next() {
			var v models.VoterInfo
			if err := rows.Scan(&v.Identity, &v.Name, &v.Surname, &v.HasVoted); err != nil {
				return errors.Wrap(err, "scan elector")
			}
			voters = append(voters, v)
		}
		return errors.Wrap(rows.Err(), "iterate electors")
	})
	return voters, err
}

func hasVoted(ctx context.Context, q querier, electionID, identity string) (bool, error) {
	var voted bool
	err := q.QueryRowContext(ctx, `
		SELECT has_voted FROM membership WHERE election_id = $1 AND kind = $2 AND identity = $3
	`, electionID, string(models.KindElector), identity).Scan(&voted)
	if err == sql.ErrNoRows {
		return false, ErrMembershipNotFound
	}
	if err != nil {
		return false, errors.Wrap(err, "query has voted")
	}
	return voted, nil
}
