// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/models"
)

// revealCounts is the only gate in front of per-candidate vote counts.
// Counts exist only for closed elections.
func revealCounts(state models.ElectionState) error {
	switch state {
	case models.StateClosed:
		return nil
	case models.StateCreated, models.StateOpen:
		return ErrElectionNotClosed
	default:
		return ErrElectionNotClosed
	}
}

// Results returns the ranked candidate counts of a closed election. Any
// caller may read them once the election has closed.
func (m *Manager) Results(ctx context.Context, electionID string) (models.Election, []models.CandidateResult, error) {
	var e models.Election
	var results []models.CandidateResult
	err := m.view(ctx, func(q querier) error {
		var err error
		e, err = loadElection(ctx, q, electionID)
		if err != nil {
			return err
		}
		results, err = countsFor(ctx, q, e)
		return err
	})
	if err != nil {
		return models.Election{}, nil, err
	}
	return e, results, nil
}

// countsFor is the single read of membership.votes.
func countsFor(ctx context.Context, q querier, e models.Election) ([]models.CandidateResult, error) {
	if err := revealCounts(e.State); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT m.id, m.identity, u.name, u.surname, m.votes
		FROM membership m
		JOIN app_user u ON u.identity = m.identity
		WHERE m.election_id = $1 AND m.kind = $2 AND m.status = $3
		ORDER BY m.votes DESC, m.seq ASC
	`, e.ID, string(models.KindCandidate), string(models.StatusApproved))
	if err != nil {
		return nil, errors.Wrap(err, "query vote counts")
	}
	defer rows.Close()

	results := []models.CandidateResult{}
	for rows.Next() {
		var r models.CandidateResult
		if err := rows.Scan(&r.MembershipID, &r.Identity, &r.Name, &r.Surname, &r.Votes); err != nil {
			return nil, errors.Wrap(err, "scan vote count")
		}
		r.Rank = len(results) + 1
		results = append(results, r)
	}
	return results, errors.Wrap(rows.Err(), "iterate vote counts")
}
