// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/models"
)

const electionColumns = `id, name, state, created_by, starts_at, ends_at, opened_at, closed_at, created_at`

const membershipColumns = `id, election_id, identity, kind, status, seq, requested_at, decided_at`

// ElectionSpec describes a new election. StartsAt and EndsAt are optional.
type ElectionSpec struct {
	Name     string
	StartsAt *time.Time
	EndsAt   *time.Time
}

// CreateElection creates an election in state created, owned by the admin.
func (m *Manager) CreateElection(ctx context.Context, caller string, spec ElectionSpec) (models.Election, error) {
	spec.Name = strings.TrimSpace(spec.Name)
	if !validName(spec.Name) {
		return models.Election{}, ErrInvalidName
	}
	if spec.StartsAt != nil && spec.EndsAt != nil && !spec.EndsAt.After(*spec.StartsAt) {
		return models.Election{}, ErrInvalidSchedule
	}

	var e models.Election
	err := m.update(ctx, func(tx *sql.Tx) error {
		if err := m.guard.Check(ctx, tx, caller, IsAdmin()); err != nil {
			return err
		}

		var seq int
		err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM election`).Scan(&seq)
		if err != nil {
			return errors.Wrap(err, "next election sequence")
		}

		e = models.Election{
			ID:        m.newID(),
			Name:      spec.Name,
			State:     models.StateCreated,
			CreatedBy: caller,
			StartsAt:  utcPtr(spec.StartsAt),
			EndsAt:    utcPtr(spec.EndsAt),
			CreatedAt: m.timestamp(),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO election (id, seq, name, state, created_by, starts_at, ends_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, e.ID, seq, e.Name, string(e.State), e.CreatedBy, nullableTime(e.StartsAt), nullableTime(e.EndsAt), e.CreatedAt)
		if err != nil {
			return errors.Wrap(err, "insert election")
		}
		return nil
	})
	if err != nil {
		return models.Election{}, err
	}

	m.logger.Info("election created", "election_id", e.ID, "identity", caller, "name", e.Name)
	return e, nil
}

// GetElection returns an election without any vote data.
func (m *Manager) GetElection(ctx context.Context, electionID string) (models.Election, error) {
	var e models.Election
	err := m.view(ctx, func(q querier) error {
		var err error
		e, err = loadElection(ctx, q, electionID)
		return err
	})
	return e, err
}

// ListElections returns every election in creation order.
func (m *Manager) ListElections(ctx context.Context) ([]models.Election, error) {
	var elections []models.Election
	err := m.view(ctx, func(q querier) error {
		var err error
		elections, err = queryElections(ctx, q, `SELECT `+electionColumns+` FROM election ORDER BY seq`)
		return err
	})
	return elections, err
}

// State returns the lifecycle state of an election.
func (m *Manager) State(ctx context.Context, electionID string) (models.ElectionState, error) {
	e, err := m.GetElection(ctx, electionID)
	if err != nil {
		return "", err
	}
	return e.State, nil
}

// RegisterInElection files a pending membership of the given kind for the
// caller. Only elections still in state created accept registrations.
func (m *Manager) RegisterInElection(ctx context.Context, caller, electionID string, kind models.MembershipKind) (models.Membership, error) {
	if !kind.Valid() {
		return models.Membership{}, ErrInvalidKind
	}

	var mem models.Membership
	err := m.update(ctx, func(tx *sql.Tx) error {
		user, err := loadUser(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !user.Active {
			return ErrUserInactive
		}

		e, err := loadElection(ctx, tx, electionID)
		if err != nil {
			return err
		}
		if e.State != models.StateCreated {
			return ErrElectionNotAcceptingRegistrations
		}

		_, err = loadMembershipOf(ctx, tx, e.ID, kind, user.Identity)
		if err == nil {
			return ErrDuplicateMembership
		}
		if !errors.Is(err, ErrMembershipNotFound) {
			return err
		}

		var seq int
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(seq), 0) + 1 FROM membership WHERE election_id = $1 AND kind = $2
		`, e.ID, string(kind)).Scan(&seq)
		if err != nil {
			return errors.Wrap(err, "next membership sequence")
		}

		mem = models.Membership{
			ID:          m.newID(),
			ElectionID:  e.ID,
			Identity:    user.Identity,
			Kind:        kind,
			Status:      models.StatusPending,
			Position:    seq,
			RequestedAt: m.timestamp(),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO membership (id, election_id, identity, kind, status, seq, has_voted, votes, requested_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
		`, mem.ID, mem.ElectionID, mem.Identity, string(mem.Kind), string(mem.Status), mem.Position, false, mem.RequestedAt)
		if err != nil {
			return errors.Wrap(err, "insert membership")
		}
		return nil
	})
	if err != nil {
		return models.Membership{}, err
	}

	m.logger.Info("membership requested",
		"election_id", mem.ElectionID,
		"membership_id", mem.ID,
		"identity", mem.Identity,
		"kind", mem.Kind,
	)
	return mem, nil
}

// DelegateAdmin hands the single admin role to another registered user.
// The caller loses admin rights in the same transaction.
func (m *Manager) DelegateAdmin(ctx context.Context, caller, newAdmin string) error {
	changed := false
	err := m.update(ctx, func(tx *sql.Tx) error {
		if err := m.guard.Check(ctx, tx, caller, IsAdmin()); err != nil {
			return err
		}

		target, err := loadUser(ctx, tx, newAdmin)
		if errors.Is(err, ErrUserNotFound) {
			return ErrUnknownUser
		}
		if err != nil {
			return err
		}
		if !target.Active {
			return ErrUserInactive
		}
		if target.Identity == caller {
			return errNoChange
		}

		_, err = tx.ExecContext(ctx, `UPDATE system_state SET admin_identity = $1 WHERE id = 1`, target.Identity)
		if err != nil {
			return errors.Wrap(err, "update admin")
		}
		_, err = tx.ExecContext(ctx, `UPDATE app_user SET role = $1 WHERE identity = $2`, string(models.RoleUnassigned), caller)
		if err != nil {
			return errors.Wrap(err, "demote previous admin")
		}
		_, err = tx.ExecContext(ctx, `UPDATE app_user SET role = $1, approved = $2 WHERE identity = $3`, string(models.RoleAdmin), true, target.Identity)
		if err != nil {
			return errors.Wrap(err, "promote new admin")
		}
		changed = true
		return nil
	})
	if err != nil || !changed {
		return err
	}

	m.logger.Info("admin delegated", "from", caller, "to", newAdmin)
	return nil
}

// OpenElection moves an election from created to open. It needs at least
// one active approved candidate and, when scheduled, a reached start time
// and an end time still ahead.
func (m *Manager) OpenElection(ctx context.Context, caller, electionID string) (models.Election, error) {
	var e models.Election
	err := m.update(ctx, func(tx *sql.Tx) error {
		if err := m.guard.Check(ctx, tx, caller, CanManage(electionID)); err != nil {
			return err
		}

		var err error
		e, err = loadElection(ctx, tx, electionID)
		if err != nil {
			return err
		}
		if err := checkTransition(e.State, models.StateOpen); err != nil {
			return err
		}

		now := m.timestamp()
		if e.StartsAt != nil && now.Before(*e.StartsAt) {
			return ErrScheduleNotReached
		}
		if e.EndsAt != nil && !now.Before(*e.EndsAt) {
			return ErrScheduleEnded
		}

		var approved int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM membership m
			JOIN app_user u ON u.identity = m.identity
			WHERE m.election_id = $1 AND m.kind = $2 AND m.status = $3 AND u.active = $4
		`, e.ID, string(models.KindCandidate), string(models.StatusApproved), true).Scan(&approved)
		if err != nil {
			return errors.Wrap(err, "count approved candidates")
		}
		if approved == 0 {
			return ErrInsufficientCandidates
		}

		if err := setState(ctx, tx, e.ID, models.StateCreated, models.StateOpen, now); err != nil {
			return err
		}
		e.State = models.StateOpen
		e.OpenedAt = &now
		return nil
	})
	if err != nil {
		return models.Election{}, err
	}

	m.logger.Info("election opened", "election_id", e.ID, "identity", caller)
	return e, nil
}

// CloseElection moves an open election to closed, after which aggregate
// results become readable.
func (m *Manager) CloseElection(ctx context.Context, caller, electionID string) (models.Election, error) {
	var e models.Election
	err := m.update(ctx, func(tx *sql.Tx) error {
		if err := m.guard.Check(ctx, tx, caller, CanManage(electionID)); err != nil {
			return err
		}

		var err error
		e, err = loadElection(ctx, tx, electionID)
		if err != nil {
			return err
		}
		if err := checkTransition(e.State, models.StateClosed); err != nil {
			return err
		}

		now := m.timestamp()
		if err := setState(ctx, tx, e.ID, models.StateOpen, models.StateClosed, now); err != nil {
			return err
		}
		e.State = models.StateClosed
		e.ClosedAt = &now
		return nil
	})
	if err != nil {
		return models.Election{}, err
	}

	m.logger.Info("election closed", "election_id", e.ID, "identity", caller)
	return e, nil
}

// CloseExpired closes every open election whose end time has passed and
// returns their ids.
func (m *Manager) CloseExpired(ctx context.Context, caller string) ([]string, error) {
	closed := []string{}
	err := m.update(ctx, func(tx *sql.Tx) error {
		if err := m.guard.Check(ctx, tx, caller, IsAdmin()); err != nil {
			return err
		}

		open, err := queryElections(ctx, tx, `
			SELECT `+electionColumns+` FROM election WHERE state = $1 AND ends_at IS NOT NULL ORDER BY seq
		`, string(models.StateOpen))
		if err != nil {
			return err
		}

		now := m.timestamp()
		for _, e := range open {
			if now.Before(*e.EndsAt) {
				continue
			}
			if err := setState(ctx, tx, e.ID, models.StateOpen, models.StateClosed, now); err != nil {
				return err
			}
			closed = append(closed, e.ID)
		}
		if len(closed) == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range closed {
		m.logger.Info("election closed", "election_id", id, "identity", caller, "reason", "expired")
	}
	return closed, nil
}

// BindReportingGateway records the one reporting gateway reference
// trusted to read electorate details. Rebinding replaces the previous one.
func (m *Manager) BindReportingGateway(ctx context.Context, caller, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrInvalidGateway
	}

	err := m.update(ctx, func(tx *sql.Tx) error {
		if err := m.guard.Check(ctx, tx, caller, IsAdmin()); err != nil {
			return err
		}

		_, err := loadUser(ctx, tx, ref)
		if err == nil {
			return ErrInvalidGateway
		}
		if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE system_state SET reporting_gateway = $1 WHERE id = 1`, ref)
		return errors.Wrap(err, "bind reporting gateway")
	})
	if err != nil {
		return err
	}

	m.logger.Info("reporting gateway bound", "ref", ref, "identity", caller)
	return nil
}

// ReportingGateway returns the bound gateway reference, or "" if none.
func (m *Manager) ReportingGateway(ctx context.Context) (string, error) {
	var ref string
	err := m.view(ctx, func(q querier) error {
		sys, err := loadSystem(ctx, q)
		if err != nil {
			return err
		}
		ref = sys.gateway
		return nil
	})
	return ref, err
}

// checkTransition enforces created → open → closed.
func checkTransition(from, to models.ElectionState) error {
	switch from {
	case models.StateCreated:
		switch to {
		case models.StateOpen:
			return nil
		case models.StateClosed:
			return ErrElectionNotOpen
		}
	case models.StateOpen:
		switch to {
		case models.StateClosed:
			return nil
		case models.StateOpen:
			return ErrElectionLocked
		}
	case models.StateClosed:
		switch to {
		case models.StateOpen:
			return ErrElectionLocked
		case models.StateClosed:
			return ErrElectionNotOpen
		}
	}
	return errors.Wrapf(ErrInvalidState, "transition %s to %s", from, to)
}

func setState(ctx context.Context, tx *sql.Tx, electionID string, from, to models.ElectionState, at time.Time) error {
	column := "opened_at"
	if to == models.StateClosed {
		column = "closed_at"
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE election SET state = $1, `+column+` = $2 WHERE id = $3 AND state = $4
	`, string(to), at, electionID, string(from))
	if err != nil {
		return errors.Wrap(err, "update election state")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update election state")
	}
	if n != 1 {
		return errors.Wrapf(ErrInvalidState, "election %s is no longer %s", electionID, from)
	}
	return nil
}

func scanElection(s scanner) (models.Election, error) {
	var e models.Election
	var state string
	var startsAt, endsAt, openedAt, closedAt sql.NullTime
	err := s.Scan(&e.ID, &e.Name, &state, &e.CreatedBy, &startsAt, &endsAt, &openedAt, &closedAt, &e.CreatedAt)
	if err != nil {
		return models.Election{}, err
	}
	e.State = models.ElectionState(state)
	e.StartsAt = timePtr(startsAt)
	e.EndsAt = timePtr(endsAt)
	e.OpenedAt = timePtr(openedAt)
	e.ClosedAt = timePtr(closedAt)
	return e, nil
}

func loadElection(ctx context.Context, q querier, electionID string) (models.Election, error) {
	row := q.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM election WHERE id = $1`, electionID)
	e, err := scanElection(row)
	if err == sql.ErrNoRows {
		return models.Election{}, ErrElectionNotFound
	}
	if err != nil {
		return models.Election{}, errors.Wrap(err, "query election")
	}
	return e, nil
}

func queryElections(ctx context.Context, q querier, query string, args ...any) ([]models.Election, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query elections")
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan election")
		}
		elections = append(elections, e)
	}
	return elections, errors.Wrap(rows.Err(), "iterate elections")
}

func scanMembership(s scanner) (models.Membership, error) {
	var mem models.Membership
	var kind, status string
	var decidedAt sql.NullTime
	err := s.Scan(&mem.ID, &mem.ElectionID, &mem.Identity, &kind, &status, &mem.Position, &mem.RequestedAt, &decidedAt)
	if err != nil {
		return models.Membership{}, err
	}
	mem.Kind = models.MembershipKind(kind)
	mem.Status = models.ApprovalStatus(status)
	mem.DecidedAt = timePtr(decidedAt)
	return mem, nil
}

func loadMembership(ctx context.Context, q querier, electionID, membershipID string) (models.Membership, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+membershipColumns+` FROM membership WHERE election_id = $1 AND id = $2
	`, electionID, membershipID)
	mem, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return models.Membership{}, ErrMembershipNotFound
	}
	if err != nil {
		return models.Membership{}, errors.Wrap(err, "query membership")
	}
	return mem, nil
}

func loadMembershipOf(ctx context.Context, q querier, electionID string, kind models.MembershipKind, identity string) (models.Membership, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+membershipColumns+` FROM membership WHERE election_id = $1 AND kind = $2 AND identity = $3
	`, electionID, string(kind), identity)
	mem, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return models.Membership{}, ErrMembershipNotFound
	}
	if err != nil {
		return models.Membership{}, errors.Wrap(err, "query membership")
	}
	return mem, nil
}
