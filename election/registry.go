// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/models"
)

const maxNameLen = 200

const userColumns = `identity, name, surname, dni, role, approved, active, registered_at`

func cleanRegistration(identity string, profile models.UserProfile) (string, models.UserProfile, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", models.UserProfile{}, ErrInvalidIdentity
	}
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Surname = strings.TrimSpace(profile.Surname)
	profile.DNI = strings.TrimSpace(profile.DNI)
	if !validName(profile.Name) {
		return "", models.UserProfile{}, ErrInvalidName
	}
	return identity, profile, nil
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= maxNameLen
}

// RegisterUser creates a user with role unassigned for an authenticated
// identity. Registering the same identity twice fails with
// ErrAlreadyRegistered and changes nothing.
func (m *Manager) RegisterUser(ctx context.Context, identity string, profile models.UserProfile) (models.User, error) {
	identity, profile, err := cleanRegistration(identity, profile)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = m.update(ctx, func(tx *sql.Tx) error {
		_, err := loadUser(ctx, tx, identity)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		// The gateway reference is not a user identity.
		sys, err := loadSystem(ctx, tx)
		if err != nil && !errors.Is(err, ErrNotBootstrapped) {
			return err
		}
		if sys.gateway != "" && sys.gateway == identity {
			return ErrAlreadyRegistered
		}

		user = models.User{
			Identity:     identity,
			Name:         profile.Name,
			Surname:      profile.Surname,
			DNI:          profile.DNI,
			Role:         models.RoleUnassigned,
			Approved:     false,
			Active:       true,
			RegisteredAt: m.timestamp(),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO app_user (identity, name, surname, dni, role, approved, active, registered_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, user.Identity, user.Name, user.Surname, user.DNI, string(user.Role), user.Approved, user.Active, user.RegisteredAt)
		if err != nil {
			return errors.Wrap(err, "insert user")
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	m.logger.Info("user registered", "identity", identity)
	return user, nil
}

// GetUser looks up a registered user.
func (m *Manager) GetUser(ctx context.Context, identity string) (models.User, error) {
	var user models.User
	err := m.view(ctx, func(q querier) error {
		var err error
		user, err = loadUser(ctx, q, identity)
		return err
	})
	return user, err
}

// ListUsers returns every registered user in registration order.
func (m *Manager) ListUsers(ctx context.Context, caller string) ([]models.User, error) {
	var users []models.User
	err := m.view(ctx, func(q querier) error {
		if err := m.guard.Check(ctx, q, caller, IsAdmin()); err != nil {
			return err
		}

		rows, err := q.QueryContext(ctx, `
			SELECT `+userColumns+` FROM app_user ORDER BY registered_at, identity
		`)
		if err != nil {
			return errors.Wrap(err, "query users")
		}
		defer rows.Close()

		users = []models.User{}
		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				return errors.Wrap(err, "scan user")
			}
			users = append(users, user)
		}
		return errors.Wrap(rows.Err(), "iterate users")
	})
	return users, err
}

// AssignRole changes a user's global role. Admin can only be conferred
// by DelegateAdmin, and the current admin's role cannot be changed here.
func (m *Manager) AssignRole(ctx context.Context, caller, target string, role models.Role) (models.User, error) {
	if role == models.RoleAdmin || !role.Valid() {
		return models.User{}, ErrInvalidRole
	}

	var user models.User
	err := m.update(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = m.loadAdministrable(ctx, tx, caller, target)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE app_user SET role = $1 WHERE identity = $2`, string(role), user.Identity)
		if err != nil {
			return errors.Wrap(err, "update user role")
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	m.logger.Info("user role assigned", "identity", user.Identity, "role", role)
	return user, nil
}

// SetUserApproval sets the global approval flag of a user.
func (m *Manager) SetUserApproval(ctx context.Context, caller, target string, approved bool) (models.User, error) {
	var user models.User
	err := m.update(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = m.loadAdministrable(ctx, tx, caller, target)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE app_user SET approved = $1 WHERE identity = $2`, approved, user.Identity)
		if err != nil {
			return errors.Wrap(err, "update user approval")
		}
		user.Approved = approved
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	m.logger.Info("user approval set", "identity", user.Identity, "approved", approved)
	return user, nil
}

// DeactivateUser marks a user inactive. Users are never removed.
func (m *Manager) DeactivateUser(ctx context.Context, caller, target string) (models.User, error) {
	var user models.User
	err := m.update(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = m.loadAdministrable(ctx, tx, caller, target)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE app_user SET active = $1 WHERE identity = $2`, false, user.Identity)
		if err != nil {
			return errors.Wrap(err, "deactivate user")
		}
		user.Active = false
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	m.logger.Info("user deactivated", "identity", user.Identity)
	return user, nil
}

// loadAdministrable checks the caller is the admin and loads a target
// other than the admin.
func (m *Manager) loadAdministrable(ctx context.Context, q querier, caller, target string) (models.User, error) {
	if err := m.guard.Check(ctx, q, caller, IsAdmin()); err != nil {
		return models.User{}, err
	}
	user, err := loadUser(ctx, q, target)
	if err != nil {
		return models.User{}, err
	}
	sys, err := loadSystem(ctx, q)
	if err != nil {
		return models.User{}, err
	}
	if user.Identity == sys.admin {
		return models.User{}, ErrProtectedUser
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (models.User, error) {
	var user models.User
	var role string
	err := s.Scan(&user.Identity, &user.Name, &user.Surname, &user.DNI, &role,
		&user.Approved, &user.Active, &user.RegisteredAt)
	if err != nil {
		return models.User{}, err
	}
	user.Role = models.Role(role)
	return user, nil
}

func loadUser(ctx context.Context, q querier, identity string) (models.User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM app_user WHERE identity = $1`, identity)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, errors.Wrap(err, "query user")
	}
	return user, nil
}
