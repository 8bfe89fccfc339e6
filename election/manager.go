// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/models"
)

// querier is the subset of *sql.DB and *sql.Tx used by the manager.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Manager owns the election system state: the user registry, the single
// admin, the elections with their memberships, and the bound reporting
// gateway. Every public operation runs as one transaction that either
// commits fully or leaves the state untouched.
type Manager struct {
	db     *sql.DB
	mu     sync.Mutex // serializes mutations, one call at a time
	guard  Guard
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces time.Now, used for schedule checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// NewManager creates a manager over a database holding the schema from
// db.CreateSchema.
func NewManager(db *sql.DB, opts ...Option) *Manager {
	m := &Manager{
		db:     db,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// errNoChange lets an update callback commit nothing without failing.
var errNoChange = errors.New("no change")

// update runs fn in a serialized transaction and bumps the state version.
func (m *Manager) update(ctx context.Context, fn func(tx *sql.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE system_state SET version = version + 1, updated_at = $1 WHERE id = 1
	`, m.timestamp())
	if err != nil {
		return errors.Wrap(err, "bump state version")
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}

// view runs fn in a transaction that is always rolled back.
func (m *Manager) view(ctx context.Context, fn func(q querier) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	return fn(tx)
}

func (m *Manager) timestamp() time.Time {
	return m.now().UTC()
}

// Bootstrap installs the first admin. Once the system has an admin it does
// nothing, since the admin may have been delegated since the first start.
func (m *Manager) Bootstrap(ctx context.Context, identity string, profile models.UserProfile) error {
	identity, profile, err := cleanRegistration(identity, profile)
	if err != nil {
		return err
	}

	return m.update(ctx, func(tx *sql.Tx) error {
		_, err := loadSystem(ctx, tx)
		if err == nil {
			return errNoChange
		}
		if !errors.Is(err, ErrNotBootstrapped) {
			return err
		}

		now := m.timestamp()
		_, err = loadUser(ctx, tx, identity)
		switch {
		case err == nil:
			_, err = tx.ExecContext(ctx, `
				UPDATE app_user SET role = $1, approved = $2, active = $3 WHERE identity = $4
			`, string(models.RoleAdmin), true, true, identity)
			if err != nil {
				return errors.Wrap(err, "promote bootstrap admin")
			}
		case errors.Is(err, ErrUserNotFound):
			_, err = tx.ExecContext(ctx, `
				INSERT INTO app_user (identity, name, surname, dni, role, approved, active, registered_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, identity, profile.Name, profile.Surname, profile.DNI, string(models.RoleAdmin), true, true, now)
			if err != nil {
				return errors.Wrap(err, "insert bootstrap admin")
			}
		default:
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO system_state (id, admin_identity, version, updated_at)
			VALUES (1, $1, 0, $2)
		`, identity, now)
		if err != nil {
			return errors.Wrap(err, "insert system state")
		}

		m.logger.Info("admin bootstrapped", "identity", identity)
		return nil
	})
}

// Admin returns the identity of the current admin.
func (m *Manager) Admin(ctx context.Context) (string, error) {
	var admin string
	err := m.view(ctx, func(q querier) error {
		sys, err := loadSystem(ctx, q)
		if err != nil {
			return err
		}
		admin = sys.admin
		return nil
	})
	return admin, err
}

// Version counts committed mutations since bootstrap.
func (m *Manager) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.view(ctx, func(q querier) error {
		sys, err := loadSystem(ctx, q)
		if err != nil {
			return err
		}
		version = sys.version
		return nil
	})
	return version, err
}

type systemState struct {
	admin   string
	gateway string
	version int64
}

func loadSystem(ctx context.Context, q querier) (systemState, error) {
	var sys systemState
	var gateway sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT admin_identity, reporting_gateway, version FROM system_state WHERE id = 1
	`).Scan(&sys.admin, &gateway, &sys.version)
	if err == sql.ErrNoRows {
		return systemState{}, ErrNotBootstrapped
	}
	if err != nil {
		return systemState{}, errors.Wrap(err, "query system state")
	}
	sys.gateway = gateway.String
	return sys, nil
}

// nullableTime converts an optional time to a driver value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
