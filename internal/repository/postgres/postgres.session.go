// FilePath: internal/repository/postgres/postgres.session.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/helmsense/hub/internal/database"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
	"github.com/lib/pq"
)

type SessionRepo struct {
	PostgresBaseRepo
}

func NewSessionRepository(db database.DB) (*SessionRepo, error) {
	repo := &SessionRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SessionRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_drowsy_events INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		// The storage layer is the arbiter of the one-active-session
		// invariant: a second open session per device cannot exist.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
			ON sessions(device_id) WHERE end_time IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_device_start
			ON sessions(device_id, start_time DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize sessions schema", err)
		}
	}
	return nil
}

// Open inserts a new active session only if the device has none. The
// guarded INSERT plus the partial unique index keep the open atomic even
// against a concurrent tracker instance.
func (r *SessionRepo) Open(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, device_id, start_time, end_time, duration_seconds, total_drowsy_events, created_at)
		SELECT $1, $2, $3, NULL, 0, 0, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM sessions WHERE device_id = $2 AND end_time IS NULL
		)`

	result, err := r.db.GetDB().ExecContext(ctx, query,
		session.ID, session.DeviceID, session.StartTime, session.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.NewConflictError("device already has an active session", err)
		}
		return errors.NewDatabaseError("failed to open session", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewConflictError("device already has an active session", nil)
	}
	return nil
}

// Close stamps end_time and the final duration on the active session in
// place. It never creates a record; an earlier variant of this system
// inserted a fresh row on disconnect and corrupted the hour totals.
func (r *SessionRepo) Close(ctx context.Context, deviceID string, endTime time.Time) (*models.Session, error) {
	session := &models.Session{}
	query := `
		UPDATE sessions SET
			end_time = $2,
			duration_seconds = GREATEST(EXTRACT(EPOCH FROM ($2 - start_time)), 0)
		WHERE device_id = $1 AND end_time IS NULL
		RETURNING id, device_id, start_time, end_time, duration_seconds, total_drowsy_events, created_at`

	err := r.db.GetDB().GetContext(ctx, session, query, deviceID, endTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no active session for device", err)
		}
		return nil, errors.NewDatabaseError("failed to close session", err)
	}
	return session, nil
}

func (r *SessionRepo) GetActive(ctx context.Context, deviceID string) (*models.Session, error) {
	session := &models.Session{}
	query := `SELECT * FROM sessions WHERE device_id = $1 AND end_time IS NULL`

	err := r.db.GetDB().GetContext(ctx, session, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no active session for device", err)
		}
		return nil, errors.NewDatabaseError("failed to get active session", err)
	}
	return session, nil
}

func (r *SessionRepo) IncrementDrowsyCount(ctx context.Context, sessionID string) error {
	query := `UPDATE sessions SET total_drowsy_events = total_drowsy_events + 1 WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, sessionID)
	if err != nil {
		return errors.NewDatabaseError("failed to increment drowsy count", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("session not found", nil)
	}
	return nil
}

func (r *SessionRepo) ListByDevice(ctx context.Context, deviceID string, limit int) ([]*models.Session, error) {
	sessions := []*models.Session{}
	query := `SELECT * FROM sessions WHERE device_id = $1 ORDER BY start_time DESC`

	var err error
	if limit > 0 {
		err = r.db.GetDB().SelectContext(ctx, &sessions, query+` LIMIT $2`, deviceID, limit)
	} else {
		err = r.db.GetDB().SelectContext(ctx, &sessions, query, deviceID)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list sessions", err)
	}
	return sessions, nil
}

func (r *SessionRepo) DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error {
	query := `DELETE FROM sessions WHERE device_id = $1`

	if _, err := tx.ExecContext(ctx, query, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete sessions", err)
	}
	return nil
}
