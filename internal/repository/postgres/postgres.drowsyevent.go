// FilePath: internal/repository/postgres/postgres.drowsyevent.go
package postgres

import (
	"context"
	"time"

	"github.com/helmsense/hub/internal/database"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
)

type DrowsyEventRepo struct {
	PostgresBaseRepo
}

func NewDrowsyEventRepository(db database.DB) (*DrowsyEventRepo, error) {
	repo := &DrowsyEventRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *DrowsyEventRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS drowsy_events (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			pitch DOUBLE PRECISION NOT NULL,
			temperature DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drowsy_events_device_timestamp
			ON drowsy_events(device_id, timestamp DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize drowsy_events schema", err)
		}
	}
	return nil
}

func (r *DrowsyEventRepo) Create(ctx context.Context, event *models.DrowsyEvent) error {
	query := `
		INSERT INTO drowsy_events (id, device_id, timestamp, pitch, temperature)
		VALUES (:id, :device_id, :timestamp, :pitch, :temperature)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, event)
	if err != nil {
		return errors.NewDatabaseError("failed to create drowsy event", err)
	}
	return nil
}

func (r *DrowsyEventRepo) ListRecent(ctx context.Context, deviceID string, limit int) ([]*models.DrowsyEvent, error) {
	events := []*models.DrowsyEvent{}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT * FROM drowsy_events
		WHERE device_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	err := r.db.GetDB().SelectContext(ctx, &events, query, deviceID, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list drowsy events", err)
	}
	return events, nil
}

func (r *DrowsyEventRepo) CountSince(ctx context.Context, deviceID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM drowsy_events WHERE device_id = $1 AND timestamp >= $2`

	err := r.db.GetDB().GetContext(ctx, &count, query, deviceID, since)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count drowsy events", err)
	}
	return count, nil
}

func (r *DrowsyEventRepo) DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error {
	query := `DELETE FROM drowsy_events WHERE device_id = $1`

	if _, err := tx.ExecContext(ctx, query, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete drowsy events", err)
	}
	return nil
}
