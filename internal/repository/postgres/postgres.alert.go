// FilePath: internal/repository/postgres/postgres.alert.go
package postgres

import (
	"context"

	"github.com/helmsense/hub/internal/database"
	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/models"
)

type AlertRepo struct {
	PostgresBaseRepo
}

func NewAlertRepository(db database.DB) (*AlertRepo, error) {
	repo := &AlertRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *AlertRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			type TEXT NOT NULL,
			message TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			acknowledged BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_device_timestamp
			ON alerts(device_id, timestamp DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize alerts schema", err)
		}
	}
	return nil
}

func (r *AlertRepo) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (id, device_id, type, message, timestamp, acknowledged)
		VALUES (:id, :device_id, :type, :message, :timestamp, :acknowledged)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, alert)
	if err != nil {
		return errors.NewDatabaseError("failed to create alert", err)
	}
	return nil
}

func (r *AlertRepo) ListRecent(ctx context.Context, deviceID string, filters models.AlertFilters) ([]*models.Alert, error) {
	alerts := []*models.Alert{}
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `SELECT * FROM alerts WHERE device_id = $1`
	if filters.Unacknowledged {
		query += ` AND acknowledged = FALSE`
	}
	query += ` ORDER BY timestamp DESC LIMIT $2`

	err := r.db.GetDB().SelectContext(ctx, &alerts, query, deviceID, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list alerts", err)
	}
	return alerts, nil
}

// Acknowledge is the only mutation an alert record supports.
func (r *AlertRepo) Acknowledge(ctx context.Context, id string) error {
	query := `UPDATE alerts SET acknowledged = TRUE WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to acknowledge alert", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("alert not found", nil)
	}
	return nil
}

func (r *AlertRepo) DeleteByDevice(ctx context.Context, deviceID string, tx database.Transaction) error {
	query := `DELETE FROM alerts WHERE device_id = $1`

	if _, err := tx.ExecContext(ctx, query, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete alerts", err)
	}
	return nil
}
