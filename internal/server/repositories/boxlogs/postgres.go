// Package boxlogs provides the PostgreSQL repository for management logs.
package boxlogs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/melitton/internal/dbx"
	"github.com/dmitrijs2005/melitton/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListAll(ctx context.Context) (map[string][]models.ManagementLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, box_id, date, type, notes, quantity, photo
		FROM management_logs
		ORDER BY box_id, date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select logs: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.ManagementLog)
	for rows.Next() {
		var (
			l               models.ManagementLog
			boxID           string
			date            time.Time
			quantity, photo sql.NullString
		)
		if err := rows.Scan(&l.ID, &boxID, &date, &l.Type, &l.Notes, &quantity, &photo); err != nil {
			return nil, err
		}
		l.Date = models.FormatDate(date)
		l.Quantity = quantity.String
		l.Photo = photo.String
		result[boxID] = append(result[boxID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, boxID string, log *models.ManagementLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO management_logs (id, box_id, date, type, notes, quantity, photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, boxID, log.Date, log.Type, log.Notes,
		sql.NullString{String: log.Quantity, Valid: log.Quantity != ""},
		sql.NullString{String: log.Photo, Valid: log.Photo != ""})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
