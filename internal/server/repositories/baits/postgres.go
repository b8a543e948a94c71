// Package baits provides the PostgreSQL repository for bait traps.
package baits

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/dbx"
	"github.com/dmitrijs2005/melitton/internal/models"
)

const columns = `id, name, type, attractant, location, install_date, target_species, status, next_inspection_date, photo`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns every bait, most recently installed first.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Bait, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM baits ORDER BY install_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select baits: %w", err)
	}
	defer rows.Close()

	result := make([]models.Bait, 0)
	for rows.Next() {
		var (
			b                models.Bait
			location, status []byte
			install, next    time.Time
			photo            sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Type, &b.Attractant, &location, &install,
			&b.TargetSpecies, &status, &next, &photo); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(location, &b.Location); err != nil {
			return nil, fmt.Errorf("decode location of bait %s: %w", b.ID, err)
		}
		if err := json.Unmarshal(status, &b.Status); err != nil {
			return nil, fmt.Errorf("decode status of bait %s: %w", b.ID, err)
		}
		b.Status.LastInspection = models.NormalizeDate(b.Status.LastInspection)
		b.InstallDate = models.FormatDate(install)
		b.NextInspectionDate = models.FormatDate(next)
		b.Photo = photo.String
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func encode(b *models.Bait) (location, status string, err error) {
	l, err := json.Marshal(b.Location)
	if err != nil {
		return "", "", fmt.Errorf("encode location: %w", err)
	}
	s, err := json.Marshal(b.Status)
	if err != nil {
		return "", "", fmt.Errorf("encode status: %w", err)
	}
	return string(l), string(s), nil
}

func (r *PostgresRepository) Insert(ctx context.Context, bait *models.Bait) error {
	location, status, err := encode(bait)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO baits (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		bait.ID, bait.Name, bait.Type, bait.Attractant, location, bait.InstallDate,
		bait.TargetSpecies, status, bait.NextInspectionDate,
		sql.NullString{String: bait.Photo, Valid: bait.Photo != ""})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites an existing bait or returns common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, bait *models.Bait) error {
	location, status, err := encode(bait)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE baits SET name = $1, type = $2, attractant = $3, location = $4, install_date = $5,
			target_species = $6, status = $7, next_inspection_date = $8, photo = $9
		WHERE id = $10`,
		bait.Name, bait.Type, bait.Attractant, location, bait.InstallDate,
		bait.TargetSpecies, status, bait.NextInspectionDate,
		sql.NullString{String: bait.Photo, Valid: bait.Photo != ""}, bait.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM baits WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
