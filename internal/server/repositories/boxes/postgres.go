// Package boxes provides the PostgreSQL repository for hive boxes.
package boxes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/dbx"
	"github.com/dmitrijs2005/melitton/internal/models"
)

const columns = `id, name, species, box_type, install_date, origin, location, status, photo, observations`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBox(s scanner) (models.Box, error) {
	var (
		b        models.Box
		install  time.Time
		location []byte
		photo    sql.NullString
	)
	if err := s.Scan(&b.ID, &b.Name, &b.Species, &b.BoxType, &install, &b.Origin,
		&location, &b.Status, &photo, &b.Observations); err != nil {
		return models.Box{}, err
	}
	b.InstallDate = models.FormatDate(install)
	b.Photo = photo.String
	if len(location) > 0 {
		if err := json.Unmarshal(location, &b.Location); err != nil {
			return models.Box{}, fmt.Errorf("decode location of box %s: %w", b.ID, err)
		}
	}
	return b, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// List returns every box, most recently installed first. Histories are left nil.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Box, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM boxes ORDER BY install_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select boxes: %w", err)
	}
	defer rows.Close()

	result := make([]models.Box, 0)
	for rows.Next() {
		b, err := scanBox(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns one box or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (models.Box, error) {
	b, err := scanBox(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM boxes WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Box{}, common.ErrorNotFound
	}
	if err != nil {
		return models.Box{}, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

// Insert stores box under box.ID, which the caller assigns.
func (r *PostgresRepository) Insert(ctx context.Context, box *models.Box) error {
	location, err := json.Marshal(box.Location)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO boxes (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		box.ID, box.Name, box.Species, box.BoxType, box.InstallDate, box.Origin,
		string(location), box.Status, nullable(box.Photo), box.Observations)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing box. Unknown ids yield
// common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, box *models.Box) error {
	location, err := json.Marshal(box.Location)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE boxes SET name = $1, species = $2, box_type = $3, install_date = $4, origin = $5,
			location = $6, status = $7, photo = $8, observations = $9
		WHERE id = $10`,
		box.Name, box.Species, box.BoxType, box.InstallDate, box.Origin,
		string(location), box.Status, nullable(box.Photo), box.Observations, box.ID)
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

// Delete removes a box; its logs go with it through ON DELETE CASCADE.
// Deleting an unknown id is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM boxes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
