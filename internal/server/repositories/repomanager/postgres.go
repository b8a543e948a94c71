// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/melitton/internal/dbx"
	"github.com/dmitrijs2005/melitton/internal/server/migrations"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/baits"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/boxes"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/boxlogs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Boxes(db dbx.DBTX) boxes.Repository {
	return boxes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) BoxLogs(db dbx.DBTX) boxlogs.Repository {
	return boxlogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Baits(db dbx.DBTX) baits.Repository {
	return baits.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
