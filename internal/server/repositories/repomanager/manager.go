package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/melitton/internal/dbx"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/baits"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/boxes"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/boxlogs"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repositories against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Boxes(db dbx.DBTX) boxes.Repository
	BoxLogs(db dbx.DBTX) boxlogs.Repository
	Baits(db dbx.DBTX) baits.Repository
}
