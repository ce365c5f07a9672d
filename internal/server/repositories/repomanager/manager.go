package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secrimpo/internal/dbx"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/records"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/synclog"
)

// RepositoryManager vends repositories bound to a DBTX so services can run
// them inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Records(db dbx.DBTX) records.Repository
	Ledger(db dbx.DBTX) ledger.Repository
	SyncLog(db dbx.DBTX) synclog.Repository
}
