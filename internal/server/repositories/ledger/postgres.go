// Package ledger provides the PostgreSQL dedup ledger keyed by record type
// and client-minted identifier.
package ledger

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secrimpo/internal/common"
	"github.com/dmitrijs2005/secrimpo/internal/dbx"
	"github.com/dmitrijs2005/secrimpo/internal/server/models"
)

// lockKey is the advisory lock taken by every sync transaction.
const lockKey = 0x5EC1

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Lock takes a transaction-scoped advisory lock. It only has an effect when
// the repository is bound to a *sql.Tx.
func (r *PostgresRepository) Lock(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsSynced(ctx context.Context, kind, recordID string) (bool, error) {
	query :=
		`SELECT EXISTS (
			SELECT 1 FROM registro_sincronizado WHERE tipo_registro = $1 AND uuid_local = $2
		 )`

	var found bool
	if err := r.db.QueryRowContext(ctx, query, kind, recordID).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) MarkSynced(ctx context.Context, rec *models.SyncedRecord) error {
	query :=
		`INSERT INTO registro_sincronizado (usuario, tipo_registro, uuid_local, id_central, hash_dados)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (tipo_registro, uuid_local) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, rec.User, rec.Kind, rec.RecordID, rec.CentralID, rec.Hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, user string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registro_sincronizado WHERE usuario = $1`, user).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
