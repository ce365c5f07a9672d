// Package synclog provides the PostgreSQL repository of per-envelope sync
// log entries used for status and history queries.
package synclog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secrimpo/internal/common"
	"github.com/dmitrijs2005/secrimpo/internal/dbx"
	"github.com/dmitrijs2005/secrimpo/internal/server/models"
)

const selectColumns = `id, usuario, client_uuid, timestamp, total_registros, registros_novos, registros_duplicados, status, detalhes`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLog(s scanner) (models.SyncLog, error) {
	var l models.SyncLog
	err := s.Scan(&l.ID, &l.User, &l.ClientUUID, &l.Timestamp, &l.Total, &l.New, &l.Duplicate, &l.Status, &l.Details)
	return l, err
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.SyncLog) error {
	query :=
		`INSERT INTO sync_log (usuario, client_uuid, total_registros, registros_novos, registros_duplicados, status, detalhes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, timestamp`

	err := r.db.QueryRowContext(ctx, query,
		l.User, l.ClientUUID, l.Total, l.New, l.Duplicate, l.Status, l.Details).Scan(&l.ID, &l.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Last(ctx context.Context, user string) (*models.SyncLog, error) {
	query := `SELECT ` + selectColumns + ` FROM sync_log WHERE usuario = $1 ORDER BY timestamp DESC, id DESC LIMIT 1`

	l, err := scanLog(r.db.QueryRowContext(ctx, query, user))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &l, nil
}

func (r *PostgresRepository) Count(ctx context.Context, user string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_log WHERE usuario = $1`, user).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) List(ctx context.Context, user string, limit int) ([]models.SyncLog, error) {
	query := `SELECT ` + selectColumns + ` FROM sync_log WHERE usuario = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, user, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync log: %w", err)
	}
	defer rows.Close()

	result := []models.SyncLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
