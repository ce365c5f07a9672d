// Package records provides the PostgreSQL repository for officers, owners,
// incidents and seized items on the sync server.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/common"
	"github.com/dmitrijs2005/secrimpo/internal/dbx"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) findID(ctx context.Context, query string, key string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, query, key).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) FindPersonnel(ctx context.Context, registration string) (int64, error) {
	return r.findID(ctx, `SELECT id FROM policial WHERE matricula = $1`, registration)
}

func (r *PostgresRepository) CreatePersonnel(ctx context.Context, p syncapi.Personnel) (int64, error) {
	query :=
		`INSERT INTO policial (nome, matricula, graduacao, unidade)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`
	return r.insertID(ctx, query, p.Name, p.RegistrationNumber, p.Rank, p.Unit)
}

func (r *PostgresRepository) FindOwner(ctx context.Context, document string) (int64, error) {
	return r.findID(ctx, `SELECT id FROM proprietario WHERE documento = $1`, document)
}

func (r *PostgresRepository) CreateOwner(ctx context.Context, o syncapi.Owner) (int64, error) {
	query :=
		`INSERT INTO proprietario (nome, documento)
		 VALUES ($1, $2)
		 RETURNING id`
	return r.insertID(ctx, query, o.Name, o.Document)
}

func (r *PostgresRepository) FindIncident(ctx context.Context, genesisNumber string) (int64, error) {
	return r.findID(ctx, `SELECT id FROM ocorrencia WHERE numero_genesis = $1`, genesisNumber)
}

func (r *PostgresRepository) CreateIncident(ctx context.Context, inc syncapi.Incident, seizureDate time.Time, officerID int64) (int64, error) {
	query :=
		`INSERT INTO ocorrencia (numero_genesis, unidade_fato, data_apreensao, lei_infringida, artigo, policial_condutor_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`
	return r.insertID(ctx, query, inc.GenesisNumber, inc.Unit, seizureDate, inc.Law, inc.Article, officerID)
}

func (r *PostgresRepository) CreateItem(ctx context.Context, incidentID, ownerID, officerID int64, it syncapi.Item) error {
	query :=
		`INSERT INTO item_apreendido (especie, item, quantidade, descricao_detalhada, ocorrencia_id, proprietario_id, policial_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, it.Species, it.Name, it.Quantity, it.Description, incidentID, ownerID, officerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
