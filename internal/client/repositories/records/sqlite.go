package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/common"
	"github.com/dmitrijs2005/secrimpo/internal/dbx"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

var ErrUnknownCategory = errors.New("unknown record category")

var tables = map[syncapi.Category]string{
	syncapi.CategoryPersonnel: "policial",
	syncapi.CategoryOwners:    "proprietario",
	syncapi.CategoryIncidents: "ocorrencia",
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) AddPersonnel(ctx context.Context, p *models.Personnel) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO policial (nome, matricula, graduacao, unidade, uuid_local) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.RegistrationNumber, p.Rank, p.Unit, p.RecordID)
	if err != nil {
		return mapError(fmt.Errorf("failed to insert personnel: %w", err))
	}

	p.LocalKey, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get personnel id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddOwner(ctx context.Context, o *models.Owner) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO proprietario (nome, documento, uuid_local) VALUES (?, ?, ?)`,
		o.Name, o.Document, o.RecordID)
	if err != nil {
		return mapError(fmt.Errorf("failed to insert owner: %w", err))
	}

	o.LocalKey, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get owner id: %w", err)
	}
	return nil
}

// AddIncident stores the incident and its items in one transaction. The
// officer and every item owner must already exist locally.
func (r *SQLiteRepository) AddIncident(ctx context.Context, inc *models.Incident) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := exists(ctx, tx, "policial", inc.Officer.LocalKey); err != nil {
			return fmt.Errorf("officer %d: %w", inc.Officer.LocalKey, err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO ocorrencia (numero_genesis, unidade_fato, data_apreensao, lei_infringida, artigo, policial_condutor_id, uuid_local)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			inc.GenesisNumber, inc.Unit, inc.SeizureDate.Format(models.DateLayout), inc.Law, inc.Article,
			inc.Officer.LocalKey, inc.RecordID)
		if err != nil {
			return fmt.Errorf("failed to insert incident: %w", err)
		}

		inc.LocalKey, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get incident id: %w", err)
		}

		for n := range inc.Items {
			it := &inc.Items[n]
			if err := exists(ctx, tx, "proprietario", it.Owner.LocalKey); err != nil {
				return fmt.Errorf("owner %d: %w", it.Owner.LocalKey, err)
			}

			res, err := tx.ExecContext(ctx, `
				INSERT INTO item_apreendido (ocorrencia_id, especie, item, quantidade, descricao_detalhada, proprietario_id)
				VALUES (?, ?, ?, ?, ?, ?)`,
				inc.LocalKey, it.Species, it.Name, it.Quantity, it.Description, it.Owner.LocalKey)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}
			it.LocalKey, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get item id: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) ListPersonnel(ctx context.Context) ([]models.Personnel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, uuid_local, nome, matricula, graduacao, unidade FROM policial ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select personnel: %w", err)
	}
	defer rows.Close()

	var result []models.Personnel
	for rows.Next() {
		var p models.Personnel
		if err := rows.Scan(&p.LocalKey, &p.RecordID, &p.Name, &p.RegistrationNumber, &p.Rank, &p.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan personnel: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personnel: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ListOwners(ctx context.Context) ([]models.Owner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, uuid_local, nome, documento FROM proprietario ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select owners: %w", err)
	}
	defer rows.Close()

	var result []models.Owner
	for rows.Next() {
		var o models.Owner
		if err := rows.Scan(&o.LocalKey, &o.RecordID, &o.Name, &o.Document); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owners: %w", err)
	}
	return result, nil
}

// ListIncidentsWithItems loads incidents with their officer, then attaches
// items with their owners. The two queries run one after the other so the
// first result set is closed before the second opens.
func (r *SQLiteRepository) ListIncidentsWithItems(ctx context.Context) ([]models.Incident, error) {
	incidents, err := r.listIncidents(ctx)
	if err != nil {
		return nil, err
	}
	if len(incidents) == 0 {
		return incidents, nil
	}

	byKey := make(map[int64]int, len(incidents))
	for n, inc := range incidents {
		byKey[inc.LocalKey] = n
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.ocorrencia_id, i.especie, i.item, i.quantidade, i.descricao_detalhada,
		       p.id, p.uuid_local, p.nome, p.documento
		FROM item_apreendido i
		JOIN proprietario p ON p.id = i.proprietario_id
		ORDER BY i.ocorrencia_id, i.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.Item
		var incidentKey int64
		if err := rows.Scan(&it.LocalKey, &incidentKey, &it.Species, &it.Name, &it.Quantity, &it.Description,
			&it.Owner.LocalKey, &it.Owner.RecordID, &it.Owner.Name, &it.Owner.Document); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if n, ok := byKey[incidentKey]; ok {
			incidents[n].Items = append(incidents[n].Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return incidents, nil
}

func (r *SQLiteRepository) listIncidents(ctx context.Context) ([]models.Incident, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.uuid_local, o.numero_genesis, o.unidade_fato, o.data_apreensao, o.lei_infringida, o.artigo,
		       p.id, p.uuid_local, p.nome, p.matricula, p.graduacao, p.unidade
		FROM ocorrencia o
		JOIN policial p ON p.id = o.policial_condutor_id
		ORDER BY o.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select incidents: %w", err)
	}
	defer rows.Close()

	var result []models.Incident
	for rows.Next() {
		var inc models.Incident
		var date string
		if err := rows.Scan(&inc.LocalKey, &inc.RecordID, &inc.GenesisNumber, &inc.Unit, &date, &inc.Law, &inc.Article,
			&inc.Officer.LocalKey, &inc.Officer.RecordID, &inc.Officer.Name, &inc.Officer.RegistrationNumber,
			&inc.Officer.Rank, &inc.Officer.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		inc.SeizureDate, err = time.Parse(models.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("incident %d has invalid date %q: %w", inc.LocalKey, date, err)
		}
		result = append(result, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) AssignRecordID(ctx context.Context, category syncapi.Category, localKey int64, recordID string) error {
	table, ok := tables[category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	query := fmt.Sprintf(`UPDATE %s SET uuid_local = ? WHERE id = ? AND uuid_local = ''`, table)
	if _, err := r.db.ExecContext(ctx, query, recordID, localKey); err != nil {
		return fmt.Errorf("failed to assign record id to %s %d: %w", table, localKey, err)
	}
	return nil
}

func exists(ctx context.Context, db dbx.DBTX, table string, id int64) error {
	var n int
	err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, table), id).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", table, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %w", common.ErrAlreadyExists, err)
	}
	return err
}
