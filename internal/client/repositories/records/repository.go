package records

import (
	"context"

	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

// Collector enumerates local records for sync and persists minted
// identifiers.
type Collector interface {
	ListPersonnel(ctx context.Context) ([]models.Personnel, error)
	ListOwners(ctx context.Context) ([]models.Owner, error)
	ListIncidentsWithItems(ctx context.Context) ([]models.Incident, error)

	// AssignRecordID stores recordID on the record identified by category and
	// localKey, unless that record already has one.
	AssignRecordID(ctx context.Context, category syncapi.Category, localKey int64, recordID string) error
}

// Store is the full local record store.
type Store interface {
	Collector

	AddPersonnel(ctx context.Context, p *models.Personnel) error
	AddOwner(ctx context.Context, o *models.Owner) error
	AddIncident(ctx context.Context, inc *models.Incident) error
}
