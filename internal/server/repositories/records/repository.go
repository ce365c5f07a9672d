package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

// Repository stores the central business rows. Find methods return
// common.ErrNotFound when no row matches the natural key.
type Repository interface {
	FindPersonnel(ctx context.Context, registration string) (int64, error)
	CreatePersonnel(ctx context.Context, p syncapi.Personnel) (int64, error)
	FindOwner(ctx context.Context, document string) (int64, error)
	CreateOwner(ctx context.Context, o syncapi.Owner) (int64, error)
	FindIncident(ctx context.Context, genesisNumber string) (int64, error)
	CreateIncident(ctx context.Context, inc syncapi.Incident, seizureDate time.Time, officerID int64) (int64, error)
	CreateItem(ctx context.Context, incidentID, ownerID, officerID int64, it syncapi.Item) error
}
