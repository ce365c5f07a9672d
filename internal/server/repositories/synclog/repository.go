package synclog

import (
	"context"

	"github.com/dmitrijs2005/secrimpo/internal/server/models"
)

type Repository interface {
	// Create inserts l and fills in its ID and Timestamp.
	Create(ctx context.Context, l *models.SyncLog) error
	// Last returns common.ErrNotFound when user never synced.
	Last(ctx context.Context, user string) (*models.SyncLog, error)
	Count(ctx context.Context, user string) (int, error)
	// List returns up to limit entries, newest first.
	List(ctx context.Context, user string, limit int) ([]models.SyncLog, error)
}
