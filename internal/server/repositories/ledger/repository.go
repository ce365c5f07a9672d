package ledger

import (
	"context"

	"github.com/dmitrijs2005/secrimpo/internal/server/models"
)

// Repository is the dedup ledger of records already accepted by the server.
type Repository interface {
	// Lock serializes envelope processing for the enclosing transaction.
	Lock(ctx context.Context) error
	IsSynced(ctx context.Context, kind, recordID string) (bool, error)
	// MarkSynced returns common.ErrAlreadyExists if the pair is already in
	// the ledger.
	MarkSynced(ctx context.Context, rec *models.SyncedRecord) error
	CountByUser(ctx context.Context, user string) (int, error)
}
