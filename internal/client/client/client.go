package client

import (
	"context"

	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

type Client interface {
	// Ping succeeds when the server answers the probe with any 2xx status.
	Ping(ctx context.Context) error
	Sync(ctx context.Context, env *syncapi.Envelope) (*syncapi.Response, error)
	Status(ctx context.Context, user string) (*syncapi.Status, error)
	History(ctx context.Context, user string, limit int) ([]syncapi.HistoryEntry, error)
	Close() error
}
