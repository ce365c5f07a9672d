// Package identity provides the durable unique identifier of this client
// installation and the generator used for local record identifiers.
package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/secrimpo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/secrimpo/internal/logging"
)

// NewID returns a random version 4 UUID in canonical form.
func NewID() string {
	return uuid.NewString()
}

// Identity resolves the installation identifier. The first call to Get reads
// it from metadata or creates and stores a new one; later calls return the
// cached value.
type Identity struct {
	repo   metadata.Repository
	logger logging.Logger

	mu sync.Mutex
	id string
}

func New(repo metadata.Repository, logger logging.Logger) *Identity {
	return &Identity{repo: repo, logger: logger}
}

// Get never fails. If the stored value cannot be read or a new value cannot
// be written, the problem is logged and an in-memory identifier is used for
// the rest of the process lifetime.
func (i *Identity) Get(ctx context.Context) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.id != "" {
		return i.id
	}

	stored, ok, err := metadata.GetString(ctx, i.repo, metadata.KeyClientID)
	if err != nil {
		i.logger.Warn(ctx, "failed to read client id, using a session id", "error", err)
		i.id = NewID()
		return i.id
	}

	if ok {
		if validID(stored) {
			i.id = stored
			return i.id
		}
		i.logger.Warn(ctx, "stored client id is malformed, replacing it", "value", stored)
	}

	i.id = NewID()
	if err := metadata.SetString(ctx, i.repo, metadata.KeyClientID, i.id); err != nil {
		i.logger.Warn(ctx, "failed to persist client id, it will change on restart", "error", err)
	} else {
		i.logger.Info(ctx, "created client id", "client_uuid", i.id)
	}

	return i.id
}

// validID reports whether s is a canonical lowercase version 4 UUID, the only
// form envelopes accept.
func validID(s string) bool {
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122 && u.String() == s
}
