// Package state keeps the operator-facing sync settings: the sync user and
// the timestamp of the last successful sync.
//
// Values are persisted in the metadata repository and mirrored in memory.
// When persistence fails the in-memory value still applies for the current
// process, and the failure is logged.
package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/secrimpo/internal/logging"
)

// DefaultMaxAge is how old the last sync may be before NeedsSync reports true.
const DefaultMaxAge = 24 * time.Hour

var ErrEmptyUser = errors.New("sync user must not be empty")

type Store struct {
	repo   metadata.Repository
	logger logging.Logger

	mu       sync.Mutex
	loaded   bool
	user     string
	lastSync time.Time
}

func NewStore(repo metadata.Repository, logger logging.Logger) *Store {
	return &Store{repo: repo, logger: logger}
}

func (s *Store) load(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	user, ok, err := metadata.GetString(ctx, s.repo, metadata.KeySyncUser)
	if err != nil {
		s.logger.Warn(ctx, "failed to read sync user", "error", err)
	} else if ok {
		s.user = user
	}

	raw, ok, err := metadata.GetString(ctx, s.repo, metadata.KeyLastSync)
	if err != nil {
		s.logger.Warn(ctx, "failed to read last sync time", "error", err)
		return
	}
	if !ok {
		return
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		s.logger.Warn(ctx, "stored last sync time is malformed", "value", raw, "error", err)
		return
	}
	s.lastSync = ts
}

// User returns the configured sync user, or "" if none was set.
func (s *Store) User(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return s.user
}

// SetUser trims and stores the sync user. An empty name is rejected.
func (s *Store) SetUser(ctx context.Context, user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return ErrEmptyUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	s.user = user

	if err := metadata.SetString(ctx, s.repo, metadata.KeySyncUser, user); err != nil {
		s.logger.Warn(ctx, "failed to persist sync user", "error", err)
	}
	return nil
}

// LastSync returns the time of the last successful sync. ok is false if the
// client never synced.
func (s *Store) LastSync(ctx context.Context) (ts time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return s.lastSync, !s.lastSync.IsZero()
}

func (s *Store) SetLastSync(ctx context.Context, ts time.Time) {
	ts = ts.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	s.lastSync = ts

	if err := metadata.SetString(ctx, s.repo, metadata.KeyLastSync, ts.Format(time.RFC3339Nano)); err != nil {
		s.logger.Warn(ctx, "failed to persist last sync time", "error", err)
	}
}

// NeedsSync reports whether the client never synced or the last sync is
// older than maxAge. A non-positive maxAge uses DefaultMaxAge.
func (s *Store) NeedsSync(ctx context.Context, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	last, ok := s.LastSync(ctx)
	if !ok {
		return true
	}
	return now.Sub(last) > maxAge
}
