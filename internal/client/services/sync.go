// Package services contains the application services of the SECRIMPO
// client. SyncService runs the offline-first synchronization protocol:
// collect every local record, send them to the server in one envelope, and
// apply the server's classification locally.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/client/client"
	"github.com/dmitrijs2005/secrimpo/internal/client/identity"
	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/client/repositories/records"
	"github.com/dmitrijs2005/secrimpo/internal/logging"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

const DefaultSyncTimeout = 60 * time.Second

var (
	ErrOffline        = errors.New("offline")
	ErrNoUser         = errors.New("sync user not set")
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrRejected       = errors.New("sync rejected by server")
	ErrMissingDep     = errors.New("missing dependency")
)

// OnlineChecker reports the cached connectivity state.
type OnlineChecker interface {
	IsOnline() bool
}

// IdentitySource yields the installation identifier.
type IdentitySource interface {
	Get(ctx context.Context) string
}

// SyncState persists the sync user and the last successful sync time.
type SyncState interface {
	User(ctx context.Context) string
	LastSync(ctx context.Context) (time.Time, bool)
	SetLastSync(ctx context.Context, ts time.Time)
	NeedsSync(ctx context.Context, now time.Time, maxAge time.Duration) bool
}

// Publisher formats and distributes completed results.
type Publisher interface {
	Summarize(result models.SyncResult) string
	Publish(result models.SyncResult)
}

// Deps are the collaborators of SyncService. Collector, Client, Monitor,
// Identity and State are required.
type Deps struct {
	Collector records.Collector
	Client    client.Client
	Monitor   OnlineChecker
	Identity  IdentitySource
	State     SyncState
	Publisher Publisher
	Logger    logging.Logger

	// Timeout bounds the network exchange. Zero means DefaultSyncTimeout.
	Timeout time.Duration

	NewID func() string
	Now   func() time.Time
}

type SyncService struct {
	collector records.Collector
	client    client.Client
	monitor   OnlineChecker
	identity  IdentitySource
	state     SyncState
	publisher Publisher
	logger    logging.Logger
	timeout   time.Duration
	newID     func() string
	now       func() time.Time

	inFlight atomic.Bool
	phase    atomic.Int32
}

func NewSyncService(d Deps) (*SyncService, error) {
	switch {
	case d.Collector == nil:
		return nil, fmt.Errorf("%w: collector", ErrMissingDep)
	case d.Client == nil:
		return nil, fmt.Errorf("%w: client", ErrMissingDep)
	case d.Monitor == nil:
		return nil, fmt.Errorf("%w: connectivity monitor", ErrMissingDep)
	case d.Identity == nil:
		return nil, fmt.Errorf("%w: identity", ErrMissingDep)
	case d.State == nil:
		return nil, fmt.Errorf("%w: state", ErrMissingDep)
	}

	s := &SyncService{
		collector: d.Collector,
		client:    d.Client,
		monitor:   d.Monitor,
		identity:  d.Identity,
		state:     d.State,
		publisher: d.Publisher,
		logger:    d.Logger,
		timeout:   d.Timeout,
		newID:     d.NewID,
		now:       d.Now,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultSyncTimeout
	}
	if s.newID == nil {
		s.newID = identity.NewID
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Phase returns the current state of the sync state machine.
func (s *SyncService) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *SyncService) setPhase(ctx context.Context, p Phase) {
	if old := Phase(s.phase.Swap(int32(p))); old != p {
		s.logger.Debug(ctx, "sync phase", "from", old.String(), "to", p.String())
	}
}

// Sync runs one attempt. Only one attempt may be unresolved at a time; a
// concurrent call fails with ErrSyncInProgress. Preconditions are checked in
// order (online, then sync user) before anything is read or sent.
//
// On a successful exchange the last sync time is set to the start of the
// attempt and every identifier minted for a sent record is written back,
// whether the server classified the record as new or duplicate.
func (s *SyncService) Sync(ctx context.Context) (*models.SyncResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	if !s.monitor.IsOnline() {
		return nil, ErrOffline
	}
	user := s.state.User(ctx)
	if user == "" {
		return nil, ErrNoUser
	}

	started := s.now().UTC()
	log := s.logger.With("user", user)

	s.setPhase(ctx, PhaseCollecting)
	b, err := s.collect(ctx)
	if err != nil {
		s.setPhase(ctx, PhaseFailed)
		log.Error(ctx, "failed to collect local records", "error", err)
		return nil, fmt.Errorf("collect local records: %w", err)
	}

	if b.total == 0 {
		result := models.SyncResult{Success: true, NothingToSync: true}
		s.finish(ctx, &result)
		log.Info(ctx, "nothing to sync")
		return &result, nil
	}

	if b.data.Len() == 0 {
		result := models.SyncResult{Errors: b.errors}
		s.finish(ctx, &result)
		log.Warn(ctx, "no valid records to sync", "invalid", len(b.errors))
		return &result, nil
	}

	env, err := syncapi.NewEnvelope(user, s.identity.Get(ctx), started, b.data)
	if err != nil {
		s.setPhase(ctx, PhaseFailed)
		return nil, err
	}

	s.setPhase(ctx, PhaseSending)
	resp, err := s.send(ctx, env)
	if err != nil {
		s.setPhase(ctx, PhaseFailed)
		log.Error(ctx, "sync failed", "error", err)
		return nil, err
	}

	s.setPhase(ctx, PhaseApplying)
	result := toResult(resp)
	result.Errors = append(b.errors, result.Errors...)

	s.state.SetLastSync(ctx, started)
	for _, m := range b.minted {
		if err := s.collector.AssignRecordID(ctx, m.category, m.localKey, m.id); err != nil {
			log.Warn(ctx, "failed to store record id", "category", string(m.category), "local_key", m.localKey, "error", err)
		}
	}

	s.finish(ctx, &result)
	totals := result.Totals()
	log.Info(ctx, "sync complete", "sync_id", result.SyncID, "new", totals.New, "duplicate", totals.Duplicate, "errors", len(result.Errors))
	for _, d := range result.Details {
		log.Debug(ctx, "sync detail", "detail", d)
	}
	return &result, nil
}

func (s *SyncService) send(ctx context.Context, env *syncapi.Envelope) (*syncapi.Response, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Sync(sctx, env)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if len(resp.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrRejected, strings.Join(resp.Errors, "; "))
		}
		return nil, ErrRejected
	}
	return resp, nil
}

func (s *SyncService) finish(ctx context.Context, result *models.SyncResult) {
	if s.publisher != nil {
		result.Summary = s.publisher.Summarize(*result)
		s.publisher.Publish(*result)
	}
	s.setPhase(ctx, PhaseIdle)
}

func toResult(resp *syncapi.Response) models.SyncResult {
	counts := func(c syncapi.Category) models.CategoryCounts {
		sum := resp.Summary[c]
		return models.CategoryCounts{New: sum.New, Duplicate: sum.Duplicate}
	}
	return models.SyncResult{
		Success:    resp.Success,
		Personnel:  counts(syncapi.CategoryPersonnel),
		Owners:     counts(syncapi.CategoryOwners),
		Incidents:  counts(syncapi.CategoryIncidents),
		Errors:     resp.Errors,
		Details:    resp.Details,
		SyncID:     resp.SyncID,
		ServerTime: resp.ServerTimestamp.Time,
	}
}

// Status asks the server for the sync user's status.
func (s *SyncService) Status(ctx context.Context) (*syncapi.Status, error) {
	user, err := s.remotePreconditions(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Status(ctx, user)
}

// History returns up to limit server log entries for the sync user, newest
// first. A non-positive limit lets the server pick its default.
func (s *SyncService) History(ctx context.Context, limit int) ([]syncapi.HistoryEntry, error) {
	user, err := s.remotePreconditions(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.History(ctx, user, limit)
}

func (s *SyncService) remotePreconditions(ctx context.Context) (string, error) {
	if !s.monitor.IsOnline() {
		return "", ErrOffline
	}
	user := s.state.User(ctx)
	if user == "" {
		return "", ErrNoUser
	}
	return user, nil
}

func (s *SyncService) LastSync(ctx context.Context) (time.Time, bool) {
	return s.state.LastSync(ctx)
}

func (s *SyncService) NeedsSync(ctx context.Context, maxAge time.Duration) bool {
	return s.state.NeedsSync(ctx, s.now(), maxAge)
}
