package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/client/client"
	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
	"github.com/dmitrijs2005/secrimpo/internal/timex"
)

type fakeCollector struct {
	mu        sync.Mutex
	personnel []models.Personnel
	owners    []models.Owner
	incidents []models.Incident
	listErr   error
	assignErr error
	assigned  map[syncapi.Category]map[int64]string
}

func newFakeCollector() *fakeCollector {
	return &fakeCollector{assigned: map[syncapi.Category]map[int64]string{
		syncapi.CategoryPersonnel: {},
		syncapi.CategoryOwners:    {},
		syncapi.CategoryIncidents: {},
	}}
}

func (f *fakeCollector) ListPersonnel(context.Context) ([]models.Personnel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := append([]models.Personnel(nil), f.personnel...)
	for n := range out {
		if id, ok := f.assigned[syncapi.CategoryPersonnel][out[n].LocalKey]; ok {
			out[n].RecordID = id
		}
	}
	return out, nil
}

func (f *fakeCollector) ListOwners(context.Context) ([]models.Owner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.Owner(nil), f.owners...)
	for n := range out {
		if id, ok := f.assigned[syncapi.CategoryOwners][out[n].LocalKey]; ok {
			out[n].RecordID = id
		}
	}
	return out, nil
}

func (f *fakeCollector) ListIncidentsWithItems(context.Context) ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Incident, len(f.incidents))
	for n, inc := range f.incidents {
		inc.Items = append([]models.Item(nil), inc.Items...)
		if id, ok := f.assigned[syncapi.CategoryIncidents][inc.LocalKey]; ok {
			inc.RecordID = id
		}
		if id, ok := f.assigned[syncapi.CategoryPersonnel][inc.Officer.LocalKey]; ok {
			inc.Officer.RecordID = id
		}
		for i := range inc.Items {
			if id, ok := f.assigned[syncapi.CategoryOwners][inc.Items[i].Owner.LocalKey]; ok {
				inc.Items[i].Owner.RecordID = id
			}
		}
		out[n] = inc
	}
	return out, nil
}

func (f *fakeCollector) AssignRecordID(_ context.Context, category syncapi.Category, localKey int64, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	if _, ok := f.assigned[category][localKey]; !ok {
		f.assigned[category][localKey] = recordID
	}
	return nil
}

// ledgerClient classifies records the way the server does: an identifier
// seen before is a duplicate.
type ledgerClient struct {
	mu       sync.Mutex
	ledger   map[string]bool
	calls    int
	envs     []*syncapi.Envelope
	err      error
	reject   bool
	errors   []string
	block    chan struct{}
	entered  chan struct{}
	history  []syncapi.HistoryEntry
	status   *syncapi.Status
	gotLimit int
}

func newLedgerClient() *ledgerClient {
	return &ledgerClient{ledger: map[string]bool{}}
}

func (c *ledgerClient) Ping(context.Context) error { return nil }
func (c *ledgerClient) Close() error              { return nil }

func (c *ledgerClient) Sync(ctx context.Context, env *syncapi.Envelope) (*syncapi.Response, error) {
	if c.entered != nil {
		c.entered <- struct{}{}
	}
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", client.ErrUnavailable, ctx.Err())
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.envs = append(c.envs, env)
	if c.err != nil {
		return nil, c.err
	}
	if c.reject {
		return &syncapi.Response{Success: false, Errors: c.errors}, nil
	}

	summary := map[syncapi.Category]syncapi.CategorySummary{}
	classify := func(cat syncapi.Category, id string) {
		s := summary[cat]
		key := string(cat) + "/" + id
		if c.ledger[key] {
			s.Duplicate++
		} else {
			c.ledger[key] = true
			s.New++
		}
		summary[cat] = s
	}
	for _, p := range env.Data.Personnel {
		classify(syncapi.CategoryPersonnel, p.RecordID)
	}
	for _, o := range env.Data.Owners {
		classify(syncapi.CategoryOwners, o.RecordID)
	}
	for _, i := range env.Data.Incidents {
		classify(syncapi.CategoryIncidents, i.RecordID)
	}

	return &syncapi.Response{
		Success:         true,
		User:            env.User,
		ServerTimestamp: timex.Time{Time: time.Now().UTC()},
		Summary:         summary,
		Errors:          c.errors,
		SyncID:          int64(c.calls),
	}, nil
}

func (c *ledgerClient) Status(_ context.Context, user string) (*syncapi.Status, error) {
	if c.status != nil {
		return c.status, nil
	}
	return &syncapi.Status{User: user, LastSyncStatus: syncapi.StatusNever}, nil
}

func (c *ledgerClient) History(_ context.Context, _ string, limit int) ([]syncapi.HistoryEntry, error) {
	c.gotLimit = limit
	return c.history, nil
}

type fakeMonitor struct{ online bool }

func (m *fakeMonitor) IsOnline() bool { return m.online }

type fakeIdentity struct{ id string }

func (f fakeIdentity) Get(context.Context) string { return f.id }

type fakeState struct {
	mu       sync.Mutex
	user     string
	lastSync time.Time
	sets     int
}

func (s *fakeState) User(context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *fakeState) LastSync(context.Context) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync, !s.lastSync.IsZero()
}

func (s *fakeState) SetLastSync(_ context.Context, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSync = ts
	s.sets++
}

func (s *fakeState) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func (s *fakeState) NeedsSync(_ context.Context, now time.Time, maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync.IsZero() || now.Sub(s.lastSync) > maxAge
}

type fakePublisher struct {
	published []models.SyncResult
}

func (p *fakePublisher) Summarize(r models.SyncResult) string {
	if r.NothingToSync {
		return "nothing"
	}
	return fmt.Sprintf("%d", r.Totals().Total())
}

func (p *fakePublisher) Publish(r models.SyncResult) { p.published = append(p.published, r) }
