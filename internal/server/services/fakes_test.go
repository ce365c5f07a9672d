package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/common"
	"github.com/dmitrijs2005/secrimpo/internal/dbx"
	"github.com/dmitrijs2005/secrimpo/internal/server/models"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/records"
	"github.com/dmitrijs2005/secrimpo/internal/server/repositories/synclog"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

// store is an in-memory stand-in for the PostgreSQL schema.
type store struct {
	mu sync.Mutex

	nextID    int64
	personnel map[string]int64
	owners    map[string]int64
	incidents map[string]int64
	items     []itemRow
	ledger    map[string]models.SyncedRecord
	logs      []models.SyncLog

	failOn string
	locks  int
}

type itemRow struct {
	incident, owner, officer int64
	item                     syncapi.Item
}

func newStore() *store {
	return &store{
		personnel: map[string]int64{},
		owners:    map[string]int64{},
		incidents: map[string]int64{},
		ledger:    map[string]models.SyncedRecord{},
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) fail(op string) error {
	if s.failOn == op {
		return errStorage
	}
	return nil
}

type fakeError string

func (e fakeError) Error() string { return string(e) }

const errStorage = fakeError("storage failure")

type fakeRecords struct{ s *store }

func (f fakeRecords) find(m map[string]int64, key, op string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail(op); err != nil {
		return 0, err
	}
	id, ok := m[key]
	if !ok {
		return 0, common.ErrNotFound
	}
	return id, nil
}

func (f fakeRecords) create(m map[string]int64, key, op string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail(op); err != nil {
		return 0, err
	}
	id := f.s.id()
	m[key] = id
	return id, nil
}

func (f fakeRecords) FindPersonnel(_ context.Context, reg string) (int64, error) {
	return f.find(f.s.personnel, reg, "FindPersonnel")
}
func (f fakeRecords) CreatePersonnel(_ context.Context, p syncapi.Personnel) (int64, error) {
	return f.create(f.s.personnel, p.RegistrationNumber, "CreatePersonnel")
}
func (f fakeRecords) FindOwner(_ context.Context, doc string) (int64, error) {
	return f.find(f.s.owners, doc, "FindOwner")
}
func (f fakeRecords) CreateOwner(_ context.Context, o syncapi.Owner) (int64, error) {
	return f.create(f.s.owners, o.Document, "CreateOwner")
}
func (f fakeRecords) FindIncident(_ context.Context, genesis string) (int64, error) {
	return f.find(f.s.incidents, genesis, "FindIncident")
}
func (f fakeRecords) CreateIncident(_ context.Context, inc syncapi.Incident, _ time.Time, _ int64) (int64, error) {
	return f.create(f.s.incidents, inc.GenesisNumber, "CreateIncident")
}
func (f fakeRecords) CreateItem(_ context.Context, incidentID, ownerID, officerID int64, it syncapi.Item) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("CreateItem"); err != nil {
		return err
	}
	f.s.items = append(f.s.items, itemRow{incidentID, ownerID, officerID, it})
	return nil
}

type fakeLedger struct{ s *store }

func ledgerKey(kind, id string) string { return kind + "/" + id }

func (f fakeLedger) Lock(context.Context) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.locks++
	return f.s.fail("Lock")
}

func (f fakeLedger) IsSynced(_ context.Context, kind, recordID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("IsSynced"); err != nil {
		return false, err
	}
	_, ok := f.s.ledger[ledgerKey(kind, recordID)]
	return ok, nil
}

func (f fakeLedger) MarkSynced(_ context.Context, rec *models.SyncedRecord) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("MarkSynced"); err != nil {
		return err
	}
	k := ledgerKey(rec.Kind, rec.RecordID)
	if _, ok := f.s.ledger[k]; ok {
		return common.ErrAlreadyExists
	}
	f.s.ledger[k] = *rec
	return nil
}

func (f fakeLedger) CountByUser(_ context.Context, user string) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, r := range f.s.ledger {
		if r.User == user {
			n++
		}
	}
	return n, f.s.fail("CountByUser")
}

type fakeSyncLog struct{ s *store }

func (f fakeSyncLog) Create(_ context.Context, l *models.SyncLog) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("CreateLog"); err != nil {
		return err
	}
	l.ID = int64(len(f.s.logs) + 1)
	l.Timestamp = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC).Add(time.Duration(l.ID) * time.Minute)
	f.s.logs = append(f.s.logs, *l)
	return nil
}

func (f fakeSyncLog) userLogs(user string) []models.SyncLog {
	var out []models.SyncLog
	for _, l := range f.s.logs {
		if l.User == user {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f fakeSyncLog) Last(_ context.Context, user string) (*models.SyncLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Last"); err != nil {
		return nil, err
	}
	logs := f.userLogs(user)
	if len(logs) == 0 {
		return nil, common.ErrNotFound
	}
	return &logs[0], nil
}

func (f fakeSyncLog) Count(_ context.Context, user string) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return len(f.userLogs(user)), nil
}

func (f fakeSyncLog) List(_ context.Context, user string, limit int) ([]models.SyncLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("List"); err != nil {
		return nil, err
	}
	logs := f.userLogs(user)
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// fakeManager hands out repositories over the shared in-memory store and
// records which DBTX each one was bound to.
type fakeManager struct {
	s     *store
	bound []dbx.DBTX
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeManager) Records(db dbx.DBTX) records.Repository {
	m.bound = append(m.bound, db)
	return fakeRecords{m.s}
}

func (m *fakeManager) Ledger(db dbx.DBTX) ledger.Repository {
	m.bound = append(m.bound, db)
	return fakeLedger{m.s}
}

func (m *fakeManager) SyncLog(db dbx.DBTX) synclog.Repository {
	m.bound = append(m.bound, db)
	return fakeSyncLog{m.s}
}
