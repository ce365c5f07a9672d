package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/secrimpo/internal/client/config"
	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/client/services"
	"github.com/dmitrijs2005/secrimpo/internal/logging"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
	"github.com/dmitrijs2005/secrimpo/internal/timex"
)

type memStore struct {
	personnel []models.Personnel
	owners    []models.Owner
	incidents []models.Incident
	addErr    error
}

func (m *memStore) ListPersonnel(context.Context) ([]models.Personnel, error) { return m.personnel, nil }
func (m *memStore) ListOwners(context.Context) ([]models.Owner, error)        { return m.owners, nil }
func (m *memStore) ListIncidentsWithItems(context.Context) ([]models.Incident, error) {
	return m.incidents, nil
}
func (m *memStore) AssignRecordID(context.Context, syncapi.Category, int64, string) error {
	return nil
}

func (m *memStore) AddPersonnel(_ context.Context, p *models.Personnel) error {
	if m.addErr != nil {
		return m.addErr
	}
	p.LocalKey = int64(len(m.personnel) + 1)
	m.personnel = append(m.personnel, *p)
	return nil
}

func (m *memStore) AddOwner(_ context.Context, o *models.Owner) error {
	if m.addErr != nil {
		return m.addErr
	}
	o.LocalKey = int64(len(m.owners) + 1)
	m.owners = append(m.owners, *o)
	return nil
}

func (m *memStore) AddIncident(_ context.Context, inc *models.Incident) error {
	if m.addErr != nil {
		return m.addErr
	}
	inc.LocalKey = int64(len(m.incidents) + 1)
	m.incidents = append(m.incidents, *inc)
	return nil
}

type memUsers struct{ user string }

func (u *memUsers) User(context.Context) string { return u.user }
func (u *memUsers) SetUser(_ context.Context, user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return errors.New("empty")
	}
	u.user = user
	return nil
}

type stubSyncer struct {
	result    *models.SyncResult
	err       error
	status    *syncapi.Status
	history   []syncapi.HistoryEntry
	lastSync  time.Time
	lastLimit int
}

func (s *stubSyncer) Sync(context.Context) (*models.SyncResult, error) { return s.result, s.err }
func (s *stubSyncer) Status(context.Context) (*syncapi.Status, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.status, nil
}
func (s *stubSyncer) History(_ context.Context, limit int) ([]syncapi.HistoryEntry, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}
func (s *stubSyncer) LastSync(context.Context) (time.Time, bool) {
	return s.lastSync, !s.lastSync.IsZero()
}
func (s *stubSyncer) Phase() services.Phase { return services.PhaseIdle }

type stubMonitor struct{ online bool }

func (m stubMonitor) IsOnline() bool                { return m.online }
func (m stubMonitor) CheckNow(context.Context) bool { return m.online }

func newTestApp(input string) (*App, *memStore, *stubSyncer, *bytes.Buffer) {
	store := &memStore{}
	syncer := &stubSyncer{}
	out := &bytes.Buffer{}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return &App{
		config:  cfg,
		logger:  logging.Discard(),
		records: store,
		users:   &memUsers{},
		syncer:  syncer,
		monitor: stubMonitor{online: true},
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}, store, syncer, out
}

func TestSetUser(t *testing.T) {
	ctx := context.Background()
	a, _, _, out := newTestApp("")

	require.NoError(t, a.SetUser(ctx, nil))
	assert.Contains(t, out.String(), "No sync user set")

	require.NoError(t, a.SetUser(ctx, []string{"maria", "silva"}))
	assert.Contains(t, out.String(), "Sync user set to maria silva")
	assert.Equal(t, "secrimpo (maria silva online)>", a.prompt(ctx))

	out.Reset()
	require.NoError(t, a.SetUser(ctx, nil))
	assert.Equal(t, "Sync user: maria silva\n", out.String())
}

func TestPromptWithoutUser(t *testing.T) {
	a, _, _, _ := newTestApp("")
	a.monitor = stubMonitor{online: false}
	assert.Equal(t, "secrimpo (offline)>", a.prompt(context.Background()))
}

func TestOnline(t *testing.T) {
	a, _, _, out := newTestApp("")
	require.NoError(t, a.Online(context.Background()))
	assert.Contains(t, out.String(), "Server is reachable")

	out.Reset()
	a.monitor = stubMonitor{online: false}
	require.NoError(t, a.Online(context.Background()))
	assert.Contains(t, out.String(), "Server is unreachable")
}

func TestAddOfficerAndOwner(t *testing.T) {
	ctx := context.Background()
	a, store, _, out := newTestApp("Joao Souza\nPM123\nSoldado\n1 BPM\nAna Lima\n12345678900\n")

	require.NoError(t, a.AddOfficer(ctx))
	require.NoError(t, a.AddOwner(ctx))

	require.Len(t, store.personnel, 1)
	assert.Equal(t, "PM123", store.personnel[0].RegistrationNumber)
	assert.Equal(t, "1 BPM", store.personnel[0].Unit)
	require.Len(t, store.owners, 1)
	assert.Equal(t, "12345678900", store.owners[0].Document)
	assert.Contains(t, out.String(), "Officer saved locally")
	assert.Contains(t, out.String(), "Owner saved locally")
}

func TestAddOfficer_EmptyField(t *testing.T) {
	a, store, _, out := newTestApp("Joao\n\n")
	err := a.AddOfficer(context.Background())
	require.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, store.personnel)
	assert.Contains(t, out.String(), "Error:")
}

func TestAddOfficer_StoreError(t *testing.T) {
	a, store, _, out := newTestApp("Joao\nPM1\nCabo\n2 BPM\n")
	store.addErr = errors.New("disk full")
	require.Error(t, a.AddOfficer(context.Background()))
	assert.Contains(t, out.String(), "Error saving officer: disk full")
}

func TestAddIncident(t *testing.T) {
	ctx := context.Background()
	input := strings.Join([]string{
		"G-2024-001", "1 BPM", "2024-03-15", "Lei 9605", "29",
		"pm123",
		"y", "Ave", "Papagaio", "2", "Amazona aestiva", "12345678900",
		"n",
	}, "\n") + "\n"
	a, store, _, out := newTestApp(input)
	store.personnel = []models.Personnel{{LocalKey: 7, RegistrationNumber: "PM123", Name: "Joao"}}
	store.owners = []models.Owner{{LocalKey: 3, Document: "12345678900", Name: "Ana"}}

	require.NoError(t, a.AddIncident(ctx))

	require.Len(t, store.incidents, 1)
	inc := store.incidents[0]
	assert.Equal(t, "G-2024-001", inc.GenesisNumber)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), inc.SeizureDate)
	assert.Equal(t, int64(7), inc.Officer.LocalKey)
	require.Len(t, inc.Items, 1)
	assert.Equal(t, 2, inc.Items[0].Quantity)
	assert.Equal(t, int64(3), inc.Items[0].Owner.LocalKey)
	assert.Contains(t, out.String(), "Incident saved locally with 1 item(s)")
}

func TestAddIncident_UnknownOfficer(t *testing.T) {
	input := "G-1\n1 BPM\n2024-03-15\nLei\n1\nPM999\n"
	a, store, _, out := newTestApp(input)

	err := a.AddIncident(context.Background())
	require.Error(t, err)
	assert.Empty(t, store.incidents)
	assert.Contains(t, out.String(), `no officer with registration "PM999"`)
}

func TestList(t *testing.T) {
	a, store, _, out := newTestApp("")
	store.personnel = []models.Personnel{
		{RegistrationNumber: "PM1", Name: "A", RecordID: "8c7e1ef4-9f9a-4a57-9d7c-2a4f1a9f0b11"},
		{RegistrationNumber: "PM2", Name: "B"},
	}
	store.incidents = []models.Incident{{
		GenesisNumber: "G-1",
		SeizureDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Officer:       store.personnel[0],
	}}

	require.NoError(t, a.List(context.Background()))
	s := out.String()
	assert.Contains(t, s, "Officers (2)")
	assert.Contains(t, s, "[sent] PM1 A")
	assert.Contains(t, s, "[local] PM2 B")
	assert.Contains(t, s, "Owners (0)")
	assert.Contains(t, s, "[local] G-1 2024-03-15")
}

func TestSyncCommand(t *testing.T) {
	ctx := context.Background()
	a, _, syncer, out := newTestApp("")

	syncer.result = &models.SyncResult{Success: true, Summary: "Sync complete: 1 record processed, 1 new"}
	require.NoError(t, a.Sync(ctx))
	assert.Contains(t, out.String(), "Sync complete: 1 record processed, 1 new")

	out.Reset()
	syncer.err = services.ErrOffline
	require.ErrorIs(t, a.Sync(ctx), services.ErrOffline)
	assert.Contains(t, out.String(), "Server is offline")
}

func TestStatusCommand(t *testing.T) {
	ctx := context.Background()
	a, _, syncer, out := newTestApp("")

	last := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	syncer.status = &syncapi.Status{User: "maria", LastSync: &timex.Time{Time: last}, TotalSyncs: 3, TotalSyncedRecord: 12, LastSyncStatus: syncapi.StatusSuccess}

	require.NoError(t, a.Status(ctx))
	s := out.String()
	assert.Contains(t, s, "This client has never synchronized")
	assert.Contains(t, s, "Sync state: idle")
	assert.Contains(t, s, `Server: 3 syncs, 12 records, last status "sucesso"`)
	assert.Contains(t, s, "Server last sync:")
}

func TestHistoryCommand(t *testing.T) {
	ctx := context.Background()
	a, _, syncer, out := newTestApp("")

	require.NoError(t, a.History(ctx, nil))
	assert.Equal(t, 10, syncer.lastLimit)
	assert.Contains(t, out.String(), "No sync history")

	syncer.history = []syncapi.HistoryEntry{{ID: 4, Status: syncapi.StatusPartial, Total: 3, New: 1, Duplicate: 2}}
	out.Reset()
	require.NoError(t, a.History(ctx, []string{"3"}))
	assert.Equal(t, 3, syncer.lastLimit)
	assert.Contains(t, out.String(), "#4")
	assert.Contains(t, out.String(), "3 records (1 new, 2 duplicate)")

	require.Error(t, a.History(ctx, []string{"zero"}))
	require.Error(t, a.History(ctx, []string{"0"}))
}
