package records

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/secrimpo/internal/client/migrations"
	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/common"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))

	return NewSQLiteRepository(db), db
}

func seed(t *testing.T, r *SQLiteRepository) (models.Personnel, models.Owner, models.Incident) {
	t.Helper()
	ctx := context.Background()

	officer := models.Personnel{Name: "Ana Souza", RegistrationNumber: "PM123", Rank: "Sargento", Unit: "1BPM"}
	require.NoError(t, r.AddPersonnel(ctx, &officer))

	owner := models.Owner{Name: "Carlos Lima", Document: "12345678900"}
	require.NoError(t, r.AddOwner(ctx, &owner))

	inc := models.Incident{
		GenesisNumber: "G-2024-001",
		Unit:          "1BPM",
		SeizureDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Law:           "11.343/06",
		Article:       "33",
		Officer:       officer,
		Items: []models.Item{
			{Species: "Entorpecente", Name: "Maconha", Quantity: 2, Description: "Dois tabletes", Owner: owner},
			{Species: "Arma", Name: "Faca", Quantity: 1, Description: "Faca de cozinha", Owner: owner},
		},
	}
	require.NoError(t, r.AddIncident(ctx, &inc))

	return officer, owner, inc
}

func TestAddAndList(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	officer, owner, inc := seed(t, r)

	assert.NotZero(t, officer.LocalKey)
	assert.NotZero(t, owner.LocalKey)
	assert.NotZero(t, inc.LocalKey)
	assert.NotZero(t, inc.Items[1].LocalKey)

	personnel, err := r.ListPersonnel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Personnel{officer}, personnel)

	owners, err := r.ListOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Owner{owner}, owners)

	incidents, err := r.ListIncidentsWithItems(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	got := incidents[0]
	assert.Equal(t, "G-2024-001", got.GenesisNumber)
	assert.True(t, got.SeizureDate.Equal(inc.SeizureDate))
	assert.Equal(t, officer, got.Officer)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Maconha", got.Items[0].Name)
	assert.Equal(t, owner, got.Items[0].Owner)
	assert.Equal(t, "", got.RecordID)
}

func TestListEmpty(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	p, err := r.ListPersonnel(ctx)
	require.NoError(t, err)
	assert.Empty(t, p)

	inc, err := r.ListIncidentsWithItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, inc)
}

func TestAddPersonnel_DuplicateRegistration(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddPersonnel(ctx, &models.Personnel{Name: "A", RegistrationNumber: "PM1", Rank: "Sd", Unit: "U"}))
	err := r.AddPersonnel(ctx, &models.Personnel{Name: "B", RegistrationNumber: "PM1", Rank: "Sd", Unit: "U"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestAddIncident_UnknownOfficerRollsBack(t *testing.T) {
	r, db := setupRepo(t)
	ctx := context.Background()

	inc := models.Incident{GenesisNumber: "G", Unit: "U", SeizureDate: time.Now(), Law: "L", Article: "A",
		Officer: models.Personnel{LocalKey: 99}}
	err := r.AddIncident(ctx, &inc)
	require.ErrorIs(t, err, common.ErrNotFound)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ocorrencia`).Scan(&n))
	assert.Zero(t, n)
}

func TestAddIncident_UnknownOwnerRollsBack(t *testing.T) {
	r, db := setupRepo(t)
	ctx := context.Background()

	officer := models.Personnel{Name: "A", RegistrationNumber: "PM1", Rank: "Sd", Unit: "U"}
	require.NoError(t, r.AddPersonnel(ctx, &officer))

	inc := models.Incident{GenesisNumber: "G", Unit: "U", SeizureDate: time.Now(), Law: "L", Article: "A",
		Officer: officer,
		Items:   []models.Item{{Species: "S", Name: "N", Quantity: 1, Description: "D", Owner: models.Owner{LocalKey: 42}}}}
	require.ErrorIs(t, r.AddIncident(ctx, &inc), common.ErrNotFound)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ocorrencia`).Scan(&n))
	assert.Zero(t, n)
}

func TestAssignRecordID_WritesOnce(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	officer, owner, inc := seed(t, r)

	require.NoError(t, r.AssignRecordID(ctx, syncapi.CategoryPersonnel, officer.LocalKey, "first"))
	require.NoError(t, r.AssignRecordID(ctx, syncapi.CategoryPersonnel, officer.LocalKey, "second"))
	require.NoError(t, r.AssignRecordID(ctx, syncapi.CategoryOwners, owner.LocalKey, "owner-id"))
	require.NoError(t, r.AssignRecordID(ctx, syncapi.CategoryIncidents, inc.LocalKey, "incident-id"))

	personnel, err := r.ListPersonnel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", personnel[0].RecordID)

	incidents, err := r.ListIncidentsWithItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, "incident-id", incidents[0].RecordID)
	assert.Equal(t, "first", incidents[0].Officer.RecordID)
	assert.Equal(t, "owner-id", incidents[0].Items[0].Owner.RecordID)
}

func TestAssignRecordID_UnknownCategory(t *testing.T) {
	r, _ := setupRepo(t)
	err := r.AssignRecordID(context.Background(), syncapi.Category("veiculos"), 1, "x")
	require.ErrorIs(t, err, ErrUnknownCategory)
}
