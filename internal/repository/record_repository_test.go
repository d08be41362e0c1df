package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepository(t *testing.T) *SQLiteRecordRepository {
	t.Helper()
	repo, err := NewSQLiteRecordRepository(filepath.Join(t.TempDir(), "test-concrete.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// seed creates one organization with one site and returns their ids
func seed(t *testing.T, repo *SQLiteRecordRepository) (orgID, siteID int64) {
	t.Helper()
	ctx := context.Background()
	orgID, err := repo.CreateOrganization(ctx, entities.Organization{Name: "СтройМонтаж", Contact: "Иванов", Phone: "+7 900 000-00-00"})
	require.NoError(t, err)
	siteID, err = repo.CreateSite(ctx, entities.ConstructionSite{OrganizationID: orgID, Name: "ЖК Север", Address: "ул. Ленина, 1"})
	require.NoError(t, err)
	return orgID, siteID
}

func samplePour(siteID int64, date string) entities.PourRecord {
	return entities.PourRecord{
		SiteID:           siteID,
		PourDate:         date,
		Element:          "Плита перекрытия",
		ConcreteClass:    "B25",
		FrostResistance:  "F150",
		WaterResistance:  "W6",
		Supplier:         "БетонСтрой",
		ConcretePassport: "П-123",
		VolumeConcrete:   12.5,
		CubesCount:       6,
		ConesCount:       2,
		Slump:            "П3",
		Temperature:      "+12",
		TempMeasurements: 3,
		Executor:         "Петров",
	}
}

func TestDuplicateOrganizationNameIsConstraintViolation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreateOrganization(ctx, entities.Organization{Name: "Альфа"})
	require.NoError(t, err)

	_, err = repo.CreateOrganization(ctx, entities.Organization{Name: "Альфа", Contact: "дубль"})
	require.ErrorIs(t, err, entities.ErrConstraint)

	orgs, err := repo.ListOrganizations(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
	assert.Equal(t, "", orgs[0].Contact)
}

func TestCreateOrganizationRequiresName(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.CreateOrganization(context.Background(), entities.Organization{Name: "  "})
	assert.ErrorIs(t, err, entities.ErrConstraint)
}

func TestInsertOrganizationIfAbsent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	inserted, err := repo.InsertOrganizationIfAbsent(ctx, entities.Organization{Name: "Бета"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertOrganizationIfAbsent(ctx, entities.Organization{Name: "Бета"})
	require.NoError(t, err)
	assert.False(t, inserted)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Organizations)
}

func TestCreatePourRequiresExistingSite(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreatePour(ctx, samplePour(999, "01-06-2025"))
	require.ErrorIs(t, err, entities.ErrConstraint)

	_, err = repo.CreatePour(ctx, samplePour(0, "01-06-2025"))
	require.ErrorIs(t, err, entities.ErrConstraint)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Pours)
}

func TestCreateSiteRequiresExistingOrganization(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.CreateSite(context.Background(), entities.ConstructionSite{OrganizationID: 42, Name: "Нигде"})
	assert.ErrorIs(t, err, entities.ErrConstraint)
}

func TestPourRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	want := samplePour(siteID, "15-05-2025")
	id, err := repo.CreatePour(ctx, want)
	require.NoError(t, err)
	want.ID = id

	got, err := repo.GetPour(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListPoursOrderedByDate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	for _, date := range []string{"03-02-2025", "28-12-2024", "01-02-2025"} {
		_, err := repo.CreatePour(ctx, samplePour(siteID, date))
		require.NoError(t, err)
	}

	pours, err := repo.ListPours(ctx, siteID, nil)
	require.NoError(t, err)
	require.Len(t, pours, 3)
	assert.Equal(t, "28-12-2024", pours[0].PourDate)
	assert.Equal(t, "01-02-2025", pours[1].PourDate)
	assert.Equal(t, "03-02-2025", pours[2].PourDate)
}

func TestListPoursFilterCombinesWithAnd(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	a := samplePour(siteID, "01-03-2025")
	b := samplePour(siteID, "02-03-2025")
	b.Executor = "Сидоров"
	c := samplePour(siteID, "03-03-2025")
	c.ConcreteClass = "B30"
	for _, p := range []entities.PourRecord{a, b, c} {
		_, err := repo.CreatePour(ctx, p)
		require.NoError(t, err)
	}

	pours, err := repo.ListPours(ctx, siteID, entities.Filter{
		entities.FieldConcreteClass: "25",
		entities.FieldExecutor:      "Пет",
	})
	require.NoError(t, err)
	require.Len(t, pours, 1)
	assert.Equal(t, "01-03-2025", pours[0].PourDate)

	pours, err = repo.ListPours(ctx, siteID, entities.Filter{entities.FieldPourDate: "-03-"})
	require.NoError(t, err)
	assert.Len(t, pours, 3)
}

func TestFilterEscapesWildcards(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	_, err := repo.CreatePour(ctx, samplePour(siteID, "01-03-2025"))
	require.NoError(t, err)

	pours, err := repo.ListPours(ctx, siteID, entities.Filter{entities.FieldSupplier: "%"})
	require.NoError(t, err)
	assert.Empty(t, pours)
}

func TestFilterRejectsUnknownField(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.ListPours(context.Background(), 0, entities.Filter{"object_id; DROP TABLE constructions": "1"})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = repo.ListOrganizations(context.Background(), entities.Filter{entities.FieldSupplier: "x"})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestUpdateMissingIdentityReturnsFalse(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	ok, err := repo.UpdateOrganization(ctx, entities.Organization{ID: 777, Name: "Никто"})
	require.NoError(t, err)
	assert.False(t, ok)

	pour := samplePour(siteID, "01-01-2025")
	pour.ID = 777
	ok, err = repo.UpdatePour(ctx, pour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateOrganizationToDuplicateName(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	orgID, _ := seed(t, repo)
	_, err := repo.CreateOrganization(ctx, entities.Organization{Name: "Вторая"})
	require.NoError(t, err)

	_, err = repo.UpdateOrganization(ctx, entities.Organization{ID: orgID, Name: "Вторая"})
	assert.ErrorIs(t, err, entities.ErrConstraint)
}

func TestDeleteSiteRemovesItsPours(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	orgID, siteID := seed(t, repo)
	otherSite, err := repo.CreateSite(ctx, entities.ConstructionSite{OrganizationID: orgID, Name: "ЖК Юг"})
	require.NoError(t, err)

	_, err = repo.CreatePour(ctx, samplePour(siteID, "01-01-2025"))
	require.NoError(t, err)
	_, err = repo.CreatePour(ctx, samplePour(otherSite, "02-01-2025"))
	require.NoError(t, err)

	removed, err := repo.DeleteSites(ctx, siteID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	pours, err := repo.ListPours(ctx, 0, nil)
	require.NoError(t, err)
	require.Len(t, pours, 1)
	assert.Equal(t, otherSite, pours[0].SiteID)
}

func TestDeleteOrganizationCascades(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	orgID, siteID := seed(t, repo)
	_, err := repo.CreatePour(ctx, samplePour(siteID, "01-01-2025"))
	require.NoError(t, err)

	keepOrg, err := repo.CreateOrganization(ctx, entities.Organization{Name: "Остаётся"})
	require.NoError(t, err)

	removed, err := repo.DeleteOrganizations(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Path: repo.DBPath, Organizations: 1, Sites: 0, Pours: 0}, stats)

	_, err = repo.GetOrganization(ctx, keepOrg)
	assert.NoError(t, err)
	_, err = repo.GetOrganization(ctx, orgID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestDeletePoursBySet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.CreatePour(ctx, samplePour(siteID, "01-01-2025"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	removed, err := repo.DeletePours(ctx, ids[0], ids[2], 9999)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = repo.DeletePours(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestDistinctValues(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	values, err := repo.DistinctValues(ctx, entities.KindPour, entities.FieldConcreteClass)
	require.NoError(t, err)
	assert.NotNil(t, values)
	assert.Empty(t, values)

	for _, class := range []string{"B30", "B25", "", "B30"} {
		p := samplePour(siteID, "01-01-2025")
		p.ConcreteClass = class
		_, err := repo.CreatePour(ctx, p)
		require.NoError(t, err)
	}

	values, err = repo.DistinctValues(ctx, entities.KindPour, entities.FieldConcreteClass)
	require.NoError(t, err)
	assert.Equal(t, []string{"B25", "B30"}, values)

	_, err = repo.DistinctValues(ctx, entities.KindSite, entities.FieldSupplier)
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestAssignInvoiceAndDocumentNumber(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	a, err := repo.CreatePour(ctx, samplePour(siteID, "01-01-2025"))
	require.NoError(t, err)
	b, err := repo.CreatePour(ctx, samplePour(siteID, "02-01-2025"))
	require.NoError(t, err)

	n, err := repo.AssignInvoice(ctx, "СЧ-17", a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err := repo.SetDocumentNumber(ctx, a, entities.FieldActNumber, "А-5")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.SetDocumentNumber(ctx, a, entities.FieldSupplier, "x")
	assert.ErrorIs(t, err, entities.ErrValidation)

	got, err := repo.GetPour(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "СЧ-17", got.Invoice)
	assert.Equal(t, "А-5", got.ActNumber)
}

func TestGetPourDetail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	orgID, siteID := seed(t, repo)

	id, err := repo.CreatePour(ctx, samplePour(siteID, "01-01-2025"))
	require.NoError(t, err)

	detail, err := repo.GetPourDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, detail.ID)
	assert.Equal(t, "ЖК Север", detail.SiteName)
	assert.Equal(t, "ул. Ленина, 1", detail.SiteAddress)
	assert.Equal(t, orgID, detail.OrganizationID)
	assert.Equal(t, "СтройМонтаж", detail.OrgName)
	assert.Equal(t, "Иванов", detail.OrgContact)

	_, err = repo.GetPourDetail(ctx, 4242)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

// TestLegacySchemaMigration opens a database created by the first application version,
// which had no request_number and invoice columns.
func TestLegacySchemaMigration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = legacy.Exec(`
		CREATE TABLE organizations (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE, contact TEXT, phone TEXT);
		CREATE TABLE objects (id INTEGER PRIMARY KEY AUTOINCREMENT, org_id INTEGER NOT NULL, name TEXT NOT NULL, address TEXT,
			FOREIGN KEY (org_id) REFERENCES organizations(id));
		CREATE TABLE constructions (id INTEGER PRIMARY KEY AUTOINCREMENT, object_id INTEGER NOT NULL, pour_date TEXT NOT NULL,
			element TEXT, concrete_class TEXT, frost_resistance TEXT, water_resistance TEXT, supplier TEXT,
			concrete_passport TEXT, volume_concrete REAL, cubes_count INTEGER, cones_count INTEGER, slump TEXT,
			temperature TEXT, temp_measurements INTEGER, executor TEXT, act_number TEXT,
			FOREIGN KEY (object_id) REFERENCES objects(id));
		INSERT INTO organizations (name) VALUES ('Старая');
		INSERT INTO objects (org_id, name) VALUES (1, 'Объект');
		INSERT INTO constructions (object_id, pour_date, element) VALUES (1, '10-10-2023', 'Колонна');`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	repo, err := NewSQLiteRecordRepository(dbPath, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	for _, name := range []string{"request_number", "invoice"} {
		ok, err := hasColumn(ctx, repo.db, "constructions", name)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}

	pours, err := repo.ListPours(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, pours, 1)
	assert.Equal(t, "Колонна", pours[0].Element)
	assert.Equal(t, "", pours[0].Invoice)
	assert.Equal(t, "", pours[0].Supplier)
	assert.Zero(t, pours[0].VolumeConcrete)

	// the legacy foreign key has no ON DELETE CASCADE; the explicit cascade still applies
	removed, err := repo.DeleteOrganizations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Pours)

	// reopening is a no-op migration
	require.NoError(t, repo.Close())
	again, err := NewSQLiteRecordRepository(dbPath, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestCreatePoursIsAllOrNothing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, siteID := seed(t, repo)

	n, err := repo.CreatePours(ctx, []entities.PourRecord{
		samplePour(siteID, "01-06-2025"),
		samplePour(siteID, "02-06-2025"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.CreatePours(ctx, []entities.PourRecord{
		samplePour(siteID, "03-06-2025"),
		samplePour(siteID+100, "04-06-2025"),
	})
	require.ErrorIs(t, err, entities.ErrConstraint)

	pours, err := repo.ListPours(ctx, siteID, nil)
	require.NoError(t, err)
	assert.Len(t, pours, 2)
}

func TestCreateSitesBatch(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	orgID, _ := seed(t, repo)

	n, err := repo.CreateSites(ctx, []entities.ConstructionSite{
		{OrganizationID: orgID, Name: "Корпус 2"},
		{OrganizationID: orgID, Name: "Корпус 3", Address: "ул. Мира, 5"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.CreateSites(ctx, []entities.ConstructionSite{{OrganizationID: orgID}})
	require.ErrorIs(t, err, entities.ErrConstraint)

	sites, err := repo.ListSites(ctx, orgID, nil)
	require.NoError(t, err)
	assert.Len(t, sites, 3)
}

func TestInsertOrganizationsIfAbsentSkipsExisting(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seed(t, repo)

	n, err := repo.InsertOrganizationsIfAbsent(ctx, []entities.Organization{
		{Name: "СтройМонтаж", Contact: "другой"},
		{Name: "Гамма"},
		{Name: "Гамма"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	orgs, err := repo.ListOrganizations(ctx, entities.Filter{entities.FieldName: "СтройМонтаж"})
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Иванов", orgs[0].Contact)

	n, err = repo.InsertOrganizationsIfAbsent(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
