// Package repository provides data access implementations
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DefaultDBPath is used when no database path is configured
const DefaultDBPath = "concrete.db"

// RecordRepository defines the persistence operations for organizations, sites and pour records
type RecordRepository interface {
	CreateOrganization(ctx context.Context, org entities.Organization) (int64, error)
	InsertOrganizationIfAbsent(ctx context.Context, org entities.Organization) (bool, error)
	InsertOrganizationsIfAbsent(ctx context.Context, orgs []entities.Organization) (int, error)
	GetOrganization(ctx context.Context, id int64) (entities.Organization, error)
	ListOrganizations(ctx context.Context, filter entities.Filter) ([]entities.Organization, error)
	UpdateOrganization(ctx context.Context, org entities.Organization) (bool, error)
	DeleteOrganizations(ctx context.Context, ids ...int64) (int64, error)

	CreateSite(ctx context.Context, site entities.ConstructionSite) (int64, error)
	CreateSites(ctx context.Context, sites []entities.ConstructionSite) (int, error)
	GetSite(ctx context.Context, id int64) (entities.ConstructionSite, error)
	ListSites(ctx context.Context, orgID int64, filter entities.Filter) ([]entities.ConstructionSite, error)
	UpdateSite(ctx context.Context, site entities.ConstructionSite) (bool, error)
	DeleteSites(ctx context.Context, ids ...int64) (int64, error)

	CreatePour(ctx context.Context, pour entities.PourRecord) (int64, error)
	CreatePours(ctx context.Context, pours []entities.PourRecord) (int, error)
	GetPour(ctx context.Context, id int64) (entities.PourRecord, error)
	GetPourDetail(ctx context.Context, id int64) (entities.PourDetail, error)
	ListPours(ctx context.Context, siteID int64, filter entities.Filter) ([]entities.PourRecord, error)
	UpdatePour(ctx context.Context, pour entities.PourRecord) (bool, error)
	DeletePours(ctx context.Context, ids ...int64) (int64, error)
	AssignInvoice(ctx context.Context, invoice string, ids ...int64) (int64, error)
	SetDocumentNumber(ctx context.Context, id int64, field entities.Field, number string) (bool, error)

	DistinctValues(ctx context.Context, kind entities.Kind, field entities.Field) ([]string, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats summarizes the contents of the database
type Stats struct {
	Path          string
	Organizations int
	Sites         int
	Pours         int
}

// SQLiteRecordRepository implements RecordRepository using SQLite
type SQLiteRecordRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	DBPath string
}

var tables = map[entities.Kind]string{
	entities.KindOrganization: "organizations",
	entities.KindSite:         "objects",
	entities.KindPour:         "constructions",
}

const (
	orgColumns = `o.id, o.name, COALESCE(o.contact, '') AS contact, COALESCE(o.phone, '') AS phone`

	siteColumns = `s.id, s.org_id, s.name, COALESCE(s.address, '') AS address`

	pourColumns = `c.id, c.object_id,
		COALESCE(c.pour_date, '') AS pour_date,
		COALESCE(c.element, '') AS element,
		COALESCE(c.concrete_class, '') AS concrete_class,
		COALESCE(c.frost_resistance, '') AS frost_resistance,
		COALESCE(c.water_resistance, '') AS water_resistance,
		COALESCE(c.supplier, '') AS supplier,
		COALESCE(c.concrete_passport, '') AS concrete_passport,
		CAST(COALESCE(c.volume_concrete, 0) AS REAL) AS volume_concrete,
		CAST(COALESCE(c.cubes_count, 0) AS INTEGER) AS cubes_count,
		CAST(COALESCE(c.cones_count, 0) AS INTEGER) AS cones_count,
		COALESCE(c.slump, '') AS slump,
		COALESCE(c.temperature, '') AS temperature,
		CAST(COALESCE(c.temp_measurements, 0) AS INTEGER) AS temp_measurements,
		COALESCE(c.executor, '') AS executor,
		COALESCE(c.act_number, '') AS act_number,
		COALESCE(c.request_number, '') AS request_number,
		COALESCE(c.invoice, '') AS invoice`

	// pour_date is stored as DD-MM-YYYY, so order by its YYYYMMDD rearrangement
	pourOrder = `ORDER BY substr(c.pour_date, 7, 4) || substr(c.pour_date, 4, 2) || substr(c.pour_date, 1, 2), c.id`
)

// NewSQLiteRecordRepository opens (creating if needed) the database file and migrates its schema
func NewSQLiteRecordRepository(dbPath string, logger *zap.Logger) (*SQLiteRecordRepository, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	logger.Info("Opening database", zap.String("path", dbPath))
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps statement execution serialized within this process.
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrate(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRecordRepository{
		db:     db,
		logger: logger,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection
func (r *SQLiteRecordRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateOrganization inserts a new organization and returns its id
func (r *SQLiteRecordRepository) CreateOrganization(ctx context.Context, org entities.Organization) (int64, error) {
	if strings.TrimSpace(org.Name) == "" {
		return 0, fmt.Errorf("%w: organization name is required", entities.ErrConstraint)
	}
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO organizations (name, contact, phone) VALUES (:name, :contact, :phone)`, org)
	if err != nil {
		return 0, fmt.Errorf("failed to insert organization %q: %w", org.Name, mapError(err))
	}
	return insertedID(res)
}

// InsertOrganizationIfAbsent inserts org unless an organization with the same name exists
func (r *SQLiteRecordRepository) InsertOrganizationIfAbsent(ctx context.Context, org entities.Organization) (bool, error) {
	if strings.TrimSpace(org.Name) == "" {
		return false, fmt.Errorf("%w: organization name is required", entities.ErrConstraint)
	}
	res, err := r.db.NamedExecContext(ctx,
		`INSERT OR IGNORE INTO organizations (name, contact, phone) VALUES (:name, :contact, :phone)`, org)
	if err != nil {
		return false, fmt.Errorf("failed to insert organization %q: %w", org.Name, mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InsertOrganizationsIfAbsent inserts orgs in one transaction, skipping names that exist.
// It returns the number of organizations inserted.
func (r *SQLiteRecordRepository) InsertOrganizationsIfAbsent(ctx context.Context, orgs []entities.Organization) (int, error) {
	for i, org := range orgs {
		if strings.TrimSpace(org.Name) == "" {
			return 0, fmt.Errorf("%w: organization %d: name is required", entities.ErrConstraint, i+1)
		}
	}
	return insertBatch(ctx, r.db,
		`INSERT OR IGNORE INTO organizations (name, contact, phone) VALUES (:name, :contact, :phone)`, orgs)
}

// GetOrganization returns the organization with the given id
func (r *SQLiteRecordRepository) GetOrganization(ctx context.Context, id int64) (entities.Organization, error) {
	var org entities.Organization
	err := r.db.GetContext(ctx, &org, `SELECT `+orgColumns+` FROM organizations o WHERE o.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return org, fmt.Errorf("organization %d: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return org, fmt.Errorf("failed to get organization %d: %w", id, err)
	}
	return org, nil
}

// ListOrganizations returns organizations matching filter ordered by name
func (r *SQLiteRecordRepository) ListOrganizations(ctx context.Context, filter entities.Filter) ([]entities.Organization, error) {
	where, args, err := filterClause(entities.KindOrganization, "o", filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + orgColumns + ` FROM organizations o WHERE 1=1` + where + ` ORDER BY o.name, o.id`

	orgs := []entities.Organization{}
	if err := r.db.SelectContext(ctx, &orgs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	return orgs, nil
}

// UpdateOrganization stores org; it reports false if the id does not exist
func (r *SQLiteRecordRepository) UpdateOrganization(ctx context.Context, org entities.Organization) (bool, error) {
	if strings.TrimSpace(org.Name) == "" {
		return false, fmt.Errorf("%w: organization name is required", entities.ErrConstraint)
	}
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE organizations SET name = :name, contact = :contact, phone = :phone WHERE id = :id`, org)
	if err != nil {
		return false, fmt.Errorf("failed to update organization %d: %w", org.ID, mapError(err))
	}
	return affectedOne(res)
}

// DeleteOrganizations removes organizations together with their sites and pour records
func (r *SQLiteRecordRepository) DeleteOrganizations(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.deleteCascade(ctx, ids,
		`DELETE FROM constructions WHERE object_id IN (SELECT id FROM objects WHERE org_id IN (?))`,
		`DELETE FROM objects WHERE org_id IN (?)`,
		`DELETE FROM organizations WHERE id IN (?)`,
	)
}

// CreateSite inserts a new site and returns its id
func (r *SQLiteRecordRepository) CreateSite(ctx context.Context, site entities.ConstructionSite) (int64, error) {
	if err := checkSite(site); err != nil {
		return 0, err
	}
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO objects (org_id, name, address) VALUES (:org_id, :name, :address)`, site)
	if err != nil {
		return 0, fmt.Errorf("failed to insert site %q: %w", site.Name, mapError(err))
	}
	return insertedID(res)
}

// CreateSites inserts sites in one transaction; nothing is stored if any insert fails
func (r *SQLiteRecordRepository) CreateSites(ctx context.Context, sites []entities.ConstructionSite) (int, error) {
	for _, site := range sites {
		if err := checkSite(site); err != nil {
			return 0, err
		}
	}
	return insertBatch(ctx, r.db,
		`INSERT INTO objects (org_id, name, address) VALUES (:org_id, :name, :address)`, sites)
}

// GetSite returns the site with the given id
func (r *SQLiteRecordRepository) GetSite(ctx context.Context, id int64) (entities.ConstructionSite, error) {
	var site entities.ConstructionSite
	err := r.db.GetContext(ctx, &site, `SELECT `+siteColumns+` FROM objects s WHERE s.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return site, fmt.Errorf("site %d: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return site, fmt.Errorf("failed to get site %d: %w", id, err)
	}
	return site, nil
}

// ListSites returns sites of the organization (all sites when orgID is 0) matching filter
func (r *SQLiteRecordRepository) ListSites(ctx context.Context, orgID int64, filter entities.Filter) ([]entities.ConstructionSite, error) {
	where, args, err := filterClause(entities.KindSite, "s", filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + siteColumns + ` FROM objects s WHERE 1=1`
	if orgID != 0 {
		query += ` AND s.org_id = ?`
		args = append([]interface{}{orgID}, args...)
	}
	query += where + ` ORDER BY s.name, s.id`

	sites := []entities.ConstructionSite{}
	if err := r.db.SelectContext(ctx, &sites, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	return sites, nil
}

// UpdateSite stores site; it reports false if the id does not exist
func (r *SQLiteRecordRepository) UpdateSite(ctx context.Context, site entities.ConstructionSite) (bool, error) {
	if err := checkSite(site); err != nil {
		return false, err
	}
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE objects SET org_id = :org_id, name = :name, address = :address WHERE id = :id`, site)
	if err != nil {
		return false, fmt.Errorf("failed to update site %d: %w", site.ID, mapError(err))
	}
	return affectedOne(res)
}

// DeleteSites removes sites together with their pour records
func (r *SQLiteRecordRepository) DeleteSites(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.deleteCascade(ctx, ids,
		`DELETE FROM constructions WHERE object_id IN (?)`,
		`DELETE FROM objects WHERE id IN (?)`,
	)
}

const pourNamedValues = `:object_id, :pour_date, :element, :concrete_class, :frost_resistance,
	:water_resistance, :supplier, :concrete_passport, :volume_concrete, :cubes_count,
	:cones_count, :slump, :temperature, :temp_measurements,
	:executor, :act_number, :request_number, :invoice`

// CreatePour inserts a new pour record and returns its id
func (r *SQLiteRecordRepository) CreatePour(ctx context.Context, pour entities.PourRecord) (int64, error) {
	if err := checkPour(pour); err != nil {
		return 0, err
	}
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO constructions (
			object_id, pour_date, element, concrete_class, frost_resistance,
			water_resistance, supplier, concrete_passport, volume_concrete, cubes_count,
			cones_count, slump, temperature, temp_measurements,
			executor, act_number, request_number, invoice
		) VALUES (`+pourNamedValues+`)`, pour)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pour record for site %d: %w", pour.SiteID, mapError(err))
	}
	id, err := insertedID(res)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("Inserted pour record", zap.Int64("id", id), zap.Int64("site_id", pour.SiteID))
	return id, nil
}

// CreatePours inserts pour records in one transaction; nothing is stored if any insert fails
func (r *SQLiteRecordRepository) CreatePours(ctx context.Context, pours []entities.PourRecord) (int, error) {
	for _, pour := range pours {
		if err := checkPour(pour); err != nil {
			return 0, err
		}
	}
	return insertBatch(ctx, r.db, `
		INSERT INTO constructions (
			object_id, pour_date, element, concrete_class, frost_resistance,
			water_resistance, supplier, concrete_passport, volume_concrete, cubes_count,
			cones_count, slump, temperature, temp_measurements,
			executor, act_number, request_number, invoice
		) VALUES (`+pourNamedValues+`)`, pours)
}

// GetPour returns the pour record with the given id
func (r *SQLiteRecordRepository) GetPour(ctx context.Context, id int64) (entities.PourRecord, error) {
	var pour entities.PourRecord
	err := r.db.GetContext(ctx, &pour, `SELECT `+pourColumns+` FROM constructions c WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return pour, fmt.Errorf("pour record %d: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return pour, fmt.Errorf("failed to get pour record %d: %w", id, err)
	}
	return pour, nil
}

// GetPourDetail returns the pour record joined with its site and organization
func (r *SQLiteRecordRepository) GetPourDetail(ctx context.Context, id int64) (entities.PourDetail, error) {
	var detail entities.PourDetail
	err := r.db.GetContext(ctx, &detail, `
		SELECT `+pourColumns+`,
			s.name AS site_name,
			COALESCE(s.address, '') AS site_address,
			o.id AS org_id,
			o.name AS org_name,
			COALESCE(o.contact, '') AS org_contact,
			COALESCE(o.phone, '') AS org_phone
		FROM constructions c
		JOIN objects s ON c.object_id = s.id
		JOIN organizations o ON s.org_id = o.id
		WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return detail, fmt.Errorf("pour record %d: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return detail, fmt.Errorf("failed to get pour record %d: %w", id, err)
	}
	return detail, nil
}

// ListPours returns pour records of the site (all records when siteID is 0) ordered by pour date
func (r *SQLiteRecordRepository) ListPours(ctx context.Context, siteID int64, filter entities.Filter) ([]entities.PourRecord, error) {
	where, args, err := filterClause(entities.KindPour, "c", filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + pourColumns + ` FROM constructions c WHERE 1=1`
	if siteID != 0 {
		query += ` AND c.object_id = ?`
		args = append([]interface{}{siteID}, args...)
	}
	query += where + ` ` + pourOrder

	pours := []entities.PourRecord{}
	if err := r.db.SelectContext(ctx, &pours, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query pour records: %w", err)
	}
	return pours, nil
}

// UpdatePour stores pour; it reports false if the id does not exist
func (r *SQLiteRecordRepository) UpdatePour(ctx context.Context, pour entities.PourRecord) (bool, error) {
	if err := checkPour(pour); err != nil {
		return false, err
	}
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE constructions SET
			object_id = :object_id,
			pour_date = :pour_date,
			element = :element,
			concrete_class = :concrete_class,
			frost_resistance = :frost_resistance,
			water_resistance = :water_resistance,
			supplier = :supplier,
			concrete_passport = :concrete_passport,
			volume_concrete = :volume_concrete,
			cubes_count = :cubes_count,
			cones_count = :cones_count,
			slump = :slump,
			temperature = :temperature,
			temp_measurements = :temp_measurements,
			executor = :executor,
			act_number = :act_number,
			request_number = :request_number,
			invoice = :invoice
		WHERE id = :id`, pour)
	if err != nil {
		return false, fmt.Errorf("failed to update pour record %d: %w", pour.ID, mapError(err))
	}
	return affectedOne(res)
}

// DeletePours removes pour records
func (r *SQLiteRecordRepository) DeletePours(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.deleteCascade(ctx, ids, `DELETE FROM constructions WHERE id IN (?)`)
}

// AssignInvoice sets the invoice tag of the given pour records
func (r *SQLiteRecordRepository) AssignInvoice(ctx context.Context, invoice string, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`UPDATE constructions SET invoice = ? WHERE id IN (?)`, invoice, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to assign invoice: %w", err)
	}
	return res.RowsAffected()
}

// SetDocumentNumber stores the act or request number of a pour record
func (r *SQLiteRecordRepository) SetDocumentNumber(ctx context.Context, id int64, field entities.Field, number string) (bool, error) {
	if field != entities.FieldActNumber && field != entities.FieldRequestNumber {
		return false, entities.Invalid(string(field), "not a document number field")
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`UPDATE constructions SET %s = ? WHERE id = ?`, field), number, id)
	if err != nil {
		return false, fmt.Errorf("failed to set %s of pour record %d: %w", field, id, err)
	}
	return affectedOne(res)
}

// DistinctValues returns the sorted non-empty distinct values of a text field
func (r *SQLiteRecordRepository) DistinctValues(ctx context.Context, kind entities.Kind, field entities.Field) ([]string, error) {
	table, ok := tables[kind]
	if !ok || !kind.Allowed(field) {
		return nil, entities.Invalid(string(field), fmt.Sprintf("not a text field of %s", kind))
	}
	query := fmt.Sprintf(
		`SELECT DISTINCT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL AND TRIM(%[1]s) != '' ORDER BY %[1]s`,
		field, table)

	values := []string{}
	if err := r.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", field, err)
	}
	return values, nil
}

// Stats returns row counts of the three tables
func (r *SQLiteRecordRepository) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: r.DBPath}
	counts := []struct {
		table string
		dest  *int
	}{
		{"organizations", &stats.Organizations},
		{"objects", &stats.Sites},
		{"constructions", &stats.Pours},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, "SELECT COUNT(*) FROM "+c.table); err != nil {
			return stats, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return stats, nil
}

// deleteCascade runs each statement with ids bound to its IN clause in one transaction.
// The row count of the last statement is returned.
func (r *SQLiteRecordRepository) deleteCascade(ctx context.Context, ids []int64, statements ...string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var removed int64
	for _, stmt := range statements {
		query, args, err := sqlx.In(stmt, ids)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to delete: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	r.logger.Info("Deleted records", zap.Int64s("ids", ids), zap.Int64("removed", removed))
	return removed, nil
}

// insertBatch runs query once per item inside a single transaction and returns the rows inserted
func insertBatch[T any](ctx context.Context, db *sqlx.DB, query string, items []T) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var inserted int64
	for i, item := range items {
		res, err := tx.NamedExecContext(ctx, query, item)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert item %d: %w", i+1, mapError(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(inserted), nil
}

// filterClause builds " AND col LIKE ?" conditions for an allowlisted filter
func filterClause(kind entities.Kind, alias string, filter entities.Filter) (string, []interface{}, error) {
	fields := make([]string, 0, len(filter))
	for field := range filter {
		if !kind.Allowed(field) {
			return "", nil, entities.Invalid(string(field), fmt.Sprintf("cannot filter %s by this field", kind))
		}
		fields = append(fields, string(field))
	}
	sort.Strings(fields)

	var b strings.Builder
	args := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		fmt.Fprintf(&b, ` AND COALESCE(%s.%s, '') LIKE ? ESCAPE '\'`, alias, f)
		args = append(args, "%"+escapeLike(filter[entities.Field(f)])+"%")
	}
	return b.String(), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func checkSite(site entities.ConstructionSite) error {
	if site.OrganizationID == 0 {
		return fmt.Errorf("%w: site must belong to an organization", entities.ErrConstraint)
	}
	if strings.TrimSpace(site.Name) == "" {
		return fmt.Errorf("%w: site name is required", entities.ErrConstraint)
	}
	return nil
}

func checkPour(pour entities.PourRecord) error {
	if pour.SiteID == 0 {
		return fmt.Errorf("%w: pour record must belong to a site", entities.ErrConstraint)
	}
	if strings.TrimSpace(pour.PourDate) == "" {
		return fmt.Errorf("%w: pour date is required", entities.ErrConstraint)
	}
	return nil
}

// mapError converts SQLite constraint failures into entities.ErrConstraint
func mapError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", entities.ErrConstraint, err)
	}
	return err
}

func insertedID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("record was not inserted")
	}
	return id, nil
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
