// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/abelzeko/beton-control/internal/integration/docx"
	"github.com/abelzeko/beton-control/internal/integration/excel"
	"github.com/abelzeko/beton-control/internal/repository"
	"go.uber.org/zap"
)

// DocumentRenderer fills a document template with one pour record
type DocumentRenderer interface {
	Render(kind docx.DocumentKind, detail entities.PourDetail, outDir string) (string, error)
}

// RecordUseCase handles the form operations on organizations, sites and pour records
type RecordUseCase struct {
	repo     repository.RecordRepository
	renderer DocumentRenderer
	logger   *zap.Logger
}

// NewRecordUseCase creates a new record use case
func NewRecordUseCase(repo repository.RecordRepository, renderer DocumentRenderer, logger *zap.Logger) *RecordUseCase {
	return &RecordUseCase{
		repo:     repo,
		renderer: renderer,
		logger:   logger,
	}
}

// ListOrganizations returns the organizations matching filter
func (uc *RecordUseCase) ListOrganizations(ctx context.Context, filter entities.Filter) ([]entities.Organization, error) {
	return uc.repo.ListOrganizations(ctx, filter)
}

// CreateOrganization validates the form and stores a new organization
func (uc *RecordUseCase) CreateOrganization(ctx context.Context, form OrganizationForm) (int64, error) {
	org, err := form.Parse()
	if err != nil {
		return 0, err
	}
	id, err := uc.repo.CreateOrganization(ctx, org)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("Organization created", zap.Int64("id", id), zap.String("name", org.Name))
	return id, nil
}

// UpdateOrganization validates the form and replaces organization id
func (uc *RecordUseCase) UpdateOrganization(ctx context.Context, id int64, form OrganizationForm) error {
	org, err := form.Parse()
	if err != nil {
		return err
	}
	org.ID = id
	ok, err := uc.repo.UpdateOrganization(ctx, org)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("organization %d: %w", id, entities.ErrNotFound)
	}
	uc.logger.Info("Organization updated", zap.Int64("id", id))
	return nil
}

// DeleteOrganizations removes organizations with all their sites and pour records
func (uc *RecordUseCase) DeleteOrganizations(ctx context.Context, ids ...int64) (int64, error) {
	return uc.repo.DeleteOrganizations(ctx, ids...)
}

// GetOrganization returns one organization
func (uc *RecordUseCase) GetOrganization(ctx context.Context, id int64) (entities.Organization, error) {
	return uc.repo.GetOrganization(ctx, id)
}

// ListSites returns the sites of an organization matching filter
func (uc *RecordUseCase) ListSites(ctx context.Context, orgID int64, filter entities.Filter) ([]entities.ConstructionSite, error) {
	return uc.repo.ListSites(ctx, orgID, filter)
}

// GetSite returns one site
func (uc *RecordUseCase) GetSite(ctx context.Context, id int64) (entities.ConstructionSite, error) {
	return uc.repo.GetSite(ctx, id)
}

// CreateSite validates the form and stores a new site under form.OrganizationID
func (uc *RecordUseCase) CreateSite(ctx context.Context, form SiteForm) (int64, error) {
	site, err := form.Parse()
	if err != nil {
		return 0, err
	}
	id, err := uc.repo.CreateSite(ctx, site)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("Site created", zap.Int64("id", id), zap.Int64("org_id", site.OrganizationID))
	return id, nil
}

// UpdateSite validates the form and replaces site id
func (uc *RecordUseCase) UpdateSite(ctx context.Context, id int64, form SiteForm) error {
	site, err := form.Parse()
	if err != nil {
		return err
	}
	site.ID = id
	ok, err := uc.repo.UpdateSite(ctx, site)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("site %d: %w", id, entities.ErrNotFound)
	}
	uc.logger.Info("Site updated", zap.Int64("id", id))
	return nil
}

// DeleteSites removes sites with all their pour records
func (uc *RecordUseCase) DeleteSites(ctx context.Context, ids ...int64) (int64, error) {
	return uc.repo.DeleteSites(ctx, ids...)
}

// ListPours returns the pour records of a site matching filter
func (uc *RecordUseCase) ListPours(ctx context.Context, siteID int64, filter entities.Filter) ([]entities.PourRecord, error) {
	return uc.repo.ListPours(ctx, siteID, filter)
}

// GetPour returns one pour record
func (uc *RecordUseCase) GetPour(ctx context.Context, id int64) (entities.PourRecord, error) {
	return uc.repo.GetPour(ctx, id)
}

// CreatePour validates the form and stores a new pour record under form.SiteID
func (uc *RecordUseCase) CreatePour(ctx context.Context, form PourForm) (int64, error) {
	pour, err := form.Parse()
	if err != nil {
		return 0, err
	}
	id, err := uc.repo.CreatePour(ctx, pour)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("Pour record created", zap.Int64("id", id), zap.Int64("site_id", pour.SiteID))
	return id, nil
}

// UpdatePour validates the form and replaces pour record id
func (uc *RecordUseCase) UpdatePour(ctx context.Context, id int64, form PourForm) error {
	pour, err := form.Parse()
	if err != nil {
		return err
	}
	pour.ID = id
	ok, err := uc.repo.UpdatePour(ctx, pour)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pour record %d: %w", id, entities.ErrNotFound)
	}
	uc.logger.Info("Pour record updated", zap.Int64("id", id))
	return nil
}

// DeletePours removes pour records
func (uc *RecordUseCase) DeletePours(ctx context.Context, ids ...int64) (int64, error) {
	return uc.repo.DeletePours(ctx, ids...)
}

// AssignInvoice tags the selected pour records with an invoice
func (uc *RecordUseCase) AssignInvoice(ctx context.Context, invoice string, ids ...int64) (int64, error) {
	invoice = strings.TrimSpace(invoice)
	if invoice == "" {
		return 0, entities.Invalid(string(entities.FieldInvoice), "required")
	}
	if len(ids) == 0 {
		return 0, entities.Invalid("selection", "select at least one pour record")
	}
	n, err := uc.repo.AssignInvoice(ctx, invoice, ids...)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("Invoice assigned", zap.String("invoice", invoice), zap.Int64("updated", n))
	return n, nil
}

// GenerateDocument renders the document of kind for a pour record into outDir.
// A non-empty number is stored as the record's act or request number first.
func (uc *RecordUseCase) GenerateDocument(ctx context.Context, kind docx.DocumentKind, pourID int64, number, outDir string) (string, error) {
	if number = strings.TrimSpace(number); number != "" {
		ok, err := uc.repo.SetDocumentNumber(ctx, pourID, kind.NumberField(), number)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("pour record %d: %w", pourID, entities.ErrNotFound)
		}
	}

	detail, err := uc.repo.GetPourDetail(ctx, pourID)
	if err != nil {
		return "", err
	}
	return uc.renderer.Render(kind, detail, outDir)
}

// Info returns the database statistics
func (uc *RecordUseCase) Info(ctx context.Context) (repository.Stats, error) {
	return uc.repo.Stats(ctx)
}

// ImportResult reports the outcome of a spreadsheet import
type ImportResult struct {
	Rows     int // data rows read
	Inserted int
	Skipped  int // existing organizations left untouched
}

// Import reads kind records from the workbook at path and stores them under parentID
// (an organization id for sites, a site id for pour records). Every row is validated
// before anything is written.
func (uc *RecordUseCase) Import(ctx context.Context, kind entities.Kind, path string, parentID int64) (ImportResult, error) {
	var result ImportResult

	switch kind {
	case entities.KindSite:
		if _, err := uc.repo.GetOrganization(ctx, parentID); err != nil {
			return result, err
		}
	case entities.KindPour:
		if _, err := uc.repo.GetSite(ctx, parentID); err != nil {
			return result, err
		}
	}

	rows, err := excel.ReadRows(path, kind)
	if err != nil {
		return result, err
	}
	result.Rows = len(rows)
	uc.logger.Info("Read spreadsheet rows", zap.String("path", path), zap.String("kind", string(kind)), zap.Int("rows", len(rows)))

	var errs []error
	switch kind {
	case entities.KindOrganization:
		orgs := make([]entities.Organization, 0, len(rows))
		for _, row := range rows {
			org, err := OrganizationForm{
				Name:    row.Values[entities.FieldName],
				Contact: row.Values[entities.FieldContact],
				Phone:   row.Values[entities.FieldPhone],
			}.Parse()
			if err != nil {
				errs = append(errs, fmt.Errorf("row %d: %w", row.Number, err))
				continue
			}
			orgs = append(orgs, org)
		}
		if len(errs) > 0 {
			return result, errors.Join(errs...)
		}
		result.Inserted, err = uc.repo.InsertOrganizationsIfAbsent(ctx, orgs)
		result.Skipped = len(orgs) - result.Inserted

	case entities.KindSite:
		sites := make([]entities.ConstructionSite, 0, len(rows))
		for _, row := range rows {
			site, err := SiteForm{
				OrganizationID: parentID,
				Name:           row.Values[entities.FieldName],
				Address:        row.Values[entities.FieldAddress],
			}.Parse()
			if err != nil {
				errs = append(errs, fmt.Errorf("row %d: %w", row.Number, err))
				continue
			}
			sites = append(sites, site)
		}
		if len(errs) > 0 {
			return result, errors.Join(errs...)
		}
		result.Inserted, err = uc.repo.CreateSites(ctx, sites)

	case entities.KindPour:
		pours := make([]entities.PourRecord, 0, len(rows))
		for _, row := range rows {
			pour, err := PourFormFromValues(parentID, row.Values).Parse()
			if err != nil {
				errs = append(errs, fmt.Errorf("row %d: %w", row.Number, err))
				continue
			}
			pours = append(pours, pour)
		}
		if len(errs) > 0 {
			return result, errors.Join(errs...)
		}
		result.Inserted, err = uc.repo.CreatePours(ctx, pours)

	default:
		return result, entities.Invalid("kind", fmt.Sprintf("unknown kind %q", kind))
	}
	if err != nil {
		return result, err
	}

	uc.logger.Info("Import finished",
		zap.String("kind", string(kind)), zap.Int("inserted", result.Inserted), zap.Int("skipped", result.Skipped))
	return result, nil
}

// WriteTemplate writes the import template of kind to path
func (uc *RecordUseCase) WriteTemplate(kind entities.Kind, path string) error {
	return excel.WriteTemplate(path, kind)
}

// ExportSite writes the pour records of one site to a workbook at path
func (uc *RecordUseCase) ExportSite(ctx context.Context, siteID int64, path string) error {
	site, err := uc.repo.GetSite(ctx, siteID)
	if err != nil {
		return err
	}
	sheet, err := uc.siteSheet(ctx, site)
	if err != nil {
		return err
	}
	if len(sheet.Pours) == 0 {
		return entities.Invalid("site", fmt.Sprintf("site %q has no pour records to export", site.Name))
	}
	if err := excel.WriteSites(path, []excel.SiteSheet{sheet}); err != nil {
		return err
	}
	uc.logger.Info("Site exported", zap.Int64("site_id", siteID), zap.String("path", path), zap.Int("rows", len(sheet.Pours)))
	return nil
}

// ExportOrganization writes every site of an organization to one workbook, a sheet per site
func (uc *RecordUseCase) ExportOrganization(ctx context.Context, orgID int64, path string) error {
	org, err := uc.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return err
	}
	sheets, err := uc.organizationSheets(ctx, org)
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		return entities.Invalid("organization", fmt.Sprintf("organization %q has no sites to export", org.Name))
	}
	if err := excel.WriteSites(path, sheets); err != nil {
		return err
	}
	uc.logger.Info("Organization exported", zap.Int64("org_id", orgID), zap.String("path", path), zap.Int("sheets", len(sheets)))
	return nil
}

// Snapshot exports every organization that has sites into dir, one workbook each.
// A failing organization does not stop the others; the written paths are returned.
func (uc *RecordUseCase) Snapshot(ctx context.Context, dir string, now time.Time) ([]string, error) {
	orgs, err := uc.repo.ListOrganizations(ctx, nil)
	if err != nil {
		return nil, err
	}

	var written []string
	var errs []error
	for _, org := range orgs {
		sheets, err := uc.organizationSheets(ctx, org)
		if err != nil {
			errs = append(errs, fmt.Errorf("organization %q: %w", org.Name, err))
			continue
		}
		if len(sheets) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", SafeFileName(org.Name), now.Format("2006-01-02")))
		if err := excel.WriteSites(path, sheets); err != nil {
			errs = append(errs, fmt.Errorf("organization %q: %w", org.Name, err))
			continue
		}
		written = append(written, path)
	}

	uc.logger.Info("Snapshot finished", zap.String("dir", dir), zap.Int("files", len(written)), zap.Int("failed", len(errs)))
	return written, errors.Join(errs...)
}

// ExportFileName is the suggested workbook name of a site export
func ExportFileName(org entities.Organization, site entities.ConstructionSite) string {
	return fmt.Sprintf("%s_%s_Контроль_бетона.xlsx", SafeFileName(org.Name), SafeFileName(site.Name))
}

// SafeFileName keeps letters, digits, spaces and underscores of name, at most 30 characters
func SafeFileName(name string) string {
	var b []rune
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			b = append(b, r)
		}
	}
	s := strings.TrimSpace(string(b))
	if r := []rune(s); len(r) > 30 {
		s = strings.TrimSpace(string(r[:30]))
	}
	if s == "" {
		return "export"
	}
	return s
}

func (uc *RecordUseCase) organizationSheets(ctx context.Context, org entities.Organization) ([]excel.SiteSheet, error) {
	sites, err := uc.repo.ListSites(ctx, org.ID, nil)
	if err != nil {
		return nil, err
	}
	sheets := make([]excel.SiteSheet, 0, len(sites))
	for _, site := range sites {
		pours, err := uc.repo.ListPours(ctx, site.ID, nil)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, excel.SiteSheet{Organization: org, Site: site, Pours: pours})
	}
	return sheets, nil
}

func (uc *RecordUseCase) siteSheet(ctx context.Context, site entities.ConstructionSite) (excel.SiteSheet, error) {
	org, err := uc.repo.GetOrganization(ctx, site.OrganizationID)
	if err != nil {
		return excel.SiteSheet{}, err
	}
	pours, err := uc.repo.ListPours(ctx, site.ID, nil)
	if err != nil {
		return excel.SiteSheet{}, err
	}
	return excel.SiteSheet{Organization: org, Site: site, Pours: pours}, nil
}
