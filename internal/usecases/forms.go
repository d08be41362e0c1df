package usecases

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/abelzeko/beton-control/internal/entities"
)

// OrganizationForm holds the raw text of an organization form
type OrganizationForm struct {
	Name    string
	Contact string
	Phone   string
}

// Parse validates the form
func (f OrganizationForm) Parse() (entities.Organization, error) {
	org := entities.Organization{
		Name:    strings.TrimSpace(f.Name),
		Contact: strings.TrimSpace(f.Contact),
		Phone:   strings.TrimSpace(f.Phone),
	}
	if org.Name == "" {
		return org, entities.Invalid("name", "required")
	}
	return org, nil
}

// SiteForm holds the raw text of a site form; OrganizationID is the parent selection
type SiteForm struct {
	OrganizationID int64
	Name           string
	Address        string
}

// Parse validates the form
func (f SiteForm) Parse() (entities.ConstructionSite, error) {
	site := entities.ConstructionSite{
		OrganizationID: f.OrganizationID,
		Name:           strings.TrimSpace(f.Name),
		Address:        strings.TrimSpace(f.Address),
	}
	if site.OrganizationID <= 0 {
		return site, entities.Invalid("organization", "select an organization first")
	}
	if site.Name == "" {
		return site, entities.Invalid("name", "required")
	}
	return site, nil
}

// PourForm holds the raw text of a pour record form; SiteID is the parent selection
type PourForm struct {
	SiteID           int64
	PourDate         string
	Element          string
	ConcreteClass    string
	FrostResistance  string
	WaterResistance  string
	Supplier         string
	ConcretePassport string
	VolumeConcrete   string
	CubesCount       string
	ConesCount       string
	Slump            string
	Temperature      string
	TempMeasurements string
	Executor         string
	ActNumber        string
	RequestNumber    string
	Invoice          string
}

// Parse validates the form. Blank numbers are zero; negative or malformed numbers
// and dates are rejected with the name of the field.
func (f PourForm) Parse() (entities.PourRecord, error) {
	p := entities.PourRecord{
		SiteID:           f.SiteID,
		PourDate:         strings.TrimSpace(f.PourDate),
		Element:          strings.TrimSpace(f.Element),
		ConcreteClass:    strings.TrimSpace(f.ConcreteClass),
		FrostResistance:  strings.TrimSpace(f.FrostResistance),
		WaterResistance:  strings.TrimSpace(f.WaterResistance),
		Supplier:         strings.TrimSpace(f.Supplier),
		ConcretePassport: strings.TrimSpace(f.ConcretePassport),
		Slump:            strings.TrimSpace(f.Slump),
		Temperature:      strings.TrimSpace(f.Temperature),
		Executor:         strings.TrimSpace(f.Executor),
		ActNumber:        strings.TrimSpace(f.ActNumber),
		RequestNumber:    strings.TrimSpace(f.RequestNumber),
		Invoice:          strings.TrimSpace(f.Invoice),
	}
	if p.SiteID <= 0 {
		return p, entities.Invalid("site", "select a site first")
	}
	if p.PourDate == "" {
		return p, entities.Invalid(string(entities.FieldPourDate), "required")
	}
	if _, err := time.Parse(entities.DateLayout, p.PourDate); err != nil || len(p.PourDate) != len(entities.DateLayout) {
		return p, entities.Invalid(string(entities.FieldPourDate), "expected DD-MM-YYYY")
	}

	var err error
	if p.VolumeConcrete, err = parseDecimal(entities.FieldVolumeConcrete, f.VolumeConcrete); err != nil {
		return p, err
	}
	if p.CubesCount, err = parseCount(entities.FieldCubesCount, f.CubesCount); err != nil {
		return p, err
	}
	if p.ConesCount, err = parseCount(entities.FieldConesCount, f.ConesCount); err != nil {
		return p, err
	}
	if p.TempMeasurements, err = parseCount(entities.FieldTempMeasurements, f.TempMeasurements); err != nil {
		return p, err
	}
	return p, nil
}

// PourFormOf fills a form with the values of an existing record
func PourFormOf(p entities.PourRecord) PourForm {
	return PourForm{
		SiteID:           p.SiteID,
		PourDate:         p.PourDate,
		Element:          p.Element,
		ConcreteClass:    p.ConcreteClass,
		FrostResistance:  p.FrostResistance,
		WaterResistance:  p.WaterResistance,
		Supplier:         p.Supplier,
		ConcretePassport: p.ConcretePassport,
		VolumeConcrete:   strconv.FormatFloat(p.VolumeConcrete, 'f', -1, 64),
		CubesCount:       strconv.Itoa(p.CubesCount),
		ConesCount:       strconv.Itoa(p.ConesCount),
		Slump:            p.Slump,
		Temperature:      p.Temperature,
		TempMeasurements: strconv.Itoa(p.TempMeasurements),
		Executor:         p.Executor,
		ActNumber:        p.ActNumber,
		RequestNumber:    p.RequestNumber,
		Invoice:          p.Invoice,
	}
}

// PourFormFromValues builds a form from field values, e.g. an imported spreadsheet row
func PourFormFromValues(siteID int64, v map[entities.Field]string) PourForm {
	return PourForm{
		SiteID:           siteID,
		PourDate:         v[entities.FieldPourDate],
		Element:          v[entities.FieldElement],
		ConcreteClass:    v[entities.FieldConcreteClass],
		FrostResistance:  v[entities.FieldFrostResistance],
		WaterResistance:  v[entities.FieldWaterResistance],
		Supplier:         v[entities.FieldSupplier],
		ConcretePassport: v[entities.FieldConcretePassport],
		VolumeConcrete:   v[entities.FieldVolumeConcrete],
		CubesCount:       v[entities.FieldCubesCount],
		ConesCount:       v[entities.FieldConesCount],
		Slump:            v[entities.FieldSlump],
		Temperature:      v[entities.FieldTemperature],
		TempMeasurements: v[entities.FieldTempMeasurements],
		Executor:         v[entities.FieldExecutor],
		ActNumber:        v[entities.FieldActNumber],
		RequestNumber:    v[entities.FieldRequestNumber],
		Invoice:          v[entities.FieldInvoice],
	}
}

func parseCount(field entities.Field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// spreadsheets store whole numbers as 6 or 6.0
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, entities.Invalid(string(field), "expected a whole number")
		}
		n = int(f)
	}
	if n < 0 {
		return 0, entities.Invalid(string(field), "must not be negative")
	}
	return n, nil
}

func parseDecimal(field entities.Field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, entities.Invalid(string(field), "expected a number")
	}
	if f < 0 {
		return 0, entities.Invalid(string(field), "must not be negative")
	}
	return f, nil
}
