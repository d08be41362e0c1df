package usecases

import (
	"errors"
	"testing"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPourForm() PourForm {
	return PourForm{SiteID: 1, PourDate: "02-06-2025", Element: " Плита "}
}

func TestPourFormBlankNumbersAreZero(t *testing.T) {
	p, err := validPourForm().Parse()
	require.NoError(t, err)
	assert.Equal(t, "Плита", p.Element)
	assert.Zero(t, p.VolumeConcrete)
	assert.Zero(t, p.CubesCount)
	assert.Zero(t, p.ConesCount)
	assert.Zero(t, p.TempMeasurements)
}

func TestPourFormParsesNumbers(t *testing.T) {
	f := validPourForm()
	f.VolumeConcrete = "7,25"
	f.CubesCount = "6"
	f.ConesCount = "2.0"
	f.TempMeasurements = " 3 "

	p, err := f.Parse()
	require.NoError(t, err)
	assert.Equal(t, 7.25, p.VolumeConcrete)
	assert.Equal(t, 6, p.CubesCount)
	assert.Equal(t, 2, p.ConesCount)
	assert.Equal(t, 3, p.TempMeasurements)
}

func TestPourFormRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(f *PourForm)
		field string
	}{
		{"no site", func(f *PourForm) { f.SiteID = 0 }, "site"},
		{"no date", func(f *PourForm) { f.PourDate = " " }, "pour_date"},
		{"iso date", func(f *PourForm) { f.PourDate = "2025-06-02" }, "pour_date"},
		{"impossible date", func(f *PourForm) { f.PourDate = "30-02-2025" }, "pour_date"},
		{"text volume", func(f *PourForm) { f.VolumeConcrete = "много" }, "volume_concrete"},
		{"negative volume", func(f *PourForm) { f.VolumeConcrete = "-1" }, "volume_concrete"},
		{"fractional cubes", func(f *PourForm) { f.CubesCount = "2.5" }, "cubes_count"},
		{"negative cones", func(f *PourForm) { f.ConesCount = "-2" }, "cones_count"},
		{"text measurements", func(f *PourForm) { f.TempMeasurements = "три" }, "temp_measurements"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validPourForm()
			tt.edit(&f)
			_, err := f.Parse()
			require.ErrorIs(t, err, entities.ErrValidation)

			var verr *entities.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPourFormOfRoundTrips(t *testing.T) {
	p := entities.PourRecord{
		SiteID: 4, PourDate: "01-01-2025", Element: "Колонна", VolumeConcrete: 3.5,
		CubesCount: 6, ConesCount: 1, TempMeasurements: 2, Invoice: "С-1",
	}
	got, err := PourFormOf(p).Parse()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestOrganizationAndSiteForms(t *testing.T) {
	_, err := OrganizationForm{Name: "  "}.Parse()
	assert.ErrorIs(t, err, entities.ErrValidation)

	org, err := OrganizationForm{Name: " Альфа ", Phone: " 123 "}.Parse()
	require.NoError(t, err)
	assert.Equal(t, entities.Organization{Name: "Альфа", Phone: "123"}, org)

	_, err = SiteForm{Name: "Объект"}.Parse()
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = SiteForm{OrganizationID: 1}.Parse()
	assert.ErrorIs(t, err, entities.ErrValidation)

	site, err := SiteForm{OrganizationID: 1, Name: "Объект", Address: "ул. 1"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, int64(1), site.OrganizationID)
}
