package excel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func samplePours() []entities.PourRecord {
	return []entities.PourRecord{
		{
			ID: 1, SiteID: 5, PourDate: "01-06-2025", Element: "Фундамент", ConcreteClass: "B25",
			FrostResistance: "F150", WaterResistance: "W6", Supplier: "БетонСнаб", ConcretePassport: "П-1",
			VolumeConcrete: 12.5, CubesCount: 6, ConesCount: 2, Slump: "П3", Temperature: "+5",
			TempMeasurements: 3, Executor: "Иванов", ActNumber: "А-1", RequestNumber: "З-1", Invoice: "С-7",
		},
		{ID: 2, SiteID: 5, PourDate: "02-06-2025", Element: "Стена", ConcreteClass: "B30"},
	}
}

func TestWriteSitesLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	err := WriteSites(path, []SiteSheet{{
		Organization: entities.Organization{Name: "СтройМонтаж"},
		Site:         entities.ConstructionSite{Name: "ЖК Север"},
		Pours:        samplePours(),
	}})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"ЖК Север"}, f.GetSheetList())
	get := func(cell string) string {
		v, err := f.GetCellValue("ЖК Север", cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Организация: СтройМонтаж", get("A1"))
	assert.Equal(t, "Объект: ЖК Север", get("A2"))
	assert.Equal(t, "Дата", get("A3"))
	assert.Equal(t, "Счет", get("Q3"))
	assert.Equal(t, "01-06-2025", get("A4"))
	assert.Equal(t, "Стена", get("B5"))
	assert.Equal(t, "12.5", get("H4"))
	assert.Equal(t, "6", get("I4"))

	styleID, err := f.GetCellStyle("ЖК Север", "I4")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.Equal(t, 1, style.NumFmt)
	assert.Equal(t, "center", style.Alignment.Horizontal)
}

func TestWriteSitesRequiresSheets(t *testing.T) {
	assert.Error(t, WriteSites(filepath.Join(t.TempDir(), "empty.xlsx"), nil))
}

func TestWriteSitesUniqueSheetNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.xlsx")
	long := "Очень длинное название объекта строительства"
	err := WriteSites(path, []SiteSheet{
		{Site: entities.ConstructionSite{Name: "Корпус 1/2"}},
		{Site: entities.ConstructionSite{Name: "Корпус 12"}},
		{Site: entities.ConstructionSite{Name: long}},
		{Site: entities.ConstructionSite{Name: long}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	names := f.GetSheetList()
	require.Len(t, names, 4)
	assert.Equal(t, "Корпус 12", names[0])
	assert.Equal(t, "Корпус 12 (2)", names[1])
	assert.Equal(t, string([]rune(long)[:31]), names[2])
	assert.Len(t, []rune(names[3]), 31)
	assert.NotEqual(t, names[2], names[3])
}

func TestRoundTripPours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.xlsx")
	pours := samplePours()
	require.NoError(t, WriteSites(path, []SiteSheet{{Site: entities.ConstructionSite{Name: "А"}, Pours: pours}}))

	rows, err := ReadRows(path, entities.KindPour)
	require.NoError(t, err)
	require.Len(t, rows, len(pours))

	assert.Equal(t, 4, rows[0].Number)
	assert.Equal(t, map[entities.Field]string{
		entities.FieldPourDate:         "01-06-2025",
		entities.FieldElement:          "Фундамент",
		entities.FieldConcreteClass:    "B25",
		entities.FieldFrostResistance:  "F150",
		entities.FieldWaterResistance:  "W6",
		entities.FieldSupplier:         "БетонСнаб",
		entities.FieldConcretePassport: "П-1",
		entities.FieldVolumeConcrete:   "12.5",
		entities.FieldCubesCount:       "6",
		entities.FieldConesCount:       "2",
		entities.FieldSlump:            "П3",
		entities.FieldTemperature:      "+5",
		entities.FieldTempMeasurements: "3",
		entities.FieldExecutor:         "Иванов",
		entities.FieldActNumber:        "А-1",
		entities.FieldRequestNumber:    "З-1",
		entities.FieldInvoice:          "С-7",
	}, rows[0].Values)
	assert.Equal(t, "Стена", rows[1].Values[entities.FieldElement])
	assert.Equal(t, "0", rows[1].Values[entities.FieldCubesCount])
}

// writeSheet saves rows as the only sheet of a new workbook
func writeSheet(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		cell := cellName(1, r+1)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadRowsMatchesHeadersByText(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"Телефон", "Примечание", "Название организации"},
		{"+7 900", "x", "Альфа"},
		{"", "", ""},
		{"+7 901", "без названия", ""},
		{nil, nil, "Бета"},
	})

	rows, err := ReadRows(path, entities.KindOrganization)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Альфа", rows[0].Values[entities.FieldName])
	assert.Equal(t, "+7 900", rows[0].Values[entities.FieldPhone])
	_, hasContact := rows[0].Values[entities.FieldContact]
	assert.False(t, hasContact)
	assert.Equal(t, "Бета", rows[1].Values[entities.FieldName])
	assert.Equal(t, 5, rows[1].Number)
}

func TestReadRowsAcceptsTemplateDateHeaderAndSerials(t *testing.T) {
	serial := 45809.0 // 2025-06-01
	path := writeSheet(t, [][]interface{}{
		{"Дата (ДД-ММ-ГГГГ)", "Конструктив", "Кубики"},
		{"03-06-2025", "Плита", 4},
		{serial, "Колонна", ""},
	})

	rows, err := ReadRows(path, entities.KindPour)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "03-06-2025", rows[0].Values[entities.FieldPourDate])
	assert.Equal(t, "4", rows[0].Values[entities.FieldCubesCount])

	want, err := excelize.ExcelDateToTime(serial, false)
	require.NoError(t, err)
	assert.Equal(t, want.Format(entities.DateLayout), rows[1].Values[entities.FieldPourDate])
	assert.Equal(t, time.June, want.Month())
}

func TestReadRowsWithoutHeader(t *testing.T) {
	path := writeSheet(t, [][]interface{}{{"Название", "Адрес"}, {"Объект", "ул. 1"}})
	_, err := ReadRows(path, entities.KindSite)
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestReadRowsMissingFile(t *testing.T) {
	_, err := ReadRows(filepath.Join(t.TempDir(), "absent.xlsx"), entities.KindSite)
	assert.ErrorIs(t, err, entities.ErrIO)
}

func TestWriteTemplate(t *testing.T) {
	for kind, name := range TemplateFileNames {
		t.Run(string(kind), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteTemplate(path, kind))

			rows, err := ReadRows(path, kind)
			require.NoError(t, err)
			assert.Empty(t, rows)

			f, err := excelize.OpenFile(path)
			require.NoError(t, err)
			defer f.Close()
			header, err := f.GetRows(f.GetSheetName(0))
			require.NoError(t, err)
			require.Len(t, header, 1)
			assert.Len(t, header[0], len(Columns(kind)))
		})
	}

	path := filepath.Join(t.TempDir(), "con.xlsx")
	require.NoError(t, WriteTemplate(path, entities.KindPour))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(f.GetSheetName(0), "A1")
	require.NoError(t, err)
	assert.Equal(t, DateTemplateHeader, v)
}
