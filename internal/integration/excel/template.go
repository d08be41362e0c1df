package excel

import (
	"fmt"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/xuri/excelize/v2"
)

// TemplateFileNames are the default file names of the import templates
var TemplateFileNames = map[entities.Kind]string{
	entities.KindOrganization: "template_org.xlsx",
	entities.KindSite:         "template_obj.xlsx",
	entities.KindPour:         "template_constr.xlsx",
}

// WriteTemplate writes an import template with the header row of kind
func WriteTemplate(path string, kind entities.Kind) error {
	columns := Columns(kind)
	if columns == nil {
		return entities.Invalid("kind", fmt.Sprintf("unknown kind %q", kind))
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return err
	}

	for i, col := range columns {
		header := col.Header
		if col.Field == entities.FieldPourDate {
			header = DateTemplateHeader
		}
		cell := cellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
			return err
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, 20); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: failed to save template %s: %v", entities.ErrIO, path, err)
	}
	return nil
}
