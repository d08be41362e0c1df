package excel

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/xuri/excelize/v2"
)

// Rows of the export layout
const (
	organizationRow = 1
	siteRow         = 2
	headerRow       = 3
	firstDataRow    = 4
)

// maxSheetName is the sheet name length limit of the xlsx format
const maxSheetName = 31

// SiteSheet is the content of one exported sheet
type SiteSheet struct {
	Organization entities.Organization
	Site         entities.ConstructionSite
	Pours        []entities.PourRecord // in pour date order
}

// WriteSites writes one sheet per site to a new workbook at path
func WriteSites(path string, sheets []SiteSheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	used := make(map[string]bool)
	for i, s := range sheets {
		name := uniqueSheetName(s.Site.Name, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
		if err := writeSiteSheet(f, name, s, styles); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: failed to save workbook %s: %v", entities.ErrIO, path, err)
	}
	return nil
}

type sheetStyles struct {
	title   int
	header  int
	text    int
	integer int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.text, err = f.NewStyle(&excelize.Style{Alignment: center}); err != nil {
		return s, err
	}
	// built-in number format 1 is "0"
	if s.integer, err = f.NewStyle(&excelize.Style{Alignment: center, NumFmt: 1}); err != nil {
		return s, err
	}
	return s, nil
}

func writeSiteSheet(f *excelize.File, sheet string, s SiteSheet, styles sheetStyles) error {
	if err := f.SetCellValue(sheet, cellName(1, organizationRow), "Организация: "+s.Organization.Name); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cellName(1, siteRow), "Объект: "+s.Site.Name); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cellName(1, organizationRow), cellName(1, siteRow), styles.title); err != nil {
		return err
	}

	widths := make([]int, len(pourColumns))
	for i, col := range pourColumns {
		cell := cellName(i+1, headerRow)
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return err
		}
		widths[i] = utf8.RuneCountInString(col.Header)
	}

	for r, p := range s.Pours {
		row := firstDataRow + r
		for i, col := range pourColumns {
			cell := cellName(i+1, row)
			v := pourCell(p, col.Field)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			style := styles.text
			if col.Integer {
				style = styles.integer
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
			if n := utf8.RuneCountInString(cellText(v)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(w+2)); err != nil {
			return err
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

var sheetNameCleaner = strings.NewReplacer(
	":", "", `\`, "", "/", "", "?", "", "*", "", "[", "", "]", "", "'", "")

// uniqueSheetName turns a site name into a valid sheet name not yet in used
func uniqueSheetName(siteName string, used map[string]bool) string {
	base := strings.TrimSpace(sheetNameCleaner.Replace(siteName))
	if base == "" {
		base = "Объект"
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
