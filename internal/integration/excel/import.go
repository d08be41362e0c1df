package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/xuri/excelize/v2"
)

// headerSearchRows is how many leading rows are searched for the header row
const headerSearchRows = 10

// Row is one data row of an imported sheet
type Row struct {
	Number int // 1-based row number in the sheet
	Values map[entities.Field]string
}

// ReadRows reads the data rows of kind from the first sheet of the workbook at path.
// The header row is the first row containing the primary header of kind; columns are
// matched by exact header text and rows with an empty primary cell are skipped.
func ReadRows(path string, kind entities.Kind) ([]Row, error) {
	columns := Columns(kind)
	if columns == nil {
		return nil, entities.Invalid("kind", fmt.Sprintf("unknown kind %q", kind))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %s: %v", entities.ErrIO, path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read workbook %s: %v", entities.ErrIO, path, err)
	}

	header, index, err := locateHeader(rows, columns)
	if err != nil {
		return nil, err
	}

	primary := columns[0].Field
	var out []Row
	for r := header + 1; r < len(rows); r++ {
		values := make(map[entities.Field]string, len(index))
		for field, pos := range index {
			if pos < len(rows[r]) {
				values[field] = strings.TrimSpace(rows[r][pos])
			}
		}
		if values[primary] == "" {
			continue
		}
		if kind == entities.KindPour {
			values[entities.FieldPourDate] = normalizeDate(values[entities.FieldPourDate])
		}
		out = append(out, Row{Number: r + 1, Values: values})
	}
	return out, nil
}

// locateHeader finds the header row and the position of every known column in it
func locateHeader(rows [][]string, columns []Column) (int, map[entities.Field]int, error) {
	limit := len(rows)
	if limit > headerSearchRows {
		limit = headerSearchRows
	}
	for r := 0; r < limit; r++ {
		if !containsHeader(rows[r], columns[0]) {
			continue
		}
		index := make(map[entities.Field]int, len(columns))
		for pos, text := range rows[r] {
			text = strings.TrimSpace(text)
			for _, col := range columns {
				if _, seen := index[col.Field]; !seen && col.matches(text) {
					index[col.Field] = pos
				}
			}
		}
		return r, index, nil
	}
	return 0, nil, entities.Invalid("header", fmt.Sprintf("column %q not found", columns[0].Header))
}

func containsHeader(row []string, col Column) bool {
	for _, text := range row {
		if col.matches(strings.TrimSpace(text)) {
			return true
		}
	}
	return false
}

// normalizeDate converts an Excel date serial into DD-MM-YYYY; other text is kept as is
func normalizeDate(raw string) string {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format(entities.DateLayout)
}
