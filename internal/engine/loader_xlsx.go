package engine

import (
	"fmt"
	"strings"

	"flightdash/internal/models"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the observation table from a worksheet of an Excel
// workbook. An empty sheet name selects the first sheet.
func LoadXLSX(path, sheet string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, loadErr(path, "open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, loadErr(path, "workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, loadErr(path, fmt.Sprintf("read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, loadErr(path, fmt.Sprintf("sheet %q has no header row", sheet), nil)
	}

	lay, err := newLayout(rows[0])
	if err != nil {
		return nil, loadErr(path, "header", err)
	}

	obs := make([]models.Observation, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		// Trailing empty cells are trimmed by GetRows.
		field := func(pos int) string {
			if pos < len(row) {
				return row[pos]
			}
			return ""
		}
		o, err := lay.parse(field)
		if err != nil {
			return nil, loadErr(path, fmt.Sprintf("sheet %q row %d", sheet, i+2), err)
		}
		obs = append(obs, o)
	}
	return NewDataset(obs), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
