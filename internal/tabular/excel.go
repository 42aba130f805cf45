package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// sheetNames maps each canonical table to the workbook sheet that carries it,
// grounded in the layout original_source/backend/app/excel_data_loader.py
// reads: one sheet per table, header row first.
var sheetNames = map[TableName]string{
	TableNodeTypes:            "NodeTypes",
	TableOpeningStock:         "OpeningStock",
	TableClosingStock:         "ClosingStock",
	TableProductionCost:       "ProductionCost",
	TableProductionCapacity:   "ProductionCapacity",
	TableDemand:               "Demand",
	TableLogistics:            "Logistics",
	TableStrategicConstraints: "StrategicConstraints",
}

// LoadWorkbook reads a .xlsx workbook at path, one sheet per canonical table,
// and parses it into Tables. Sheets that are absent from the workbook are
// simply skipped; a workbook need not carry every table (e.g. a horizon with
// no strategic constraints in effect).
func (l *Loader) LoadWorkbook(path string) (*Tables, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	raw := make(map[TableName]Table, len(sheetNames))
	for table, sheet := range sheetNames {
		if idx, err := wb.GetSheetIndex(sheet); err != nil || idx == -1 {
			continue
		}
		rows, err := readSheet(wb, sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		raw[table] = Table{Name: table, Rows: rows}
	}
	return l.Load(raw)
}

// readSheet reads a sheet's first row as headers and every subsequent row as
// a Row keyed by those headers.
func readSheet(wb *excelize.File, sheet string) ([]Row, error) {
	grid, err := wb.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, nil
	}
	header := grid[0]
	rows := make([]Row, 0, len(grid)-1)
	for _, line := range grid[1:] {
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(line) {
				row[h] = line[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
