package output

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arloliu/cqltask/types"
)

// SheetName is the name of the single result sheet.
const SheetName = "Results"

// XLSX writes result as a workbook with a header row and one row per
// result row.
func XLSX(w io.Writer, result *types.Result) error {
	f, err := workbook(result)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)

	return err
}

func workbook(result *types.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeSheet(f, result); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

func writeSheet(f *excelize.File, result *types.Result) error {
	columns := Columns(result)
	if len(columns) == 0 {
		return nil
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}

	// Column widths and panes must be set before the first row.
	for i, width := range columnWidths(columns, result.QueryResults) {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	headers := make([]any, len(columns))
	for i, col := range columns {
		headers[i] = excelize.Cell{Value: col, StyleID: headerStyle}
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, row := range result.QueryResults {
		cells := make([]any, len(columns))
		for j, col := range columns {
			v := cellValue(row[col])
			if _, ok := v.(time.Time); ok {
				v = excelize.Cell{Value: v, StyleID: dateStyle}
			}
			cells[j] = v
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}

	return sw.Flush()
}

func columnWidths(columns []string, rows []types.Row) []float64 {
	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = float64(len(col))
		for _, row := range rows {
			widths[i] = max(widths[i], float64(len(FormatValue(row[col]))))
		}
		widths[i] = min(widths[i]+2, 80)
	}

	return widths
}

// cellValue keeps numbers, booleans and times native and stringifies the rest.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool, string:
		return val
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val.UTC()
	default:
		return FormatValue(val)
	}
}
