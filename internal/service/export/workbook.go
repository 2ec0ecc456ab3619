package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type workbook struct {
	f     *excelize.File
	sheet string
}

// newWorkbook creates a single-sheet file with a bold, frozen header row.
func newWorkbook(sheet string, headers []string) (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	w := &workbook{f: f, sheet: sheet}
	for i, name := range headers {
		w.set(i+1, 1, name)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	if len(headers) > 0 {
		if err := f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("apply header style: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(headers))
		f.SetColWidth(sheet, "A", lastCol, 15)
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return w, nil
}

func (w *workbook) set(col, row int, v any) {
	w.f.SetCellValue(w.sheet, cellName(col, row), v)
}

func (w *workbook) bytes() ([]byte, error) {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
