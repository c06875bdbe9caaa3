package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	sheetName = "Claims"
)

// ExportFilename names an export of the given range: claims_<start>_to_<end>.<ext>.
func ExportFilename(start, end, ext string) string {
	return fmt.Sprintf("claims_%s_to_%s.%s", start, end, ext)
}

// exportRows lays the pivot out as the header, the TOTAL row and one row
// per insurer. Counts are ints so spreadsheet cells stay numeric.
func exportRows(p Pivot) [][]any {
	header := make([]any, 0, len(p.Dates)+2)
	header = append(header, "Insurer")
	for _, d := range p.Dates {
		header = append(header, d)
	}
	header = append(header, "Total")

	total := []any{"TOTAL"}
	for _, d := range p.Dates {
		total = append(total, p.DateTotal(d))
	}
	total = append(total, p.GrandTotal())

	rows := [][]any{header, total}
	for _, ins := range p.Insurers {
		row := []any{ins}
		for _, d := range p.Dates {
			row = append(row, p.Cell(ins, d))
		}
		rows = append(rows, append(row, p.InsurerTotal(ins)))
	}
	return rows
}

// WriteCSV writes the pivot as CSV. Insurer names are always quoted.
func WriteCSV(w io.Writer, p Pivot) error {
	bw := bufio.NewWriter(w)
	for i, row := range exportRows(p) {
		cells := make([]string, len(row))
		for j, v := range row {
			switch v := v.(type) {
			case int:
				cells[j] = strconv.Itoa(v)
			case string:
				cells[j] = v
				if i > 1 && j == 0 {
					cells[j] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
				}
			}
		}
		if _, err := bw.WriteString(strings.Join(cells, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteXLSX writes the pivot as a single-sheet workbook with a bold header
// row and a frozen first column.
func WriteXLSX(w io.Writer, p Pivot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	rows := exportRows(p)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A2", lastCol+"2", totalStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return err
	}
	if len(rows[0]) > 1 {
		if err := f.SetColWidth(sheetName, "B", lastCol, 12); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
