package formatter

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/oakwood-commons/tblx/pkg/table"
)

// ExportSheetName is the worksheet name used for XLSX exports.
const ExportSheetName = "Export"

// WriteCSV writes the header labels and every row of v. Fields containing a
// comma, quote, or line break are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, v table.View) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = c.Title()
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range v.Rows {
		rec := make([]string, len(v.Columns))
		for i, c := range v.Columns {
			rec[i] = exportString(r[c.Key])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes v to a single-sheet workbook. Numbers, booleans, and times
// keep their cell types.
func WriteXLSX(w io.Writer, v table.View) error {
	f, err := buildWorkbook(v)
	if err != nil {
		return err
	}
	return f.Write(w)
}

func buildWorkbook(v table.View) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(ExportSheetName)
	if err != nil {
		return nil, errorf("add sheet: %w", err)
	}
	header := sheet.AddRow()
	for _, c := range v.Columns {
		header.AddCell().SetString(c.Title())
	}
	for _, r := range v.Rows {
		row := sheet.AddRow()
		for _, c := range v.Columns {
			setCell(row.AddCell(), r[c.Key])
		}
	}
	return f, nil
}

func setCell(cell *xlsx.Cell, v any) {
	switch t := v.(type) {
	case nil:
		cell.SetString("")
	case int:
		cell.SetInt(t)
	case int64:
		cell.SetInt64(t)
	case int32:
		cell.SetInt64(int64(t))
	case float64:
		cell.SetFloat(t)
	case float32:
		cell.SetFloat(float64(t))
	case bool:
		cell.SetBool(t)
	case time.Time:
		cell.SetDateTime(t)
	default:
		cell.SetString(exportString(v))
	}
}

// exportString is Cell without escaping: exports keep real line breaks.
func exportString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Cell(v)
}

// ExportFormat picks the export writer from a file name.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// FormatFor returns the export format implied by path's extension.
func FormatFor(path string) (ExportFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ExportCSV, nil
	case ".xlsx":
		return ExportXLSX, nil
	default:
		return "", errorf("unsupported export format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// Export writes v to w in the given format.
func Export(w io.Writer, format ExportFormat, v table.View) error {
	switch format {
	case ExportCSV:
		return WriteCSV(w, v)
	case ExportXLSX:
		return WriteXLSX(w, v)
	default:
		return errorf("unsupported export format %q", format)
	}
}
