package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/nmdb/internal/shared"
	"github.com/xuri/excelize/v2"
)

type cellKind int

const (
	textCell cellKind = iota
	intCell
	boolCell
	durationCell
)

var columnKinds = map[string]cellKind{
	"index":    intCell,
	"year":     intCell,
	"duration": durationCell,
	"isLoop":   boolCell,
	"isBest":   boolCell,
	"isLink":   boolCell,
}

// Sheet is a named table destined for a workbook.
type Sheet struct {
	Name  string
	Table *Table
}

// WorkbookFileName returns the workbook file name for locale.
func WorkbookFileName(locale string) string {
	return fmt.Sprintf("Nintendo Music Database(%s).xlsx", locale)
}

// WriteWorkbook writes sheets in order into a new workbook at path, replacing any existing file.
//
// Numeric and boolean columns become typed cells and the duration column is rendered as m:ss.
func WriteWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s has no sheets", path)
	}
	seen := make(map[string]bool, len(sheets))
	for _, sheet := range sheets {
		key := strings.ToLower(sheet.Name)
		if seen[key] {
			return fmt.Errorf("%w: %q", shared.ErrSheetConflict, sheet.Name)
		}
		seen[key] = true
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), sheet.Name)
		} else {
			_, err = f.NewSheet(sheet.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	sw, err := f.NewStreamWriter(sheet.Name)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", sheet.Name, err)
	}

	header := make([]any, len(sheet.Table.Header))
	kinds := make([]cellKind, len(sheet.Table.Header))
	for i, h := range sheet.Table.Header {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
		kinds[i] = columnKinds[h]
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet.Name, err)
	}

	for r, record := range sheet.Table.Rows {
		values := make([]any, len(record))
		for c, raw := range record {
			kind := textCell
			if c < len(kinds) {
				kind = kinds[c]
			}
			values[c] = cellValue(kind, raw)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", r+1, sheet.Name, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %q: %w", sheet.Name, err)
	}
	return nil
}

// cellValue converts raw CSV text into a typed cell value. Text that does not parse is kept as is.
func cellValue(kind cellKind, raw string) any {
	switch kind {
	case intCell:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	case boolCell:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case durationCell:
		if ms, err := strconv.Atoi(raw); err == nil {
			return FormatDuration(ms)
		}
	}
	return raw
}
