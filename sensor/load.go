package sensor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// timeLayouts are tried in order for text timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseTime parses a timestamp cell. Numbers are read as Excel serial dates.
func ParseTime(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(cell, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			// Serial dates carry float error; sensors log at whole seconds.
			return t.Round(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, cell)
}

// Load reads a sensor table from an .xlsx or .csv file.
// sheet selects the workbook sheet and is ignored for CSV; "" means the first sheet.
func Load(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadWorkbook(path, sheet)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadWorkbook reads a sensor table from an Excel workbook. The header row
// must contain a "time" column; every other column is kept as text.
func LoadWorkbook(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook %s has no sheets", ErrEmptySheet, path)
		}
		sheet = sheets[0]
	}

	// Raw values keep numbers unformatted and dates as serial numbers.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	slog.Default().With("component", "sensor-loader").Debug("read workbook", "path", path, "sheet", sheet, "rows", len(rows))
	return fromRows(rows)
}

// LoadCSV reads a sensor table from CSV with the same layout as the workbook.
func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return fromRows(rows)
}

// fromRows builds a table from a header row and data rows. Short rows are
// padded with blank cells; fully blank rows are skipped.
func fromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	header := rows[0]
	timeIdx := -1
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == TimeColumn {
			timeIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, TimeColumn)
	}

	var index []time.Time
	cells := make([][]string, len(header))
	for n, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		cell := func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}

		ts, err := ParseTime(cell(timeIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		index = append(index, ts)
		for i := range header {
			if i != timeIdx {
				cells[i] = append(cells[i], cell(i))
			}
		}
	}

	t := NewTable(index)
	for i, name := range header {
		if i == timeIdx || name == "" {
			continue
		}
		col := cells[i]
		if col == nil {
			col = []string{}
		}
		if err := t.AddText(name, col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
