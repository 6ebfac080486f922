package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrEmptyTable is returned when a source has no header row.
var ErrEmptyTable = errors.New("no header row found")

// Format is a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName derives the format from a file name extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Read parses r in the given format. sheet is only used for XLSX; an empty
// sheet selects the first one.
func Read(r io.Reader, format Format, sheet string) (Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r, sheet)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ReadFile opens path and parses it according to its extension.
func ReadFile(path, sheet string) (Table, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return Table{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	return Read(f, format, sheet)
}

// ReadCSV parses comma or semicolon separated data with a header row. A
// UTF-8 byte order mark is ignored.
func ReadCSV(r io.Reader) (Table, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	first, _ := br.Peek(4096)
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	if line, _, _ := bytes.Cut(first, []byte("\n")); bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		cr.Comma = ';'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	return tableFromRows(rows)
}

// ReadXLSX parses one worksheet of an XLSX workbook.
func ReadXLSX(r io.Reader, sheet string) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptyTable
	}
	name := sheets[0]
	if s := strings.TrimSpace(sheet); s != "" {
		found := false
		for _, candidate := range sheets {
			if strings.EqualFold(candidate, s) {
				name = candidate
				found = true
				break
			}
		}
		if !found {
			return Table{}, fmt.Errorf("sheet %q not found (have %s)", s, strings.Join(sheets, ", "))
		}
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (Table, error) {
	rows = dropEmptyRows(rows)
	if len(rows) == 0 {
		return Table{}, ErrEmptyTable
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return Table{Columns: header, Rows: rows[1:]}, nil
}
