package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = "\ufeffRing ID,Site ID,New Destenation,Fiber Type,FLP LENGTH\n" +
	"R1,A,B,Dark Fiber,10\n" +
	",,,,\n" +
	"R1,B,C,P0,2.5\n"

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ring ID", "Site ID", "New Destenation", "Fiber Type", "FLP LENGTH"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2, "blank rows are dropped")
	assert.Equal(t, "C", tbl.Cell(1, 2))
	assert.Equal(t, "", tbl.Cell(1, 9))
}

func TestReadCSV_Semicolons(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("Ring ID;Site ID;New Destination\nR1;A;B\n"))
	require.NoError(t, err)
	assert.Len(t, tbl.Columns, 3)
	assert.Equal(t, "B", tbl.Cell(0, 2))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func writeWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Ring ID", "Site ID", "New Destination", "Fiber Type", "Site Name"},
		{"R7", "S1", "S2", "P0_1", "Alpha"},
		{"R7", "S2", "S3", "dark fiber", "Beta"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(dir, "links.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadFile_XLSX(t *testing.T) {
	path := writeWorkbook(t, t.TempDir())

	tbl, err := ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "New Destination", tbl.Columns[2])
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "P0_1", tbl.Cell(0, 3))

	_, err = ReadFile(path, "Missing")
	assert.Error(t, err)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := ReadFile(path, "")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRead_FormatDispatch(t *testing.T) {
	path := writeWorkbook(t, t.TempDir())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	tbl, err := Read(bytes.NewReader(raw), FormatXLSX, "sheet1")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	snap, err := FileLoader{Path: path, Schema: DefaultSchema()}.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "file:"+path, snap.Source)
	require.Len(t, snap.Records, 2)
	assert.Equal(t, "2.5", snap.Records[1].Length)
}

func TestFileLoader_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.csv")
	require.NoError(t, os.WriteFile(path, []byte("Site ID,Other\nA,B\n"), 0o600))

	_, err := FileLoader{Path: path, Schema: DefaultSchema()}.Load(context.Background())
	assert.ErrorIs(t, err, ErrMissingColumns)
}
