package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumn(t *testing.T) {
	cols := []string{"Ring ID", " New Destenation ", "Site ID"}

	idx, ok := ResolveColumn(cols, "New Destination", "New Destenation")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = ResolveColumn(cols, "ring id")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = ResolveColumn(cols, "Fiber Type", "FIBER TYPE")
	assert.False(t, ok)
}

func TestSchemaResolve_ToleratesMisspelledDestination(t *testing.T) {
	for _, header := range []string{"New Destenation", "New Destination"} {
		cm, err := DefaultSchema().Resolve([]string{"Ring ID", "Site ID", header, "Fiber Type"})
		require.NoError(t, err)
		assert.Equal(t, 2, cm.Index[FieldDestinationID])
		assert.Equal(t, header, cm.Headers[FieldDestinationID])
		_, hasVendor := cm.Index[FieldVendor]
		assert.False(t, hasVendor)
	}
}

func TestSchemaResolve_MissingRequiredColumns(t *testing.T) {
	_, err := DefaultSchema().Resolve([]string{"Site ID", "Fiber Type"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))

	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []Field{FieldRingID, FieldDestinationID}, missing.Missing)
	assert.Contains(t, err.Error(), "New Destenation")
}

func TestSchemaMerge(t *testing.T) {
	merged := DefaultSchema().Merge(Schema{FieldRingID: {"Cincin", "Ring ID"}})

	assert.Equal(t, "Cincin", merged[FieldRingID][0])
	assert.Equal(t, 1, countFold(merged[FieldRingID], "ring id"))
	assert.Equal(t, DefaultSchema()[FieldVendor], merged[FieldVendor])
}

func countFold(names []string, want string) int {
	n := 0
	for _, name := range names {
		if strings.EqualFold(name, want) {
			n++
		}
	}
	return n
}

func TestColumnMapRecords(t *testing.T) {
	tbl := Table{
		Columns: []string{"Ring ID", "Site ID", "New Destenation", "Fiber Type", "Host Name", "FLP LENGTH"},
		Rows: [][]string{
			{"R1", " A ", "B", "Dark Fiber", "nan", "12.50"},
			{"R1", "B"},
		},
	}
	cm, err := DefaultSchema().Resolve(tbl.Columns)
	require.NoError(t, err)

	recs := cm.Records(tbl)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].SourceID)
	assert.Equal(t, "", recs[0].Hostname)
	assert.Equal(t, "12.5", recs[0].Length)
	assert.Equal(t, "", recs[1].DestinationID)
	assert.Equal(t, "", recs[1].FiberType)
}

func TestFormatLength(t *testing.T) {
	assert.Equal(t, "1200", formatLength("1200.000000"))
	assert.Equal(t, "0.75", formatLength(" 0.75 "))
	assert.Equal(t, "1.2 km", formatLength("1.2 km"))
	assert.Equal(t, "", formatLength(""))
	assert.Equal(t, "1200.5", formatLength("1200.50"))
	assert.Equal(t, "1200", formatLength("1200.0"))
	assert.Equal(t, "12345678901234567891", formatLength("12345678901234567891"))
	assert.Equal(t, "inf", formatLength("inf"))
	assert.Equal(t, "007", formatLength("007"))
	assert.Equal(t, "1e3", formatLength("1e3"))
	assert.Equal(t, "100", formatLength("100"))
}
