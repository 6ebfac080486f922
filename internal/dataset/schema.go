package dataset

import (
	"errors"
	"fmt"
	"strings"

	"fiber-ring-topology-ui/internal/topology"
)

// Field is the canonical name of a link attribute.
type Field string

const (
	FieldRingID          Field = "ring_id"
	FieldSourceID        Field = "source_id"
	FieldDestinationID   Field = "destination_id"
	FieldFiberType       Field = "fiber_type"
	FieldSourceName      Field = "source_name"
	FieldDestinationName Field = "destination_name"
	FieldHostname        Field = "hostname"
	FieldVendor          Field = "vendor"
	FieldLength          Field = "length"
)

// AllFields lists fields in display order.
var AllFields = []Field{
	FieldRingID, FieldSourceID, FieldDestinationID, FieldFiberType,
	FieldSourceName, FieldDestinationName, FieldHostname, FieldVendor, FieldLength,
}

// RequiredFields must resolve for a table to be usable.
var RequiredFields = []Field{FieldRingID, FieldSourceID, FieldDestinationID}

// ErrMissingColumns is wrapped by MissingColumnsError.
var ErrMissingColumns = errors.New("required columns missing")

// MissingColumnsError is a configuration error: the source has no column for
// one or more required fields under any known alias.
type MissingColumnsError struct {
	Missing []Field
	Tried   map[Field][]string
}

func (e *MissingColumnsError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s (tried %s)", f, strings.Join(e.Tried[f], ", ")))
	}
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(parts, "; "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

// Schema lists, per field, the header names accepted for it in priority
// order. The first entry is the canonical header.
type Schema map[Field][]string

// DefaultSchema covers the headers seen in the link spreadsheets, including
// the "New Destenation" misspelling.
func DefaultSchema() Schema {
	return Schema{
		FieldRingID:          {"Ring ID", "RING ID", "Ring", "ring_id"},
		FieldSourceID:        {"Site ID", "New Site ID", "Source", "source_id"},
		FieldDestinationID:   {"New Destenation", "New Destination", "Destination", "destination_id"},
		FieldFiberType:       {"Fiber Type", "FIBER TYPE", "fiber_type"},
		FieldSourceName:      {"Site Name", "Source Name", "source_name"},
		FieldDestinationName: {"Destination Name", "New Destination Name", "destination_name"},
		FieldHostname:        {"Host Name", "Hostname", "hostname"},
		FieldVendor:          {"FLP Vendor", "Vendor", "vendor"},
		FieldLength:          {"FLP LENGTH", "FLP Length", "Length", "length"},
	}
}

// Merge returns a copy of s where fields present in overrides are tried
// first with their override names, then with the defaults.
func (s Schema) Merge(overrides Schema) Schema {
	out := make(Schema, len(s))
	for f, names := range s {
		out[f] = append([]string(nil), names...)
	}
	for f, names := range overrides {
		merged := make([]string, 0, len(names)+len(out[f]))
		seen := map[string]struct{}{}
		for _, n := range append(append([]string(nil), names...), out[f]...) {
			key := strings.ToLower(strings.TrimSpace(n))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, n)
		}
		out[f] = merged
	}
	return out
}

// ColumnMap holds the resolved column index per field; absent optional
// fields are not present in the map.
type ColumnMap struct {
	Index   map[Field]int    `json:"-"`
	Headers map[Field]string `json:"headers"`
}

// Resolve maps every field to a column of columns. Missing optional fields
// are tolerated; missing required fields yield a *MissingColumnsError.
func (s Schema) Resolve(columns []string) (ColumnMap, error) {
	cm := ColumnMap{Index: map[Field]int{}, Headers: map[Field]string{}}
	var missing []Field
	tried := map[Field][]string{}

	for _, f := range AllFields {
		names := s[f]
		if len(names) == 0 {
			names = []string{string(f)}
		}
		idx, ok := ResolveColumn(columns, names[0], names[1:]...)
		if ok {
			cm.Index[f] = idx
			cm.Headers[f] = columns[idx]
			continue
		}
		if isRequired(f) {
			missing = append(missing, f)
			tried[f] = names
		}
	}

	if len(missing) > 0 {
		return cm, &MissingColumnsError{Missing: missing, Tried: tried}
	}
	return cm, nil
}

func isRequired(f Field) bool {
	for _, r := range RequiredFields {
		if r == f {
			return true
		}
	}
	return false
}

func (cm ColumnMap) value(t Table, row int, f Field) string {
	idx, ok := cm.Index[f]
	if !ok {
		return ""
	}
	v := t.Cell(row, idx)
	if topology.IsPlaceholder(v) {
		return ""
	}
	return v
}

// Records converts every row of t into a LinkRecord. Identifiers are kept
// as read (trimmed) so the builder can apply its own normalization.
func (cm ColumnMap) Records(t Table) []topology.LinkRecord {
	out := make([]topology.LinkRecord, 0, len(t.Rows))
	for i := range t.Rows {
		out = append(out, topology.LinkRecord{
			RingID:          cm.value(t, i, FieldRingID),
			SourceID:        t.Cell(i, cm.indexOr(FieldSourceID)),
			DestinationID:   t.Cell(i, cm.indexOr(FieldDestinationID)),
			FiberType:       cm.value(t, i, FieldFiberType),
			SourceName:      cm.value(t, i, FieldSourceName),
			DestinationName: cm.value(t, i, FieldDestinationName),
			Hostname:        cm.value(t, i, FieldHostname),
			Vendor:          cm.value(t, i, FieldVendor),
			Length:          formatLength(cm.value(t, i, FieldLength)),
		})
	}
	return out
}

func (cm ColumnMap) indexOr(f Field) int {
	if idx, ok := cm.Index[f]; ok {
		return idx
	}
	return -1
}
