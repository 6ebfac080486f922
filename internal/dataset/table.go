package dataset

import "strings"

// Table is a header row plus data rows as read from a spreadsheet, CSV file
// or database table. Rows may be shorter than the header.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Cell returns the trimmed value at row/col, or "" when out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// ResolveColumn returns the index of the first of canonical and aliases that
// is present in columns. Header names are compared trimmed and
// case-insensitively. The boolean is false when none match.
func ResolveColumn(columns []string, canonical string, aliases ...string) (int, bool) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	for _, name := range append([]string{canonical}, aliases...) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			return i, true
		}
	}
	return -1, false
}

// dropEmptyRows removes rows whose cells are all blank.
func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
