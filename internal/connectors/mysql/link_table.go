package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fiber-ring-topology-ui/internal/dataset"
)

// LoadTable reads the whole link table. Column order follows the table
// definition; NULL cells become empty strings.
func (s *Store) LoadTable(ctx context.Context) (t dataset.Table, err error) {
	if s == nil || s.db == nil {
		return dataset.Table{}, errors.New("mysql store not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	defer func() { s.record("load_table", start, err) }()

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM `"+s.table+"`;")
	if err != nil {
		return dataset.Table{}, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return dataset.Table{}, err
	}

	t = dataset.Table{Columns: cols, Rows: make([][]string, 0, 256)}
	cells := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return dataset.Table{}, err
		}
		t.Rows = append(t.Rows, rowValues(cells))
	}
	if err := rows.Err(); err != nil {
		return dataset.Table{}, err
	}
	if len(t.Rows) == 0 {
		return t, dataset.ErrEmptyTable
	}
	return t, nil
}

func rowValues(cells []sql.NullString) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c.Valid {
			out[i] = strings.TrimSpace(c.String)
		}
	}
	return out
}

// Load implements dataset.Loader.
func (s *Store) Load(ctx context.Context) (*dataset.Snapshot, error) {
	t, err := s.LoadTable(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.NewSnapshot("", "mysql:"+s.dbName+"."+s.table, t, s.schema)
}
