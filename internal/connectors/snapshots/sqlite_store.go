package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fiber-ring-topology-ui/internal/dataset"
)

// ErrNotFound is returned when a snapshot id is unknown.
var ErrNotFound = errors.New("snapshot not found")

// Meta describes one stored snapshot without its rows.
type Meta struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Source      string     `json:"source"`
	RowCount    int        `json:"row_count"`
	Columns     []string   `json:"columns"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}

// Stats reports store volume for the status endpoint.
type Stats struct {
	Snapshots int64  `json:"snapshots"`
	Rows      int64  `json:"rows"`
	ActiveID  string `json:"active_id,omitempty"`
}

// Store keeps uploaded link tables in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS snapshots (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  row_count INTEGER NOT NULL DEFAULT 0,
  columns_json TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  activated_at INTEGER
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS snapshot_rows (
  snapshot_id TEXT NOT NULL,
  row_index INTEGER NOT NULL,
  cells_json TEXT NOT NULL,
  PRIMARY KEY(snapshot_id, row_index)
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file the store was opened with.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save stores t under a new id. The snapshot is not activated.
func (s *Store) Save(ctx context.Context, name, source string, t dataset.Table) (Meta, error) {
	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return Meta{}, err
	}
	meta := Meta{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Source:    strings.TrimSpace(source),
		RowCount:  len(t.Rows),
		Columns:   append([]string(nil), t.Columns...),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Meta{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO snapshots (id, name, source, row_count, columns_json, created_at)
VALUES (?, ?, ?, ?, ?, ?);
`, meta.ID, meta.Name, meta.Source, meta.RowCount, string(cols), meta.CreatedAt.UnixNano()); err != nil {
		return Meta{}, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_rows (snapshot_id, row_index, cells_json) VALUES (?, ?, ?);`)
	if err != nil {
		return Meta{}, err
	}
	defer stmt.Close()
	for i, row := range t.Rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return Meta{}, err
		}
		if _, err := stmt.ExecContext(ctx, meta.ID, i, string(cells)); err != nil {
			return Meta{}, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Meta{}, err
	}
	return meta, nil
}

const metaColumns = `id, name, source, row_count, columns_json, created_at, activated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeta(r rowScanner) (Meta, error) {
	var (
		item      Meta
		colsJSON  string
		created   int64
		activated sql.NullInt64
	)
	if err := r.Scan(&item.ID, &item.Name, &item.Source, &item.RowCount, &colsJSON, &created, &activated); err != nil {
		return Meta{}, err
	}
	if err := json.Unmarshal([]byte(colsJSON), &item.Columns); err != nil {
		return Meta{}, fmt.Errorf("decode columns of %s: %w", item.ID, err)
	}
	item.CreatedAt = time.Unix(0, created).UTC()
	if activated.Valid {
		t := time.Unix(0, activated.Int64).UTC()
		item.ActivatedAt = &t
	}
	return item, nil
}

// List returns snapshot metadata, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Meta, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+metaColumns+`
FROM snapshots
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Meta, 0, limit)
	for rows.Next() {
		item, err := scanMeta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Meta returns the metadata of one snapshot.
func (s *Store) Meta(ctx context.Context, id string) (Meta, error) {
	item, err := scanMeta(s.db.QueryRowContext(ctx, `SELECT `+metaColumns+` FROM snapshots WHERE id = ?;`, strings.TrimSpace(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return Meta{}, ErrNotFound
	}
	return item, err
}

// Get returns the metadata and the full table of one snapshot.
func (s *Store) Get(ctx context.Context, id string) (Meta, dataset.Table, error) {
	meta, err := s.Meta(ctx, id)
	if err != nil {
		return Meta{}, dataset.Table{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT cells_json
FROM snapshot_rows
WHERE snapshot_id = ?
ORDER BY row_index;
`, meta.ID)
	if err != nil {
		return Meta{}, dataset.Table{}, err
	}
	defer rows.Close()

	t := dataset.Table{Columns: meta.Columns, Rows: make([][]string, 0, meta.RowCount)}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return Meta{}, dataset.Table{}, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return Meta{}, dataset.Table{}, fmt.Errorf("decode row of %s: %w", meta.ID, err)
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return Meta{}, dataset.Table{}, err
	}
	return meta, t, nil
}

// Activate marks id as the snapshot Latest should return.
func (s *Store) Activate(ctx context.Context, id string) (Meta, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE snapshots SET activated_at = ? WHERE id = ?;`, time.Now().UTC().UnixNano(), strings.TrimSpace(id))
	if err != nil {
		return Meta{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Meta{}, ErrNotFound
	}
	return s.Meta(ctx, id)
}

// Latest returns the most recently activated snapshot, or the newest one
// when none was ever activated.
func (s *Store) Latest(ctx context.Context) (Meta, error) {
	item, err := scanMeta(s.db.QueryRowContext(ctx, `
SELECT `+metaColumns+`
FROM snapshots
ORDER BY activated_at IS NULL, activated_at DESC, created_at DESC, rowid DESC
LIMIT 1;
`))
	if errors.Is(err, sql.ErrNoRows) {
		return Meta{}, ErrNotFound
	}
	return item, err
}

// Delete removes a snapshot and its rows.
func (s *Store) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_rows WHERE snapshot_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Stats counts stored snapshots and rows.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(row_count), 0) FROM snapshots;`).Scan(&out.Snapshots, &out.Rows); err != nil {
		return nil, err
	}
	if latest, err := s.Latest(ctx); err == nil {
		out.ActiveID = latest.ID
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return out, nil
}

// LatestLoader serves the store's latest snapshot as a dataset.Loader.
type LatestLoader struct {
	Store  *Store
	Schema dataset.Schema
}

func (l LatestLoader) Load(ctx context.Context) (*dataset.Snapshot, error) {
	meta, err := l.Store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return l.Store.Snapshot(ctx, meta.ID, l.Schema)
}

// Snapshot resolves the stored table id against schema. The stored id is
// reused as the snapshot id.
func (s *Store) Snapshot(ctx context.Context, id string, schema dataset.Schema) (*dataset.Snapshot, error) {
	meta, t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	source := "snapshot:" + meta.ID
	if meta.Name != "" {
		source = "snapshot:" + meta.Name
	}
	return dataset.NewSnapshot(meta.ID, source, t, schema)
}
