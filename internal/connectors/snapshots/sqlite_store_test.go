package snapshots

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiber-ring-topology-ui/internal/dataset"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTable() dataset.Table {
	return dataset.Table{
		Columns: []string{"Ring ID", "Site ID", "New Destenation", "Fiber Type"},
		Rows: [][]string{
			{"R1", "A", "B", "Dark Fiber"},
			{"R1", "B", "C", "P0"},
			{"R2", "X", "Y", ""},
		},
	}
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("  ")
	assert.Error(t, err)
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	meta, err := s.Save(ctx, " links.csv ", "upload", sampleTable())
	require.NoError(t, err)
	assert.Len(t, meta.ID, 36)
	assert.Equal(t, "links.csv", meta.Name)
	assert.Equal(t, 3, meta.RowCount)
	assert.Nil(t, meta.ActivatedAt)

	got, table, err := s.Get(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, got.ID)
	assert.Equal(t, sampleTable(), table)
}

func TestGet_Unknown(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.Save(ctx, "first", "upload", sampleTable())
	require.NoError(t, err)
	second, err := s.Save(ctx, "second", "upload", sampleTable())
	require.NoError(t, err)

	items, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	items, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestLatestPrefersActivated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	older, err := s.Save(ctx, "older", "upload", sampleTable())
	require.NoError(t, err)
	newer, err := s.Save(ctx, "newer", "upload", sampleTable())
	require.NoError(t, err)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	activated, err := s.Activate(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, activated.ActivatedAt)

	latest, err = s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, latest.ID)

	_, err = s.Activate(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	meta, err := s.Save(ctx, "gone", "upload", sampleTable())
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, meta.ID))
	assert.ErrorIs(t, s.Delete(ctx, meta.ID), ErrNotFound)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Snapshots)
	assert.Equal(t, int64(0), stats.Rows)
	assert.Empty(t, stats.ActiveID)
}

func TestLatestLoader(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	loader := LatestLoader{Store: s, Schema: dataset.DefaultSchema()}
	_, err := loader.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	meta, err := s.Save(ctx, "links", "upload", sampleTable())
	require.NoError(t, err)

	snap, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, snap.ID)
	assert.Equal(t, "snapshot:links", snap.Source)
	require.Len(t, snap.Records, 3)
	assert.Equal(t, "B", snap.Records[0].DestinationID)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Snapshots)
	assert.Equal(t, int64(3), stats.Rows)
	assert.Equal(t, meta.ID, stats.ActiveID)
}

func TestSnapshot_MissingColumns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	meta, err := s.Save(ctx, "bad", "upload", dataset.Table{Columns: []string{"Foo"}, Rows: [][]string{{"1"}}})
	require.NoError(t, err)

	_, err = s.Snapshot(ctx, meta.ID, dataset.DefaultSchema())
	assert.ErrorIs(t, err, dataset.ErrMissingColumns)
}
