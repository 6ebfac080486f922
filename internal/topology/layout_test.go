package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridPosition_ZigZag(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, Position{Column: 0, Row: 0, X: 0, Y: 0}, GridPosition(0, opts))
	assert.Equal(t, 7, GridPosition(7, opts).Column)
	assert.Equal(t, 7, GridPosition(8, opts).Column)
	assert.Equal(t, 0, GridPosition(15, opts).Column)
	assert.Equal(t, 0, GridPosition(16, opts).Column)
	assert.Equal(t, 2, GridPosition(16, opts).Row)

	p := GridPosition(9, opts)
	assert.Equal(t, float64(6)*DefaultXSpacing, p.X)
	assert.Equal(t, DefaultYSpacing, p.Y)
}

func TestGridPosition_UniqueCells(t *testing.T) {
	for _, mode := range []LayoutMode{LayoutZigZag, LayoutPlain} {
		seen := map[[2]int]int{}
		for i := 0; i < 100; i++ {
			p := GridPosition(i, Options{Layout: mode})
			cell := [2]int{p.Column, p.Row}
			prev, dup := seen[cell]
			require.False(t, dup, "mode %s: index %d reuses cell of index %d", mode, i, prev)
			seen[cell] = i
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultOptions(), o)
	assert.Equal(t, DefaultOptions().Fingerprint(), Options{}.Fingerprint())
	assert.NotEqual(t, DefaultOptions().Fingerprint(), Options{Layout: LayoutPlain}.Fingerprint())
}

func TestParseModes(t *testing.T) {
	m, err := ParseLayoutMode("Zig-Zag")
	require.NoError(t, err)
	assert.Equal(t, LayoutZigZag, m)

	m, err = ParseLayoutMode("plain")
	require.NoError(t, err)
	assert.Equal(t, LayoutPlain, m)

	_, err = ParseLayoutMode("spiral")
	assert.Error(t, err)

	l, err := ParseLookupMode("source-first")
	require.NoError(t, err)
	assert.Equal(t, LookupSourceFirst, l)

	_, err = ParseLookupMode("random")
	assert.Error(t, err)
}
