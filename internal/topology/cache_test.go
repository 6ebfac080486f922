package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphCache_KeyedBySnapshot(t *testing.T) {
	c := NewGraphCache(4)
	k1 := CacheKey{SnapshotID: "snap-1", RingID: "R1", Options: DefaultOptions().Fingerprint()}
	k2 := k1
	k2.SnapshotID = "snap-2"

	c.Put(k1, Graph{RingID: "R1", Skipped: 1})

	g, ok := c.Get(k1)
	assert.True(t, ok)
	assert.Equal(t, 1, g.Skipped)

	_, ok = c.Get(k2)
	assert.False(t, ok)
}

func TestGraphCache_EvictsOldest(t *testing.T) {
	c := NewGraphCache(2)
	for i := 0; i < 3; i++ {
		c.Put(CacheKey{SnapshotID: "s", RingID: fmt.Sprintf("R%d", i)}, Graph{})
	}

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(CacheKey{SnapshotID: "s", RingID: "R0"})
	assert.False(t, ok)
	_, ok = c.Get(CacheKey{SnapshotID: "s", RingID: "R2"})
	assert.True(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestGraphCache_Disabled(t *testing.T) {
	c := NewGraphCache(0)
	k := CacheKey{SnapshotID: "s", RingID: "R"}
	c.Put(k, Graph{})
	_, ok := c.Get(k)
	assert.False(t, ok)

	var nilCache *GraphCache
	nilCache.Put(k, Graph{})
	assert.Equal(t, 0, nilCache.Len())
}
