package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiber-ring-topology-ui/internal/topology"
)

func sampleRecords() []topology.LinkRecord {
	return []topology.LinkRecord{
		{RingID: "R2", SourceID: "JKT-01", DestinationID: "JKT-02", Hostname: "core-a", Vendor: "Acme"},
		{RingID: "R1", SourceID: "BDG-01", DestinationID: "BDG-02", Hostname: "edge-b", Vendor: "Beta"},
		{RingID: "R2", SourceID: "JKT-02", DestinationID: "JKT-03", Hostname: "core-c", Vendor: "Acme"},
		{RingID: "R1", SourceID: "BDG-02", DestinationID: "jkt-09", Hostname: "edge-d", Vendor: "Beta"},
		{RingID: "nan", SourceID: "JKT-99", DestinationID: "JKT-98"},
	}
}

func TestParseSearchField(t *testing.T) {
	f, err := ParseSearchField("Host Name")
	require.NoError(t, err)
	assert.Equal(t, SearchHost, f)

	f, err = ParseSearchField("")
	require.NoError(t, err)
	assert.Equal(t, SearchSite, f)

	_, err = ParseSearchField("colour")
	assert.Error(t, err)
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	got := Filter(sampleRecords(), SearchSite, "jkt")
	require.Len(t, got, 3)
	assert.Equal(t, "JKT-01", got[0].SourceID)

	assert.Len(t, Filter(sampleRecords(), SearchHost, "EDGE"), 2)
	assert.Len(t, Filter(sampleRecords(), SearchVendor, "acme"), 2)
	assert.Len(t, Filter(sampleRecords(), SearchRing, ""), 5)
	assert.Empty(t, Filter(sampleRecords(), SearchRing, "R9"))
}

func TestGroupByRing_FirstAppearanceOrder(t *testing.T) {
	rings, dropped := GroupByRing(sampleRecords())

	require.Len(t, rings, 2)
	assert.Equal(t, "R2", rings[0].ID)
	assert.Equal(t, "R1", rings[1].ID)
	assert.Len(t, rings[0].Records, 2)
	assert.Equal(t, 1, dropped)
}

func TestSearch_WholeRingScope(t *testing.T) {
	res := Search(sampleRecords(), SearchRequest{Field: SearchSite, Query: "BDG-01", Scope: ScopeRing})

	assert.Equal(t, 1, res.Matched)
	require.Len(t, res.Rings, 1)
	assert.Equal(t, "R1", res.Rings[0].ID)
	assert.Len(t, res.Rings[0].Records, 2, "the whole ring is returned")
}

func TestSearch_MatchedScope(t *testing.T) {
	res := Search(sampleRecords(), SearchRequest{Field: SearchSite, Query: "BDG-01", Scope: ScopeMatched})

	require.Len(t, res.Rings, 1)
	assert.Len(t, res.Rings[0].Records, 1)
}

func TestSearch_RingOrderFollowsMatches(t *testing.T) {
	res := Search(sampleRecords(), SearchRequest{Field: SearchHost, Query: "edge-d"})
	require.Len(t, res.Rings, 1)
	assert.Equal(t, "R1", res.Rings[0].ID)

	res = Search(sampleRecords(), SearchRequest{Field: SearchSite, Query: "-0"})
	require.Len(t, res.Rings, 2)
	assert.Equal(t, []string{"R2", "R1"}, []string{res.Rings[0].ID, res.Rings[1].ID})
}

func TestSearch_EmptyResult(t *testing.T) {
	res := Search(sampleRecords(), SearchRequest{Field: SearchSite, Query: "nothing"})
	assert.Equal(t, 0, res.Matched)
	assert.Empty(t, res.Rings)
}

func TestRingByID(t *testing.T) {
	ring, ok := RingByID(sampleRecords(), " R2 ")
	require.True(t, ok)
	assert.Len(t, ring.Records, 2)

	_, ok = RingByID(sampleRecords(), "R404")
	assert.False(t, ok)
}
