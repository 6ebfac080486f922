package dataset

import (
	"fmt"
	"strings"

	"fiber-ring-topology-ui/internal/topology"
)

// SearchField is the attribute a search query is matched against.
type SearchField string

const (
	SearchSite   SearchField = "site"
	SearchRing   SearchField = "ring"
	SearchHost   SearchField = "host"
	SearchVendor SearchField = "vendor"
)

// SearchFields lists the accepted fields in UI order.
var SearchFields = []SearchField{SearchSite, SearchRing, SearchHost, SearchVendor}

// ParseSearchField accepts the field names and a few UI aliases.
func ParseSearchField(raw string) (SearchField, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "site", "site_id", "site id":
		return SearchSite, nil
	case "ring", "ring_id", "ring id":
		return SearchRing, nil
	case "host", "hostname", "host_name", "host name":
		return SearchHost, nil
	case "vendor", "flp", "flp_vendor", "flp vendor":
		return SearchVendor, nil
	default:
		return "", fmt.Errorf("unknown search field: %s", raw)
	}
}

// Scope selects which records of a matched ring are returned.
type Scope string

const (
	// ScopeRing returns every record of each matched ring.
	ScopeRing Scope = "ring"
	// ScopeMatched returns only the records that matched the query.
	ScopeMatched Scope = "matched"
)

// ParseScope defaults to ScopeRing.
func ParseScope(raw string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "ring":
		return ScopeRing, nil
	case "matched", "match":
		return ScopeMatched, nil
	default:
		return "", fmt.Errorf("unknown scope: %s", raw)
	}
}

func matchValues(r topology.LinkRecord, field SearchField) []string {
	switch field {
	case SearchRing:
		return []string{r.RingID}
	case SearchHost:
		return []string{r.Hostname}
	case SearchVendor:
		return []string{r.Vendor}
	default:
		return []string{r.SourceID}
	}
}

// Matches reports whether r matches query on field, case-insensitively by
// substring. An empty query matches everything.
func Matches(r topology.LinkRecord, field SearchField, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, v := range matchValues(r, field) {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// Filter returns the records matching query, in input order.
func Filter(records []topology.LinkRecord, field SearchField, query string) []topology.LinkRecord {
	out := make([]topology.LinkRecord, 0)
	for _, r := range records {
		if Matches(r, field, query) {
			out = append(out, r)
		}
	}
	return out
}

// Ring is the set of records sharing one ring id.
type Ring struct {
	ID      string                `json:"ring_id"`
	Records []topology.LinkRecord `json:"records"`
}

// GroupByRing groups records by trimmed ring id in order of first
// appearance. Records without a ring id are dropped and counted.
func GroupByRing(records []topology.LinkRecord) ([]Ring, int) {
	rings := make([]Ring, 0)
	index := map[string]int{}
	dropped := 0
	for _, r := range records {
		id := strings.TrimSpace(r.RingID)
		if topology.IsPlaceholder(id) {
			dropped++
			continue
		}
		i, ok := index[id]
		if !ok {
			i = len(rings)
			index[id] = i
			rings = append(rings, Ring{ID: id})
		}
		rings[i].Records = append(rings[i].Records, r)
	}
	return rings, dropped
}

// SearchRequest is one user-submitted search.
type SearchRequest struct {
	Field SearchField
	Query string
	Scope Scope
}

// SearchResult holds the matched rings in first-appearance order.
type SearchResult struct {
	Matched     int    `json:"matched"`
	Rings       []Ring `json:"rings"`
	WithoutRing int    `json:"without_ring"`
}

// Search filters all and returns the rings touched by the matches. With
// ScopeRing each ring carries all of its records from all, not just the
// matching ones, so the whole ring can be drawn.
func Search(all []topology.LinkRecord, req SearchRequest) SearchResult {
	matched := Filter(all, req.Field, req.Query)
	matchedRings, dropped := GroupByRing(matched)
	res := SearchResult{Matched: len(matched), WithoutRing: dropped, Rings: matchedRings}
	if req.Scope == ScopeMatched || len(matchedRings) == 0 {
		return res
	}

	wanted := make(map[string]int, len(matchedRings))
	full := make([]Ring, len(matchedRings))
	for i, r := range matchedRings {
		wanted[r.ID] = i
		full[i] = Ring{ID: r.ID}
	}
	for _, r := range all {
		if i, ok := wanted[strings.TrimSpace(r.RingID)]; ok {
			full[i].Records = append(full[i].Records, r)
		}
	}
	res.Rings = full
	return res
}

// RingByID returns the records of one ring, or false if none exist.
func RingByID(all []topology.LinkRecord, ringID string) (Ring, bool) {
	ringID = strings.TrimSpace(ringID)
	ring := Ring{ID: ringID}
	for _, r := range all {
		if strings.TrimSpace(r.RingID) == ringID {
			ring.Records = append(ring.Records, r)
		}
	}
	return ring, len(ring.Records) > 0 && ringID != ""
}
