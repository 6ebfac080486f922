package topology

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var (
	propIDs    = []string{"A", "B", "C", "D", " E ", "F", "nan", "", " None ", "G"}
	propFibers = []string{"Dark Fiber", "P0", "p0_1", "ADSS", ""}
)

// recordsFromSeeds maps generated integers onto a small id alphabet so that
// shared endpoints, self-loops and placeholders all show up regularly.
func recordsFromSeeds(seeds []int) []LinkRecord {
	out := make([]LinkRecord, 0, len(seeds))
	for _, v := range seeds {
		out = append(out, LinkRecord{
			RingID:        "R1",
			SourceID:      propIDs[v%len(propIDs)],
			DestinationID: propIDs[(v/len(propIDs))%len(propIDs)],
			FiberType:     propFibers[(v/7)%len(propFibers)],
		})
	}
	return out
}

func validEndpoints(records []LinkRecord) ([]string, int) {
	var ids []string
	valid := 0
	for _, r := range records {
		src, ok1 := NormalizeID(r.SourceID)
		dst, ok2 := NormalizeID(r.DestinationID)
		if !ok1 || !ok2 {
			continue
		}
		valid++
		ids = append(ids, src, dst)
	}
	return ids, valid
}

func TestBuilderProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	seeds := gen.SliceOf(gen.IntRange(0, 999))
	builder := NewBuilder(DefaultOptions())

	properties.Property("nodes are exactly the valid endpoints", prop.ForAll(
		func(s []int) bool {
			records := recordsFromSeeds(s)
			g := builder.Build("R1", records)

			ids, _ := validEndpoints(records)
			want := map[string]struct{}{}
			for _, id := range ids {
				want[id] = struct{}{}
			}
			if len(want) != len(g.Nodes) {
				return false
			}
			for _, n := range g.Nodes {
				if _, ok := want[n.ID]; !ok {
					return false
				}
			}
			return true
		},
		seeds,
	))

	properties.Property("degree one nodes are P0 unless p0_1", prop.ForAll(
		func(s []int) bool {
			g := builder.Build("R1", recordsFromSeeds(s))
			for _, n := range g.Nodes {
				if n.Degree != 1 {
					continue
				}
				isP01 := strings.Contains(strings.ToLower(n.FiberType), "p0_1")
				if isP01 && n.Kind != KindP01 {
					return false
				}
				if !isP01 && n.Kind != KindP0 {
					return false
				}
			}
			return true
		},
		seeds,
	))

	properties.Property("build is deterministic", prop.ForAll(
		func(s []int) bool {
			records := recordsFromSeeds(s)
			return reflect.DeepEqual(builder.Build("R1", records), builder.Build("R1", records))
		},
		seeds,
	))

	properties.Property("one edge per valid record", prop.ForAll(
		func(s []int) bool {
			records := recordsFromSeeds(s)
			g := builder.Build("R1", records)
			_, valid := validEndpoints(records)
			return len(g.Edges) == valid && g.Skipped == len(records)-valid
		},
		seeds,
	))

	properties.Property("degrees sum to twice the edge count", prop.ForAll(
		func(s []int) bool {
			g := builder.Build("R1", recordsFromSeeds(s))
			sum := 0
			for _, n := range g.Nodes {
				sum += n.Degree
			}
			return sum == 2*len(g.Edges)
		},
		seeds,
	))

	properties.Property("no two nodes share a grid cell", prop.ForAll(
		func(s []int, plain bool) bool {
			opts := DefaultOptions()
			if plain {
				opts.Layout = LayoutPlain
			}
			g := NewBuilder(opts).Build("R1", recordsFromSeeds(s))
			cells := map[[2]int]struct{}{}
			for _, n := range g.Nodes {
				cell := [2]int{n.Position.Column, n.Position.Row}
				if _, dup := cells[cell]; dup {
					return false
				}
				cells[cell] = struct{}{}
			}
			return true
		},
		seeds,
		gen.Bool(),
	))

	properties.Property("labels never contain empty parts", prop.ForAll(
		func(s []int) bool {
			g := builder.Build("R1", recordsFromSeeds(s))
			for _, n := range g.Nodes {
				for _, p := range n.LabelParts {
					if p == "" {
						return false
					}
				}
				if strings.Contains(n.Tooltip, "<br><br>") || strings.HasPrefix(n.Tooltip, "<br>") {
					return false
				}
			}
			return true
		},
		seeds,
	))

	properties.TestingRun(t)
}
