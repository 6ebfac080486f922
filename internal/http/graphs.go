package http

import (
	"fmt"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"fiber-ring-topology-ui/internal/dataset"
	"fiber-ring-topology-ui/internal/topology"
)

type nodeView struct {
	topology.Node
	Style topology.Style `json:"style"`
}

type edgeStyle struct {
	Color string `json:"color"`
	Width int    `json:"width"`
}

// linkStyle is the stroke of every fiber link on the canvas.
var linkStyle = edgeStyle{Color: "#E53935", Width: 2}

type edgeView struct {
	topology.Edge
	Style edgeStyle `json:"style"`
}

type graphView struct {
	RingID    string                       `json:"ring_id"`
	Nodes     []nodeView                   `json:"nodes"`
	Edges     []edgeView                   `json:"edges"`
	Skipped   int                          `json:"skipped"`
	Conflicts []topology.AttributeConflict `json:"conflicts"`
}

// graphService builds ring graphs through the cache and attaches styles.
type graphService struct {
	builder *topology.Builder
	cache   *topology.GraphCache
	styles  topology.StyleMap
	metrics *Metrics
	logger  *slog.Logger
}

func newGraphService(builder *topology.Builder, cache *topology.GraphCache, styles topology.StyleMap, metrics *Metrics, logger *slog.Logger) *graphService {
	return &graphService{builder: builder, cache: cache, styles: styles, metrics: metrics, logger: logger}
}

// builderFor applies the layout and row_width query overrides. Without
// overrides the configured builder is returned.
func (g *graphService) builderFor(r *nethttp.Request) (*topology.Builder, error) {
	q := r.URL.Query()
	rawLayout := strings.TrimSpace(q.Get("layout"))
	rawWidth := strings.TrimSpace(q.Get("row_width"))
	if rawLayout == "" && rawWidth == "" {
		return g.builder, nil
	}

	opts := g.builder.Options()
	if rawLayout != "" {
		layout, err := topology.ParseLayoutMode(rawLayout)
		if err != nil {
			return nil, err
		}
		opts.Layout = layout
	}
	if rawWidth != "" {
		width, err := strconv.Atoi(rawWidth)
		if err != nil || width < 1 || width > 64 {
			return nil, fmt.Errorf("row_width must be an integer between 1 and 64")
		}
		opts.RowWidth = width
	}
	return topology.NewBuilder(opts), nil
}

// build returns the graph of ring, from the cache when possible. Attribute
// conflicts are logged once per uncached build.
func (g *graphService) build(snapshotID string, ring dataset.Ring, scope string, builder *topology.Builder) topology.Graph {
	key := topology.CacheKey{
		SnapshotID: snapshotID,
		RingID:     ring.ID,
		Scope:      scope,
		Options:    builder.Options().Fingerprint(),
	}
	if cached, ok := g.cache.Get(key); ok {
		g.metrics.RecordCacheLookup(true)
		return cached
	}
	g.metrics.RecordCacheLookup(false)

	start := time.Now()
	graph := builder.Build(ring.ID, ring.Records)
	g.metrics.RecordGraphBuild(time.Since(start), len(graph.Nodes), len(graph.Edges), len(graph.Conflicts))

	for _, c := range graph.Conflicts {
		g.logger.Warn("conflicting node attribute",
			slog.String("ring_id", ring.ID),
			slog.String("node_id", c.NodeID),
			slog.String("field", c.Field),
			slog.String("kept", c.Kept),
			slog.String("ignored", c.Ignored),
		)
	}

	g.cache.Put(key, graph)
	return graph
}

func (g *graphService) view(graph topology.Graph) graphView {
	out := graphView{
		RingID:    graph.RingID,
		Nodes:     make([]nodeView, 0, len(graph.Nodes)),
		Edges:     make([]edgeView, 0, len(graph.Edges)),
		Skipped:   graph.Skipped,
		Conflicts: graph.Conflicts,
	}
	if out.Conflicts == nil {
		out.Conflicts = []topology.AttributeConflict{}
	}
	for _, n := range graph.Nodes {
		out.Nodes = append(out.Nodes, nodeView{Node: n, Style: g.styles.For(n.Kind)})
	}
	for _, e := range graph.Edges {
		out.Edges = append(out.Edges, edgeView{Edge: e, Style: linkStyle})
	}
	return out
}

// scopeKey separates cached graphs of matched-only scopes per query, since
// their record set depends on it.
func scopeKey(req dataset.SearchRequest) string {
	if req.Scope != dataset.ScopeMatched {
		return string(dataset.ScopeRing)
	}
	return fmt.Sprintf("%s|%s|%s", req.Scope, req.Field, strings.ToLower(strings.TrimSpace(req.Query)))
}
