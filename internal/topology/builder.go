package topology

import (
	"fmt"
	"html"
	"strings"
)

const (
	labelSeparator   = "\n"
	tooltipSeparator = "<br>"
)

// Builder turns the link records of one ring into a positioned graph.
// A Builder holds only options and is safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder, filling unset options with defaults.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build builds the graph for the default options. Records with a missing
// endpoint contribute nothing; an empty input yields empty slices.
func Build(records []LinkRecord) ([]Node, []Edge) {
	g := NewBuilder(DefaultOptions()).Build("", records)
	return g.Nodes, g.Edges
}

type link struct {
	src string
	dst string
	rec LinkRecord
}

// Build derives nodes and edges for ringID from records. The input slice is
// never modified and the result depends only on its order and content.
func (b *Builder) Build(ringID string, records []LinkRecord) Graph {
	g := Graph{
		RingID: ringID,
		Nodes:  []Node{},
		Edges:  []Edge{},
	}

	links := make([]link, 0, len(records))
	for _, rec := range records {
		src, okSrc := NormalizeID(rec.SourceID)
		dst, okDst := NormalizeID(rec.DestinationID)
		if !okSrc || !okDst {
			g.Skipped++
			continue
		}
		links = append(links, link{src: src, dst: dst, rec: rec})
	}
	if len(links) == 0 {
		return g
	}

	order := make([]string, 0, len(links)*2)
	seen := make(map[string]struct{}, len(links)*2)
	degree := make(map[string]int, len(links)*2)
	for _, l := range links {
		for _, id := range [2]string{l.src, l.dst} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				order = append(order, id)
			}
			// A self-loop counts twice on purpose.
			degree[id]++
		}
	}

	g.Nodes = make([]Node, 0, len(order))
	for i, id := range order {
		attrs, conflicts := b.nodeAttributes(id, links)
		kind := Classify(attrs.fiberType, degree[id])

		parts := nonEmpty(kind.Tag(), id, attrs.siteName, attrs.hostName, attrs.vendor)
		g.Nodes = append(g.Nodes, Node{
			ID:         id,
			Kind:       kind,
			Degree:     degree[id],
			FiberType:  attrs.fiberType,
			SiteName:   attrs.siteName,
			HostName:   attrs.hostName,
			Vendor:     attrs.vendor,
			Position:   GridPosition(i, b.opts),
			LabelParts: parts,
			Label:      strings.Join(parts, labelSeparator),
			Tooltip:    joinEscaped(parts),
		})
		g.Conflicts = append(g.Conflicts, conflicts...)
	}

	g.Edges = make([]Edge, 0, len(links))
	for _, l := range links {
		length := displayValue(l.rec.Length)
		fiber := displayValue(l.rec.FiberType)
		tip := nonEmpty(fmt.Sprintf("%s - %s", l.src, l.dst), fiber, prefixed("Length: ", length))
		g.Edges = append(g.Edges, Edge{
			From:        l.src,
			To:          l.dst,
			LengthLabel: length,
			FiberType:   fiber,
			Tooltip:     joinEscaped(tip),
		})
	}

	return g
}

// joinEscaped builds tooltip markup. Cell values are escaped since the
// dashboard renders tooltips as HTML; labels stay raw because vis draws them
// as text.
func joinEscaped(parts []string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = html.EscapeString(p)
	}
	return strings.Join(escaped, tooltipSeparator)
}

type nodeAttrs struct {
	fiberType string
	siteName  string
	hostName  string
	vendor    string
}

func attrsFrom(id string, l link) nodeAttrs {
	site := l.rec.SourceName
	if l.src != id {
		site = l.rec.DestinationName
	}
	return nodeAttrs{
		fiberType: displayValue(l.rec.FiberType),
		siteName:  displayValue(site),
		hostName:  displayValue(l.rec.Hostname),
		vendor:    displayValue(l.rec.Vendor),
	}
}

// nodeAttributes picks the record describing id according to the lookup
// mode and reports any later record that disagrees on a descriptive field.
func (b *Builder) nodeAttributes(id string, links []link) (nodeAttrs, []AttributeConflict) {
	chosen := -1
	switch b.opts.Lookup {
	case LookupSourceFirst:
		for i, l := range links {
			if l.src == id {
				chosen = i
				break
			}
		}
		if chosen < 0 {
			for i, l := range links {
				if l.dst == id {
					chosen = i
					break
				}
			}
		}
	default:
		for i, l := range links {
			if l.src == id || l.dst == id {
				chosen = i
				break
			}
		}
	}
	if chosen < 0 {
		return nodeAttrs{}, nil
	}

	kept := attrsFrom(id, links[chosen])

	var conflicts []AttributeConflict
	reported := map[string]struct{}{}
	report := func(field, keptVal, other string) {
		if keptVal == "" || other == "" || keptVal == other {
			return
		}
		key := field + "\x00" + other
		if _, ok := reported[key]; ok {
			return
		}
		reported[key] = struct{}{}
		conflicts = append(conflicts, AttributeConflict{NodeID: id, Field: field, Kept: keptVal, Ignored: other})
	}

	for i, l := range links {
		if i == chosen || (l.src != id && l.dst != id) {
			continue
		}
		other := attrsFrom(id, l)
		report("site_name", kept.siteName, other.siteName)
		// Host and vendor columns describe the source site of a row.
		if l.src == id && links[chosen].src == id {
			report("host_name", kept.hostName, other.hostName)
			report("vendor", kept.vendor, other.vendor)
		}
	}

	return kept, conflicts
}

func displayValue(v string) string {
	v = strings.TrimSpace(v)
	if IsPlaceholder(v) {
		return ""
	}
	return v
}

func prefixed(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
