package topology

// Style is the presentation of one node kind in the rendering widget.
type Style struct {
	Shape  string `json:"shape" yaml:"shape"`
	Color  string `json:"color" yaml:"color"`
	Border string `json:"border" yaml:"border"`
	Size   int    `json:"size" yaml:"size"`
	Icon   string `json:"icon,omitempty" yaml:"icon"`
}

// StyleMap maps node kinds to styles. The builder never reads it; handlers
// apply it to the finished graph.
type StyleMap map[Kind]Style

// DefaultStyles mirrors the colors used by the dashboards: blue P0 stubs,
// orange P0_1, black dark fiber, gray for everything else.
func DefaultStyles() StyleMap {
	return StyleMap{
		KindP0:           {Shape: "dot", Color: "#007FFF", Border: "#333333", Size: 25},
		KindP01:          {Shape: "dot", Color: "#FF8C00", Border: "#333333", Size: 25},
		KindDarkFiber:    {Shape: "square", Color: "#222222", Border: "#000000", Size: 22},
		KindUnclassified: {Shape: "dot", Color: "#9E9E9E", Border: "#616161", Size: 20},
	}
}

// For returns the style for kind, falling back to the unclassified style.
func (m StyleMap) For(kind Kind) Style {
	if s, ok := m[kind]; ok {
		return s
	}
	if s, ok := m[KindUnclassified]; ok {
		return s
	}
	return Style{Shape: "dot", Color: "#9E9E9E", Border: "#616161", Size: 20}
}

// Merge returns a copy of m with non-empty fields of overrides applied.
func (m StyleMap) Merge(overrides StyleMap) StyleMap {
	out := make(StyleMap, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, o := range overrides {
		cur := out[k]
		if o.Shape != "" {
			cur.Shape = o.Shape
		}
		if o.Color != "" {
			cur.Color = o.Color
		}
		if o.Border != "" {
			cur.Border = o.Border
		}
		if o.Size > 0 {
			cur.Size = o.Size
		}
		if o.Icon != "" {
			cur.Icon = o.Icon
		}
		out[k] = cur
	}
	return out
}
