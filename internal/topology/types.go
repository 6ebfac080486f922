package topology

// LinkRecord is one row of link data after column resolution.
type LinkRecord struct {
	RingID          string `json:"ring_id"`
	SourceID        string `json:"source_id"`
	DestinationID   string `json:"destination_id"`
	FiberType       string `json:"fiber_type"`
	SourceName      string `json:"source_name"`
	DestinationName string `json:"destination_name"`
	Hostname        string `json:"hostname"`
	Vendor          string `json:"vendor"`
	Length          string `json:"length"`
}

// Kind is the presentation class of a node.
type Kind string

const (
	KindP01          Kind = "P0_1"
	KindP0           Kind = "P0"
	KindDarkFiber    Kind = "DARK_FIBER"
	KindUnclassified Kind = "UNCLASSIFIED"
)

// Tag is the short text prepended to a node label.
func (k Kind) Tag() string {
	switch k {
	case KindP01:
		return "P0_1"
	case KindP0:
		return "P0"
	case KindDarkFiber:
		return "Dark Fiber"
	default:
		return ""
	}
}

// Position is a grid cell plus its canvas coordinates.
type Position struct {
	Column int     `json:"column"`
	Row    int     `json:"row"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Node is a site or destination discovered in a ring.
type Node struct {
	ID         string   `json:"id"`
	Kind       Kind     `json:"kind"`
	Degree     int      `json:"degree"`
	FiberType  string   `json:"fiber_type"`
	SiteName   string   `json:"site_name"`
	HostName   string   `json:"host_name"`
	Vendor     string   `json:"vendor"`
	Position   Position `json:"position"`
	LabelParts []string `json:"label_parts"`
	Label      string   `json:"label"`
	Tooltip    string   `json:"tooltip"`
}

// Edge is one link record with both endpoints present.
type Edge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	LengthLabel string `json:"length_label"`
	FiberType   string `json:"fiber_type"`
	Tooltip     string `json:"tooltip"`
}

// AttributeConflict records a descriptive attribute that differs between
// records for the same node. The first value seen is kept.
type AttributeConflict struct {
	NodeID  string `json:"node_id"`
	Field   string `json:"field"`
	Kept    string `json:"kept"`
	Ignored string `json:"ignored"`
}

// Graph is the positioned, classified view of one ring.
type Graph struct {
	RingID    string              `json:"ring_id"`
	Nodes     []Node              `json:"nodes"`
	Edges     []Edge              `json:"edges"`
	Skipped   int                 `json:"skipped"`
	Conflicts []AttributeConflict `json:"conflicts,omitempty"`
}
