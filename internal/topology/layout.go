package topology

import (
	"fmt"
	"strings"
)

// LayoutMode selects how nodes fill the grid.
type LayoutMode string

const (
	// LayoutZigZag reverses column order on odd rows so consecutive nodes
	// stay adjacent when a row wraps.
	LayoutZigZag LayoutMode = "zigzag"
	// LayoutPlain fills every row left to right.
	LayoutPlain LayoutMode = "plain"
)

// LookupMode selects which record supplies a node's descriptive attributes.
type LookupMode string

const (
	// LookupFirstAppearance uses the first record, in input order, that names
	// the node on either endpoint.
	LookupFirstAppearance LookupMode = "first-appearance"
	// LookupSourceFirst uses the first record naming the node as source and
	// falls back to the first record naming it as destination.
	LookupSourceFirst LookupMode = "source-first"
)

const (
	DefaultRowWidth = 8
	DefaultXSpacing = 180.0
	DefaultYSpacing = 150.0
)

// Options configures a Builder.
type Options struct {
	RowWidth int
	XSpacing float64
	YSpacing float64
	Layout   LayoutMode
	Lookup   LookupMode
}

// DefaultOptions returns the zig-zag, eight-wide layout.
func DefaultOptions() Options {
	return Options{
		RowWidth: DefaultRowWidth,
		XSpacing: DefaultXSpacing,
		YSpacing: DefaultYSpacing,
		Layout:   LayoutZigZag,
		Lookup:   LookupFirstAppearance,
	}
}

func (o Options) withDefaults() Options {
	if o.RowWidth <= 0 {
		o.RowWidth = DefaultRowWidth
	}
	if o.XSpacing <= 0 {
		o.XSpacing = DefaultXSpacing
	}
	if o.YSpacing <= 0 {
		o.YSpacing = DefaultYSpacing
	}
	if o.Layout != LayoutPlain {
		o.Layout = LayoutZigZag
	}
	if o.Lookup != LookupSourceFirst {
		o.Lookup = LookupFirstAppearance
	}
	return o
}

// Fingerprint identifies the options for cache keys.
func (o Options) Fingerprint() string {
	o = o.withDefaults()
	return fmt.Sprintf("%s/%s/%d/%g/%g", o.Layout, o.Lookup, o.RowWidth, o.XSpacing, o.YSpacing)
}

// ParseLayoutMode accepts "zigzag", "zig-zag" or "plain".
func ParseLayoutMode(raw string) (LayoutMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "zigzag", "zig-zag", "zig_zag":
		return LayoutZigZag, nil
	case "plain", "grid":
		return LayoutPlain, nil
	default:
		return "", fmt.Errorf("unknown layout mode: %s", raw)
	}
}

// ParseLookupMode accepts "first-appearance" or "source-first".
func ParseLookupMode(raw string) (LookupMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "first-appearance", "first_appearance", "first":
		return LookupFirstAppearance, nil
	case "source-first", "source_first", "source":
		return LookupSourceFirst, nil
	default:
		return "", fmt.Errorf("unknown lookup mode: %s", raw)
	}
}

// GridPosition places the node at discovery index on the grid.
func GridPosition(index int, opts Options) Position {
	opts = opts.withDefaults()
	w := opts.RowWidth

	row := index / w
	col := index % w
	if opts.Layout == LayoutZigZag && row%2 == 1 {
		col = w - 1 - col
	}

	return Position{
		Column: col,
		Row:    row,
		X:      float64(col) * opts.XSpacing,
		Y:      float64(row) * opts.YSpacing,
	}
}
