package topology

import "strings"

// Classify derives a node kind from its recorded fiber type and degree.
//
// A fiber type containing "p0_1" always wins. Otherwise any degree-1 node is
// a terminal stub and becomes P0, discarding whatever fiber type it carried.
func Classify(fiberType string, degree int) Kind {
	ft := strings.ToLower(strings.TrimSpace(fiberType))

	switch {
	case strings.Contains(ft, "p0_1"):
		return KindP01
	case degree == 1:
		return KindP0
	case ft == "dark fiber":
		return KindDarkFiber
	case ft == "p0" || ft == "p0_1":
		return KindP0
	default:
		return KindUnclassified
	}
}
