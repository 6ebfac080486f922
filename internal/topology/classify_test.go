package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		fiber  string
		degree int
		want   Kind
	}{
		{"p0_1 wins over degree", "P0_1", 1, KindP01},
		{"p0_1 substring", "link p0_1 spare", 3, KindP01},
		{"degree one forces stub", "Dark Fiber", 1, KindP0},
		{"degree one unknown type", "aerial", 1, KindP0},
		{"dark fiber", " DARK FIBER ", 2, KindDarkFiber},
		{"p0 through node", "p0", 4, KindP0},
		{"unknown", "ADSS", 2, KindUnclassified},
		{"empty", "", 0, KindUnclassified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.fiber, tc.degree))
		})
	}
}

func TestNormalizeID(t *testing.T) {
	for _, raw := range []string{"", "   ", "nan", "NaN", " None ", "NONE"} {
		_, ok := NormalizeID(raw)
		assert.False(t, ok, "expected %q to be absent", raw)
	}

	id, ok := NormalizeID("  JKT-001 ")
	assert.True(t, ok)
	assert.Equal(t, "JKT-001", id)

	id, ok = NormalizeID("nano")
	assert.True(t, ok)
	assert.Equal(t, "nano", id)
}

func TestKindTag(t *testing.T) {
	assert.Equal(t, "Dark Fiber", KindDarkFiber.Tag())
	assert.Equal(t, "", KindUnclassified.Tag())
}
