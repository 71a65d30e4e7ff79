package anchors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Len(t, c.Anchors, 9)
	assert.Equal(t, []int{6, 7, 8}, c.Masks[0])
	assert.Equal(t, []int{0, 1, 2}, c.Masks[2])

	// Normalized to 416.
	assert.InDelta(t, 10.0/416, c.Anchors[0].W, 1e-12)
	assert.InDelta(t, 326.0/416, c.Anchors[8].H, 1e-12)
}

func TestValidate_Empty(t *testing.T) {
	assert.Error(t, Catalogue{}.Validate())
}

func TestValidate_NonPositiveAnchor(t *testing.T) {
	c := Catalogue{
		Anchors: []Size{{0.1, 0.1}, {0.2, 0}, {0.3, 0.3}},
		Masks:   [NumScales][]int{{0}, {1}, {2}},
	}
	assert.Error(t, c.Validate())
}

func TestValidate_MaskErrors(t *testing.T) {
	anchors := []Size{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}}

	dup := Catalogue{Anchors: anchors, Masks: [NumScales][]int{{0}, {0}, {2}}}
	assert.Error(t, dup.Validate())

	outOfRange := Catalogue{Anchors: anchors, Masks: [NumScales][]int{{0}, {1}, {5}}}
	assert.Error(t, outOfRange.Validate())

	empty := Catalogue{Anchors: anchors, Masks: [NumScales][]int{{0, 1}, {2}, {}}}
	assert.Error(t, empty.Validate())

	incomplete := Catalogue{
		Anchors: []Size{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}, {0.4, 0.4}},
		Masks:   [NumScales][]int{{0}, {1}, {2}},
	}
	assert.Error(t, incomplete.Validate())
}

func TestIoU_IdenticalShapes(t *testing.T) {
	s := Size{W: 0.2, H: 0.4}
	assert.InDelta(t, 1.0, IoU(s, s), 1e-12)
}

func TestIoU_Disjoint(t *testing.T) {
	// Shape IoU is origin-aligned, so even very different shapes overlap.
	small := Size{W: 0.1, H: 0.1}
	big := Size{W: 0.5, H: 0.5}
	// intersection = 0.01, union = 0.01 + 0.25 - 0.01 = 0.25
	assert.InDelta(t, 0.04, IoU(small, big), 1e-12)
}

func TestIoU_Symmetric(t *testing.T) {
	a := Size{W: 0.3, H: 0.1}
	b := Size{W: 0.15, H: 0.25}
	assert.InDelta(t, IoU(a, b), IoU(b, a), 1e-12)
}

func TestMatch_BestAnchorWins(t *testing.T) {
	c := Default()
	// Exactly the third anchor's shape must match index 2.
	assert.Equal(t, 2, c.Match(c.Anchors[2]))
	// A huge box matches the largest template.
	assert.Equal(t, 8, c.Match(Size{W: 0.9, H: 0.8}))
	// A tiny box matches the smallest template.
	assert.Equal(t, 0, c.Match(Size{W: 0.02, H: 0.03}))
}

func TestMatch_TieBreaksToLowerIndex(t *testing.T) {
	c := Catalogue{
		Anchors: []Size{{0.2, 0.2}, {0.2, 0.2}, {0.5, 0.5}},
		Masks:   [NumScales][]int{{2}, {1}, {0}},
	}
	// Anchors 0 and 1 are identical: the stable argmax must pick 0.
	assert.Equal(t, 0, c.Match(Size{W: 0.2, H: 0.2}))
}

func TestSlot(t *testing.T) {
	c := Default()
	assert.Equal(t, 0, c.Slot(0, 6))
	assert.Equal(t, 2, c.Slot(0, 8))
	assert.Equal(t, 1, c.Slot(1, 4))
	assert.Equal(t, -1, c.Slot(0, 0))
}
