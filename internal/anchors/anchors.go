package anchors

import (
	"fmt"
)

// Size is an anchor template shape (width, height) in normalized network
// input space.
type Size struct {
	W float64
	H float64
}

// NumScales is the number of detection scales the grid encoder produces.
const NumScales = 3

// Catalogue is the fixed, ordered anchor template catalogue together with
// its partition into per-scale masks. Masks are ordered coarse to fine and
// index into Anchors. The catalogue is configuration: built once, never
// mutated.
type Catalogue struct {
	Anchors []Size
	Masks   [NumScales][]int
}

// Default returns the YOLOv3 anchor catalogue normalized to a 416px input,
// with the standard coarse-to-fine mask partition.
func Default() Catalogue {
	px := [][2]float64{
		{10, 13}, {16, 30}, {33, 23},
		{30, 61}, {62, 45}, {59, 119},
		{116, 90}, {156, 198}, {373, 326},
	}
	anchors := make([]Size, len(px))
	for i, a := range px {
		anchors[i] = Size{W: a[0] / 416, H: a[1] / 416}
	}
	return Catalogue{
		Anchors: anchors,
		Masks:   [NumScales][]int{{6, 7, 8}, {3, 4, 5}, {0, 1, 2}},
	}
}

// Validate checks that the masks form a disjoint, in-range partition of the
// anchor catalogue and that every anchor shape is positive.
func (c Catalogue) Validate() error {
	if len(c.Anchors) == 0 {
		return fmt.Errorf("anchor catalogue is empty")
	}
	for i, a := range c.Anchors {
		if a.W <= 0 || a.H <= 0 {
			return fmt.Errorf("anchor %d has non-positive shape %gx%g", i, a.W, a.H)
		}
	}

	seen := make(map[int]int, len(c.Anchors))
	total := 0
	for m, mask := range c.Masks {
		if len(mask) == 0 {
			return fmt.Errorf("scale mask %d is empty", m)
		}
		for _, idx := range mask {
			if idx < 0 || idx >= len(c.Anchors) {
				return fmt.Errorf("scale mask %d references anchor %d, catalogue has %d", m, idx, len(c.Anchors))
			}
			if prev, dup := seen[idx]; dup {
				return fmt.Errorf("anchor %d appears in masks %d and %d", idx, prev, m)
			}
			seen[idx] = m
			total++
		}
	}
	if total != len(c.Anchors) {
		return fmt.Errorf("masks cover %d of %d anchors", total, len(c.Anchors))
	}
	return nil
}

// Slot returns the position of the global anchor index inside the given
// scale's mask, or -1 if the mask does not contain it.
func (c Catalogue) Slot(scale, anchorIndex int) int {
	for slot, idx := range c.Masks[scale] {
		if idx == anchorIndex {
			return slot
		}
	}
	return -1
}

// IoU computes the shape-only intersection-over-union of two sizes,
// origin-aligned: position is ignored, only width/height overlap counts.
// Both shapes must be non-degenerate; a zero union is undefined and is
// rejected upstream by geometry validation.
func IoU(a, b Size) float64 {
	inter := min(a.W, b.W) * min(a.H, b.H)
	union := a.W*a.H + b.W*b.H - inter
	return inter / union
}

// Match selects the best anchor for a box shape: the index of the maximum
// shape IoU over the entire catalogue. Ties break to the lowest index
// (stable argmax), matching per-scale filtering downstream.
func (c Catalogue) Match(s Size) int {
	best := 0
	bestIoU := IoU(s, c.Anchors[0])
	for i := 1; i < len(c.Anchors); i++ {
		if iou := IoU(s, c.Anchors[i]); iou > bestIoU {
			best = i
			bestIoU = iou
		}
	}
	return best
}
