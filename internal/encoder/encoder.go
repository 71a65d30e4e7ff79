package encoder

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/yolodata/internal/anchors"
	"github.com/MeKo-Tech/yolodata/internal/geometry"
)

// TargetFields is the size of the trailing tensor axis:
// (cx, cy, w, h, objectness, class).
const TargetFields = 6

// baseStride is the coarsest detection stride; the coarse grid size is
// ceil(inputSize / baseStride) and doubles at each finer scale.
const baseStride = 32

// MatchedBox is a normalized box together with its class and the globally
// matched anchor index.
type MatchedBox struct {
	Box         geometry.Box
	ClassID     int
	AnchorIndex int
}

// ScaleTarget is the dense training target for one detection scale: a flat
// float32 buffer viewed as [gridSize][gridSize][anchorsPerCell][TargetFields].
// Cells with no assigned box stay all-zero (objectness 0). Once an image's
// targets are built they are never written again, so concurrent readers
// need no locking.
type ScaleTarget struct {
	GridSize       int
	AnchorsPerCell int
	Data           []float32
}

// NewScaleTarget allocates a zero-filled target tensor.
func NewScaleTarget(gridSize, anchorsPerCell int) *ScaleTarget {
	return &ScaleTarget{
		GridSize:       gridSize,
		AnchorsPerCell: anchorsPerCell,
		Data:           make([]float32, gridSize*gridSize*anchorsPerCell*TargetFields),
	}
}

// At returns the TargetFields-length view of one cell/anchor slot.
func (t *ScaleTarget) At(cellY, cellX, slot int) []float32 {
	i := ((cellY*t.GridSize+cellX)*t.AnchorsPerCell + slot) * TargetFields
	return t.Data[i : i+TargetFields]
}

// write scatters one box into its cell/anchor slot. If a later box maps to
// the same slot it overwrites this one: last write wins, by policy.
func (t *ScaleTarget) write(cellY, cellX, slot int, b geometry.Box, classID int) {
	dst := t.At(cellY, cellX, slot)
	dst[0] = float32(b.CX)
	dst[1] = float32(b.CY)
	dst[2] = float32(b.W)
	dst[3] = float32(b.H)
	dst[4] = 1
	dst[5] = float32(classID)
}

// NonZeroCells counts cell/anchor slots with objectness set.
func (t *ScaleTarget) NonZeroCells() int {
	n := 0
	for i := 4; i < len(t.Data); i += TargetFields {
		if t.Data[i] != 0 {
			n++
		}
	}
	return n
}

// GridSizes returns the three grid resolutions for a square network input,
// ordered coarse to fine: ceil(inputSize/32), then doubling.
func GridSizes(inputSize int) [anchors.NumScales]int {
	var sizes [anchors.NumScales]int
	g := int(math.Ceil(float64(inputSize) / baseStride))
	for i := range sizes {
		sizes[i] = g
		g *= 2
	}
	return sizes
}

// EncodeImage builds the three per-scale target tensors for one image's
// matched boxes. A box contributes only to the scale whose mask contains
// its anchor index; the other scales keep that cell at zero.
func EncodeImage(boxes []MatchedBox, inputSize int, cat anchors.Catalogue) ([anchors.NumScales]*ScaleTarget, error) {
	var targets [anchors.NumScales]*ScaleTarget
	if inputSize <= 0 {
		return targets, fmt.Errorf("invalid input size %d", inputSize)
	}

	sizes := GridSizes(inputSize)
	for scale := range targets {
		targets[scale] = encodeScale(boxes, sizes[scale], scale, cat)
	}
	return targets, nil
}

// encodeScale scatters every box whose anchor belongs to this scale's mask
// into the [gridSize][gridSize][len(mask)][TargetFields] tensor.
func encodeScale(boxes []MatchedBox, gridSize, scale int, cat anchors.Catalogue) *ScaleTarget {
	t := NewScaleTarget(gridSize, len(cat.Masks[scale]))
	for _, mb := range boxes {
		slot := cat.Slot(scale, mb.AnchorIndex)
		if slot < 0 {
			continue
		}
		cellX := gridCell(mb.Box.CX, gridSize)
		cellY := gridCell(mb.Box.CY, gridSize)
		t.write(cellY, cellX, slot, mb.Box, mb.ClassID)
	}
	return t
}

// gridCell maps a normalized [0,1] coordinate to its cell index via
// floor(c * gridSize). A center exactly on the far edge belongs to the
// last cell.
func gridCell(c float64, gridSize int) int {
	cell := int(math.Floor(c * float64(gridSize)))
	if cell < 0 {
		cell = 0
	}
	if cell >= gridSize {
		cell = gridSize - 1
	}
	return cell
}
