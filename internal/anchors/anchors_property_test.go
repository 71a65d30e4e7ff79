package anchors

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genSize generates a positive normalized shape.
func genSize() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0.001, 1.0),
		gen.Float64Range(0.001, 1.0),
	).Map(func(vals []interface{}) Size {
		w, ok := vals[0].(float64)
		if !ok {
			panic("expected float64")
		}
		h, ok := vals[1].(float64)
		if !ok {
			panic("expected float64")
		}
		return Size{W: w, H: h}
	})
}

// TestIoU_Properties verifies shape IoU bounds over random positive shapes.
func TestIoU_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IoU lies in (0, 1]", prop.ForAll(
		func(a, b Size) bool {
			iou := IoU(a, b)
			return iou > 0 && iou <= 1
		},
		genSize(), genSize(),
	))

	properties.Property("IoU is 1 only for identical shapes", prop.ForAll(
		func(a, b Size) bool {
			if a == b {
				return IoU(a, b) == 1
			}
			return IoU(a, b) < 1
		},
		genSize(), genSize(),
	))

	properties.Property("IoU is symmetric", prop.ForAll(
		func(a, b Size) bool {
			d := IoU(a, b) - IoU(b, a)
			return d < 1e-12 && d > -1e-12
		},
		genSize(), genSize(),
	))

	properties.TestingRun(t)
}

// TestMatch_Properties verifies the argmax contract of anchor matching.
func TestMatch_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	c := Default()

	properties.Property("matched anchor has maximal IoU", prop.ForAll(
		func(s Size) bool {
			best := c.Match(s)
			bestIoU := IoU(s, c.Anchors[best])
			for i, a := range c.Anchors {
				iou := IoU(s, a)
				if iou > bestIoU {
					return false
				}
				// Stable argmax: an earlier index may never tie the
				// winner without winning.
				if i < best && iou == bestIoU {
					return false
				}
			}
			return true
		},
		genSize(),
	))

	properties.TestingRun(t)
}
