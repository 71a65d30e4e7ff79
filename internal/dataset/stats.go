package dataset

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary is a five-number-ish summary of one measurement.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
}

// BoxStats summarizes the normalized box dimensions of a dataset, as a
// sanity check of how well the anchor catalogue covers the data.
type BoxStats struct {
	Images int
	Boxes  int
	Width  Summary
	Height Summary

	// AnchorUsage counts how many boxes matched each catalogue index.
	AnchorUsage []int
}

// Stats computes box dimension statistics over the whole dataset.
func (d *Dataset) Stats() BoxStats {
	s := BoxStats{
		Images:      d.Len(),
		AnchorUsage: make([]int, len(d.opts.Catalogue.Anchors)),
	}

	var widths, heights []float64
	for i := range d.items {
		for _, mb := range d.items[i].Boxes {
			widths = append(widths, mb.Box.W)
			heights = append(heights, mb.Box.H)
			s.AnchorUsage[mb.AnchorIndex]++
		}
	}
	s.Boxes = len(widths)
	if s.Boxes == 0 {
		return s
	}

	s.Width = summarize(widths)
	s.Height = summarize(heights)
	return s
}

func summarize(vals []float64) Summary {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return Summary{
		Mean:   stat.Mean(sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
}
