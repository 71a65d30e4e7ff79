package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/yolodata/internal/anchors"
	"github.com/MeKo-Tech/yolodata/internal/annotation"
	"github.com/MeKo-Tech/yolodata/internal/testutil"
)

func defaultOptions() Options {
	return Options{
		InputWidth:  416,
		InputHeight: 416,
		ClassID:     1,
		Bounds:      BoundsAllow,
		Catalogue:   anchors.Default(),
	}
}

func TestLoad_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDetectionDataset(t, dir, []testutil.DetectionImage{
		{Base: "X00001", Width: 400, Height: 300,
			Quads: [][8]float64{{10, 10, 50, 10, 50, 30, 10, 30}}},
	})

	ds, err := Load(dir, defaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	item := ds.Item(0)
	assert.Equal(t, 400, item.Width)
	assert.Equal(t, 300, item.Height)
	require.Len(t, item.Boxes, 1)

	// scale = min(416/400, 416/300) = 1.04; ratio = 1.04/416 = 0.0025
	b := item.Boxes[0].Box
	assert.InDelta(t, 0.075, b.CX, 1e-9)
	assert.InDelta(t, 0.05, b.CY, 1e-9)
	assert.InDelta(t, 0.1, b.W, 1e-9)
	assert.InDelta(t, 0.05, b.H, 1e-9)

	// Exactly one anchor matched, exactly one tensor has exactly one
	// non-zero cell.
	nonZero := 0
	for _, tgt := range item.Targets {
		nonZero += tgt.NonZeroCells()
	}
	assert.Equal(t, 1, nonZero)

	wantGrid := [3]int{13, 26, 52}
	for scale, tgt := range item.Targets {
		assert.Equal(t, wantGrid[scale], tgt.GridSize)
		assert.Equal(t, 3, tgt.AnchorsPerCell)
	}
}

func TestLoad_MultipleImagesSorted(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDetectionDataset(t, dir, []testutil.DetectionImage{
		{Base: "X00002", Width: 100, Height: 100,
			Quads: [][8]float64{{10, 10, 40, 10, 40, 40, 10, 40}}},
		{Base: "X00001", Width: 100, Height: 100,
			Quads: [][8]float64{{5, 5, 20, 5, 20, 15, 5, 15}}},
	})

	ds, err := Load(dir, defaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Contains(t, ds.Item(0).ImagePath, "X00001")
	assert.Contains(t, ds.Item(1).ImagePath, "X00002")
	assert.Equal(t, 2, ds.NumBoxes())
}

func TestLoad_CountMismatchFatal(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDetectionDataset(t, dir, []testutil.DetectionImage{
		{Base: "X00001", Width: 100, Height: 100,
			Quads: [][8]float64{{10, 10, 40, 10, 40, 40, 10, 40}}},
	})
	testutil.WritePNG(t, filepath.Join(dir, "X00002.png"), 50, 50)

	_, err := Load(dir, defaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestLoad_UnpairedAnnotationFatal(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDetectionDataset(t, dir, []testutil.DetectionImage{
		{Base: "X00001", Width: 100, Height: 100,
			Quads: [][8]float64{{10, 10, 40, 10, 40, 40, 10, 40}}},
	})
	// An annotation with no image of the same base, plus an image with no
	// annotation: counts match but pairing fails.
	testutil.WriteAnnotation(t, filepath.Join(dir, "X00003.txt"),
		[][8]float64{{1, 1, 2, 1, 2, 2, 1, 2}})
	testutil.WritePNG(t, filepath.Join(dir, "X00004.png"), 50, 50)

	_, err := Load(dir, defaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "X00003")
}

func TestLoad_MalformedAnnotationFatal(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePNG(t, filepath.Join(dir, "X00001.png"), 100, 100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "X00001.txt"),
		[]byte("10,10,40\n"), 0o600))

	_, err := Load(dir, defaultOptions())
	require.Error(t, err)

	var perr *annotation.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Line)
}

func TestLoad_DegenerateBoxFatal(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDetectionDataset(t, dir, []testutil.DetectionImage{
		// Zero-height quad.
		{Base: "X00001", Width: 100, Height: 100,
			Quads: [][8]float64{{10, 50, 40, 50, 40, 50, 10, 50}}},
	})

	_, err := Load(dir, defaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degenerate")
	assert.Contains(t, err.Error(), "X00001.txt")
}

func TestLoad_MissingImagesFatal(t *testing.T) {
	_, err := Load(t.TempDir(), defaultOptions())
	assert.Error(t, err)
}

func TestLoad_BoundsPolicies(t *testing.T) {
	build := func(policy BoundsPolicy) (*Dataset, error) {
		dir := t.TempDir()
		testutil.WriteDetectionDataset(t, dir, []testutil.DetectionImage{
			// Quad pokes 20px beyond the right edge.
			{Base: "X00001", Width: 100, Height: 100,
				Quads: [][8]float64{{80, 10, 120, 10, 120, 40, 80, 40}}},
		})
		opts := defaultOptions()
		opts.Bounds = policy
		return Load(dir, opts)
	}

	ds, err := build(BoundsAllow)
	require.NoError(t, err)
	// Untouched: pixel width 40 -> normalized 40*(4.16/416) = 0.4
	assert.InDelta(t, 0.4, ds.Item(0).Boxes[0].Box.W, 1e-9)

	ds, err = build(BoundsClamp)
	require.NoError(t, err)
	// Clamped to x in [80, 100]: width 20 -> 0.2
	assert.InDelta(t, 0.2, ds.Item(0).Boxes[0].Box.W, 1e-9)

	_, err = build(BoundsReject)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of image bounds")
}

func TestParseBoundsPolicy(t *testing.T) {
	for _, s := range []string{"allow", "clamp", "reject"} {
		p, err := ParseBoundsPolicy(s)
		require.NoError(t, err)
		assert.Equal(t, BoundsPolicy(s), p)
	}
	_, err := ParseBoundsPolicy("shrink")
	assert.Error(t, err)
}

func TestLoad_InvalidOptions(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions()
	opts.InputWidth = 0
	_, err := Load(dir, opts)
	assert.Error(t, err)

	opts = defaultOptions()
	opts.Catalogue = anchors.Catalogue{}
	_, err = Load(dir, opts)
	assert.Error(t, err)
}
