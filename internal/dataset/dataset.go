package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MeKo-Tech/yolodata/internal/anchors"
	"github.com/MeKo-Tech/yolodata/internal/annotation"
	"github.com/MeKo-Tech/yolodata/internal/encoder"
	"github.com/MeKo-Tech/yolodata/internal/geometry"
	"github.com/MeKo-Tech/yolodata/internal/imageio"
	"github.com/MeKo-Tech/yolodata/internal/letterbox"
)

// BoundsPolicy decides what happens to annotation quads that leave the
// image rectangle.
type BoundsPolicy string

const (
	// BoundsAllow passes out-of-bounds quads through unchanged (the
	// observed source-data behavior).
	BoundsAllow BoundsPolicy = "allow"
	// BoundsClamp clips quad corners to the image rectangle before the
	// box is derived.
	BoundsClamp BoundsPolicy = "clamp"
	// BoundsReject aborts the build on the first out-of-bounds quad.
	BoundsReject BoundsPolicy = "reject"
)

// ParseBoundsPolicy validates a policy string from configuration.
func ParseBoundsPolicy(s string) (BoundsPolicy, error) {
	switch BoundsPolicy(s) {
	case BoundsAllow, BoundsClamp, BoundsReject:
		return BoundsPolicy(s), nil
	}
	return "", fmt.Errorf("invalid bounds policy %q", s)
}

// Options configures the one-time build pass.
type Options struct {
	InputWidth  int
	InputHeight int
	ClassID     int
	Bounds      BoundsPolicy
	Catalogue   anchors.Catalogue
}

// Item is one image's fully encoded training example: the image reference
// plus its cached per-scale targets. Immutable after the build pass.
type Item struct {
	ImagePath      string
	AnnotationPath string
	Width          int
	Height         int
	Boxes          []encoder.MatchedBox
	Targets        [anchors.NumScales]*encoder.ScaleTarget
}

// Dataset holds the precomputed targets for every annotated image. It is
// immutable after Load and safe for concurrent readers; samplers only
// index into the cached items.
type Dataset struct {
	opts  Options
	items []Item
}

// Load discovers image/annotation pairs under dir and runs the full
// parse -> normalize -> match -> encode pass over every image. Any
// malformed record, unresolvable pairing, unreadable image, or degenerate
// box aborts the load; there are no partial datasets.
func Load(dir string, opts Options) (*Dataset, error) {
	if opts.InputWidth <= 0 || opts.InputHeight <= 0 {
		return nil, fmt.Errorf("invalid input resolution %dx%d", opts.InputWidth, opts.InputHeight)
	}
	if opts.Bounds == "" {
		opts.Bounds = BoundsAllow
	}
	if _, err := ParseBoundsPolicy(string(opts.Bounds)); err != nil {
		return nil, err
	}
	if err := opts.Catalogue.Validate(); err != nil {
		return nil, fmt.Errorf("anchor catalogue: %w", err)
	}

	pairs, err := discoverPairs(dir)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{opts: opts, items: make([]Item, 0, len(pairs))}
	for _, p := range pairs {
		item, err := buildItem(p, opts)
		if err != nil {
			return nil, err
		}
		ds.items = append(ds.items, item)
	}

	slog.Debug("dataset built", "dir", dir, "images", len(ds.items))
	return ds, nil
}

type pair struct {
	imagePath      string
	annotationPath string
}

// discoverPairs lists dir and pairs every annotation file with an image
// file sharing its base name. A count mismatch or an unpaired file on
// either side is fatal.
func discoverPairs(dir string) ([]pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir: %w", err)
	}

	images := make(map[string]string)
	annotations := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dir, name)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		switch {
		case imageio.IsSupportedImage(name):
			images[base] = path
		case strings.EqualFold(filepath.Ext(name), ".txt"):
			annotations[base] = path
		}
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	if len(images) != len(annotations) {
		return nil, fmt.Errorf("image/annotation count mismatch in %s: %d images, %d annotation files",
			dir, len(images), len(annotations))
	}

	bases := make([]string, 0, len(annotations))
	for base := range annotations {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	pairs := make([]pair, 0, len(bases))
	for _, base := range bases {
		img, ok := images[base]
		if !ok {
			return nil, fmt.Errorf("annotation %s has no matching image", annotations[base])
		}
		pairs = append(pairs, pair{imagePath: img, annotationPath: annotations[base]})
	}
	return pairs, nil
}

// buildItem runs the per-image pipeline: metadata lookup, quad parsing,
// bounds policy, box derivation, letterbox normalization, anchor matching,
// and grid encoding.
func buildItem(p pair, opts Options) (Item, error) {
	width, height, err := imageio.ReadSize(p.imagePath)
	if err != nil {
		return Item{}, err
	}

	quads, err := annotation.ParseFile(p.annotationPath)
	if err != nil {
		return Item{}, err
	}

	boxes := make([]geometry.Box, 0, len(quads))
	for i, q := range quads {
		switch opts.Bounds {
		case BoundsClamp:
			q = q.Clamp(float64(width), float64(height))
		case BoundsReject:
			if !q.InBounds(float64(width), float64(height)) {
				return Item{}, fmt.Errorf("%s: object %d is out of image bounds %dx%d",
					p.annotationPath, i+1, width, height)
			}
		}
		b := geometry.BoxFromQuad(q)
		if err := b.Validate(); err != nil {
			return Item{}, fmt.Errorf("%s: object %d: %w", p.annotationPath, i+1, err)
		}
		boxes = append(boxes, b)
	}

	normalized, err := letterbox.NormalizeBoxes(boxes, width, height, opts.InputWidth, opts.InputHeight)
	if err != nil {
		return Item{}, fmt.Errorf("%s: %w", p.imagePath, err)
	}

	matched := make([]encoder.MatchedBox, len(normalized))
	for i, b := range normalized {
		matched[i] = encoder.MatchedBox{
			Box:         b,
			ClassID:     opts.ClassID,
			AnchorIndex: opts.Catalogue.Match(anchors.Size{W: b.W, H: b.H}),
		}
	}

	targets, err := encoder.EncodeImage(matched, opts.InputHeight, opts.Catalogue)
	if err != nil {
		return Item{}, fmt.Errorf("%s: %w", p.imagePath, err)
	}

	return Item{
		ImagePath:      p.imagePath,
		AnnotationPath: p.annotationPath,
		Width:          width,
		Height:         height,
		Boxes:          matched,
		Targets:        targets,
	}, nil
}

// Len returns the number of images in the dataset.
func (d *Dataset) Len() int { return len(d.items) }

// Item returns the cached example at index i.
func (d *Dataset) Item(i int) Item { return d.items[i] }

// NumBoxes returns the total number of annotated objects.
func (d *Dataset) NumBoxes() int {
	n := 0
	for i := range d.items {
		n += len(d.items[i].Boxes)
	}
	return n
}

// Options returns the build options the dataset was constructed with.
func (d *Dataset) Options() Options { return d.opts }
