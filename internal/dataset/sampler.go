package dataset

import (
	"math/rand"
	"time"

	"github.com/MeKo-Tech/yolodata/internal/anchors"
	"github.com/MeKo-Tech/yolodata/internal/encoder"
)

// Sample is one training example: an image reference (loaded by the
// consumer's image-decoding stage) plus the three cached target tensors,
// ordered coarse to fine.
type Sample struct {
	ImagePath string
	Targets   [anchors.NumScales]*encoder.ScaleTarget
}

// Sampler draws images uniformly at random with replacement, forever.
// There is no notion of epoch or termination; the consumer stops by
// ceasing to pull. Draws are deterministic only if the caller supplies a
// seeded source. A Sampler is not safe for concurrent use, but any number
// of samplers may share one dataset: the cache is read-only after Load.
type Sampler struct {
	ds  *Dataset
	rng *rand.Rand
}

// NewSampler creates a sampler over a built dataset. A nil rng gets a
// time-seeded source.
func NewSampler(ds *Dataset, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // sampling order is not security sensitive
	}
	return &Sampler{ds: ds, rng: rng}
}

// Next draws the next sample. Repeats and short-window unevenness are
// expected: draws are i.i.d. with replacement.
func (s *Sampler) Next() Sample {
	item := s.ds.Item(s.rng.Intn(s.ds.Len()))
	return Sample{ImagePath: item.ImagePath, Targets: item.Targets}
}
