// Package classify prepares word-classification labels for receipt
// key-information extraction: each JSON record's words are tokenized to
// ascii codes and padded into fixed-shape arrays.
package classify

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Word is one labeled word from an annotation record.
type Word struct {
	Word  string `json:"word"`
	Class int    `json:"class"`
}

// record is the on-disk JSON layout.
type record struct {
	Data []Word `json:"data"`
}

// Example is one fully padded training example: WordSize rows of CharSize
// ascii codes, plus a WordSize-length class vector. Rows beyond the real
// word count are zero.
type Example struct {
	Words   [][]int
	Classes []int
}

// Dataset holds the padded examples for every record file. Immutable after
// Load.
type Dataset struct {
	paths    []string
	examples []Example
	wordSize int
	charSize int
}

// Load reads every *.json record under dir and pads each into a fixed
// WordSize x CharSize example. A record with more words than wordSize, or
// a word longer than charSize after ascii filtering, is a fatal size
// violation.
func Load(dir string, wordSize, charSize int) (*Dataset, error) {
	if wordSize <= 0 || charSize <= 0 {
		return nil, fmt.Errorf("invalid sizes word=%d char=%d", wordSize, charSize)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list classify dir: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no classify records found in %s", dir)
	}
	sort.Strings(matches)

	ds := &Dataset{paths: matches, wordSize: wordSize, charSize: charSize}
	for _, path := range matches {
		ex, err := loadExample(path, wordSize, charSize)
		if err != nil {
			return nil, err
		}
		ds.examples = append(ds.examples, ex)
	}
	return ds, nil
}

func loadExample(path string, wordSize, charSize int) (Example, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: reading user-provided record path is expected
	if err != nil {
		return Example{}, fmt.Errorf("read classify record: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Example{}, fmt.Errorf("parse classify record %s: %w", path, err)
	}
	if len(rec.Data) > wordSize {
		return Example{}, fmt.Errorf("%s: %d words exceed word size %d", path, len(rec.Data), wordSize)
	}

	ex := Example{
		Words:   make([][]int, wordSize),
		Classes: make([]int, wordSize),
	}
	for i, w := range rec.Data {
		codes := TransformASCII(w.Word)
		if len(codes) > charSize {
			return Example{}, fmt.Errorf("%s: word %q exceeds char size %d", path, w.Word, charSize)
		}
		ex.Words[i] = padZero(codes, charSize)
		ex.Classes[i] = w.Class
	}
	for i := len(rec.Data); i < wordSize; i++ {
		ex.Words[i] = make([]int, charSize)
	}
	return ex, nil
}

// TransformASCII folds a word to its ascii code points: the string is NFKD
// normalized first so accented characters contribute their base letter,
// then any remaining code point >= 128 is dropped.
func TransformASCII(s string) []int {
	var codes []int
	for _, r := range norm.NFKD.String(s) {
		if r < 128 {
			codes = append(codes, int(r))
		}
	}
	return codes
}

func padZero(codes []int, size int) []int {
	out := make([]int, size)
	copy(out, codes)
	return out
}

// Len returns the number of record files.
func (d *Dataset) Len() int { return len(d.examples) }

// Example returns the padded example at index i.
func (d *Dataset) Example(i int) Example { return d.examples[i] }

// Path returns the record file behind index i.
func (d *Dataset) Path(i int) string { return d.paths[i] }

// Sample is one classification training pair.
type Sample struct {
	Path    string
	Words   [][]int
	Classes []int
}

// Sampler draws record indices uniformly with replacement, forever, the
// same contract as the detection sampler.
type Sampler struct {
	ds  *Dataset
	rng *rand.Rand
}

// NewSampler creates a sampler; a nil rng gets a time-seeded source.
func NewSampler(ds *Dataset, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // sampling order is not security sensitive
	}
	return &Sampler{ds: ds, rng: rng}
}

// Next draws the next sample.
func (s *Sampler) Next() Sample {
	i := s.rng.Intn(s.ds.Len())
	ex := s.ds.Example(i)
	return Sample{Path: s.ds.Path(i), Words: ex.Words, Classes: ex.Classes}
}
