package annotation

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/yolodata/internal/geometry"
)

// quadFields is the number of leading numeric fields per record: 4 corner
// (x, y) pairs. Trailing fields (e.g. transcription text) are ignored.
const quadFields = 8

// ParseError identifies the exact file and line of a malformed annotation
// record. Parse failures are fatal for the file; skipping lines silently
// would desynchronize image and label indices.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("annotation parse error in %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine parses one annotation record: 8 comma-separated numeric fields
// interpreted as 4 corner points, in order.
func ParseLine(line string) (geometry.Quad, error) {
	fields := strings.Split(line, ",")
	if len(fields) < quadFields {
		return geometry.Quad{}, fmt.Errorf("expected at least %d fields, got %d", quadFields, len(fields))
	}

	var vals [quadFields]float64
	for i := range quadFields {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return geometry.Quad{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}

	var q geometry.Quad
	for i := range q {
		q[i] = geometry.Point{X: vals[2*i], Y: vals[2*i+1]}
	}
	return q, nil
}

// ParseFile reads one annotation file (one record per object) and returns
// the quadrilaterals in file order. The first malformed record aborts the
// whole file with a *ParseError.
func ParseFile(path string) ([]geometry.Quad, error) {
	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided annotation path is expected
	if err != nil {
		return nil, fmt.Errorf("open annotation file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var quads []geometry.Quad
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		q, err := ParseLine(line)
		if err != nil {
			return nil, &ParseError{File: path, Line: lineNo, Err: err}
		}
		quads = append(quads, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read annotation file %s: %w", path, err)
	}
	return quads, nil
}
