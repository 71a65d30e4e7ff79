package testutil

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// WritePNG writes a solid-color PNG of the given dimensions, for metadata
// and letterbox tests.
func WritePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := imaging.New(width, height, color.White)
	require.NoError(t, EnsureDir(filepath.Dir(path)))
	require.NoError(t, imaging.Save(img, path))
}

// WriteAnnotation writes one annotation file, one record per line. Each
// record is the 8 corner coordinates of a quad, optionally followed by a
// transcription field.
func WriteAnnotation(t *testing.T, path string, quads [][8]float64, transcriptions ...string) {
	t.Helper()

	var sb strings.Builder
	for i, q := range quads {
		for j, v := range q {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%g", v)
		}
		if i < len(transcriptions) {
			sb.WriteByte(',')
			sb.WriteString(transcriptions[i])
		}
		sb.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
}

// DetectionImage describes one synthetic detector example to generate.
type DetectionImage struct {
	Base   string // file base name, e.g. "X00001"
	Width  int
	Height int
	Quads  [][8]float64
}

// WriteDetectionDataset writes a paired image/annotation dataset into dir.
func WriteDetectionDataset(t *testing.T, dir string, images []DetectionImage) {
	t.Helper()

	require.NoError(t, EnsureDir(dir))
	for _, img := range images {
		WritePNG(t, filepath.Join(dir, img.Base+".png"), img.Width, img.Height)
		WriteAnnotation(t, filepath.Join(dir, img.Base+".txt"), img.Quads)
	}
}

// ClassifyWord is one labeled word of a classification fixture.
type ClassifyWord struct {
	Word  string `json:"word"`
	Class int    `json:"class"`
}

// WriteClassifyFile writes one word-classification JSON fixture.
func WriteClassifyFile(t *testing.T, path string, words []ClassifyWord) {
	t.Helper()

	payload := struct {
		Data []ClassifyWord `json:"data"`
	}{Data: words}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))
}
