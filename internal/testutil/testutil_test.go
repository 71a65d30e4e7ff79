package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/yolodata/internal/imageio"
)

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.True(t, FileExists(filepath.Join(root, "go.mod")))
	require.NoError(t, ValidateProjectRoot(root))
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	WritePNG(t, path, 40, 30)

	w, h, err := imageio.ReadSize(path)
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
}

func TestWriteAnnotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "X00001.txt")
	WriteAnnotation(t, path,
		[][8]float64{{10, 10, 50, 10, 50, 30, 10, 30}},
		"TOTAL")

	raw, err := os.ReadFile(path) //nolint:gosec // test-controlled path
	require.NoError(t, err)
	assert.Equal(t, "10,10,50,10,50,30,10,30,TOTAL\n", string(raw))
}

func TestWriteDetectionDataset(t *testing.T) {
	dir := t.TempDir()
	WriteDetectionDataset(t, dir, []DetectionImage{
		{Base: "X00001", Width: 100, Height: 80, Quads: [][8]float64{{1, 1, 9, 1, 9, 5, 1, 5}}},
		{Base: "X00002", Width: 60, Height: 60, Quads: nil},
	})

	assert.True(t, FileExists(filepath.Join(dir, "X00001.png")))
	assert.True(t, FileExists(filepath.Join(dir, "X00001.txt")))
	assert.True(t, FileExists(filepath.Join(dir, "X00002.png")))
	assert.True(t, FileExists(filepath.Join(dir, "X00002.txt")))
}
