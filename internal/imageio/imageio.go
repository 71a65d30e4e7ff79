package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SupportedImageExtensions lists supported file extensions.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Metadata captures lightweight file and pixel information, read from the
// image header without decoding pixel data.
type Metadata struct {
	Path        string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	AspectRatio float64
}

// ReadMetadata probes an image header for its dimensions and format.
// Errors always carry the offending path.
func ReadMetadata(path string) (Metadata, error) {
	if path == "" {
		return Metadata{}, errors.New("empty image path")
	}
	if !IsSupportedImage(path) {
		return Metadata{}, fmt.Errorf("unsupported image format: %s", path)
	}

	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided image path is expected
	if err != nil {
		return Metadata{}, fmt.Errorf("open image %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return Metadata{}, fmt.Errorf("stat image %s: %w", path, err)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("decode image header %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Metadata{}, fmt.Errorf("image %s has invalid dimensions %dx%d", path, cfg.Width, cfg.Height)
	}

	return Metadata{
		Path:        path,
		Format:      format,
		SizeBytes:   fi.Size(),
		Width:       cfg.Width,
		Height:      cfg.Height,
		AspectRatio: float64(cfg.Width) / float64(cfg.Height),
	}, nil
}

// ReadSize returns just the pixel dimensions of an image.
func ReadSize(path string) (width, height int, err error) {
	meta, err := ReadMetadata(path)
	if err != nil {
		return 0, 0, err
	}
	return meta.Width, meta.Height, nil
}
