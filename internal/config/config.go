package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/yolodata/internal/anchors"
)

// Config represents the complete configuration for the yolodata tool.
// It supports loading from configuration files, environment variables,
// and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Network input resolution shared by label normalization and image
	// letterboxing
	Input InputConfig `mapstructure:"input" yaml:"input" json:"input"`

	// Anchor template catalogue and scale masks
	Anchors AnchorsConfig `mapstructure:"anchors" yaml:"anchors" json:"anchors"`

	// Detection dataset settings
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset" json:"dataset"`

	// Word-classification dataset settings
	Classify ClassifyConfig `mapstructure:"classify" yaml:"classify" json:"classify"`
}

// InputConfig is the fixed network input resolution in pixels.
type InputConfig struct {
	Width  int `mapstructure:"width" yaml:"width" json:"width"`
	Height int `mapstructure:"height" yaml:"height" json:"height"`
}

// AnchorSize is one anchor template shape in normalized input space.
type AnchorSize struct {
	W float64 `mapstructure:"w" yaml:"w" json:"w"`
	H float64 `mapstructure:"h" yaml:"h" json:"h"`
}

// AnchorsConfig holds the ordered anchor catalogue and its 3-way mask
// partition, ordered coarse to fine. Empty means the built-in YOLOv3
// catalogue.
type AnchorsConfig struct {
	Sizes []AnchorSize `mapstructure:"sizes" yaml:"sizes" json:"sizes"`
	Masks [][]int      `mapstructure:"masks" yaml:"masks" json:"masks"`
}

// DatasetConfig contains detection dataset settings.
type DatasetConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`

	// ClassID is assigned to every box; the receipt dataset has a single
	// text class.
	ClassID int `mapstructure:"class_id" yaml:"class_id" json:"class_id"`

	// BoundsPolicy decides what happens to quads that leave the image:
	// "allow" passes them through, "clamp" clips them to the image
	// rectangle, "reject" aborts the build.
	BoundsPolicy string `mapstructure:"bounds_policy" yaml:"bounds_policy" json:"bounds_policy"`

	// Seed for the sampler's random source; 0 means non-deterministic.
	Seed int64 `mapstructure:"seed" yaml:"seed" json:"seed"`
}

// ClassifyConfig contains word-classification dataset settings.
type ClassifyConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir" json:"dir"`
	WordSize int    `mapstructure:"word_size" yaml:"word_size" json:"word_size"`
	CharSize int    `mapstructure:"char_size" yaml:"char_size" json:"char_size"`
}

// Bounds policy values accepted by DatasetConfig.BoundsPolicy.
const (
	BoundsAllow  = "allow"
	BoundsClamp  = "clamp"
	BoundsReject = "reject"
)

// Default returns the default configuration: 416x416 input, the YOLOv3
// anchor catalogue, single text class.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Input:    InputConfig{Width: 416, Height: 416},
		Dataset: DatasetConfig{
			ClassID:      1,
			BoundsPolicy: BoundsAllow,
		},
		Classify: ClassifyConfig{
			WordSize: 256,
			CharSize: 32,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Input.Width <= 0 || c.Input.Height <= 0 {
		return fmt.Errorf("invalid input resolution %dx%d", c.Input.Width, c.Input.Height)
	}
	switch c.Dataset.BoundsPolicy {
	case BoundsAllow, BoundsClamp, BoundsReject:
	default:
		return fmt.Errorf("invalid bounds policy %q", c.Dataset.BoundsPolicy)
	}
	if c.Classify.WordSize <= 0 || c.Classify.CharSize <= 0 {
		return fmt.Errorf("invalid classify sizes word=%d char=%d", c.Classify.WordSize, c.Classify.CharSize)
	}
	if _, err := c.Catalogue(); err != nil {
		return err
	}
	return nil
}

// Catalogue materializes the configured anchor catalogue, falling back to
// the built-in default when none is configured.
func (c *Config) Catalogue() (anchors.Catalogue, error) {
	if len(c.Anchors.Sizes) == 0 && len(c.Anchors.Masks) == 0 {
		return anchors.Default(), nil
	}
	if len(c.Anchors.Masks) != anchors.NumScales {
		return anchors.Catalogue{}, fmt.Errorf("anchors: expected %d masks, got %d", anchors.NumScales, len(c.Anchors.Masks))
	}
	cat := anchors.Catalogue{Anchors: make([]anchors.Size, len(c.Anchors.Sizes))}
	for i, s := range c.Anchors.Sizes {
		cat.Anchors[i] = anchors.Size{W: s.W, H: s.H}
	}
	for i, m := range c.Anchors.Masks {
		cat.Masks[i] = append([]int(nil), m...)
	}
	if err := cat.Validate(); err != nil {
		return anchors.Catalogue{}, fmt.Errorf("anchors: %w", err)
	}
	return cat, nil
}

// YAML renders the configuration as a YAML document, used by `config init`.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
