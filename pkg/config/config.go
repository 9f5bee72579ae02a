package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	errmsg "github.com/siyuan-infoblox/dartfix/pkg/errors"
)

// DefaultFile is the config file looked up in the working directory
const DefaultFile = ".dartfix.yaml"

// Defaults
const (
	DefaultFixRoot       = "lib"
	DefaultImagesRoot    = "assets"
	DefaultMinSize       = "1MB"
	DefaultQuality       = 70
	DefaultMaxWidth      = 600
	DefaultMaxHeight     = 400
	DefaultDartExtension = ".dart"
)

// Config is the root of .dartfix.yaml
type Config struct {
	Fix    FixConfig    `yaml:"fix"`
	Images ImagesConfig `yaml:"images"`
}

// FixConfig configures the source rewriting pass
type FixConfig struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"` // doublestar patterns relative to root
	DryRun     bool     `yaml:"dry_run"`
	Diff       bool     `yaml:"diff"`
}

// ImagesConfig configures the image compression pass
type ImagesConfig struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"`
	MinSize    string   `yaml:"min_size"` // e.g. "1MB", "500KiB"
	Quality    int      `yaml:"quality"`
	MaxWidth   int      `yaml:"max_width"`
	MaxHeight  int      `yaml:"max_height"`
	DryRun     bool     `yaml:"dry_run"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Fix.Root == "" {
		c.Fix.Root = DefaultFixRoot
	}
	if len(c.Fix.Extensions) == 0 {
		c.Fix.Extensions = []string{DefaultDartExtension}
	}
	if c.Images.Root == "" {
		c.Images.Root = DefaultImagesRoot
	}
	if len(c.Images.Extensions) == 0 {
		c.Images.Extensions = []string{".jpg", ".jpeg"}
	}
	if c.Images.MinSize == "" {
		c.Images.MinSize = DefaultMinSize
	}
	if c.Images.Quality == 0 {
		c.Images.Quality = DefaultQuality
	}
	if c.Images.MaxWidth == 0 {
		c.Images.MaxWidth = DefaultMaxWidth
	}
	if c.Images.MaxHeight == 0 {
		c.Images.MaxHeight = DefaultMaxHeight
	}
}

// Load reads the config at path. A missing file is not an error when
// optional is set; the defaults are returned instead.
func Load(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and patterns
func (c *Config) Validate() error {
	for _, ext := range append(append([]string{}, c.Fix.Extensions...), c.Images.Extensions...) {
		if !strings.HasPrefix(ext, ".") {
			return errors.Errorf("%w: extension %q must start with a dot", errmsg.ErrInvalidConfig, ext)
		}
	}
	for _, pattern := range append(append([]string{}, c.Fix.Exclude...), c.Images.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("%w: bad exclude pattern %q", errmsg.ErrInvalidConfig, pattern)
		}
	}
	if c.Images.Quality < 0 || c.Images.Quality > 100 {
		return errors.Errorf("%w: quality %d out of range 0-100", errmsg.ErrInvalidConfig, c.Images.Quality)
	}
	if c.Images.MaxWidth < 0 || c.Images.MaxHeight < 0 {
		return errors.Errorf("%w: max dimensions must be positive", errmsg.ErrInvalidConfig)
	}
	if _, err := c.Images.MinSizeBytes(); err != nil {
		return err
	}
	return nil
}

// MinSizeBytes parses MinSize
func (c ImagesConfig) MinSizeBytes() (uint64, error) {
	n, err := humanize.ParseBytes(c.MinSize)
	if err != nil {
		return 0, errors.Errorf("%w: min_size %q: %s", errmsg.ErrInvalidConfig, c.MinSize, err.Error())
	}
	return n, nil
}
