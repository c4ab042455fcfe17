package patchview

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/patchview/patch"
)

// DefaultRedrawInset shrinks each patch repaint request so that rounding in
// the host's scene-to-device mapping does not spill into neighbouring
// patches.
const DefaultRedrawInset = 0.3

// Config holds the tuning parameters of a Viewport.
//
// A Config can be decoded from TOML:
//
//	patch_size = 256
//	overlap = 2
//	show_debug_patches = true
//	workers = 4
//	redraw_inset = 0.3
type Config struct {
	// PatchSize is the patch edge length in pixels.
	PatchSize int `toml:"patch_size"`

	// Overlap grows every patch by this many pixels on each side. Larger
	// values pull in more neighbouring source data per patch.
	Overlap int `toml:"overlap"`

	// ShowDebugPatches draws dirty/clean markers and patch ids over the
	// background.
	ShowDebugPatches bool `toml:"show_debug_patches"`

	// Workers is the number of background fill workers; 0 uses GOMAXPROCS.
	Workers int `toml:"workers"`

	// RedrawInset shrinks patch repaint requests on every side. Use 0 for
	// hosts whose device mapping does not round outward.
	RedrawInset float64 `toml:"redraw_inset"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PatchSize:   patch.DefaultBlockSize,
		Overlap:     0,
		RedrawInset: DefaultRedrawInset,
	}
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	switch {
	case c.PatchSize <= 0:
		return fmt.Errorf("%w: patch_size %d must be positive", ErrInvalidConfig, c.PatchSize)
	case c.Overlap < 0:
		return fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidConfig, c.Overlap)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d must not be negative", ErrInvalidConfig, c.Workers)
	case c.RedrawInset < 0 || c.RedrawInset >= 0.5:
		return fmt.Errorf("%w: redraw_inset %v must be in [0, 0.5)", ErrInvalidConfig, c.RedrawInset)
	}
	return nil
}

// ParseConfig decodes TOML on top of DefaultConfig. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("patchview: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("patchview: load config: %w", err)
	}
	return ParseConfig(data)
}
