package patchview

// Option configures a Viewport during creation.
// Use functional options to customize Viewport behavior.
//
// Example:
//
//	// Defaults: 128px patches, no overlap
//	vp, err := patchview.New(host)
//
//	// Larger patches with debug markers
//	vp, err := patchview.New(host,
//	    patchview.WithPatchSize(256),
//	    patchview.WithDebugPatches(true))
type Option func(*Config)

// WithConfig replaces the whole configuration. Options after it still
// apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithPatchSize sets the patch edge length in pixels.
func WithPatchSize(size int) Option {
	return func(c *Config) {
		c.PatchSize = size
	}
}

// WithOverlap sets the per-side patch overlap in pixels.
//
// Caution: an overlap pulls in data from the surrounding patches and makes
// every fill more expensive.
func WithOverlap(overlap int) Option {
	return func(c *Config) {
		c.Overlap = overlap
	}
}

// WithDebugPatches enables the dirty/clean debug overlay.
func WithDebugPatches(show bool) Option {
	return func(c *Config) {
		c.ShowDebugPatches = show
	}
}

// WithWorkers sets the number of background fill workers.
// Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = max(n, 0)
	}
}

// WithRedrawInset sets how far patch repaint requests are shrunk on each
// side.
func WithRedrawInset(inset float64) Option {
	return func(c *Config) {
		c.RedrawInset = inset
	}
}
