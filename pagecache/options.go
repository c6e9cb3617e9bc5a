package pagecache

type config struct {
	limits      Limits
	compression Compression
}

type Option func(*config)

func WithLimits(l Limits) Option {
	return func(c *config) { c.limits = l }
}

// WithCompression selects the codec used by Put and WriteEntry. Entries
// written with any codec can always be read back.
func WithCompression(comp Compression) Option {
	return func(c *config) { c.compression = comp }
}

func newConfig(opts []Option) config {
	cfg := config{limits: defaultLimits(), compression: CompZSTD}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return cfg
}
