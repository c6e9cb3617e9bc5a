package snote

type readConfig struct {
	limits      Limits
	deviceSizes map[string]Size
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithDeviceSizes adds page sizes for equipment identifiers, taking
// precedence over the built-in table.
func WithDeviceSizes(sizes map[string]Size) ReadOption {
	return func(c *readConfig) {
		if c.deviceSizes == nil {
			c.deviceSizes = make(map[string]Size, len(sizes))
		}
		for k, v := range sizes {
			c.deviceSizes[k] = v
		}
	}
}

// LayerDecoder decodes one layer bitmap into dst, a zeroed RGBA buffer of
// width*height*4 bytes. Pixels the data does not cover must be left alone.
type LayerDecoder func(dst, data []byte, width, height int) error

type renderConfig struct {
	decoders  map[string]LayerDecoder
	grayscale bool
}

type RenderOption func(*renderConfig)

// WithLayerDecoder registers dec for layers whose LAYERPROTOCOL is protocol.
func WithLayerDecoder(protocol string, dec LayerDecoder) RenderOption {
	return func(c *renderConfig) { c.decoders[protocol] = dec }
}

// WithGrayscale controls the final grayscale conversion. It is on by default.
func WithGrayscale(v bool) RenderOption {
	return func(c *renderConfig) { c.grayscale = v }
}

func newRenderConfig(opts []RenderOption) renderConfig {
	cfg := renderConfig{
		decoders:  map[string]LayerDecoder{ProtocolRattaRLE: decodeRattaRLE},
		grayscale: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
