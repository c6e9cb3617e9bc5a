package pagecache

type Limits struct {
	MaxPixels     uint64 // width*height of a cached raster
	MaxPayloadLen uint64 // stored payload length, compressed
}

func defaultLimits() Limits {
	return Limits{
		MaxPixels:     64 << 20,
		MaxPayloadLen: 1 << 30, // 1 GiB stored payload cap
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxPixels == 0 {
		l.MaxPixels = d.MaxPixels
	}
	if l.MaxPayloadLen == 0 {
		l.MaxPayloadLen = d.MaxPayloadLen
	}
	return l
}
