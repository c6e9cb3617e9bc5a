package snote

type Limits struct {
	MaxFileSize   int64  // bytes read by Decode
	MaxBlockLen   uint32 // length of any single addressed block
	MaxPages      int
	MaxPagePixels int // width*height of a page
}

func defaultLimits() Limits {
	return Limits{
		MaxFileSize:   1 << 30, // 1 GiB
		MaxBlockLen:   256 << 20,
		MaxPages:      10_000,
		MaxPagePixels: 64 << 20, // 256 MiB of RGBA per page
	}
}

// DefaultLimits returns the limits Parse and Decode use when none are given.
func DefaultLimits() Limits { return defaultLimits() }

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxFileSize == 0 {
		l.MaxFileSize = d.MaxFileSize
	}
	if l.MaxBlockLen == 0 {
		l.MaxBlockLen = d.MaxBlockLen
	}
	if l.MaxPages == 0 {
		l.MaxPages = d.MaxPages
	}
	if l.MaxPagePixels == 0 {
		l.MaxPagePixels = d.MaxPagePixels
	}
	return l
}
