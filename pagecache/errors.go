package pagecache

import "errors"

var (
	ErrMiss               = errors.New("pagecache: entry not found")
	ErrInvalidMagic       = errors.New("pagecache: invalid magic")
	ErrUnsupportedVersion = errors.New("pagecache: unsupported version")
	ErrInvalidHeader      = errors.New("pagecache: invalid entry header")
	ErrInvalidPayload     = errors.New("pagecache: invalid payload")
	ErrLimitExceeded      = errors.New("pagecache: limit exceeded")
)
