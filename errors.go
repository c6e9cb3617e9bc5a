package snote

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature  = errors.New("snote: invalid signature")
	ErrInvalidFooter     = errors.New("snote: invalid footer")
	ErrInvalidPage       = errors.New("snote: invalid page")
	ErrAddressOutOfRange = errors.New("snote: address out of range")
	ErrDecode            = errors.New("snote: layer decode failed")
	ErrPageOutOfRange    = errors.New("snote: page index out of range")
	ErrLimitExceeded     = errors.New("snote: limit exceeded")
)

// LayerWarning reports a layer that was skipped while rendering a page.
type LayerWarning struct {
	Page  int
	Layer LayerName
	Err   error
}

func (w LayerWarning) Error() string {
	return fmt.Sprintf("page %d layer %s: %v", w.Page, w.Layer, w.Err)
}

func (w LayerWarning) Unwrap() error { return w.Err }
