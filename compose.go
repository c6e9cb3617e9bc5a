package snote

import (
	"context"
	"fmt"
	"image"
	"math"
	"slices"
)

// PageRaster is a rendered page.
//
// Index is the position of the page in Document.Pages. Warnings lists the
// layers that were skipped; a page with warnings still shows every layer
// that could be decoded.
type PageRaster struct {
	Index    int
	Image    *image.RGBA
	Warnings []LayerWarning
}

// RenderPage composites the layers of page i onto a white canvas.
//
// By default the result is converted to grayscale and only RATTA_RLE layers
// are decoded; see WithGrayscale and WithLayerDecoder. RenderPage returns
// ErrPageOutOfRange when i is not a valid index into d.Pages.
func (d *Document) RenderPage(i int, opts ...RenderOption) (*PageRaster, error) {
	if i < 0 || i >= len(d.Pages) {
		return nil, fmt.Errorf("%w: %d, document has %d pages", ErrPageOutOfRange, i, len(d.Pages))
	}
	cfg := newRenderConfig(opts)
	return d.renderPage(i, cfg), nil
}

// RenderAllPages renders every page in document order. It stops between
// pages once ctx is done and returns the pages rendered so far together with
// the context's error.
func (d *Document) RenderAllPages(ctx context.Context, opts ...RenderOption) ([]*PageRaster, error) {
	cfg := newRenderConfig(opts)
	out := make([]*PageRaster, 0, len(d.Pages))
	for i := range d.Pages {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, d.renderPage(i, cfg))
	}
	return out, nil
}

func (d *Document) renderPage(i int, cfg renderConfig) *PageRaster {
	page := &d.Pages[i]
	canvas := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	for o := range canvas.Pix {
		canvas.Pix[o] = 0xff
	}
	pr := &PageRaster{Index: i, Image: canvas}
	warn := func(name LayerName, err error) {
		pr.Warnings = append(pr.Warnings, LayerWarning{Page: page.Index, Layer: name, Err: err})
	}
	if page.Err != nil {
		warn("", page.Err)
	}

	layers := make([]Layer, 0, len(page.LayerSequence))
	for _, name := range page.LayerSequence {
		l, ok := page.Layers[name]
		if !ok {
			continue
		}
		if l.Err != nil {
			warn(name, l.Err)
			continue
		}
		if l.Bitmap == nil {
			continue
		}
		layers = append(layers, l)
	}
	// LayerSequence is front to back; paint back to front.
	slices.Reverse(layers)

	var buf []byte
	for _, l := range layers {
		dec, ok := cfg.decoders[l.Protocol]
		if !ok {
			warn(l.Name, fmt.Errorf("%w: unsupported protocol %q", ErrDecode, l.Protocol))
			continue
		}
		if buf == nil {
			buf = make([]byte, len(canvas.Pix))
		} else {
			clear(buf)
		}
		if err := runDecoder(dec, buf, l.Bitmap, d.Width, d.Height); err != nil {
			warn(l.Name, err)
			continue
		}
		blendOver(canvas.Pix, buf)
	}

	if cfg.grayscale {
		toGrayscale(canvas.Pix)
	}
	return pr
}

func runDecoder(dec LayerDecoder, dst, data []byte, width, height int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()
	return dec(dst, data, width, height)
}

// blendOver composites src over dst, both non-premultiplied RGBA.
func blendOver(dst, src []byte) {
	for o := 0; o+3 < len(src) && o+3 < len(dst); o += 4 {
		sa := src[o+3]
		switch sa {
		case 0:
		case 0xff:
			dst[o] = src[o]
			dst[o+1] = src[o+1]
			dst[o+2] = src[o+2]
			dst[o+3] = 0xff
		default:
			a := float64(sa)
			keep := float64(dst[o+3]) * (1 - a/255)
			outA := a + keep
			if outA == 0 {
				continue
			}
			for c := 0; c < 3; c++ {
				dst[o+c] = clampByte((float64(src[o+c])*a + float64(dst[o+c])*keep) / outA)
			}
			dst[o+3] = clampByte(outA)
		}
	}
}

// toGrayscale replaces R, G and B of every pixel by its luma.
func toGrayscale(pix []byte) {
	for o := 0; o+3 < len(pix); o += 4 {
		g := clampByte(float64(pix[o])*0.299 + float64(pix[o+1])*0.587 + float64(pix[o+2])*0.114)
		pix[o] = g
		pix[o+1] = g
		pix[o+2] = g
	}
}

func clampByte(v float64) byte {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}
