package snote

import (
	"fmt"
	"image/color"
)

// Color codes of the RATTA_RLE encoding. Ink and marker variants of the same
// shade decode to the same color.
const (
	ColorBlack          byte = 0x61
	ColorBackground     byte = 0x62
	ColorDarkGray       byte = 0x63
	ColorGray           byte = 0x64
	ColorWhite          byte = 0x65
	ColorMarkerBlack    byte = 0x66
	ColorMarkerDarkGray byte = 0x67
	ColorMarkerGray     byte = 0x68
)

var palette = map[byte]color.RGBA{
	ColorBlack:          {0x00, 0x00, 0x00, 0xff},
	ColorBackground:     {0x00, 0x00, 0x00, 0x00},
	ColorDarkGray:       {0x9d, 0x9d, 0x9d, 0xff},
	ColorGray:           {0xc9, 0xc9, 0xc9, 0xff},
	ColorWhite:          {0xff, 0xff, 0xff, 0xff},
	ColorMarkerBlack:    {0x00, 0x00, 0x00, 0xff},
	ColorMarkerDarkGray: {0x9d, 0x9d, 0x9d, 0xff},
	ColorMarkerGray:     {0xc9, 0xc9, 0xc9, 0xff},
}

// PaletteColor returns the RGBA value of an encoded color byte. Unknown
// codes are transparent black.
func PaletteColor(code byte) color.RGBA {
	return palette[code]
}

const (
	rleMaxRun     = 0x4000
	rleMaxCode    = 0xff
	rleExtendFlag = 0x80
)

// DecodeRLE decodes a RATTA_RLE bitmap into a zeroed RGBA buffer of
// width*height*4 bytes. Pixels not covered by the stream stay zero.
func DecodeRLE(data []byte, width, height int) []byte {
	if width <= 0 || height <= 0 {
		return nil
	}
	dst := make([]byte, width*height*4)
	decodeRLEInto(dst, data, width*height)
	return dst
}

// decodeRattaRLE adapts the decoder to the LayerDecoder signature.
func decodeRattaRLE(dst, data []byte, width, height int) error {
	pixels := width * height
	if len(dst) < pixels*4 {
		return fmt.Errorf("%w: buffer holds %d bytes, need %d", ErrDecode, len(dst), pixels*4)
	}
	decodeRLEInto(dst, data, pixels)
	return nil
}

type rleRun struct {
	color  byte
	length byte
}

// extended returns the run length an extended pair stands for on its own.
func (r rleRun) extended(shift uint) int {
	return (int(r.length&0x7f) + 1) << shift
}

// decodeRLEInto writes the pixels of data into dst, which holds at least
// pixels RGBA quadruples. Writes never go past pixels.
func decodeRLEInto(dst, data []byte, pixels int) {
	pos := 0
	fill := func(code byte, n int) {
		end := pos + n
		if end > pixels {
			end = pixels
		}
		c := palette[code]
		for p := pos; p < end; p++ {
			o := p * 4
			dst[o] = c.R
			dst[o+1] = c.G
			dst[o+2] = c.B
			dst[o+3] = c.A
		}
		if end > pos {
			pos = end
		}
	}

	var held rleRun
	pending := false
	for i := 0; i+1 < len(data); i += 2 {
		cur := rleRun{color: data[i], length: data[i+1]}
		if pending {
			pending = false
			if cur.color == held.color {
				fill(cur.color, 1+int(cur.length)+held.extended(7))
				continue
			}
			fill(held.color, held.extended(7))
		}
		switch {
		case cur.length == rleMaxCode:
			fill(cur.color, rleMaxRun)
		case cur.length&rleExtendFlag != 0:
			held = cur
			pending = true
		default:
			fill(cur.color, int(cur.length)+1)
		}
	}

	if pending {
		remaining := pixels - pos
		for shift := 7; shift >= 0; shift-- {
			if n := held.extended(uint(shift)); n <= remaining {
				fill(held.color, n)
				break
			}
		}
	}
}
