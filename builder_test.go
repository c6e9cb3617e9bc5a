package snote

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
)

// noteBuilder lays out a container one addressed block at a time.
type noteBuilder struct {
	buf bytes.Buffer
}

func newNoteBuilder(version string) *noteBuilder {
	b := &noteBuilder{}
	b.buf.WriteString(SignaturePrefix + version)
	return b
}

// block appends an addressed block and returns its address.
func (b *noteBuilder) block(content []byte) uint32 {
	addr := uint32(b.buf.Len())
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(content)))
	b.buf.Write(n[:])
	b.buf.Write(content)
	return addr
}

// text appends a metadata block built from tag, value pairs.
func (b *noteBuilder) text(pairs ...string) uint32 {
	return b.block([]byte(tags(pairs...)))
}

func (b *noteBuilder) finish(footer uint32) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], footer)
	b.buf.Write(n[:])
	return b.buf.Bytes()
}

func tags(pairs ...string) string {
	var s string
	for i := 0; i+1 < len(pairs); i += 2 {
		s += "<" + pairs[i] + ":" + pairs[i+1] + ">"
	}
	return s
}

type layerSpec struct {
	protocol string
	bitmap   []byte
}

type pageSpec struct {
	index  string
	seq    string
	layers map[LayerName]layerSpec
}

type noteSpec struct {
	equipment string
	pages     []pageSpec
}

// buildNote writes a complete container: header at the default address,
// then pages with their layers, then the footer.
func buildNote(s noteSpec) []byte {
	b := newNoteBuilder("20230015")
	if s.equipment != "" {
		b.text("MODULE_LABEL", "none", "APPLY_EQUIPMENT", s.equipment)
	} else {
		b.text("MODULE_LABEL", "none")
	}
	var footer []string
	for _, p := range s.pages {
		var fields []string
		if p.seq != "" {
			fields = append(fields, "LAYERSEQ", p.seq)
		}
		for _, name := range LayerNames {
			ls, ok := p.layers[name]
			if !ok {
				fields = append(fields, string(name), "0")
				continue
			}
			bm := b.block(ls.bitmap)
			lf := []string{"LAYERTYPE", "NOTE", "LAYERBITMAP", strconv.Itoa(int(bm))}
			if ls.protocol != "" {
				lf = append(lf, "LAYERPROTOCOL", ls.protocol)
			}
			fields = append(fields, string(name), strconv.Itoa(int(b.text(lf...))))
		}
		pa := b.text(append([]string{"PAGESTYLE", "style_white"}, fields...)...)
		footer = append(footer, "PAGE"+p.index, strconv.Itoa(int(pa)))
	}
	footer = append(footer, "FILE_FEATURE", "24", "COVER_0", "0")
	return b.finish(b.text(footer...))
}

type run struct {
	color byte
	n     int
}

// encodeRuns produces a stream of plain pairs only.
func encodeRuns(runs ...run) []byte {
	var out []byte
	for _, r := range runs {
		for n := r.n; n > 0; {
			chunk := min(n, 0x80)
			out = append(out, r.color, byte(chunk-1))
			n -= chunk
		}
	}
	return out
}

func pixelAt(pix []byte, i int) [4]byte {
	return [4]byte{pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3]}
}

func rgba(c [4]byte) string {
	return fmt.Sprintf("(%d,%d,%d,%d)", c[0], c[1], c[2], c[3])
}
