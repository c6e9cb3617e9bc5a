package snote

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Decode reads a whole container from r and parses it.
//
// At most Limits.MaxFileSize bytes are read; a larger input returns
// ErrLimitExceeded.
func Decode(r io.Reader, opts ...ReadOption) (*Document, error) {
	cfg := newReadConfig(opts)
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, cfg.limits.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if n > cfg.limits.MaxFileSize {
		return nil, fmt.Errorf("%w: file larger than %d bytes", ErrLimitExceeded, cfg.limits.MaxFileSize)
	}
	return parse(buf.Bytes(), cfg)
}

// Parse builds a Document from a complete container held in buf.
//
// The parsing process:
//  1. Validates the 24-byte signature
//  2. Reads the footer block addressed by the last 4 bytes
//  3. Reads the header block and selects the page size for its equipment
//  4. Reads every page block in ascending numeric page order
//  5. Reads each page's layer blocks and locates their bitmaps
//
// buf must not be modified while the Document is in use: layer bitmaps are
// views into it.
//
// Signature, footer and header failures are fatal. A page or layer whose
// blocks cannot be read is kept with its Err field set.
func Parse(buf []byte, opts ...ReadOption) (*Document, error) {
	cfg := newReadConfig(opts)
	if int64(len(buf)) > cfg.limits.MaxFileSize {
		return nil, fmt.Errorf("%w: file larger than %d bytes", ErrLimitExceeded, cfg.limits.MaxFileSize)
	}
	return parse(buf, cfg)
}

func newReadConfig(opts []ReadOption) readConfig {
	cfg := readConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return cfg
}

func parse(buf []byte, cfg readConfig) (*Document, error) {
	sig, version, err := readSignature(buf)
	if err != nil {
		return nil, err
	}

	footerAddr, err := readFooterAddress(buf)
	if err != nil {
		return nil, err
	}
	footerBlock, err := readBlock(buf, footerAddr, cfg.limits.MaxBlockLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFooter, err)
	}
	if footerBlock == nil {
		return nil, fmt.Errorf("%w: footer address is 0", ErrInvalidFooter)
	}
	footer := GroupNested(ExtractKeyValues(footerBlock), "_", []string{"PAGE"})
	fileInfo := footer["FILE"]

	headerAddr := uint32(defaultHeaderAddress)
	if v, ok := fileInfo["FEATURE"]; ok {
		headerAddr, err = parseAddress(v.String())
		if err != nil {
			return nil, fmt.Errorf("%w: FILE_FEATURE: %w", ErrInvalidFooter, err)
		}
	}
	headerBlock, err := readBlock(buf, headerAddr, cfg.limits.MaxBlockLen)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidFooter, err)
	}
	equipment := defaultEquipment
	if v, ok := ExtractKeyValues(headerBlock).Get("APPLY_EQUIPMENT"); ok {
		equipment = v
	}
	size := lookupPageSize(equipment, cfg.deviceSizes)

	refs := pageRefs(footer["PAGE"])
	if len(refs) > cfg.limits.MaxPages {
		return nil, fmt.Errorf("%w: %d pages", ErrLimitExceeded, len(refs))
	}

	doc := &Document{
		Signature: sig,
		Version:   version,
		Width:     size.Width,
		Height:    size.Height,
		Equipment: equipment,
		Pages:     make([]Page, 0, len(refs)),
		FileInfo:  fileInfo,
	}
	for _, ref := range refs {
		doc.Pages = append(doc.Pages, parsePage(buf, ref, cfg.limits))
	}
	if err := validateDocument(doc, cfg.limits); err != nil {
		return nil, err
	}
	return doc, nil
}

type pageRef struct {
	index int
	addr  string
}

// pageRefs orders the footer's page group by numeric page index. Entries
// whose index is not a decimal number are ignored.
func pageRefs(group map[string]Value) []pageRef {
	refs := make([]pageRef, 0, len(group))
	for k, v := range group {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		refs = append(refs, pageRef{index: idx, addr: v.String()})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].index < refs[j].index })
	return refs
}

func parsePage(buf []byte, ref pageRef, limits Limits) Page {
	p := Page{
		Index:         ref.index,
		LayerSequence: []LayerName{LayerMain},
		Layers:        make(map[LayerName]Layer, len(LayerNames)),
	}
	addr, err := parseAddress(ref.addr)
	if err != nil {
		p.Err = fmt.Errorf("%w: page %d: %w", ErrInvalidPage, ref.index, err)
		return p
	}
	p.Address = addr
	block, err := readBlock(buf, addr, limits.MaxBlockLen)
	if err != nil {
		p.Err = fmt.Errorf("%w: page %d: %w", ErrInvalidPage, ref.index, err)
		return p
	}
	kv := ExtractKeyValues(block)

	if seq, ok := kv.Get("LAYERSEQ"); ok {
		p.LayerSequence = p.LayerSequence[:0]
		for _, name := range strings.Split(seq, ",") {
			p.LayerSequence = append(p.LayerSequence, LayerName(name))
		}
	}

	for _, name := range LayerNames {
		p.Layers[name] = parseLayer(buf, name, kv, limits)
	}
	return p
}

func parseLayer(buf []byte, name LayerName, page KeyValues, limits Limits) Layer {
	l := Layer{Name: name}
	field, ok := page.Get(string(name))
	if !ok || field == "0" {
		return l
	}
	addr, err := parseAddress(field)
	if err != nil {
		l.Err = err
		return l
	}
	block, err := readBlock(buf, addr, limits.MaxBlockLen)
	if err != nil {
		l.Err = err
		return l
	}
	kv := ExtractKeyValues(block)

	l.Protocol = ProtocolRattaRLE
	if v, ok := kv.Get("LAYERPROTOCOL"); ok {
		l.Protocol = v
	}
	bitmapField, ok := kv.Get("LAYERBITMAP")
	if !ok {
		return l
	}
	bitmapAddr, err := parseAddress(bitmapField)
	if err != nil {
		l.Err = err
		return l
	}
	l.Bitmap, l.Err = readBlock(buf, bitmapAddr, limits.MaxBlockLen)
	return l
}
