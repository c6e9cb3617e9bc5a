// Package pagecache stores rendered note pages on disk.
//
// Each entry is a single file holding a 32-byte fixed header followed by the
// raster's pixels, compressed with ZIP, Zstandard, LZ4 or Brotli. Grayscale
// rasters are stored as gray+alpha pairs, anything else as RGBA.
//
// Entries are addressed by a Key derived from the container bytes, the page
// index and a caller-chosen variant string describing render options.
package pagecache

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const entryExt = ".snpc"

// DocumentID identifies the container a page was rendered from.
type DocumentID [sha256.Size]byte

// IdentifyDocument hashes the complete container bytes.
func IdentifyDocument(container []byte) DocumentID {
	return sha256.Sum256(container)
}

// Key identifies one cache entry.
type Key [sha256.Size]byte

// Page returns the key of page i rendered with the given variant.
func (id DocumentID) Page(i int, variant string) Key {
	h := sha256.New()
	h.Write(id[:])
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(i))
	h.Write(n[:])
	h.Write([]byte(variant))
	var k Key
	h.Sum(k[:0])
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Dir is a cache rooted at a directory. It is safe for concurrent use by
// multiple goroutines; concurrent Puts of the same key leave one complete
// entry.
type Dir struct {
	root string
	cfg  config
}

// Open returns a cache rooted at dir, creating the directory if needed.
func Open(dir string, opts ...Option) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: dir, cfg: newConfig(opts)}, nil
}

func (d *Dir) path(k Key) string {
	return filepath.Join(d.root, k.String()+entryExt)
}

// Get loads the raster stored under k. It returns ErrMiss when there is no
// such entry.
func (d *Dir) Get(k Key) (*image.RGBA, error) {
	f, err := os.Open(d.path(k))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMiss, k)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadEntry(bufio.NewReader(f), WithLimits(d.cfg.limits))
}

// Put stores img under k, replacing any existing entry.
func (d *Dir) Put(k Key, img *image.RGBA) error {
	tmp, err := os.CreateTemp(d.root, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := WriteEntry(w, img, WithCompression(d.cfg.compression), WithLimits(d.cfg.limits)); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), d.path(k))
}

// Remove deletes the entry stored under k. Removing a missing entry is not
// an error.
func (d *Dir) Remove(k Key) error {
	err := os.Remove(d.path(k))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// WriteEntry encodes img as a cache entry.
func WriteEntry(w io.Writer, img *image.RGBA, opts ...Option) error {
	cfg := newConfig(opts)
	if img == nil {
		return fmt.Errorf("%w: image is nil", ErrInvalidPayload)
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: empty raster", ErrInvalidPayload)
	}
	if uint64(width)*uint64(height) > cfg.limits.MaxPixels {
		return fmt.Errorf("%w: raster %dx%d", ErrLimitExceeded, width, height)
	}

	raw, channels := packPixels(img)
	payload, err := compressPayload(cfg.compression, raw)
	if err != nil {
		return err
	}
	if uint64(len(payload)) > cfg.limits.MaxPayloadLen {
		return fmt.Errorf("%w: payload too large", ErrLimitExceeded)
	}
	h := entryHeaderV1{
		Magic:       Magic,
		Version:     VersionV1,
		Compression: uint16(cfg.compression),
		Width:       uint32(width),
		Height:      uint32(height),
		Channels:    channels,
		PayloadLen:  uint64(len(payload)),
	}
	if err := writeEntryHeader(w, h); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// ReadEntry decodes a cache entry written by WriteEntry.
func ReadEntry(r io.Reader, opts ...Option) (*image.RGBA, error) {
	cfg := newConfig(opts)
	h, err := readEntryHeader(r)
	if err != nil {
		return nil, err
	}
	if err := validateEntryHeader(h, cfg.limits); err != nil {
		return nil, err
	}
	payload := make([]byte, h.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	raw, err := decompressPayload(Compression(h.Compression), payload, h.rawLen())
	if err != nil {
		return nil, err
	}
	return unpackPixels(raw, int(h.Width), int(h.Height), h.Channels), nil
}

// packPixels flattens img row by row. Rasters whose every pixel has equal
// R, G and B are reduced to gray+alpha.
func packPixels(img *image.RGBA) ([]byte, uint16) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	gray := true
	for y := 0; y < height && gray; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for o := 0; o < len(row); o += 4 {
			if row[o] != row[o+1] || row[o] != row[o+2] {
				gray = false
				break
			}
		}
	}
	if !gray {
		raw := make([]byte, 0, width*height*4)
		for y := 0; y < height; y++ {
			raw = append(raw, img.Pix[y*img.Stride:y*img.Stride+width*4]...)
		}
		return raw, channelsRGBA
	}
	raw := make([]byte, 0, width*height*2)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for o := 0; o < len(row); o += 4 {
			raw = append(raw, row[o], row[o+3])
		}
	}
	return raw, channelsGray
}

func unpackPixels(raw []byte, width, height int, channels uint16) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if channels == channelsRGBA {
		copy(img.Pix, raw)
		return img
	}
	for i := 0; i < width*height; i++ {
		g, a := raw[i*2], raw[i*2+1]
		img.Pix[i*4] = g
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = g
		img.Pix[i*4+3] = a
	}
	return img
}
