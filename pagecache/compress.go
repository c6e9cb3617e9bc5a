package pagecache

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const zipEntryName = "pixels.raw"

// Codec constructors, replaced in tests.
var (
	newZstdEncoder = func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression), zstd.WithEncoderConcurrency(1))
	}
	newZstdDecoder = func(r io.Reader) (*zstd.Decoder, error) {
		return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	}
	openLZ4Writer = func(w io.Writer) io.WriteCloser {
		zw := lz4.NewWriter(w)
		_ = zw.Apply(lz4.CompressionLevelOption(lz4.Level5))
		return zw
	}
	openBrotliWriter = func(w io.Writer) io.WriteCloser {
		return brotli.NewWriterLevel(w, brotli.DefaultCompression)
	}
)

// codec encodes raw pixel bytes to a payload and back. decode must return
// exactly rawLen bytes or an error.
type codec struct {
	encode func(raw []byte) ([]byte, error)
	decode func(payload []byte, rawLen uint64) ([]byte, error)
}

func codecFor(comp Compression) (codec, error) {
	switch comp {
	case CompNone:
		return codec{
			encode: func(raw []byte) ([]byte, error) { return raw, nil },
			decode: func(p []byte, _ uint64) ([]byte, error) { return p, nil },
		}, nil
	case CompZIP:
		return codec{encode: zipEncode, decode: zipDecode}, nil
	case CompZSTD:
		return codec{encode: zstdEncode, decode: zstdDecode}, nil
	case CompLZ4:
		return codec{
			encode: func(raw []byte) ([]byte, error) { return streamEncode(openLZ4Writer, raw) },
			decode: func(p []byte, n uint64) ([]byte, error) {
				return streamDecode(lz4.NewReader(bytes.NewReader(p)), n)
			},
		}, nil
	case CompBR:
		return codec{
			encode: func(raw []byte) ([]byte, error) { return streamEncode(openBrotliWriter, raw) },
			decode: func(p []byte, n uint64) ([]byte, error) {
				return streamDecode(brotli.NewReader(bytes.NewReader(p)), n)
			},
		}, nil
	default:
		return codec{}, fmt.Errorf("%w: unknown compression %d", ErrInvalidPayload, comp)
	}
}

func compressPayload(comp Compression, raw []byte) ([]byte, error) {
	c, err := codecFor(comp)
	if err != nil {
		return nil, err
	}
	return c.encode(raw)
}

// decompressPayload restores the rawLen pixel bytes held in payload.
func decompressPayload(comp Compression, payload []byte, rawLen uint64) ([]byte, error) {
	c, err := codecFor(comp)
	if err != nil {
		return nil, err
	}
	raw, err := c.decode(payload, rawLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, comp, err)
	}
	if uint64(len(raw)) != rawLen {
		return nil, fmt.Errorf("%w: %s: got %d pixel bytes, want %d", ErrInvalidPayload, comp, len(raw), rawLen)
	}
	return raw, nil
}

func streamEncode(open func(io.Writer) io.WriteCloser, raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := open(&buf)
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// streamDecode reads at most rawLen+1 bytes from r so that an oversized
// stream is detected without inflating it.
func streamDecode(r io.Reader, rawLen uint64) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, rawLen))
	n, err := buf.ReadFrom(io.LimitReader(r, int64(rawLen)+1))
	if err != nil {
		return nil, err
	}
	if uint64(n) > rawLen {
		return nil, fmt.Errorf("stream expands past %d bytes", rawLen)
	}
	return buf.Bytes(), nil
}

func zipEncode(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: zipEntryName, Method: zip.Deflate})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// zipDecode extracts the single pixels.raw entry of a ZIP archive.
func zipDecode(payload []byte, rawLen uint64) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, err
	}
	if len(zr.File) != 1 {
		return nil, fmt.Errorf("archive has %d entries, want 1", len(zr.File))
	}
	zf := zr.File[0]
	switch {
	case zf.Name != zipEntryName:
		return nil, fmt.Errorf("entry %q, want %q", zf.Name, zipEntryName)
	case zf.FileInfo().IsDir():
		return nil, fmt.Errorf("entry %q is a directory", zf.Name)
	case zf.UncompressedSize64 != rawLen:
		return nil, fmt.Errorf("entry holds %d bytes, want %d", zf.UncompressedSize64, rawLen)
	}
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return streamDecode(rc, rawLen)
}

func zstdEncode(raw []byte) ([]byte, error) {
	enc, err := newZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/8)), nil
}

func zstdDecode(payload []byte, rawLen uint64) ([]byte, error) {
	dec, err := newZstdDecoder(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return streamDecode(dec, rawLen)
}
