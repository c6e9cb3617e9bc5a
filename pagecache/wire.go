package pagecache

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	VersionV1 uint16 = 1

	entryHeaderSize = 32
)

// Magic is the 8-byte signature of a cache entry.
var Magic = [8]byte{'S', 'N', 'P', 'C', '\r', '\n', 0x1A, 0}

// Compression identifies the codec of an entry payload.
type Compression uint16

const (
	CompNone Compression = 0x0
	CompZIP  Compression = 0x1
	CompZSTD Compression = 0x2
	CompLZ4  Compression = 0x3
	CompBR   Compression = 0x4
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZIP:
		return "zip"
	case CompZSTD:
		return "zstd"
	case CompLZ4:
		return "lz4"
	case CompBR:
		return "brotli"
	default:
		return "unknown"
	}
}

// ParseCompression maps a codec name as printed by Compression.String back
// to its value.
func ParseCompression(name string) (Compression, error) {
	for _, c := range []Compression{CompNone, CompZIP, CompZSTD, CompLZ4, CompBR} {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrInvalidPayload, name)
}

const (
	channelsGray = 2 // gray, alpha
	channelsRGBA = 4
)

type entryHeaderV1 struct {
	Magic       [8]byte
	Version     uint16
	Compression uint16
	Width       uint32
	Height      uint32
	Channels    uint16
	Reserved0   uint16
	PayloadLen  uint64
}

func readEntryHeader(r io.Reader) (entryHeaderV1, error) {
	var buf [entryHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return entryHeaderV1{}, err
	}
	var h entryHeaderV1
	copy(h.Magic[:], buf[0:8])
	h.Version = binary.LittleEndian.Uint16(buf[8:10])
	h.Compression = binary.LittleEndian.Uint16(buf[10:12])
	h.Width = binary.LittleEndian.Uint32(buf[12:16])
	h.Height = binary.LittleEndian.Uint32(buf[16:20])
	h.Channels = binary.LittleEndian.Uint16(buf[20:22])
	h.Reserved0 = binary.LittleEndian.Uint16(buf[22:24])
	h.PayloadLen = binary.LittleEndian.Uint64(buf[24:32])
	return h, nil
}

func writeEntryHeader(w io.Writer, h entryHeaderV1) error {
	var buf [entryHeaderSize]byte
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint16(buf[10:12], h.Compression)
	binary.LittleEndian.PutUint32(buf[12:16], h.Width)
	binary.LittleEndian.PutUint32(buf[16:20], h.Height)
	binary.LittleEndian.PutUint16(buf[20:22], h.Channels)
	binary.LittleEndian.PutUint16(buf[22:24], h.Reserved0)
	binary.LittleEndian.PutUint64(buf[24:32], h.PayloadLen)
	_, err := w.Write(buf[:])
	return err
}

func validateEntryHeader(h entryHeaderV1, limits Limits) error {
	if h.Magic != Magic {
		return ErrInvalidMagic
	}
	if h.Version != VersionV1 {
		return ErrUnsupportedVersion
	}
	if h.Reserved0 != 0 {
		return fmt.Errorf("%w: reserved must be 0", ErrInvalidHeader)
	}
	switch Compression(h.Compression) {
	case CompNone, CompZIP, CompZSTD, CompLZ4, CompBR:
	default:
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidHeader, h.Compression)
	}
	if h.Channels != channelsGray && h.Channels != channelsRGBA {
		return fmt.Errorf("%w: %d channels", ErrInvalidHeader, h.Channels)
	}
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: empty raster %dx%d", ErrInvalidHeader, h.Width, h.Height)
	}
	if uint64(h.Width)*uint64(h.Height) > limits.MaxPixels {
		return fmt.Errorf("%w: raster %dx%d", ErrLimitExceeded, h.Width, h.Height)
	}
	if h.PayloadLen > limits.MaxPayloadLen {
		return fmt.Errorf("%w: payload length %d", ErrLimitExceeded, h.PayloadLen)
	}
	return nil
}

func (h entryHeaderV1) rawLen() uint64 {
	return uint64(h.Width) * uint64(h.Height) * uint64(h.Channels)
}
