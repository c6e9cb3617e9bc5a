package snote

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
)

var signatureRE = regexp.MustCompile(`^` + SignaturePrefix + `(\d{8})$`)

// readSignature validates the first 24 bytes of buf and returns the
// signature text and its version number.
func readSignature(buf []byte) (string, int, error) {
	if len(buf) < signatureLen {
		return "", 0, fmt.Errorf("%w: file is %d bytes", ErrInvalidSignature, len(buf))
	}
	sig := string(buf[:signatureLen])
	m := signatureRE.FindStringSubmatch(sig)
	if m == nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidSignature, sig)
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, fmt.Errorf("%w: version %q", ErrInvalidSignature, m[1])
	}
	return sig, v, nil
}

// readFooterAddress returns the address stored in the last 4 bytes of buf.
func readFooterAddress(buf []byte) (uint32, error) {
	if len(buf) < signatureLen+4 {
		return 0, fmt.Errorf("%w: file too short for footer address", ErrInvalidFooter)
	}
	return binary.LittleEndian.Uint32(buf[len(buf)-4:]), nil
}

// readBlock returns the content of the addressed block at addr.
//
// Address 0 is absent and yields (nil, nil). The returned slice aliases buf
// and has its capacity clipped to its length.
func readBlock(buf []byte, addr uint32, maxLen uint32) ([]byte, error) {
	if addr == 0 {
		return nil, nil
	}
	start := uint64(addr)
	if start+4 > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: block address %d beyond end of file (%d bytes)", ErrAddressOutOfRange, addr, len(buf))
	}
	n := binary.LittleEndian.Uint32(buf[start : start+4])
	if maxLen > 0 && n > maxLen {
		return nil, fmt.Errorf("%w: block at %d has length %d", ErrLimitExceeded, addr, n)
	}
	end := start + 4 + uint64(n)
	if end > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: block at %d with length %d ends at %d, file is %d bytes", ErrAddressOutOfRange, addr, n, end, len(buf))
	}
	return buf[start+4 : end : end], nil
}

// parseAddress interprets a decimal address field.
func parseAddress(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: address %q", ErrAddressOutOfRange, s)
	}
	return uint32(v), nil
}
