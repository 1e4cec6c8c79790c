// Package xl implements the PSF-XL sidecar reader: chunk markers, Blosc
// decompression, and the reverse-linked chunk walk (spec §4.8).
package xl

import (
	"encoding/hex"
	"encoding/binary"
	"fmt"
	"regexp"
	"strings"

	"github.com/chwa/psfdata/internal/errs"
)

// Chunk type codes (spec §4.8 table).
const (
	ChunkXY      int64 = 0x22 // x then y, both Blosc-compressed
	ChunkYX      int64 = 0xa2 // y then x (x located via xoffset), both Blosc-compressed
	ChunkLiteral int64 = 0xa0 // x Blosc-compressed, y literal double or raw doubles
	ChunkUnknown int64 = 0x20 // observed, not characterized; always UnsupportedChunkType
)

// markerPattern mirrors the reference marker grammar:
//
//	3:<idx>:<previous>:<npoints>:<csize>:<type>[:<xoffset>.]<xlen>[:<ylen>]
var markerPattern = regexp.MustCompile(
	`^3:([0-9a-f]+):([0-9a-f]+):([0-9a-f]+):([0-9a-f]+):([0-9a-f]+):` +
		`(?:([0-9a-f]+)\.)?([0-9a-f]+)(?::([0-9a-f]+))?$`)

// Marker is the decoded form of a PSF-XL chunk marker string.
type Marker struct {
	Idx        int64
	Previous   int64
	NPoints    int64
	CSize      int64
	Type       int64
	XOffset    int64
	HasXOffset bool
	XLen       int64
	YLen       int64
	HasYLen    bool
}

// hexToSigned parses a hex string the way the reference implementation
// does: right-justify to 16 digits (8 bytes), then interpret as a signed
// big-endian int64. This is NOT per-field sign extension — a short field
// like "a2" always decodes positive; only a full 16-digit field with its
// top bit set (the "previous = all-Fs" sentinel) comes out negative.
func hexToSigned(h string) (int64, error) {
	if len(h) > 16 {
		return 0, fmt.Errorf("hex field %q wider than 64 bits", h)
	}
	padded := strings.Repeat("0", 16-len(h)) + h
	raw, err := hex.DecodeString(padded)
	if err != nil {
		return 0, fmt.Errorf("hex field %q: %w", h, err)
	}
	//nolint:gosec // G115: intentional reinterpretation of the 8-byte big-endian field
	return int64(binary.BigEndian.Uint64(raw)), nil
}

// ParseMarker parses a chunk marker string. offset is the marker's own
// absolute position, used only for error reporting.
func ParseMarker(s string, offset int64) (Marker, error) {
	groups := markerPattern.FindStringSubmatch(s)
	if groups == nil {
		return Marker{}, errs.New(errs.BadMarker, offset, fmt.Errorf("marker %q does not match the expected grammar", s))
	}

	var m Marker
	var err error

	if m.Idx, err = hexToSigned(groups[1]); err != nil {
		return Marker{}, errs.New(errs.BadMarker, offset, err)
	}
	if m.Previous, err = hexToSigned(groups[2]); err != nil {
		return Marker{}, errs.New(errs.BadMarker, offset, err)
	}
	if m.NPoints, err = hexToSigned(groups[3]); err != nil {
		return Marker{}, errs.New(errs.BadMarker, offset, err)
	}
	if m.CSize, err = hexToSigned(groups[4]); err != nil {
		return Marker{}, errs.New(errs.BadMarker, offset, err)
	}
	if m.Type, err = hexToSigned(groups[5]); err != nil {
		return Marker{}, errs.New(errs.BadMarker, offset, err)
	}
	if groups[6] != "" {
		m.HasXOffset = true
		if m.XOffset, err = hexToSigned(groups[6]); err != nil {
			return Marker{}, errs.New(errs.BadMarker, offset, err)
		}
	}
	if m.XLen, err = hexToSigned(groups[7]); err != nil {
		return Marker{}, errs.New(errs.BadMarker, offset, err)
	}
	if groups[8] != "" {
		m.HasYLen = true
		if m.YLen, err = hexToSigned(groups[8]); err != nil {
			return Marker{}, errs.New(errs.BadMarker, offset, err)
		}
	}

	return m, nil
}
