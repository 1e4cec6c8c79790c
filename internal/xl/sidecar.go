package xl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chwa/psfdata/internal/errs"
)

// Sidecar is the fully-loaded contents of a `.psfxl` chunk file. Per the
// reference implementation (DataBuffer), the whole file is read into
// memory once; every chunk read after that is pure byte-slice indexing, no
// further I/O.
type Sidecar struct {
	data []byte
}

// OpenSidecar reads the whole `.psfxl` file at path into memory and closes
// the handle immediately, so a batch of chunk reads never holds the file
// open any longer than needed (spec §5: "scoped acquisition").
func OpenSidecar(path string) (*Sidecar, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.SidecarMissing, 0, err)
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &Sidecar{data: data}, nil
}

func (s *Sidecar) slice(start, length, markerOffset int64) ([]byte, error) {
	if start < 0 || length < 0 || start+length > int64(len(s.data)) {
		return nil, errs.New(errs.Truncated, markerOffset,
			fmt.Errorf("chunk payload [%d,%d) out of bounds (sidecar is %d bytes)", start, start+length, len(s.data)))
	}
	return s.data[start : start+length], nil
}

// readMarker reads the NUL-terminated ASCII marker at offset (which points
// at the leading 0x03 byte) and returns it parsed, plus the 8-byte-aligned
// absolute position where the chunk payload begins.
func (s *Sidecar) readMarker(offset int64) (Marker, int64, error) {
	if offset < 0 || offset >= int64(len(s.data)) {
		return Marker{}, 0, errs.New(errs.Truncated, offset, fmt.Errorf("marker offset out of bounds"))
	}

	pos := offset + 1 // the byte at offset itself is the 0x03 lead-in
	start := pos
	for {
		if pos >= int64(len(s.data)) {
			return Marker{}, 0, errs.New(errs.Truncated, offset, fmt.Errorf("unterminated chunk marker"))
		}
		if s.data[pos] == 0 {
			break
		}
		pos++
	}

	desc := strings.TrimRight(string(s.data[start:pos]), "\n")
	pos++ // consume the NUL terminator

	m, err := ParseMarker(desc, offset)
	if err != nil {
		return Marker{}, 0, err
	}

	valueStart := 8 * ((pos + 7) / 8)
	return m, valueStart, nil
}

// readChunk decodes one chunk's x and y sample runs and returns the
// absolute offset of the previous chunk in the chain (-1 at the head).
func (s *Sidecar) readChunk(offset int64) (x, y []float64, previous int64, err error) {
	m, valueStart, err := s.readMarker(offset)
	if err != nil {
		return nil, nil, 0, err
	}
	if m.Type != ChunkXY && m.Type != ChunkYX && m.Type != ChunkLiteral {
		return nil, nil, 0, errs.New(errs.UnsupportedChunkType, offset, fmt.Errorf("chunk type %#x", m.Type))
	}

	xStart := valueStart
	if m.HasXOffset {
		xStart = offset - m.XOffset
	}
	xRaw, err := s.slice(xStart, m.XLen, offset)
	if err != nil {
		return nil, nil, 0, err
	}
	xDecomp, err := decompressBlosc(xRaw)
	if err != nil {
		return nil, nil, 0, errs.New(errs.BloscDecompress, offset, err)
	}
	x = float64sFromLE(xDecomp)

	switch m.Type {
	case ChunkXY:
		yRaw, err := s.slice(valueStart+m.XLen, m.YLen, offset)
		if err != nil {
			return nil, nil, 0, err
		}
		yDecomp, err := decompressBlosc(yRaw)
		if err != nil {
			return nil, nil, 0, errs.New(errs.BloscDecompress, offset, err)
		}
		y = float64sFromLE(yDecomp)

	case ChunkYX:
		yRaw, err := s.slice(valueStart, m.YLen, offset)
		if err != nil {
			return nil, nil, 0, err
		}
		yDecomp, err := decompressBlosc(yRaw)
		if err != nil {
			return nil, nil, 0, errs.New(errs.BloscDecompress, offset, err)
		}
		y = float64sFromLE(yDecomp)

	case ChunkLiteral:
		if m.CSize == 8 {
			raw, err := s.slice(valueStart, 8, offset)
			if err != nil {
				return nil, nil, 0, err
			}
			y = float64sFromLE(raw)
		} else {
			raw, err := s.slice(valueStart, m.CSize, offset)
			if err != nil {
				return nil, nil, 0, err
			}
			y = float64sFromLE(raw)
		}

	default:
		return nil, nil, 0, errs.New(errs.UnsupportedChunkType, offset, fmt.Errorf("chunk type %#x", m.Type))
	}

	return x, y, m.Previous, nil
}

// ReadSignal walks the reverse-linked chunk chain starting at startOffset
// until it reaches the sentinel previous == -1, then concatenates the
// collected x/y runs in forward time order (spec §4.8, design note
// "accumulate forward, reverse at the end, no recursion").
func (s *Sidecar) ReadSignal(startOffset int64) (x, y []float64, err error) {
	var xRuns, yRuns [][]float64

	offset := startOffset
	for offset != -1 {
		cx, cy, prev, err := s.readChunk(offset)
		if err != nil {
			return nil, nil, err
		}
		xRuns = append(xRuns, cx)
		yRuns = append(yRuns, cy)
		offset = prev
	}

	return concatReversed(xRuns), concatReversed(yRuns), nil
}

func concatReversed(runs [][]float64) []float64 {
	total := 0
	for _, r := range runs {
		total += len(r)
	}
	out := make([]float64, 0, total)
	for i := len(runs) - 1; i >= 0; i-- {
		out = append(out, runs[i]...)
	}
	return out
}
