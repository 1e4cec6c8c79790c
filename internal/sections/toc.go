package sections

import (
	"encoding/binary"
	"fmt"

	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/errs"
)

// footerMagic marks a regular (TOC-bearing) PSF file (spec §4.7).
var footerMagic = []byte("Clarissa")

// validSignatures are the known first-4-byte markers of a binary PSF file
// (spec §4.7). 0x400 is the common case; the others are observed variants
// whose exact provenance (Monte Carlo sweep/index, element.info) is not
// otherwise documented.
var validSignatures = map[int32]bool{0x200: true, 0x300: true, 0x400: true, 0x500: true}

// tocEntry is one (kind, offset) pair of the table of contents.
type tocEntry struct {
	Kind   Kind
	Offset int32
}

// File is the fully decoded content of a binary PSF file: every section
// that was present, plus whatever value data it carried (spec §4.7).
type File struct {
	Header *HeaderSection
	Types  *TypeSection
	Sweep  *SweepSection // nil if the file is not swept
	Trace  *TraceSection // nil if the table of contents has no TRACE entry

	SimpleValues *SimpleValueSection // set iff the file is non-swept and not an index
	SweepValues  *SweepValueSection  // set iff the file is swept and not an index

	IsIndexOnly bool // true for a PSF-XL index sidecar (.psf without a TOC)
}

// DecodeFile decodes the full contents of a binary PSF file per spec §4.7.
func DecodeFile(data []byte) (*File, error) {
	c := cursor.New(data)

	sig, err := c.PeekInt32()
	if err != nil {
		return nil, errs.New(errs.Truncated, c.AbsPos(), fmt.Errorf("reading file signature: %w", err))
	}
	if !validSignatures[sig] {
		return nil, errs.New(errs.BadSignature, c.AbsPos(), fmt.Errorf("unknown signature %#x", sig))
	}

	hasTOC := len(data) >= 12 && string(data[len(data)-12:len(data)-4]) == string(footerMagic)

	var toc map[Kind]tocEntry
	if hasTOC {
		toc, err = readTOC(data)
		if err != nil {
			return nil, err
		}
	}

	f := &File{IsIndexOnly: !hasTOC}

	sectionCursor := func(kind Kind, fallback *cursor.Cursor) (*cursor.Cursor, bool) {
		if !hasTOC {
			return fallback, true
		}
		entry, ok := toc[kind]
		if !ok {
			return nil, false
		}
		sub, err := c.Sub(int(entry.Offset), len(data))
		if err != nil {
			return nil, false
		}
		return sub, true
	}

	sequentialStart, err := c.Sub(4, c.Len())
	if err != nil {
		return nil, errs.New(errs.Truncated, c.AbsPos(), fmt.Errorf("skipping file signature: %w", err))
	}

	headerStart, ok := sectionCursor(KindHeader, sequentialStart)
	if !ok {
		return nil, errs.New(errs.BadFooter, c.AbsPos(), fmt.Errorf("table of contents has no HEADER entry"))
	}
	header, rest, err := ReadHeaderSection(headerStart)
	if err != nil {
		return nil, err
	}
	f.Header = header

	typeStart, ok := sectionCursor(KindType, rest)
	if !ok {
		return nil, errs.New(errs.BadFooter, c.AbsPos(), fmt.Errorf("table of contents has no TYPE entry"))
	}
	typeSection, rest, err := ReadTypeSection(typeStart)
	if err != nil {
		return nil, err
	}
	f.Types = typeSection

	if header.IsSwept() {
		sweepStart, ok := sectionCursor(KindSweep, rest)
		if !ok {
			return nil, errs.New(errs.BadFooter, c.AbsPos(), fmt.Errorf("table of contents has no SWEEP entry"))
		}
		sweep, sweepRest, err := ReadSweepSection(sweepStart, typeSection.Defs)
		if err != nil {
			return nil, err
		}
		f.Sweep = sweep
		rest = sweepRest
	}

	traceStart, ok := sectionCursor(KindTrace, rest)
	if ok {
		trace, traceRest, err := ReadTraceSection(traceStart, typeSection.Defs)
		if err != nil {
			return nil, err
		}
		f.Trace = trace
		rest = traceRest
	}

	if f.IsIndexOnly {
		// PSF-XL index files carry no Value section; real sample data
		// lives in the .psfxl sidecar (spec §4.8).
		return f, nil
	}

	valueStart, ok := sectionCursor(KindValue, rest)
	if !ok {
		return nil, errs.New(errs.BadFooter, c.AbsPos(), fmt.Errorf("table of contents has no VALUE entry"))
	}

	if header.IsSwept() {
		if f.Trace == nil {
			return nil, errs.New(errs.MalformedSection, c.AbsPos(), fmt.Errorf("swept file has no TRACE section"))
		}
		sv, _, err := ReadSweepValueSection(valueStart, header, f.Sweep, f.Trace)
		if err != nil {
			return nil, err
		}
		f.SweepValues = sv
	} else {
		sv, _, err := ReadSimpleValueSection(valueStart, typeSection.Defs)
		if err != nil {
			return nil, err
		}
		f.SimpleValues = sv
	}

	return f, nil
}

// readTOC locates and parses the trailing table of contents (spec §4.7).
func readTOC(data []byte) (map[Kind]tocEntry, error) {
	fileSize := int64(len(data))
	footerStart := fileSize - 12

	//nolint:gosec // G115: intentional reinterpretation of the 4-byte big-endian field
	dataSize := int64(int32(binary.BigEndian.Uint32(data[fileSize-4:])))

	nsections := (footerStart - dataSize) / 8
	if nsections < 0 {
		return nil, errs.New(errs.BadFooter, footerStart, fmt.Errorf("negative TOC entry count (data_size=%d)", dataSize))
	}
	tocStart := footerStart - 8*nsections
	if tocStart < 0 {
		return nil, errs.New(errs.BadFooter, footerStart, fmt.Errorf("TOC start before file start (n=%d)", nsections))
	}

	offsets := make([]int32, nsections+1)
	kinds := make([]Kind, nsections)
	for i := int64(0); i < nsections; i++ {
		base := tocStart + 8*i
		//nolint:gosec // G115: intentional reinterpretation of the 4-byte big-endian field
		kinds[i] = Kind(int32(binary.BigEndian.Uint32(data[base : base+4])))
		//nolint:gosec // G115: intentional reinterpretation of the 4-byte big-endian field
		offsets[i] = int32(binary.BigEndian.Uint32(data[base+4 : base+8]))
	}
	//nolint:gosec // G115: intentional narrowing, TOC offsets never approach 2^31
	offsets[nsections] = int32(tocStart)

	toc := make(map[Kind]tocEntry, nsections)
	for i := int64(0); i < nsections; i++ {
		toc[kinds[i]] = tocEntry{Kind: kinds[i], Offset: offsets[i]}
	}
	return toc, nil
}
