package sections

import (
	"fmt"

	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/errs"
	"github.com/chwa/psfdata/internal/types"
	"github.com/chwa/psfdata/internal/utils"
)

// SweepValueSection holds a swept simulation's dense output: one shared
// x-axis plus one y-column per trace (spec §4.6). Values are widened to
// complex128 so that both real (DOUBLE) and complex (COMPLEXDOUBLE) sweep
// data share a single representation; real-valued columns simply carry a
// zero imaginary part.
type SweepValueSection struct {
	X []complex128
	Y map[string][]complex128
}

// ReadSweepValueSection decodes a Value section body in swept mode,
// dispatching to the flat or windowed sublayout per the header's
// "PSF window size" flag (spec §4.6).
func ReadSweepValueSection(
	c *cursor.Cursor,
	header *HeaderSection,
	sweep *SweepSection,
	trace *TraceSection,
) (*SweepValueSection, *cursor.Cursor, error) {
	rawEnd, body, tail, err := openSection(c)
	if err != nil {
		return nil, nil, err
	}
	if rawEnd == emptySectionSentinel {
		return &SweepValueSection{Y: map[string][]complex128{}}, c, nil
	}

	traces := trace.Flattened()
	if windowSize, ok := header.WindowSize(); ok {
		return readWindowedValues(body, tail, header, sweep, traces, windowSize)
	}
	return readFlatValues(body, tail, header, sweep, traces)
}

func itemSize(td *types.TypeDef) (int, error) {
	sz, ok := td.ItemSize()
	if !ok {
		return 0, fmt.Errorf("type %q has no fixed item size", td.Name)
	}
	return sz, nil
}

// asComplex widens a decoded literal to complex128, the uniform in-memory
// representation for sweep data (spec §4.6).
func asComplex(v any) (complex128, error) {
	switch t := v.(type) {
	case int8:
		return complex(float64(t), 0), nil
	case int32:
		return complex(float64(t), 0), nil
	case float64:
		return complex(t, 0), nil
	case complex128:
		return t, nil
	default:
		return 0, fmt.Errorf("value of type %T cannot be used as a sweep sample", v)
	}
}

// --- Flat layout (spec §4.6) ---

func readFlatValues(
	data, tail *cursor.Cursor,
	header *HeaderSection,
	sweep *SweepSection,
	traces []*types.SignalDef,
) (*SweepValueSection, *cursor.Cursor, error) {
	n := int(header.SweepPoints())
	if n > utils.MaxSweepPoints {
		return nil, nil, errs.New(errs.MalformedSection, data.AbsPos(),
			fmt.Errorf("declared sweep points %d exceeds sanity limit %d", n, utils.MaxSweepPoints))
	}

	x := make([]complex128, 0, n)
	y := make(map[string][]complex128, len(traces))
	for _, t := range traces {
		y[t.Name] = make([]complex128, 0, n)
	}

	for i := 0; i < n; i++ {
		v, err := readFlatField(data, sweep.Signal)
		if err != nil {
			return nil, nil, err
		}
		x = append(x, v)

		for _, t := range traces {
			v, err := readFlatField(data, t)
			if err != nil {
				return nil, nil, err
			}
			y[t.Name] = append(y[t.Name], v)
		}
	}

	return &SweepValueSection{X: x, Y: y}, tail, nil
}

// readFlatField consumes one record field: an 8-byte (0x10, id) marker the
// reference format repeats per field, followed by the field's literal
// value (spec §4.6 flat layout).
func readFlatField(c *cursor.Cursor, sig *types.SignalDef) (complex128, error) {
	marker, err := c.ReadInt32()
	if err != nil {
		return 0, classify(c, "reading flat record field marker", err)
	}
	if marker != tagSingle {
		return 0, errs.New(errs.MalformedSection, c.AbsPos(),
			fmt.Errorf("flat record field %q: expected marker %#x, got %#x", sig.Name, tagSingle, marker))
	}
	if _, err := c.ReadInt32(); err != nil { // field id, unused
		return 0, classify(c, "reading flat record field id", err)
	}

	lit, err := readLiteral(c, sig.TypeRef)
	if err != nil {
		return 0, err
	}
	v, err := asComplex(lit)
	if err != nil {
		return 0, errs.New(errs.UnsupportedSweep, c.AbsPos(), fmt.Errorf("field %q: %w", sig.Name, err))
	}
	return v, nil
}

// --- Windowed layout (spec §4.6) ---

const tracePaddingBytes = 8

func readWindowedValues(
	body, tail *cursor.Cursor,
	header *HeaderSection,
	sweep *SweepSection,
	traces []*types.SignalDef,
	windowSize int32,
) (*SweepValueSection, *cursor.Cursor, error) {
	tag, err := body.ReadInt32()
	if err != nil {
		return nil, nil, classify(body, "reading windowed value zero-pad tag", err)
	}
	if tag != tagFiller {
		return nil, nil, errs.New(errs.MalformedSection, body.AbsPos(),
			fmt.Errorf("windowed value section: expected zero-pad tag %#x, got %#x", tagFiller, tag))
	}
	zeropadSize, err := body.ReadInt32()
	if err != nil {
		return nil, nil, classify(body, "reading windowed value zero-pad size", err)
	}
	pad, err := body.ReadBytes(int(zeropadSize))
	if err != nil {
		return nil, nil, classify(body, "reading windowed value zero-pad bytes", err)
	}
	for _, b := range pad {
		if b != 0 {
			return nil, nil, errs.New(errs.MalformedSection, body.AbsPos(),
				fmt.Errorf("windowed value section: non-zero byte in zero-pad region"))
		}
	}

	sweepItemSize, err := itemSize(sweep.Signal.TypeRef)
	if err != nil {
		return nil, nil, errs.New(errs.UnsupportedSweep, body.AbsPos(), err)
	}
	capacity64, err := utils.WindowCapacity(uint64(windowSize), uint64(sweepItemSize))
	if err != nil {
		return nil, nil, errs.New(errs.MalformedSection, body.AbsPos(), err)
	}
	capacity := int(capacity64)

	target := int(header.SweepPoints())
	if target > utils.MaxSweepPoints {
		return nil, nil, errs.New(errs.MalformedSection, body.AbsPos(),
			fmt.Errorf("declared sweep points %d exceeds sanity limit %d", target, utils.MaxSweepPoints))
	}
	x := make([]complex128, 0, target)
	y := make(map[string][]complex128, len(traces))
	for _, t := range traces {
		y[t.Name] = make([]complex128, 0, target)
	}

	for len(x) < target {
		chunkTag, err := body.ReadInt32()
		if err != nil {
			return nil, nil, classify(body, "reading window chunk tag", err)
		}
		if chunkTag == tagFiller {
			l, err := body.ReadInt32()
			if err != nil {
				return nil, nil, classify(body, "reading window filler length", err)
			}
			if _, err := body.ReadBytes(int(l)); err != nil {
				return nil, nil, classify(body, "skipping window filler bytes", err)
			}
			continue
		}

		// chunkTag here is not the window descriptor itself: having ruled
		// out filler, a second word carries the actual (window, valid)
		// sample counts.
		d, err := body.ReadInt32()
		if err != nil {
			return nil, nil, classify(body, "reading window descriptor", err)
		}

		npointsWindow := int(uint32(d) >> 16)
		npointsValid := int(uint32(d) & 0xFFFF)
		if err := utils.ValidateWindowCounts(uint64(npointsValid), uint64(npointsWindow), uint64(capacity)); err != nil {
			return nil, nil, errs.New(errs.MalformedSection, body.AbsPos(), err)
		}

		xs, err := readWindowColumn(body, sweep.Signal.TypeRef, npointsValid, npointsWindow, sweepItemSize, false)
		if err != nil {
			return nil, nil, err
		}
		x = append(x, xs...)

		for _, t := range traces {
			traceItemSize, err := itemSize(t.TypeRef)
			if err != nil {
				return nil, nil, errs.New(errs.UnsupportedSweep, body.AbsPos(), err)
			}
			ys, err := readWindowColumn(body, t.TypeRef, npointsValid, npointsWindow, traceItemSize, true)
			if err != nil {
				return nil, nil, err
			}
			y[t.Name] = append(y[t.Name], ys...)
		}
	}

	return &SweepValueSection{X: x, Y: y}, tail, nil
}

// readWindowColumn reads npointsValid samples of td's type, then consumes
// the remaining bytes of a npointsWindow-sized window column. Trace
// columns (withPadding) are preceded by 8 bytes of undocumented padding
// (spec §4.6).
func readWindowColumn(c *cursor.Cursor, td *types.TypeDef, npointsValid, npointsWindow, itemSz int, withPadding bool) ([]complex128, error) {
	if withPadding {
		if _, err := c.ReadBytes(tracePaddingBytes); err != nil {
			return nil, classify(c, "reading window trace padding", err)
		}
	}

	out := make([]complex128, 0, npointsValid)
	for i := 0; i < npointsValid; i++ {
		lit, err := readLiteral(c, td)
		if err != nil {
			return nil, err
		}
		v, err := asComplex(lit)
		if err != nil {
			return nil, errs.New(errs.UnsupportedSweep, c.AbsPos(), err)
		}
		out = append(out, v)
	}

	consumed := npointsValid * itemSz
	remaining := npointsWindow*itemSz - consumed
	if remaining > 0 {
		if _, err := c.ReadBytes(remaining); err != nil {
			return nil, classify(c, "skipping window column padding", err)
		}
	} else if remaining < 0 {
		return nil, errs.New(errs.MalformedSection, c.AbsPos(),
			fmt.Errorf("window column: valid samples exceed window capacity"))
	}
	return out, nil
}
