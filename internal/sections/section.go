// Package sections decodes the five PSF section kinds (Header, Type,
// Sweep, Trace, Value) and the table of contents that locates them
// (spec §4.4–§4.7).
package sections

import (
	"errors"
	"fmt"

	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/errs"
)

// Section tag constants (spec §6).
const (
	tagSectionOpen int32 = 0x15
	tagSubsection  int32 = 0x16
	tagIndex       int32 = 0x13
	tagFiller      int32 = 0x14
	tagStructEnd   int32 = 0x12
	tagSingle      int32 = 0x10
	tagGroup       int32 = 0x11
	tagTerminator  int32 = 0x03
)

// emptySectionSentinel is the int32 bit pattern 0xFFFFFFFF, used as the
// Value section's end_abspos to mean "this section carries no data"
// (spec §8 boundary case).
const emptySectionSentinel int32 = -1

// Kind identifies one of the five section types carried in the TOC.
type Kind int32

const (
	KindHeader Kind = 0
	KindType   Kind = 1
	KindSweep  Kind = 2
	KindTrace  Kind = 3
	KindValue  Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "HEADER"
	case KindType:
		return "TYPE"
	case KindSweep:
		return "SWEEP"
	case KindTrace:
		return "TRACE"
	case KindValue:
		return "VALUE"
	default:
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
}

// classify turns a raw cursor-level error into a Kind-tagged errs.Error,
// or passes through an error that is already one (or a domain error
// raised elsewhere in this package).
func classify(c *cursor.Cursor, context string, err error) error {
	if err == nil {
		return nil
	}
	var target *errs.Error
	if errors.As(err, &target) {
		return fmt.Errorf("%s: %w", context, err)
	}
	return errs.New(errs.MalformedSection, c.AbsPos(), fmt.Errorf("%s: %w", context, err))
}

// openSection reads the shared (tag, end_abspos) header of any section
// (spec §4.4). A raw end value of -1 (0xFFFFFFFF) is the "empty section"
// sentinel; callers that accept it get body == tail == nil back with a nil
// error and must check rawEnd themselves.
func openSection(c *cursor.Cursor) (rawEnd int32, body, tail *cursor.Cursor, err error) {
	tag, err := c.ReadInt32()
	if err != nil {
		return 0, nil, nil, classify(c, "reading section tag", err)
	}
	if tag != tagSectionOpen {
		return 0, nil, nil, errs.New(errs.MalformedSection, c.AbsPos(),
			fmt.Errorf("expected section tag %#x, got %#x", tagSectionOpen, tag))
	}

	rawEnd, err = c.ReadInt32()
	if err != nil {
		return 0, nil, nil, classify(c, "reading section end offset", err)
	}
	if rawEnd == emptySectionSentinel {
		return rawEnd, nil, nil, nil
	}

	body, tail, err = c.SplitAtAbsolute(int64(uint32(rawEnd)))
	if err != nil {
		return rawEnd, nil, nil, errs.New(errs.MalformedSection, c.AbsPos(),
			fmt.Errorf("section end offset %#x: %w", uint32(rawEnd), err))
	}
	return rawEnd, body, tail, nil
}

// splitAtSubsectionIndex reads the (0x16, index_pos) pair that opens a
// Type/Trace/Value section body and splits it into the element run and the
// trailing index (spec §4.4/§4.5).
func splitAtSubsectionIndex(body *cursor.Cursor) (data, index *cursor.Cursor, err error) {
	tag, err := body.ReadInt32()
	if err != nil {
		return nil, nil, classify(body, "reading subsection tag", err)
	}
	if tag != tagSubsection {
		return nil, nil, errs.New(errs.MalformedSection, body.AbsPos(),
			fmt.Errorf("expected subsection tag %#x, got %#x", tagSubsection, tag))
	}

	indexPos, err := body.ReadInt32()
	if err != nil {
		return nil, nil, classify(body, "reading subsection index offset", err)
	}

	data, index, err = body.SplitAtAbsolute(int64(uint32(indexPos)))
	if err != nil {
		return nil, nil, errs.New(errs.MalformedSection, body.AbsPos(),
			fmt.Errorf("subsection index offset %#x: %w", uint32(indexPos), err))
	}
	return data, index, nil
}

func errUnexpectedTag(want, got int32) error {
	return fmt.Errorf("expected tag %#x, got %#x", want, got)
}

// atRunEnd reports whether an element run has reached its terminator
// (end-of-cursor or a peeked 0x03), per spec §4.3.
func atRunEnd(c *cursor.Cursor) (bool, error) {
	if c.Len() == 0 {
		return true, nil
	}
	peek, err := c.PeekInt32()
	if err != nil {
		return false, classify(c, "peeking element run", err)
	}
	return peek == tagTerminator, nil
}
