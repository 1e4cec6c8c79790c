package sections

import (
	"fmt"

	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/errs"
	"github.com/chwa/psfdata/internal/props"
	"github.com/chwa/psfdata/internal/types"
)

// SimpleValueSection holds the literal values of a non-swept simulation's
// output signals (spec §4.5). Every entry is a single (0x10) element; a
// group (0x11) leader is rejected as MalformedSection.
type SimpleValueSection struct {
	Names        []string
	ValuesByName map[string]any
}

// ReadSimpleValueSection decodes a Value section body in non-swept mode.
func ReadSimpleValueSection(c *cursor.Cursor, typedefs map[int32]*types.TypeDef) (*SimpleValueSection, *cursor.Cursor, error) {
	rawEnd, body, tail, err := openSection(c)
	if err != nil {
		return nil, nil, err
	}
	if rawEnd == emptySectionSentinel {
		return &SimpleValueSection{ValuesByName: map[string]any{}}, c, nil
	}

	data, _, err := splitAtSubsectionIndex(body)
	if err != nil {
		return nil, nil, err
	}

	sv := &SimpleValueSection{ValuesByName: make(map[string]any)}
	for {
		done, err := atRunEnd(data)
		if err != nil {
			return nil, nil, err
		}
		if done {
			break
		}
		if err := readValueEntry(data, typedefs, sv); err != nil {
			return nil, nil, err
		}
	}

	return sv, tail, nil
}

// readValueEntry decodes one (signal, literal) pair and appends it to sv.
func readValueEntry(c *cursor.Cursor, typedefs map[int32]*types.TypeDef, sv *SimpleValueSection) error {
	leader, err := c.ReadInt32()
	if err != nil {
		return classify(c, "reading value entry leader", err)
	}
	if leader != tagSingle {
		return errs.New(errs.MalformedSection, c.AbsPos(),
			fmt.Errorf("value entry: expected leader %#x, got %#x", tagSingle, leader))
	}

	ref, err := c.ReadInt32()
	if err != nil {
		return classify(c, "reading value entry type reference", err)
	}
	td, ok := typedefs[ref]
	if !ok {
		return errs.New(errs.UnknownType, c.AbsPos(), fmt.Errorf("unknown type reference %d", ref))
	}

	name, err := c.ReadString()
	if err != nil {
		return classify(c, "reading value entry name", err)
	}

	value, err := readLiteral(c, td)
	if err != nil {
		return err
	}

	// A trailing property list may describe the value (units, etc.); it
	// plays no further role here and is discarded once parsed.
	if _, err := props.Read(c); err != nil {
		return err
	}

	sv.Names = append(sv.Names, name)
	sv.ValuesByName[name] = value
	return nil
}

// readLiteral decodes one value of the given type: a primitive scalar, a
// complex pair, or (recursively) a struct of named members (spec §4.5).
func readLiteral(c *cursor.Cursor, td *types.TypeDef) (any, error) {
	if td.IsStruct() {
		out := make(map[string]any, len(td.Members))
		for _, member := range td.Members {
			v, err := readLiteral(c, member)
			if err != nil {
				return nil, err
			}
			out[member.Name] = v
		}
		return out, nil
	}

	switch td.Kind {
	case types.KindInt8:
		// Wire representation is a 4-byte big-endian int despite the
		// logical 1-byte type.
		v, err := c.ReadInt32()
		if err != nil {
			return nil, classify(c, "reading int8 literal", err)
		}
		return int8(v), nil
	case types.KindInt32:
		v, err := c.ReadInt32()
		if err != nil {
			return nil, classify(c, "reading int32 literal", err)
		}
		return v, nil
	case types.KindDouble:
		v, err := c.ReadDouble()
		if err != nil {
			return nil, classify(c, "reading double literal", err)
		}
		return v, nil
	case types.KindComplexDouble:
		re, err := c.ReadDouble()
		if err != nil {
			return nil, classify(c, "reading complex literal real part", err)
		}
		im, err := c.ReadDouble()
		if err != nil {
			return nil, classify(c, "reading complex literal imaginary part", err)
		}
		return complex(re, im), nil
	default:
		return nil, errs.New(errs.UnknownType, c.AbsPos(), fmt.Errorf("unreadable literal type %s", td.Kind))
	}
}
