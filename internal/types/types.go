// Package types decodes PSF type, signal, and group elements (spec §4.3):
// the Type/Sweep/Trace sections are all built from the same two element
// leaders, 0x10 (single) and 0x11 (group), layered over a small set of
// primitive type kinds plus recursively-defined structs.
package types

import (
	"fmt"

	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/props"
)

// PrimitiveKind identifies a leaf PSF value type. The numeric values match
// the on-disk type ids (spec §3).
type PrimitiveKind int32

const (
	KindInt8          PrimitiveKind = 0x01
	KindInt32         PrimitiveKind = 0x05
	KindDouble        PrimitiveKind = 0x0B
	KindComplexDouble PrimitiveKind = 0x0C
	KindStruct        PrimitiveKind = 0x10
)

func (k PrimitiveKind) String() string {
	switch k {
	case KindInt8:
		return "INT8"
	case KindInt32:
		return "INT32"
	case KindDouble:
		return "DOUBLE"
	case KindComplexDouble:
		return "COMPLEXDOUBLE"
	case KindStruct:
		return "STRUCT"
	default:
		return fmt.Sprintf("PrimitiveKind(%#x)", int32(k))
	}
}

// ItemSize returns the on-disk size in bytes of one value of this kind.
// STRUCT has no fixed size of its own; callers sum member sizes instead.
func (k PrimitiveKind) ItemSize() (int, bool) {
	switch k {
	case KindInt8:
		// Values of this type are read via the INT32 path (see the
		// sections package's readLiteral);
		// the wire slot is 4 bytes wide despite the 1-byte logical type.
		return 4, true
	case KindInt32:
		return 4, true
	case KindDouble:
		return 8, true
	case KindComplexDouble:
		return 16, true
	default:
		return 0, false
	}
}

func isKnownPrimitive(id int32) (PrimitiveKind, bool) {
	switch PrimitiveKind(id) {
	case KindInt8, KindInt32, KindDouble, KindComplexDouble:
		return PrimitiveKind(id), true
	default:
		return 0, false
	}
}

// TypeDef is one entry of the Type section: either a primitive leaf or a
// STRUCT with nested member TypeDefs (spec §3, §4.3).
type TypeDef struct {
	ID         int32
	Name       string
	Kind       PrimitiveKind
	Members    []*TypeDef // non-nil only when Kind == KindStruct
	Properties *props.List
}

// IsStruct reports whether t is a composite (STRUCT) type.
func (t *TypeDef) IsStruct() bool { return t.Kind == KindStruct }

// ItemSize returns the total on-disk size of one value of this type,
// recursing into struct members.
func (t *TypeDef) ItemSize() (int, bool) {
	if !t.IsStruct() {
		return t.Kind.ItemSize()
	}
	total := 0
	for _, m := range t.Members {
		sz, ok := m.ItemSize()
		if !ok {
			return 0, false
		}
		total += sz
	}
	return total, true
}

// SignalDef references a TypeDef from inside a Sweep/Trace/Value section
// element (spec §4.3).
type SignalDef struct {
	ID         int32
	Name       string
	TypeRef    *TypeDef
	Properties *props.List
}

// Group is a named, ordered collection of SignalDefs (spec §3). PSF groups
// do not nest: a Group's children are always SignalDefs, never Groups.
type Group struct {
	ID         int32
	Name       string
	Children   []*SignalDef
	Properties *props.List
}

// Element is the result of reading one Sweep/Trace/Value section entry:
// exactly one of Group or Signal is set, matching the 0x11/0x10 leader.
type Element struct {
	Group  *Group
	Signal *SignalDef
}

// IsGroup reports whether this element is a Group.
func (e *Element) IsGroup() bool { return e.Group != nil }

// Name returns the element's own name, whichever variant it is.
func (e *Element) Name() string {
	if e.IsGroup() {
		return e.Group.Name
	}
	return e.Signal.Name
}

// ID returns the element's own id, whichever variant it is.
func (e *Element) ID() int32 {
	if e.IsGroup() {
		return e.Group.ID
	}
	return e.Signal.ID
}

const (
	leaderSingle int32 = 0x10
	leaderGroup  int32 = 0x11
	structEnd    int32 = 0x12
)

type elementHeader struct {
	isGroup bool
	id      int32
	name    string
}

func readElementHeader(c *cursor.Cursor) (elementHeader, error) {
	leader, err := c.ReadInt32()
	if err != nil {
		return elementHeader{}, c.WrapErr("reading element leader", err)
	}
	if leader != leaderSingle && leader != leaderGroup {
		return elementHeader{}, c.WrapErr("reading element leader",
			fmt.Errorf("unknown element leader %#x", leader))
	}
	id, err := c.ReadInt32()
	if err != nil {
		return elementHeader{}, c.WrapErr("reading element id", err)
	}
	name, err := c.ReadString()
	if err != nil {
		return elementHeader{}, c.WrapErr("reading element name", err)
	}
	return elementHeader{isGroup: leader == leaderGroup, id: id, name: name}, nil
}

// ReadTypeDef decodes one Type section element. Per spec §4.3 a TypeDef is
// always a single (0x10) element with a zero reference field; STRUCT types
// recurse into nested member TypeDefs until a 0x12 terminator is consumed.
func ReadTypeDef(c *cursor.Cursor) (*TypeDef, error) {
	header, err := readElementHeader(c)
	if err != nil {
		return nil, err
	}
	if header.isGroup {
		return nil, c.WrapErr("reading type definition",
			fmt.Errorf("type %q: groups cannot appear in the Type section", header.name))
	}

	ref, err := c.ReadInt32()
	if err != nil {
		return nil, c.WrapErr("reading type reference", err)
	}
	if ref != 0 {
		return nil, c.WrapErr("reading type definition",
			fmt.Errorf("type %q: reference field must be 0, got %d", header.name, ref))
	}

	typeID, err := c.ReadInt32()
	if err != nil {
		return nil, c.WrapErr("reading type id", err)
	}

	td := &TypeDef{ID: header.id, Name: header.name}

	if PrimitiveKind(typeID) == KindStruct {
		td.Kind = KindStruct
		for {
			peek, err := c.PeekInt32()
			if err != nil {
				return nil, c.WrapErr("reading struct member", err)
			}
			if peek == structEnd {
				if _, err := c.ReadInt32(); err != nil {
					return nil, c.WrapErr("consuming struct terminator", err)
				}
				break
			}
			member, err := ReadTypeDef(c)
			if err != nil {
				return nil, err
			}
			td.Members = append(td.Members, member)
		}
	} else {
		kind, ok := isKnownPrimitive(typeID)
		if !ok {
			return nil, c.WrapErr("reading type definition",
				fmt.Errorf("type %q: unknown primitive type id %#x", header.name, typeID))
		}
		td.Kind = kind
	}

	props, err := props.Read(c)
	if err != nil {
		return nil, err
	}
	td.Properties = props

	return td, nil
}

// ReadSignalOrGroup decodes one Sweep/Trace/Value section element: a
// single SignalDef referencing a previously-defined TypeDef, or a Group of
// SignalDefs (spec §4.3). typedefs maps Type section ids to their TypeDef.
func ReadSignalOrGroup(c *cursor.Cursor, typedefs map[int32]*TypeDef) (*Element, error) {
	header, err := readElementHeader(c)
	if err != nil {
		return nil, err
	}

	if !header.isGroup {
		ref, err := c.ReadInt32()
		if err != nil {
			return nil, c.WrapErr("reading signal type reference", err)
		}
		if ref == 0 {
			return nil, c.WrapErr("reading signal definition",
				fmt.Errorf("signal %q: reference field must be nonzero", header.name))
		}
		td, ok := typedefs[ref]
		if !ok {
			return nil, c.WrapErr("reading signal definition",
				fmt.Errorf("signal %q: unknown type reference %d", header.name, ref))
		}
		plist, err := props.Read(c)
		if err != nil {
			return nil, err
		}
		return &Element{Signal: &SignalDef{
			ID: header.id, Name: header.name, TypeRef: td, Properties: plist,
		}}, nil
	}

	n, err := c.ReadInt32()
	if err != nil {
		return nil, c.WrapErr("reading group member count", err)
	}
	if n < 0 {
		return nil, c.WrapErr("reading group definition",
			fmt.Errorf("group %q: negative member count %d", header.name, n))
	}

	children := make([]*SignalDef, 0, n)
	for i := int32(0); i < n; i++ {
		child, err := ReadSignalOrGroup(c, typedefs)
		if err != nil {
			return nil, err
		}
		if child.IsGroup() {
			return nil, c.WrapErr("reading group definition",
				fmt.Errorf("group %q: nested groups are not supported", header.name))
		}
		children = append(children, child.Signal)
	}

	plist, err := props.Read(c)
	if err != nil {
		return nil, err
	}
	return &Element{Group: &Group{
		ID: header.id, Name: header.name, Children: children, Properties: plist,
	}}, nil
}
