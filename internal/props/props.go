// Package props decodes the tagged property lists used throughout PSF:
// header metadata, type/signal/group annotations, and the PSF-XL index
// tuple (spec §4.2).
package props

import (
	"fmt"
	"log"

	"github.com/chwa/psfdata/internal/cursor"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDouble
	KindXLIndex
)

// Property tag values (spec §3/§4.2).
const (
	TagString  int32 = 0x21
	TagInt     int32 = 0x22
	TagDouble  int32 = 0x23
	TagXLIndex int32 = 0x24
	tagPad1    int32 = 0x01
	tagPad2    int32 = 0x04
)

// Terminator tags end a property run; they belong to the enclosing
// structure, not the property list itself (spec §4.2).
var terminators = map[int32]bool{0x03: true, 0x10: true, 0x11: true, 0x12: true}

// XLIndexName is the synthetic property name under which an unnamed 0x24
// PSF-XL index tuple is stored.
const XLIndexName = "psfxl_idx"

// XLIndex is the decoded PSF-XL index tuple: a per-signal pointer into the
// sidecar chunk file plus the time/value extents of that signal. The wire
// layout is int64, then 3×int32, then 4×double (spec §3); Offset is the
// field used by the reader to seek to a signal's last chunk (original
// source's psfxl_idx[1]).
type XLIndex struct {
	Idx             int64
	Offset          int32
	ExtraA, ExtraB  int32
	TStart, TEnd    float64
	VMin, VMax      float64
}

// Value is a heterogeneous property value: exactly one of String, Int,
// Double, or XL is meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	String string
	Int    int32
	Double float64
	XL     XLIndex
}

func stringValue(s string) Value { return Value{Kind: KindString, String: s} }
func intValue(i int32) Value     { return Value{Kind: KindInt, Int: i} }
func doubleValue(d float64) Value { return Value{Kind: KindDouble, Double: d} }
func xlValue(x XLIndex) Value    { return Value{Kind: KindXLIndex, XL: x} }

// List is an insertion-ordered property list (spec §4.2: "a mapping
// preserving insertion order"). Duplicate names are last-write-wins.
type List struct {
	order  []string
	values map[string]Value
}

func newList() *List {
	return &List{values: make(map[string]Value)}
}

// New returns an empty property list. It is exported for peer decoders
// (e.g. internal/ascii) that build a List from their own grammar instead
// of this package's tagged binary encoding.
func New() *List { return newList() }

// SetString sets a string-valued property.
func (l *List) SetString(name, v string) { l.set(name, stringValue(v)) }

// SetInt sets an int-valued property.
func (l *List) SetInt(name string, v int32) { l.set(name, intValue(v)) }

// SetDouble sets a double-valued property.
func (l *List) SetDouble(name string, v float64) { l.set(name, doubleValue(v)) }

// Names returns property names in declaration order.
func (l *List) Names() []string { return l.order }

// Get returns the named property and whether it was present.
func (l *List) Get(name string) (Value, bool) {
	v, ok := l.values[name]
	return v, ok
}

// GetString returns a string property, or "" if absent or wrong kind.
func (l *List) GetString(name string) string {
	if v, ok := l.values[name]; ok && v.Kind == KindString {
		return v.String
	}
	return ""
}

// GetInt returns an int property, or 0 if absent or wrong kind.
func (l *List) GetInt(name string) int32 {
	if v, ok := l.values[name]; ok && v.Kind == KindInt {
		return v.Int
	}
	return 0
}

func (l *List) set(name string, v Value) {
	if _, dup := l.values[name]; dup {
		log.Printf("psf: duplicate property %q, keeping last value", name)
	} else {
		l.order = append(l.order, name)
	}
	l.values[name] = v
}

// Clone returns a shallow copy safe for a caller to treat as their own
// (used when the facade hands out its Header() list).
func (l *List) Clone() *List {
	c := newList()
	c.order = append([]string(nil), l.order...)
	c.values = make(map[string]Value, len(l.values))
	for k, v := range l.values {
		c.values[k] = v
	}
	return c
}

// Read decodes zero or more properties from c until the next peeked int32
// is a terminator tag or the cursor is exhausted (spec §4.2).
func Read(c *cursor.Cursor) (*List, error) {
	list := newList()

	for c.Len() > 0 {
		tag, err := c.PeekInt32()
		if err != nil {
			return nil, c.WrapErr("peeking property tag", err)
		}
		if terminators[tag] {
			break
		}

		tag, err = c.ReadInt32()
		if err != nil {
			return nil, c.WrapErr("reading property tag", err)
		}

		if tag == tagPad1 || tag == tagPad2 {
			continue
		}

		var name string
		if tag == TagXLIndex {
			name = XLIndexName
		} else {
			name, err = c.ReadString()
			if err != nil {
				return nil, c.WrapErr("reading property name", err)
			}
		}

		switch tag {
		case TagString:
			s, err := c.ReadString()
			if err != nil {
				return nil, c.WrapErr("reading string property value", err)
			}
			list.set(name, stringValue(s))
		case TagInt:
			i, err := c.ReadInt32()
			if err != nil {
				return nil, c.WrapErr("reading int property value", err)
			}
			list.set(name, intValue(i))
		case TagDouble:
			d, err := c.ReadDouble()
			if err != nil {
				return nil, c.WrapErr("reading double property value", err)
			}
			list.set(name, doubleValue(d))
		case TagXLIndex:
			xl, err := readXLIndex(c)
			if err != nil {
				return nil, err
			}
			list.set(name, xlValue(xl))
		default:
			return nil, c.WrapErr("reading property", fmt.Errorf("unknown property tag %#x", tag))
		}
	}

	return list, nil
}

func readXLIndex(c *cursor.Cursor) (XLIndex, error) {
	var xl XLIndex
	var err error

	if xl.Idx, err = c.ReadInt64(); err != nil {
		return xl, c.WrapErr("reading psfxl_idx.idx", err)
	}
	if xl.Offset, err = c.ReadInt32(); err != nil {
		return xl, c.WrapErr("reading psfxl_idx.offset", err)
	}
	if xl.ExtraA, err = c.ReadInt32(); err != nil {
		return xl, c.WrapErr("reading psfxl_idx.extraA", err)
	}
	if xl.ExtraB, err = c.ReadInt32(); err != nil {
		return xl, c.WrapErr("reading psfxl_idx.extraB", err)
	}
	if xl.TStart, err = c.ReadDouble(); err != nil {
		return xl, c.WrapErr("reading psfxl_idx.tstart", err)
	}
	if xl.TEnd, err = c.ReadDouble(); err != nil {
		return xl, c.WrapErr("reading psfxl_idx.tend", err)
	}
	if xl.VMin, err = c.ReadDouble(); err != nil {
		return xl, c.WrapErr("reading psfxl_idx.vmin", err)
	}
	if xl.VMax, err = c.ReadDouble(); err != nil {
		return xl, c.WrapErr("reading psfxl_idx.vmax", err)
	}
	return xl, nil
}
