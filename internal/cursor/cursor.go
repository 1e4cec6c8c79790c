// Package cursor implements the absolute-position-aware byte view that the
// PSF decoder uses to walk a file's bytes. PSF sections and the TOC refer to
// each other by absolute byte offset in the original file, so every cursor
// derived from a load remembers its own base offset rather than exposing a
// plain relative slice.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/chwa/psfdata/internal/errs"
	"github.com/chwa/psfdata/internal/utils"
)

// Sentinel errors identify the failure modes from spec §4.1/§7. Truncated,
// BadEncoding, and BadLength are aliases onto the shared error taxonomy so
// that a Kind raised deep inside a cursor read is still classifiable with
// errors.Is at the facade. ErrOutOfBounds has no file-offset meaning (it
// guards Sub/SplitAtAbsolute misuse) and stays local to this package.
var (
	ErrTruncated   = errs.ErrTruncated
	ErrBadEncoding = errs.ErrBadEncoding
	ErrBadLength   = errs.ErrBadLength
	ErrOutOfBounds = errors.New("position out of bounds")
)

// Cursor is a non-owning view over a byte range that also tracks its
// absolute offset in the original file. All derived cursors (via Sub or
// SplitAtAbsolute) share the same backing array; none of them own it.
type Cursor struct {
	data   []byte
	abspos int64
}

// New wraps the full contents of a loaded file. abspos is 0 for the root
// cursor; every other cursor is derived from it.
func New(data []byte) *Cursor {
	return &Cursor{data: data, abspos: 0}
}

// Len returns the number of unconsumed bytes.
func (c *Cursor) Len() int { return len(c.data) }

// AbsPos returns the absolute file offset of the cursor's current position.
func (c *Cursor) AbsPos() int64 { return c.abspos }

// EndAbsPos returns the absolute offset one past the cursor's last byte.
func (c *Cursor) EndAbsPos() int64 { return c.abspos + int64(len(c.data)) }

// Sub returns a new cursor over data[start:end] (relative to the current
// cursor), preserving absolute-offset bookkeeping.
func (c *Cursor) Sub(start, end int) (*Cursor, error) {
	if start < 0 || end < start || end > len(c.data) {
		return nil, fmt.Errorf("%w: sub(%d,%d) len=%d", ErrOutOfBounds, start, end, len(c.data))
	}
	return &Cursor{data: c.data[start:end], abspos: c.abspos + int64(start)}, nil
}

// SplitAtAbsolute splits the cursor into (left, right) at the given absolute
// file position. Invariant: len(left)+len(right) == len(c).
func (c *Cursor) SplitAtAbsolute(abspos int64) (left, right *Cursor, err error) {
	rel := abspos - c.abspos
	if rel < 0 || rel > int64(len(c.data)) {
		return nil, nil, fmt.Errorf("%w: split at %d, cursor spans [%d,%d)",
			ErrOutOfBounds, abspos, c.abspos, c.EndAbsPos())
	}
	left = &Cursor{data: c.data[:rel], abspos: c.abspos}
	right = &Cursor{data: c.data[rel:], abspos: c.abspos + rel}
	return left, right, nil
}

func (c *Cursor) need(n int) error {
	if len(c.data) < n {
		return errs.New(errs.Truncated, c.abspos, fmt.Errorf("need %d bytes, have %d", n, len(c.data)))
	}
	return nil
}

func (c *Cursor) consume(n int) {
	c.data = c.data[n:]
	c.abspos += int64(n)
}

// ReadInt8 reads one signed byte, big-endian (trivially so, for a single byte).
func (c *Cursor) ReadInt8() (int8, error) {
	v, err := c.peekInt8()
	if err != nil {
		return 0, err
	}
	c.consume(1)
	return v, nil
}

// PeekInt8 reads one signed byte without advancing the cursor.
func (c *Cursor) PeekInt8() (int8, error) { return c.peekInt8() }

func (c *Cursor) peekInt8() (int8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	return int8(c.data[0]), nil
}

// ReadInt32 reads a big-endian int32 and advances the cursor.
func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.peekInt32()
	if err != nil {
		return 0, err
	}
	c.consume(4)
	return v, nil
}

// PeekInt32 reads a big-endian int32 without advancing the cursor.
func (c *Cursor) PeekInt32() (int32, error) { return c.peekInt32() }

func (c *Cursor) peekInt32() (int32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	//nolint:gosec // G115: intentional reinterpretation of the 4-byte big-endian field
	return int32(binary.BigEndian.Uint32(c.data[:4])), nil
}

// ReadInt64 reads a big-endian int64 and advances the cursor.
func (c *Cursor) ReadInt64() (int64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	//nolint:gosec // G115: intentional reinterpretation of the 8-byte big-endian field
	v := int64(binary.BigEndian.Uint64(c.data[:8]))
	c.consume(8)
	return v, nil
}

// ReadDouble reads a big-endian IEEE-754 double and advances the cursor.
func (c *Cursor) ReadDouble() (float64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	bits := binary.BigEndian.Uint64(c.data[:8])
	c.consume(8)
	return math.Float64frombits(bits), nil
}

// ReadBytes consumes and returns n raw bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[:n]
	c.consume(n)
	return b, nil
}

// ReadString reads a length-prefixed UTF-8 string: an int32 length, that
// many bytes, then zero-padding up to the next 4-byte boundary (spec §4.1).
func (c *Cursor) ReadString() (string, error) {
	length, err := c.ReadInt32()
	if err != nil {
		return "", err
	}
	if length < 0 || int64(length) > int64(len(c.data))+4 {
		return "", errs.New(errs.BadLength, c.abspos, fmt.Errorf("length=%d", length))
	}
	if length > utils.MaxStringSize {
		return "", errs.New(errs.BadLength, c.abspos, fmt.Errorf("string length %d exceeds sanity limit %d", length, utils.MaxStringSize))
	}
	raw, err := c.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", errs.New(errs.BadEncoding, c.abspos, nil)
	}
	s := string(raw)

	pad := (4 - int(length)%4) % 4
	if pad > 0 {
		if _, err := c.ReadBytes(pad); err != nil {
			return "", err
		}
	}
	return s, nil
}

// WrapErr attaches the cursor's current absolute offset to err via
// utils.WrapError, following the house convention of carrying the file
// position on every decode failure (spec §7).
func (c *Cursor) WrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return utils.WrapError(fmt.Sprintf("%s (offset %#x)", context, c.abspos), err)
}
