package cursor

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadInt32_BigEndian(t *testing.T) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, 0x01020304)

	c := New(buf)
	v, err := c.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(0x01020304), v)
	require.Equal(t, 0, c.Len())
}

func TestReadInt32_Truncated(t *testing.T) {
	c := New([]byte{0x01, 0x02})
	_, err := c.ReadInt32()
	require.ErrorIs(t, err, ErrTruncated)
}

func TestPeekDoesNotAdvance(t *testing.T) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, 42)
	c := New(buf)

	peeked, err := c.PeekInt32()
	require.NoError(t, err)
	require.Equal(t, int32(42), peeked)
	require.Equal(t, 4, c.Len(), "peek must not consume")

	read, err := c.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, peeked, read)
	require.Equal(t, 0, c.Len())
}

func TestReadInt64_BigEndian(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, 0x0102030405060708)

	c := New(buf)
	v, err := c.ReadInt64()
	require.NoError(t, err)
	require.Equal(t, int64(0x0102030405060708), v)
}

func TestReadDouble(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, 0x3FF0000000000000) // 1.0
	c := New(buf)

	v, err := c.ReadDouble()
	require.NoError(t, err)
	require.InDelta(t, 1.0, v, 0)
}

func TestReadString_PadsTo4ByteBoundary(t *testing.T) {
	// "ids" -> length=3, padded with 1 zero byte.
	buf := []byte{0, 0, 0, 3, 'i', 'd', 's', 0}
	c := New(buf)

	s, err := c.ReadString()
	require.NoError(t, err)
	require.Equal(t, "ids", s)
	require.Equal(t, 0, c.Len())
}

func TestReadString_ExactMultipleOf4NoPadding(t *testing.T) {
	// "abcd" -> length=4, no padding bytes at all.
	buf := []byte{0, 0, 0, 4, 'a', 'b', 'c', 'd'}
	c := New(buf)

	s, err := c.ReadString()
	require.NoError(t, err)
	require.Equal(t, "abcd", s)
	require.Equal(t, 0, c.Len())
}

func TestReadString_BadEncoding(t *testing.T) {
	buf := []byte{0, 0, 0, 2, 0xff, 0xfe}
	c := New(buf)

	_, err := c.ReadString()
	require.ErrorIs(t, err, ErrBadEncoding)
}

func TestReadString_NegativeLength(t *testing.T) {
	buf := []byte{0xff, 0xff, 0xff, 0xff} // length = -1
	c := New(buf)

	_, err := c.ReadString()
	require.ErrorIs(t, err, ErrBadLength)
}

func TestReadString_ImplausibleLength(t *testing.T) {
	buf := []byte{0x7f, 0xff, 0xff, 0xff} // huge length, far beyond remaining bytes
	c := New(buf)

	_, err := c.ReadString()
	require.ErrorIs(t, err, ErrBadLength)
}

func TestSub_PreservesAbsolutePosition(t *testing.T) {
	root := New(make([]byte, 100))
	child, err := root.Sub(10, 20)
	require.NoError(t, err)
	require.Equal(t, int64(10), child.AbsPos())
	require.Equal(t, 10, child.Len())

	grandchild, err := child.Sub(2, 5)
	require.NoError(t, err)
	require.Equal(t, int64(12), grandchild.AbsPos())
}

func TestSub_OutOfBounds(t *testing.T) {
	root := New(make([]byte, 10))
	_, err := root.Sub(5, 20)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

// SplitAtAbsolute(p) then len(left)+len(right) == len(original) — cursor law from spec §8.
func TestSplitAtAbsolute_LengthsSumToOriginal(t *testing.T) {
	root := New(make([]byte, 50))
	sub, err := root.Sub(10, 40) // abspos 10, len 30
	require.NoError(t, err)

	left, right, err := sub.SplitAtAbsolute(25)
	require.NoError(t, err)
	require.Equal(t, 30, left.Len()+right.Len())
	require.Equal(t, int64(10), left.AbsPos())
	require.Equal(t, int64(25), right.AbsPos())
}

func TestSplitAtAbsolute_OutOfRange(t *testing.T) {
	root := New(make([]byte, 10))
	_, _, err := root.SplitAtAbsolute(100)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestWrapErr_NilIsNil(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.WrapErr("ctx", nil))
}

func TestWrapErr_CarriesContextAndIsUnwrappable(t *testing.T) {
	c, err := New(make([]byte, 20)).Sub(12, 20)
	require.NoError(t, err)

	base := errors.New("bad tag")
	wrapped := c.WrapErr("reading section", base)
	require.ErrorIs(t, wrapped, base)
	require.Contains(t, wrapped.Error(), "0xc") // offset 12 = 0xc
}
