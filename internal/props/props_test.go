package props

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chwa/psfdata/internal/cursor"
)

// putString appends a length-prefixed, zero-padded string in PSF's on-disk form.
func putString(buf *bytes.Buffer, s string) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
	pad := (4 - len(s)%4) % 4
	buf.Write(make([]byte, pad))
}

func putInt32(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func putDouble(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

func TestRead_StringIntDoubleProperties(t *testing.T) {
	var buf bytes.Buffer

	putInt32(&buf, TagString)
	putString(&buf, "units")
	putString(&buf, "V")

	putInt32(&buf, TagInt)
	putString(&buf, "rational")
	putInt32(&buf, 1)

	putInt32(&buf, TagDouble)
	putString(&buf, "gain")
	putDouble(&buf, 2.5)

	putInt32(&buf, 0x03) // terminator

	list, err := Read(cursor.New(buf.Bytes()))
	require.NoError(t, err)

	require.Equal(t, []string{"units", "rational", "gain"}, list.Names())
	require.Equal(t, "V", list.GetString("units"))
	require.Equal(t, int32(1), list.GetInt("rational"))

	v, ok := list.Get("gain")
	require.True(t, ok)
	require.Equal(t, KindDouble, v.Kind)
	require.InDelta(t, 2.5, v.Double, 0)
}

func TestRead_PaddingTagsAreSkippedWithoutName(t *testing.T) {
	var buf bytes.Buffer
	putInt32(&buf, 0x01)
	putInt32(&buf, 0x04)
	putInt32(&buf, TagString)
	putString(&buf, "x")
	putString(&buf, "y")
	putInt32(&buf, 0x10) // terminator (next element leader)

	list, err := Read(cursor.New(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, list.Names())
}

func TestRead_DuplicateNameIsLastWriteWins(t *testing.T) {
	var buf bytes.Buffer
	putInt32(&buf, TagInt)
	putString(&buf, "n")
	putInt32(&buf, 1)

	putInt32(&buf, TagInt)
	putString(&buf, "n")
	putInt32(&buf, 2)

	list, err := Read(cursor.New(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, []string{"n"}, list.Names())
	require.Equal(t, int32(2), list.GetInt("n"))
}

func TestRead_StopsAtEndOfCursorWithNoTerminator(t *testing.T) {
	var buf bytes.Buffer
	putInt32(&buf, TagInt)
	putString(&buf, "solo")
	putInt32(&buf, 7)

	list, err := Read(cursor.New(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, int32(7), list.GetInt("solo"))
}

func TestRead_XLIndexTupleIsUnnamedAndStoredUnderSyntheticName(t *testing.T) {
	var buf bytes.Buffer
	putInt32(&buf, TagXLIndex)
	// int64 idx
	var idxBuf [8]byte
	binary.BigEndian.PutUint64(idxBuf[:], 42)
	buf.Write(idxBuf[:])
	putInt32(&buf, 0x1000) // offset
	putInt32(&buf, 0)      // extraA
	putInt32(&buf, 0)      // extraB
	putDouble(&buf, 0.0)   // tstart
	putDouble(&buf, 1e-6)  // tend
	putDouble(&buf, -1.0)  // vmin
	putDouble(&buf, 1.0)   // vmax

	putInt32(&buf, 0x03)

	list, err := Read(cursor.New(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, []string{XLIndexName}, list.Names())

	v, ok := list.Get(XLIndexName)
	require.True(t, ok)
	require.Equal(t, KindXLIndex, v.Kind)
	require.Equal(t, int64(42), v.XL.Idx)
	require.Equal(t, int32(0x1000), v.XL.Offset)
	require.InDelta(t, 1e-6, v.XL.TEnd, 0)
}

func TestRead_UnknownTagIsAnError(t *testing.T) {
	var buf bytes.Buffer
	putInt32(&buf, 0x99)

	_, err := Read(cursor.New(buf.Bytes()))
	require.Error(t, err)
}
