package sections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildIndexOnlyFile assembles a signature + Header + Type + Trace
// sequence with no trailing table of contents, i.e. a PSF-XL index file
// (spec §4.7/§4.8) with one DOUBLE-typed signal named "sig1".
func buildIndexOnlyFile() []byte {
	b := &builder{}
	b.i32(0x400) // file signature

	// Header: no properties.
	b.i32(tagSectionOpen)
	headerEnd := b.i32Placeholder()
	b.patch(headerEnd, b.pos())

	// Type: one DOUBLE typedef.
	b.i32(tagSectionOpen)
	typeEnd := b.i32Placeholder()
	b.i32(tagSubsection)
	typeIndexPatch := b.i32Placeholder()

	typedefOffset := b.pos()
	b.i32(0x10) // leader: single
	b.i32(1)    // type id
	b.str("dummy")
	b.i32(0)    // reference field (0 for a TypeDef)
	b.i32(0x0B) // DOUBLE

	typeIndexOffset := b.pos()
	b.patch(typeIndexPatch, typeIndexOffset)
	b.i32(tagIndex)
	typeSizePatch := b.i32Placeholder()
	typeEntriesStart := b.pos()
	b.i32(1)
	b.i32(typedefOffset)
	b.patch(typeSizePatch, b.pos()-typeEntriesStart)
	b.patch(typeEnd, b.pos())

	// Trace: one signal, "sig1", referencing the DOUBLE type.
	b.i32(tagSectionOpen)
	traceEnd := b.i32Placeholder()
	b.i32(tagSubsection)
	traceIndexPatch := b.i32Placeholder()

	b.i32(0x10) // leader: single
	b.i32(1)    // signal id
	b.str("sig1")
	b.i32(1) // type reference

	traceIndexOffset := b.pos()
	b.patch(traceIndexPatch, traceIndexOffset)
	b.i32(tagIndex)
	traceSizePatch := b.i32Placeholder()
	traceEntriesStart := b.pos()
	b.patch(traceSizePatch, b.pos()-traceEntriesStart)
	b.patch(traceEnd, b.pos())

	return b.buf
}

func TestDecodeFile_IndexOnlyNonSwept(t *testing.T) {
	data := buildIndexOnlyFile()

	f, err := DecodeFile(data)
	require.NoError(t, err)
	require.True(t, f.IsIndexOnly)
	require.False(t, f.Header.IsSwept())
	require.Nil(t, f.Sweep)
	require.Nil(t, f.SimpleValues)
	require.Nil(t, f.SweepValues)

	require.NotNil(t, f.Trace)
	require.Contains(t, f.Trace.ByName, "sig1")
	require.Equal(t, "dummy", f.Trace.ByName["sig1"].TypeRef.Name)
}

func TestDecodeFile_UnknownSignature(t *testing.T) {
	data := []byte{0x00, 0x00, 0x09, 0x99, 0, 0, 0, 0}
	_, err := DecodeFile(data)
	require.Error(t, err)
}

func TestDecodeFile_TruncatedSignature(t *testing.T) {
	_, err := DecodeFile([]byte{0x00, 0x00})
	require.Error(t, err)
}
