package sections

import (
	"testing"

	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/types"
	"github.com/stretchr/testify/require"
)

func TestReadSweepSection_SingleVariable(t *testing.T) {
	b := &builder{}
	b.i32(tagSectionOpen)
	endPatch := b.i32Placeholder()

	b.i32(0x10) // leader: single
	b.i32(10)   // signal id
	b.str("freq")
	b.i32(1) // type reference -> typedef id 1
	// no properties; body ends here

	b.patch(endPatch, b.pos())

	sweep, tail, err := ReadSweepSection(cursor.New(b.buf), map[int32]*types.TypeDef{1: doubleTypeDef(1, "freq_type")})
	require.NoError(t, err)
	require.Equal(t, 0, tail.Len())
	require.Equal(t, "freq", sweep.Signal.Name)
	require.Equal(t, int32(10), sweep.Signal.ID)
	require.Equal(t, "freq_type", sweep.Signal.TypeRef.Name)
}

func TestReadSweepSection_GroupRejected(t *testing.T) {
	b := &builder{}
	b.i32(tagSectionOpen)
	endPatch := b.i32Placeholder()

	b.i32(0x11) // leader: group
	b.i32(10)
	b.str("grp")
	b.i32(0) // zero members

	b.patch(endPatch, b.pos())

	_, _, err := ReadSweepSection(cursor.New(b.buf), map[int32]*types.TypeDef{})
	require.Error(t, err)
}
