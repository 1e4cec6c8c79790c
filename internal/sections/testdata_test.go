package sections

import (
	"encoding/binary"
	"math"

	"github.com/chwa/psfdata/internal/props"
	"github.com/chwa/psfdata/internal/types"
)

// builder assembles raw PSF section bytes for tests. It tracks its own
// length so callers can compute absolute end-offsets before the bytes
// that need them are appended (mirroring how the reference encoder
// back-patches offsets).
type builder struct {
	buf []byte
}

func (b *builder) pos() int32 { return int32(len(b.buf)) }

func (b *builder) i32(v int32) *builder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *builder) f64(v float64) *builder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// i32Placeholder reserves 4 bytes for a forward-referenced offset/length
// and returns the buffer position to patch once the real value is known.
func (b *builder) i32Placeholder() int {
	p := len(b.buf)
	b.i32(0)
	return p
}

func (b *builder) patch(at int, v int32) {
	binary.BigEndian.PutUint32(b.buf[at:at+4], uint32(v))
}

func (b *builder) raw(p []byte) *builder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *builder) zeros(n int) *builder {
	b.buf = append(b.buf, make([]byte, n)...)
	return b
}

// str appends a length-prefixed, zero-padded-to-4 string (spec §4.1).
func (b *builder) str(s string) *builder {
	b.i32(int32(len(s)))
	b.buf = append(b.buf, []byte(s)...)
	pad := (4 - len(s)%4) % 4
	for i := 0; i < pad; i++ {
		b.buf = append(b.buf, 0)
	}
	return b
}

// noProps appends a bare terminator, i.e. "this element has no properties".
func (b *builder) noProps() *builder { return b }

// doubleTypeDef returns a ready-made DOUBLE TypeDef, for tests of
// Sweep/Trace sections that only need a valid type reference to resolve
// against and don't care about exercising the Type section decoder too.
func doubleTypeDef(id int32, name string) *types.TypeDef {
	return &types.TypeDef{ID: id, Name: name, Kind: types.KindDouble, Properties: props.New()}
}
