package ascii

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_SimpleValues(t *testing.T) {
	src := `
HEADER
"PSF version" "1.00"
"title" "test"
TYPE
"double_t" DOUBLE
"int_t" INT
"string_t" STRING
VALUE
"vout" 3.5
"vdd" 1
"name" "hello"
END
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	require.False(t, f.IsSwept())
	require.Equal(t, "test", f.Header.GetString("title"))

	v, err := f.GetSignal("vout")
	require.NoError(t, err)
	require.Equal(t, 3.5, v)

	v, err = f.GetSignal("vdd")
	require.NoError(t, err)
	require.Equal(t, int32(1), v)

	v, err = f.GetSignal("name")
	require.NoError(t, err)
	require.Equal(t, "hello", v)

	_, err = f.GetSignal("missing")
	require.Error(t, err)
}

func TestParse_SweptValues(t *testing.T) {
	src := `
HEADER
"PSF sweeps" 1
TYPE
"double_t" DOUBLE
SWEEP
"freq" "double_t"
TRACE
"vout" "double_t"
"vin" "double_t"
VALUE
"freq" 0.0 "vout" 1.0 "vin" 2.0
"freq" 1.0 "vout" 1.5 "vin" 2.5
END
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	require.True(t, f.IsSwept())
	require.Equal(t, []string{"freq", "vout", "vin"}, f.Names())

	si, ok := f.SweepInfo()
	require.True(t, ok)
	require.NotNil(t, si)
	ti, ok := f.SignalInfo("vout")
	require.True(t, ok)
	require.NotNil(t, ti)

	x, err := f.GetSignal("freq")
	require.NoError(t, err)
	require.Equal(t, []float64{0.0, 1.0}, x)

	y, err := f.GetSignal("vout")
	require.NoError(t, err)
	pair, ok := y.(struct{ X, Y []float64 })
	require.True(t, ok)
	require.Equal(t, []float64{0.0, 1.0}, pair.X)
	require.Equal(t, []float64{1.0, 1.5}, pair.Y)
}

func TestParse_NegativeNumbers(t *testing.T) {
	src := `
HEADER
"offset" -5
"scale" -2.5
TYPE
"double_t" DOUBLE
VALUE
"vout" -3.5
END
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Equal(t, int32(-5), f.Header.GetInt("offset"))

	v, err := f.GetSignal("vout")
	require.NoError(t, err)
	require.Equal(t, -3.5, v)
}

func TestParse_ArrayTypeRejected(t *testing.T) {
	src := `
HEADER
TYPE
"arr_t" ARRAY
VALUE
END
`
	_, err := Parse([]byte(src))
	require.Error(t, err)
}

func TestParse_StructTypeRejected(t *testing.T) {
	src := `
HEADER
TYPE
"struct_t" STRUCT
VALUE
END
`
	_, err := Parse([]byte(src))
	require.Error(t, err)
}

func TestParse_PropListOnValue(t *testing.T) {
	src := `
HEADER
TYPE
"double_t" DOUBLE PROP("units" "V")
VALUE
"vout" 3.5 PROP("plot" 1)
END
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)

	v, err := f.GetSignal("vout")
	require.NoError(t, err)
	require.Equal(t, 3.5, v)
}

func TestParse_MalformedMissingHeader(t *testing.T) {
	_, err := Parse([]byte(`TYPE VALUE END`))
	require.Error(t, err)
}
