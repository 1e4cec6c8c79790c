// Package psfdata reads Cadence PSF (Parameter Storage Format) result files
// produced by analog circuit simulators and exposes their signals as typed,
// named waveforms. It supports the regular binary format, its PSF-XL
// extension for large chunked, Blosc-compressed signal data, and dispatches
// to an ASCII decoder for text-format files.
package psfdata

import (
	"fmt"
	"os"

	"github.com/chwa/psfdata/internal/ascii"
	"github.com/chwa/psfdata/internal/errs"
	"github.com/chwa/psfdata/internal/props"
	"github.com/chwa/psfdata/internal/sections"
	"github.com/chwa/psfdata/internal/types"
	"github.com/chwa/psfdata/internal/utils"
	"github.com/chwa/psfdata/internal/xl"
)

// File is an open PSF result file: either a regular binary PSF, a PSF-XL
// index file (with sample data in a ".psfxl" sidecar), or an ASCII file.
type File struct {
	path string

	bin   *sections.File
	ascii *ascii.File

	sidecar *xl.Sidecar // opened lazily, only for PSF-XL index files
}

// asciiHeaderMagic is the leading bytes of a text-format PSF file (spec
// §4.7/Non-goals: dispatch only, full grammar lives in internal/ascii).
const asciiHeaderMagic = "HEADER"

// Open reads and parses the PSF file at path. Binary and PSF-XL index
// files are distinguished from ASCII files by their leading bytes; PSF-XL
// sample data is read lazily from the ".psfxl" sidecar on first access.
func Open(path string) (*File, error) {
	//nolint:gosec // G304: caller-provided path is the documented API
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapError("opening PSF file", err)
	}
	if len(data) == 0 {
		return nil, errs.New(errs.Truncated, 0, fmt.Errorf("empty file"))
	}

	if len(data) >= len(asciiHeaderMagic) && string(data[:len(asciiHeaderMagic)]) == asciiHeaderMagic {
		af, err := ascii.Parse(data)
		if err != nil {
			return nil, err
		}
		return &File{path: path, ascii: af}, nil
	}

	bf, err := sections.DecodeFile(data)
	if err != nil {
		return nil, err
	}
	return &File{path: path, bin: bf}, nil
}

// Close is a no-op: Open reads the whole file (and, lazily, its PSF-XL
// sidecar) into memory up front and holds no open file handles. It exists
// so File satisfies io.Closer for callers used to that pattern.
func (f *File) Close() error {
	return nil
}

// IsSwept reports whether the file carries swept (sweep + traces) data
// rather than a single set of scalar/struct values.
func (f *File) IsSwept() bool {
	if f.ascii != nil {
		return f.ascii.IsSwept()
	}
	return f.bin.Header.IsSwept()
}

// IsPSFXLIndex reports whether the file is a PSF-XL index: a binary PSF
// without a table of contents or Value section, whose sample data lives in
// a ".psfxl" sidecar next to it.
func (f *File) IsPSFXLIndex() bool {
	return f.bin != nil && f.bin.IsIndexOnly
}

// Header returns a copy of the file-wide property list, in declaration
// order.
func (f *File) Header() *props.List {
	if f.ascii != nil {
		return f.ascii.Header.Clone()
	}
	return f.bin.Header.Properties.Clone()
}

// Names returns the flattened, declaration-ordered list of signal names.
func (f *File) Names() []string {
	if f.ascii != nil {
		return f.ascii.Names()
	}
	if f.bin.Trace != nil {
		names := make([]string, 0, len(f.bin.Trace.ByName))
		for _, sig := range f.bin.Trace.Flattened() {
			names = append(names, sig.Name)
		}
		return names
	}
	if f.bin.SimpleValues != nil {
		return append([]string(nil), f.bin.SimpleValues.Names...)
	}
	return nil
}

// SignalInfo returns the property list attached to a signal's TypeDef. For
// a binary file it looks the name up in the Trace section only, so a binary
// file without one (typically a non-swept file) yields no info for any
// name. The second result is false if name is not found.
func (f *File) SignalInfo(name string) (*props.List, bool) {
	if f.ascii != nil {
		return f.ascii.SignalInfo(name)
	}
	if f.bin.Trace != nil {
		sig, ok := f.bin.Trace.ByName[name]
		if !ok {
			return nil, false
		}
		return sig.TypeRef.Properties, true
	}
	return nil, false
}

// SweepInfo returns the property list attached to the sweep variable's
// TypeDef, for a swept file. The second result is false if the file is not
// swept.
func (f *File) SweepInfo() (*props.List, bool) {
	if f.ascii != nil {
		return f.ascii.SweepInfo()
	}
	if f.bin == nil || f.bin.Sweep == nil {
		return nil, false
	}
	return f.bin.Sweep.Signal.TypeRef.Properties, true
}

// GetSignal returns the named signal's value: a Waveform for swept and
// PSF-XL files, or a scalar/struct value (float64, int8, int32, complex128,
// or map[string]any; an ASCII file may also yield a string) for a simple
// (non-swept) file. For an ASCII swept file, the sweep variable's own name
// yields its x values as a []float64 rather than a Waveform.
func (f *File) GetSignal(name string) (any, error) {
	if f.ascii != nil {
		return f.getASCIISignal(name)
	}

	switch {
	case f.IsPSFXLIndex():
		return f.getXLSignal(name)
	case f.IsSwept():
		return f.getSweepWaveform(name)
	default:
		v, ok := f.bin.SimpleValues.ValuesByName[name]
		if !ok {
			return nil, errs.New(errs.UnknownName, 0, fmt.Errorf("signal %q not found", name))
		}
		return v, nil
	}
}

// GetSignals returns every named signal in a single call. Only PSF-XL
// index files benefit from batching (the sidecar is opened once); for
// other file kinds it is equivalent to repeated GetSignal calls.
func (f *File) GetSignals(names []string) (map[string]Waveform, error) {
	out := make(map[string]Waveform, len(names))
	for _, name := range names {
		v, err := f.GetSignal(name)
		if err != nil {
			return nil, err
		}
		wfm, ok := v.(Waveform)
		if !ok {
			return nil, errs.New(errs.UnsupportedSweep, 0, fmt.Errorf("signal %q is not a waveform", name))
		}
		out[name] = wfm
	}
	return out, nil
}

func (f *File) getASCIISignal(name string) (any, error) {
	v, err := f.ascii.GetSignal(name)
	if err != nil {
		return nil, err
	}
	pair, ok := v.(struct{ X, Y []float64 })
	if !ok {
		return v, nil // non-swept scalar value, or the sweep variable's x values
	}

	unitOf := func(info *props.List, ok bool) string {
		if !ok {
			return "-"
		}
		if u := info.GetString("units"); u != "" {
			return u
		}
		return "-"
	}
	xunit := unitOf(f.SweepInfo())
	yunit := unitOf(f.SignalInfo(name))

	return Waveform{X: widen(pair.X), XUnit: xunit, Y: widen(pair.Y), YUnit: yunit, Name: name}, nil
}

func (f *File) getSweepWaveform(name string) (Waveform, error) {
	sv := f.bin.SweepValues
	y, ok := sv.Y[name]
	if !ok {
		return Waveform{}, errs.New(errs.UnknownName, 0, fmt.Errorf("signal %q not found", name))
	}

	xunit := "-"
	if info, ok := f.SweepInfo(); ok {
		xunit = info.GetString("units")
		if xunit == "" {
			xunit = "-"
		}
	}
	yunit := "-"
	if info, ok := f.SignalInfo(name); ok {
		yunit = info.GetString("units")
		if yunit == "" {
			yunit = "-"
		}
	}

	return Waveform{
		X:     sv.X,
		XUnit: xunit,
		Y:     y,
		YUnit: yunit,
		Name:  name,
	}, nil
}

func (f *File) getXLSignal(name string) (Waveform, error) {
	sig, ok := f.bin.Trace.ByName[name]
	if !ok {
		return Waveform{}, errs.New(errs.UnknownName, 0, fmt.Errorf("signal %q not found", name))
	}
	idxProp, ok := sig.Properties.Get(props.XLIndexName)
	if !ok || idxProp.Kind != props.KindXLIndex {
		return Waveform{}, errs.New(errs.UnknownName, 0, fmt.Errorf("signal %q has no PSF-XL index", name))
	}

	sidecar, err := f.openSidecar()
	if err != nil {
		return Waveform{}, err
	}

	x, y, err := sidecar.ReadSignal(int64(idxProp.XL.Offset))
	if err != nil {
		return Waveform{}, err
	}

	return Waveform{
		X:     widen(x),
		XUnit: "-",
		Y:     widen(y),
		YUnit: "-",
		Name:  name,
	}, nil
}

func (f *File) openSidecar() (*xl.Sidecar, error) {
	if f.sidecar != nil {
		return f.sidecar, nil
	}
	path := f.path + ".psfxl"
	sc, err := xl.OpenSidecar(path)
	if err != nil {
		return nil, err
	}
	f.sidecar = sc
	return sc, nil
}

func widen(v []float64) []complex128 {
	out := make([]complex128, len(v))
	for i, x := range v {
		out[i] = complex(x, 0)
	}
	return out
}

// TypeRefKind is re-exported for callers that want to branch on a signal's
// underlying primitive kind without importing the internal types package.
type TypeRefKind = types.PrimitiveKind
