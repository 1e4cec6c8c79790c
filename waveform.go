package psfdata

// Waveform is the shared shape every decoded signal is returned as: a
// dense x/y pair with opaque unit strings, carried across the binary,
// PSF-XL, and ASCII decode paths alike (spec §3).
//
// Invariant: len(X) == len(Y).
type Waveform struct {
	X     []complex128
	XUnit string
	Y     []complex128
	YUnit string
	Name  string
}

// Real reports whether every sample in w has a zero imaginary part, i.e.
// w could be losslessly represented as a plain real-valued waveform.
func (w Waveform) Real() bool {
	for _, v := range w.X {
		if imag(v) != 0 {
			return false
		}
	}
	for _, v := range w.Y {
		if imag(v) != 0 {
			return false
		}
	}
	return true
}

// Floats returns w.Y's real parts as a plain []float64, for callers that
// know the waveform is real-valued (see Real).
func (w Waveform) Floats() []float64 {
	out := make([]float64, len(w.Y))
	for i, v := range w.Y {
		out[i] = real(v)
	}
	return out
}
