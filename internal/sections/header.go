package sections

import (
	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/props"
)

// HeaderSection carries the file-wide property list: sweep flags, point
// counts, window size, and whatever else the simulator chose to record
// (spec §4.4).
type HeaderSection struct {
	Properties *props.List
}

// ReadHeaderSection decodes a Header section starting at c and returns the
// cursor positioned at the remainder of the parent ("tail").
func ReadHeaderSection(c *cursor.Cursor) (*HeaderSection, *cursor.Cursor, error) {
	_, body, tail, err := openSection(c)
	if err != nil {
		return nil, nil, err
	}

	plist, err := props.Read(body)
	if err != nil {
		return nil, nil, err
	}
	return &HeaderSection{Properties: plist}, tail, nil
}

// IsSwept reports the "PSF sweeps" header flag.
func (h *HeaderSection) IsSwept() bool {
	return h.Properties.GetInt("PSF sweeps") != 0
}

// SweepPoints returns the "PSF sweep points" header value.
func (h *HeaderSection) SweepPoints() int32 {
	return h.Properties.GetInt("PSF sweep points")
}

// WindowSize returns the "PSF window size" header value and whether it was
// present at all (its presence, not its value, selects the windowed value
// layout per spec §4.6).
func (h *HeaderSection) WindowSize() (int32, bool) {
	v, ok := h.Properties.Get("PSF window size")
	if !ok {
		return 0, false
	}
	return v.Int, true
}
