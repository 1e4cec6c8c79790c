package psfdata

import (
	"fmt"
	"io"
	"path/filepath"
)

// WriteSummary writes a short human-readable description of f to w: its
// file name, its kind (simple, swept, or PSF-XL index), and its signal
// count. Supplements the
// original print_info()-style convenience the facade already has every
// piece needed for.
func WriteSummary(w io.Writer, f *File) error {
	kind := "simple"
	switch {
	case f.IsPSFXLIndex():
		kind = "PSF-XL index"
	case f.IsSwept():
		kind = "swept"
	}
	_, err := fmt.Fprintf(w, "%s: %s, %d signals\n", filepath.Base(f.path), kind, len(f.Names()))
	return err
}
