package psfdata

import "github.com/chwa/psfdata/internal/errs"

// Sentinel errors covering the decoder's failure taxonomy (spec §7). Use
// errors.Is to test a returned error against one of these. An error of
// one of these kinds carries the absolute file offset at which it was
// detected (accessible by unwrapping to *errs.Error); a failure to read the
// file itself, and some low-level type/property parse failures, are
// returned without a kind or offset.
var (
	ErrTruncated            = errs.ErrTruncated
	ErrBadSignature         = errs.ErrBadSignature
	ErrBadFooter            = errs.ErrBadFooter
	ErrMalformedSection     = errs.ErrMalformedSection
	ErrUnknownType          = errs.ErrUnknownType
	ErrUnsupportedSweep     = errs.ErrUnsupportedSweep
	ErrBadEncoding          = errs.ErrBadEncoding
	ErrBadLength            = errs.ErrBadLength
	ErrSidecarMissing       = errs.ErrSidecarMissing
	ErrBadMarker            = errs.ErrBadMarker
	ErrBloscDecompress      = errs.ErrBloscDecompress
	ErrUnsupportedChunkType = errs.ErrUnsupportedChunkType
	ErrUnknownName          = errs.ErrUnknownName
)
