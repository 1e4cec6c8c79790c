package utils

import (
	"fmt"
	"math"
)

// CheckMultiplyOverflow checks if multiplying two uint64 values would overflow.
// Returns an error if overflow would occur.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil // No overflow when either is zero
	}

	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}

	return nil
}

// SafeMultiply multiplies two uint64 values and returns the result if no overflow occurs.
// Returns 0 and an error if overflow would occur.
func SafeMultiply(a, b uint64) (uint64, error) {
	if err := CheckMultiplyOverflow(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// ValidateBufferSize validates that a buffer size is within reasonable limits.
// maxSize parameter allows different limits for different use cases.
func ValidateBufferSize(size, maxSize uint64, description string) error {
	if size == 0 {
		return fmt.Errorf("%s: size cannot be zero", description)
	}

	if size > maxSize {
		return fmt.Errorf("%s: size %d exceeds maximum %d", description, size, maxSize)
	}

	return nil
}

// Common buffer size limits.
const (
	// MaxStringSize limits a length-prefixed PSF string to 16MB.
	MaxStringSize = 16 * 1024 * 1024

	// MaxWindowCapacity bounds a single windowed-layout chunk window to 64M samples,
	// guarding against a corrupt "PSF window size" header value driving a huge allocation.
	MaxWindowCapacity = 64 * 1024 * 1024

	// MaxSweepPoints bounds the total declared sweep points for the same reason.
	MaxSweepPoints = 1_000_000_000
)

// WindowCapacity computes how many samples of the given item size fit in a
// window of windowSize bytes (spec §4.6: "window capacity is PSF window
// size / item_size"), with overflow/zero guards.
func WindowCapacity(windowSize uint64, itemSize uint64) (uint64, error) {
	if itemSize == 0 {
		return 0, fmt.Errorf("item size cannot be zero")
	}
	capacity := windowSize / itemSize
	if err := ValidateBufferSize(capacity, MaxWindowCapacity, "window capacity"); err != nil {
		return 0, err
	}
	return capacity, nil
}

// ValidateWindowCounts enforces the windowed-layout invariant from spec §4.6:
// npoints_valid <= npoints_window <= window_capacity.
func ValidateWindowCounts(valid, window, capacity uint64) error {
	if valid > window {
		return fmt.Errorf("npoints_valid (%d) exceeds npoints_window (%d)", valid, window)
	}
	if window > capacity {
		return fmt.Errorf("npoints_window (%d) exceeds window capacity (%d)", window, capacity)
	}
	return nil
}
