package errors

import (
	"math"
	"strings"
	"unicode"
)

// Limits applied to generate requests. A canvas is held fully in memory by
// the worker, so dimensions are capped well below what would exhaust it.
const (
	MaxDimension     = 16384
	MaxDensity       = 500
	MaxSizeVariation = 8
	maxLocatorLength = 4096
)

// ValidateDimensions checks that a canvas size is positive and within
// [MaxDimension] on both axes.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "canvas dimensions must be positive (got %dx%d)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidInput, "canvas dimensions exceed %d pixels (got %dx%d)", MaxDimension, width, height)
	}
	return nil
}

// ValidateDensity checks that density is a finite value in (0, MaxDensity].
func ValidateDensity(density float64) error {
	if math.IsNaN(density) || math.IsInf(density, 0) || density <= 0 {
		return New(ErrCodeInvalidInput, "density must be a positive number (got %v)", density)
	}
	if density > MaxDensity {
		return New(ErrCodeInvalidInput, "density too large (max %d, got %v)", MaxDensity, density)
	}
	return nil
}

// ValidateSizeVariation checks that the size exponent is finite and in
// (0, MaxSizeVariation].
func ValidateSizeVariation(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidInput, "size variation must be a positive number (got %v)", v)
	}
	if v > MaxSizeVariation {
		return New(ErrCodeInvalidInput, "size variation too large (max %d, got %v)", MaxSizeVariation, v)
	}
	return nil
}

// ValidateLocator performs a cheap safety check on an image source locator
// before it is parsed. Data URLs are exempt from the length limit.
func ValidateLocator(loc string) error {
	if strings.TrimSpace(loc) == "" {
		return New(ErrCodeInvalidSource, "source locator cannot be empty")
	}
	if strings.HasPrefix(loc, "data:") {
		return nil
	}
	if len(loc) > maxLocatorLength {
		return New(ErrCodeInvalidSource, "source locator too long (max %d characters)", maxLocatorLength)
	}
	for _, r := range loc {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidSource, "source locator contains invalid characters")
		}
	}
	return nil
}
