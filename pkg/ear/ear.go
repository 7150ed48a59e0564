// Package ear computes the Eye Aspect Ratio, a scalar openness measure
// derived from eyelid geometry. Open eyes sit around 0.25-0.35, closed
// eyes near zero. All functions are pure.
package ear

import (
	"github.com/sleepdriver/go-sleepdriver/pkg/landmarks"
)

// Coefficients for the bounding-box approximation path.
const (
	boxScale      = 0.27  // maps raw height/width ratio into EAR range
	boxAreaBonus  = 0.03  // max additive correction for large (open) eyes
	boxAreaScale  = 20000 // pixel-area divisor for the correction
	boxClampFloor = 0.15
	boxClampCeil  = 0.35
)

// Estimate computes the EAR for one eye from its 16-point landmark set.
//
// eye_height is the distance between the mean y of the upper lid and the
// mean y of the lower lid; eye_width is the x extent over all 16 points.
// An invalid set or degenerate geometry (zero width) returns 0.0 rather
// than an error. Callers must treat 0.0 as "no usable reading", not as
// a measurement of closed eyes.
func Estimate(eye landmarks.EyeSet) float64 {
	if !eye.Valid() {
		return 0.0
	}

	var upperY, lowerY float64
	for i := 0; i < landmarks.LidPointCount; i++ {
		upperY += eye.Upper[i].Y
		lowerY += eye.Lower[i].Y
	}
	upperY /= landmarks.LidPointCount
	lowerY /= landmarks.LidPointCount

	minX := eye.Upper[0].X
	maxX := eye.Upper[0].X
	for _, p := range eye.Points() {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
	}

	height := abs(upperY - lowerY)
	width := abs(maxX - minX)
	if width <= 0 {
		return 0.0
	}
	return height / width
}

// Combine averages the per-eye ratios into the combined EAR used by the
// drowsiness detector. Averaging keeps the signal usable when one eye is
// partially occluded.
func Combine(left, right float64) float64 {
	return (left + right) / 2.0
}

// Box is an eye bounding box in pixels, as produced by a cascade detector.
type Box struct {
	X, Y, W, H int
}

// Area returns the box area in square pixels.
func (b Box) Area() int {
	return b.W * b.H
}

// EstimateFromBoxes approximates a combined EAR from two eye bounding
// boxes when no fine landmarks are available. The height/width ratio of
// each box is averaged, scaled into EAR range, nudged up for large eyes
// (big boxes are usually open eyes, not wide closed ones), and clamped
// to [0.15, 0.35].
func EstimateFromBoxes(eye1, eye2 Box) float64 {
	ratio1 := float64(eye1.H) / float64(max(eye1.W, 1))
	ratio2 := float64(eye2.H) / float64(max(eye2.W, 1))

	avgRatio := (ratio1 + ratio2) / 2.0
	e := boxScale * avgRatio

	sizeBonus := float64(eye1.Area()+eye2.Area()) / boxAreaScale
	if sizeBonus > boxAreaBonus {
		sizeBonus = boxAreaBonus
	}
	e += sizeBonus

	if e < boxClampFloor {
		return boxClampFloor
	}
	if e > boxClampCeil {
		return boxClampCeil
	}
	return e
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
