/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: universe.go
Description: Discretized universe of discourse for a linguistic variable. A universe is an
immutable, strictly increasing sequence of sample points used to evaluate output sets and
to integrate the centroid during defuzzification.
*/

package fuzzy

import (
	"fmt"
	"math"
)

// Universe is an ordered sequence of sample points spanning [Min, Max]
type Universe struct {
	points []float64
}

// NewUniverse creates a universe from explicit sample points.
// The points are copied; they must be finite, strictly increasing and at least two long.
func NewUniverse(points []float64) (*Universe, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidUniverse, len(points))
	}
	for i, p := range points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: point %d is not finite", ErrInvalidUniverse, i)
		}
		if i > 0 && p <= points[i-1] {
			return nil, fmt.Errorf("%w: points not strictly increasing at index %d (%g <= %g)",
				ErrInvalidUniverse, i, p, points[i-1])
		}
	}

	cp := make([]float64, len(points))
	copy(cp, points)
	return &Universe{points: cp}, nil
}

// Range creates an evenly spaced universe from min to max inclusive with the given step.
// The last sample is max whenever max lies on the step grid; otherwise the grid stops at the
// last point below max.
func Range(min, max, step float64) (*Universe, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: step must be positive, got %g", ErrInvalidUniverse, step)
	}
	if !(max > min) {
		return nil, fmt.Errorf("%w: max %g must exceed min %g", ErrInvalidUniverse, max, min)
	}

	span := (max - min) / step
	n := int(math.Floor(span+1e-9)) + 1
	points := make([]float64, n)
	for i := range points {
		points[i] = min + float64(i)*step
	}
	// snap accumulated rounding onto the declared bound
	if last := points[n-1]; math.Abs(last-max) < step*1e-6 {
		points[n-1] = max
	}
	return NewUniverse(points)
}

// Linspace creates n evenly spaced samples from min to max inclusive
func Linspace(min, max float64, n int) (*Universe, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidUniverse, n)
	}
	return NewUniverse(LinspaceValues(min, max, n))
}

// LinspaceValues returns n evenly spaced values from min to max inclusive.
// It does not validate its arguments.
func LinspaceValues(min, max float64, n int) []float64 {
	values := make([]float64, n)
	if n == 1 {
		values[0] = min
		return values
	}
	step := (max - min) / float64(n-1)
	for i := range values {
		values[i] = min + float64(i)*step
	}
	values[n-1] = max
	return values
}

// Len returns the number of sample points
func (u *Universe) Len() int {
	return len(u.points)
}

// At returns the i-th sample point
func (u *Universe) At(i int) float64 {
	return u.points[i]
}

// Points returns a copy of the sample points
func (u *Universe) Points() []float64 {
	cp := make([]float64, len(u.points))
	copy(cp, u.points)
	return cp
}

// Min returns the first sample point
func (u *Universe) Min() float64 {
	return u.points[0]
}

// Max returns the last sample point
func (u *Universe) Max() float64 {
	return u.points[len(u.points)-1]
}

// Midpoint returns (Min+Max)/2
func (u *Universe) Midpoint() float64 {
	return (u.Min() + u.Max()) / 2
}

// Clamp limits x to [Min, Max]
func (u *Universe) Clamp(x float64) float64 {
	return math.Min(math.Max(x, u.Min()), u.Max())
}

// Contains reports whether x lies within [Min, Max]
func (u *Universe) Contains(x float64) bool {
	return x >= u.Min() && x <= u.Max()
}
