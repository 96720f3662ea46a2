/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: membership.go
Description: Membership function shapes for linguistic labels. Provides triangular and
trapezoidal piecewise-linear shapes plus a composite maximum used for labels that span
disjoint sub-ranges. Every shape is a pure evaluator returning a degree in [0,1].
*/

package fuzzy

import (
	"fmt"
	"math"
)

// MembershipFunction maps a crisp value to a degree of membership in [0,1]
type MembershipFunction interface {
	// Evaluate returns the degree of membership of x
	Evaluate(x float64) float64
	// Validate checks the shape parameters
	Validate() error
	// Shape returns the shape name ("triangular", "trapezoidal", "max")
	Shape() string
}

// Triangular is 0 outside [A,C], rises to 1 at B and falls back to 0 at C.
// A == B or B == C give a right triangle with a vertical edge.
type Triangular struct {
	A, B, C float64
}

// NewTriangular creates a validated triangular membership function
func NewTriangular(a, b, c float64) (Triangular, error) {
	t := Triangular{A: a, B: b, C: c}
	return t, t.Validate()
}

// Evaluate returns the degree of membership of x
func (t Triangular) Evaluate(x float64) float64 {
	switch {
	case x < t.A || x > t.C:
		return 0
	case x == t.B:
		return 1
	case x < t.B:
		// A <= x < B, so B > A
		return clampDegree((x - t.A) / (t.B - t.A))
	default:
		// B < x <= C, so C > B
		return clampDegree((t.C - x) / (t.C - t.B))
	}
}

// Validate checks that A <= B <= C and that all parameters are finite
func (t Triangular) Validate() error {
	return validateBreakpoints(t.Shape(), t.A, t.B, t.C)
}

// Shape returns "triangular"
func (t Triangular) Shape() string {
	return "triangular"
}

func (t Triangular) String() string {
	return fmt.Sprintf("trimf[%g %g %g]", t.A, t.B, t.C)
}

// Trapezoidal is 0 outside [A,D], rises over [A,B], is 1 over [B,C] and falls over [C,D]
type Trapezoidal struct {
	A, B, C, D float64
}

// NewTrapezoidal creates a validated trapezoidal membership function
func NewTrapezoidal(a, b, c, d float64) (Trapezoidal, error) {
	t := Trapezoidal{A: a, B: b, C: c, D: d}
	return t, t.Validate()
}

// Evaluate returns the degree of membership of x
func (t Trapezoidal) Evaluate(x float64) float64 {
	switch {
	case x < t.A || x > t.D:
		return 0
	case x >= t.B && x <= t.C:
		return 1
	case x < t.B:
		return clampDegree((x - t.A) / (t.B - t.A))
	default:
		return clampDegree((t.D - x) / (t.D - t.C))
	}
}

// Validate checks that A <= B <= C <= D and that all parameters are finite
func (t Trapezoidal) Validate() error {
	return validateBreakpoints(t.Shape(), t.A, t.B, t.C, t.D)
}

// Shape returns "trapezoidal"
func (t Trapezoidal) Shape() string {
	return "trapezoidal"
}

func (t Trapezoidal) String() string {
	return fmt.Sprintf("trapmf[%g %g %g %g]", t.A, t.B, t.C, t.D)
}

// Max is the union of two membership functions: max(Left(x), Right(x)).
// Nest Max values to combine more than two shapes.
type Max struct {
	Left, Right MembershipFunction
}

// NewMax creates a validated composite of two membership functions
func NewMax(left, right MembershipFunction) (Max, error) {
	m := Max{Left: left, Right: right}
	return m, m.Validate()
}

// Evaluate returns the larger of the two child degrees
func (m Max) Evaluate(x float64) float64 {
	return math.Max(m.Left.Evaluate(x), m.Right.Evaluate(x))
}

// Validate checks both children
func (m Max) Validate() error {
	if m.Left == nil || m.Right == nil {
		return fmt.Errorf("%w: max requires two membership functions", ErrInvalidShape)
	}
	if err := m.Left.Validate(); err != nil {
		return err
	}
	return m.Right.Validate()
}

// Shape returns "max"
func (m Max) Shape() string {
	return "max"
}

func (m Max) String() string {
	return fmt.Sprintf("max(%v, %v)", m.Left, m.Right)
}

// EvaluateAt evaluates mf at each of the given points
func EvaluateAt(mf MembershipFunction, points []float64) []float64 {
	out := make([]float64, len(points))
	for i, x := range points {
		out[i] = mf.Evaluate(x)
	}
	return out
}

func validateBreakpoints(shape string, params ...float64) error {
	for i, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: %s parameter %d is not finite", ErrInvalidShape, shape, i)
		}
		if i > 0 && p < params[i-1] {
			return fmt.Errorf("%w: %s parameters must be non-decreasing, got %v", ErrInvalidShape, shape, params)
		}
	}
	return nil
}

func clampDegree(d float64) float64 {
	if !(d > 0) {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
