/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: variable.go
Description: Linguistic variables for the fuzzy inference engine. A variable owns a
universe and an ordered registry of labeled membership functions. Antecedents are fuzzified
at a single crisp point; consequents are evaluated across their whole universe.
*/

package fuzzy

import (
	"fmt"
	"math"
)

// Variable is a named linguistic variable with labeled membership functions
type Variable struct {
	name     string
	universe *Universe
	labels   []string
	terms    map[string]MembershipFunction
	frozen   bool
}

// NewVariable creates a variable with no labels
func NewVariable(name string, universe *Universe) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: variable name must not be empty", ErrInvalidRule)
	}
	if universe == nil {
		return nil, fmt.Errorf("%w: variable %q has no universe", ErrInvalidUniverse, name)
	}
	return &Variable{
		name:     name,
		universe: universe,
		terms:    make(map[string]MembershipFunction),
	}, nil
}

// RegisterLabel adds a labeled membership function.
// Labels are unique per variable and shape parameters are validated here.
func (v *Variable) RegisterLabel(label string, mf MembershipFunction) error {
	if v.frozen {
		return fmt.Errorf("%w: cannot add label %q to %q", ErrImmutable, label, v.name)
	}
	if label == "" {
		return fmt.Errorf("%w: empty label on variable %q", ErrInvalidShape, v.name)
	}
	if _, exists := v.terms[label]; exists {
		return fmt.Errorf("%w: %q already registered on variable %q", ErrDuplicateLabel, label, v.name)
	}
	if mf == nil {
		return fmt.Errorf("%w: nil membership function for %s[%s]", ErrInvalidShape, v.name, label)
	}
	if err := mf.Validate(); err != nil {
		return fmt.Errorf("%s[%s]: %w", v.name, label, err)
	}

	v.labels = append(v.labels, label)
	v.terms[label] = mf
	return nil
}

// Name returns the variable name
func (v *Variable) Name() string {
	return v.name
}

// Universe returns the variable's universe of discourse
func (v *Variable) Universe() *Universe {
	return v.universe
}

// Labels returns the registered labels in registration order
func (v *Variable) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

// HasLabel reports whether label is registered
func (v *Variable) HasLabel(label string) bool {
	_, ok := v.terms[label]
	return ok
}

// Term returns the membership function registered for label
func (v *Variable) Term(label string) (MembershipFunction, bool) {
	mf, ok := v.terms[label]
	return mf, ok
}

// Fuzzify evaluates every registered membership function at x
func (v *Variable) Fuzzify(x float64) map[string]float64 {
	degrees := make(map[string]float64, len(v.labels))
	v.fuzzifyInto(x, degrees)
	return degrees
}

func (v *Variable) fuzzifyInto(x float64, degrees map[string]float64) {
	for _, label := range v.labels {
		degrees[label] = v.terms[label].Evaluate(x)
	}
}

// EvaluateAcrossUniverse evaluates the label's membership function at every sample point
func (v *Variable) EvaluateAcrossUniverse(label string) ([]float64, error) {
	mf, ok := v.terms[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s[%s]", ErrUnknownTerm, v.name, label)
	}
	return EvaluateAt(mf, v.universe.points), nil
}

// Centroid defuzzifies a fuzzy set sampled over this variable's universe.
// An all-zero set has no center of gravity and yields the universe midpoint.
func (v *Variable) Centroid(set []float64) float64 {
	return centroid(v.universe, set)
}

// clone returns a frozen copy sharing the immutable universe and membership functions
func (v *Variable) clone() *Variable {
	c := &Variable{
		name:     v.name,
		universe: v.universe,
		labels:   v.Labels(),
		terms:    make(map[string]MembershipFunction, len(v.terms)),
		frozen:   true,
	}
	for label, mf := range v.terms {
		c.terms[label] = mf
	}
	return c
}

func centroid(u *Universe, set []float64) float64 {
	var num, den float64
	n := min(len(set), len(u.points))
	for i := 0; i < n; i++ {
		num += u.points[i] * set[i]
		den += set[i]
	}
	if den == 0 || math.IsNaN(den) {
		return u.Midpoint()
	}
	return num / den
}
