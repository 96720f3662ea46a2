/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: session.go
Description: Per-computation inference state. A session holds crisp inputs and runs
fuzzification, rule evaluation, min-implication, max-aggregation and centroid
defuzzification against an immutable engine. Sessions are not safe for concurrent use;
each goroutine obtains its own session from the shared engine.
*/

package fuzzy

import (
	"fmt"
	"math"
	"strings"
)

// State is the lifecycle position of a session
type State int

const (
	StateEmpty State = iota
	StateInputsPartial
	StateInputsComplete
	StateComputed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateInputsPartial:
		return "inputs_partial"
	case StateInputsComplete:
		return "inputs_complete"
	case StateComputed:
		return "computed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session runs inference for one set of inputs at a time.
// Buffers are reused across Compute calls and fully overwritten by each call.
type Session struct {
	engine *Engine

	inputs []float64
	set    []bool
	nset   int

	fuzzified  Fuzzified
	firing     []float64
	aggregated [][]float64
	outputs    []float64

	state State
}

func newSession(e *Engine) *Session {
	s := &Session{
		engine:     e,
		inputs:     make([]float64, len(e.antecedents)),
		set:        make([]bool, len(e.antecedents)),
		fuzzified:  make(Fuzzified, len(e.antecedents)),
		firing:     make([]float64, len(e.rules)),
		aggregated: make([][]float64, len(e.consequents)),
		outputs:    make([]float64, len(e.consequents)),
	}
	for _, v := range e.antecedents {
		s.fuzzified[v.name] = make(map[string]float64, len(v.labels))
	}
	for i, v := range e.consequents {
		s.aggregated[i] = make([]float64, v.universe.Len())
	}
	return s
}

// Engine returns the engine this session evaluates
func (s *Session) Engine() *Engine {
	return s.engine
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

// SetInput sets the crisp value of an antecedent.
// Values outside the variable's universe are clamped to its bounds; NaN is rejected.
// Any previously computed outputs are invalidated.
func (s *Session) SetInput(name string, value float64) error {
	idx, ok := s.engine.antecedentIndex[name]
	if !ok {
		return fmt.Errorf("%w: %q is not an antecedent", ErrUnknownVariable, name)
	}
	if math.IsNaN(value) {
		return fmt.Errorf("%w: %s is NaN", ErrInvalidInput, name)
	}

	s.inputs[idx] = s.engine.antecedents[idx].universe.Clamp(value)
	if !s.set[idx] {
		s.set[idx] = true
		s.nset++
	}
	s.updateInputState()
	return nil
}

// SetInputs sets several antecedents. Names are checked before any value is stored.
func (s *Session) SetInputs(values map[string]float64) error {
	for name, value := range values {
		if _, ok := s.engine.antecedentIndex[name]; !ok {
			return fmt.Errorf("%w: %q is not an antecedent", ErrUnknownVariable, name)
		}
		if math.IsNaN(value) {
			return fmt.Errorf("%w: %s is NaN", ErrInvalidInput, name)
		}
	}
	for name, value := range values {
		if err := s.SetInput(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Input returns the stored (clamped) value of an antecedent
func (s *Session) Input(name string) (float64, bool) {
	idx, ok := s.engine.antecedentIndex[name]
	if !ok || !s.set[idx] {
		return 0, false
	}
	return s.inputs[idx], true
}

// Reset clears all inputs and outputs
func (s *Session) Reset() {
	for i := range s.set {
		s.set[i] = false
		s.inputs[i] = 0
	}
	s.nset = 0
	s.state = StateEmpty
}

func (s *Session) updateInputState() {
	switch {
	case s.nset == 0:
		s.state = StateEmpty
	case s.nset < len(s.set):
		s.state = StateInputsPartial
	default:
		s.state = StateInputsComplete
	}
}

// Compute runs the full inference pipeline for the current inputs
func (s *Session) Compute() error {
	if s.state != StateInputsComplete && s.state != StateComputed {
		return fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(s.missing(), ", "))
	}
	e := s.engine

	for i, v := range e.antecedents {
		v.fuzzifyInto(s.inputs[i], s.fuzzified[v.name])
	}

	for _, agg := range s.aggregated {
		clear(agg)
	}

	for i, r := range e.rules {
		alpha, err := r.rule.Antecedent.Evaluate(s.fuzzified)
		if err != nil {
			// unreachable for a built engine; keep the session consistent anyway
			s.updateInputState()
			return fmt.Errorf("rule %s: %w", ruleID(i, r.rule), err)
		}
		s.firing[i] = alpha
		if alpha == 0 {
			continue
		}
		for _, t := range r.targets {
			agg := s.aggregated[t.consequent]
			for k, mu := range t.curve {
				if clipped := math.Min(alpha, mu); clipped > agg[k] {
					agg[k] = clipped
				}
			}
		}
	}

	for i, v := range e.consequents {
		s.outputs[i] = centroid(v.universe, s.aggregated[i])
	}

	s.state = StateComputed
	return nil
}

func (s *Session) missing() []string {
	var out []string
	for i, ok := range s.set {
		if !ok {
			out = append(out, s.engine.antecedents[i].name)
		}
	}
	return out
}

// Output returns the defuzzified value of a consequent
func (s *Session) Output(name string) (float64, error) {
	idx, err := s.consequentIndex(name)
	if err != nil {
		return 0, err
	}
	return s.outputs[idx], nil
}

// Outputs returns every defuzzified consequent value by name
func (s *Session) Outputs() (map[string]float64, error) {
	if s.state != StateComputed {
		return nil, ErrNotComputed
	}
	out := make(map[string]float64, len(s.outputs))
	for i, v := range s.engine.consequents {
		out[v.name] = s.outputs[i]
	}
	return out, nil
}

// Aggregated returns a copy of the aggregated fuzzy set of a consequent,
// aligned with the consequent's universe
func (s *Session) Aggregated(name string) ([]float64, error) {
	idx, err := s.consequentIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(s.aggregated[idx]))
	copy(out, s.aggregated[idx])
	return out, nil
}

// FiringStrengths returns a copy of the rule firing strengths in rule order
func (s *Session) FiringStrengths() ([]float64, error) {
	if s.state != StateComputed {
		return nil, ErrNotComputed
	}
	out := make([]float64, len(s.firing))
	copy(out, s.firing)
	return out, nil
}

func (s *Session) consequentIndex(name string) (int, error) {
	if s.state != StateComputed {
		return 0, fmt.Errorf("%w: call Compute before reading %q", ErrNotComputed, name)
	}
	idx, ok := s.engine.consequentIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a consequent", ErrUnknownVariable, name)
	}
	return idx, nil
}
