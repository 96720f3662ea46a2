/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Immutable Mamdani inference engine configuration and its builder. The builder
collects antecedent and consequent variables and an ordered rule list, validates every
variable and label reference once, and produces an engine that is shared read-only by any
number of sessions.
*/

package fuzzy

import (
	"errors"
	"fmt"
)

// Engine is an immutable set of variables and rules
type Engine struct {
	antecedents     []*Variable
	antecedentIndex map[string]int
	consequents     []*Variable
	consequentIndex map[string]int
	rules           []compiledRule
}

type compiledRule struct {
	rule    Rule
	targets []target
}

// target is a consequent label sampled over its variable's universe
type target struct {
	consequent int
	curve      []float64
}

// Builder assembles an Engine
type Builder struct {
	antecedents []*Variable
	consequents []*Variable
	rules       []Rule
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// AddAntecedent registers an input variable
func (b *Builder) AddAntecedent(v ...*Variable) *Builder {
	b.antecedents = append(b.antecedents, v...)
	return b
}

// AddConsequent registers an output variable
func (b *Builder) AddConsequent(v ...*Variable) *Builder {
	b.consequents = append(b.consequents, v...)
	return b
}

// AddRule appends rules in evaluation order
func (b *Builder) AddRule(r ...Rule) *Builder {
	b.rules = append(b.rules, r...)
	return b
}

// Build validates the configuration and returns the engine.
// Every problem found is reported; no engine is returned unless the configuration is valid.
// Variables are copied, so later changes to the builder's variables do not affect the engine.
func (b *Builder) Build() (*Engine, error) {
	var errs []error

	e := &Engine{
		antecedentIndex: make(map[string]int),
		consequentIndex: make(map[string]int),
	}
	seen := make(map[string]bool)
	register := func(v *Variable, role string, list *[]*Variable, index map[string]int) {
		if v == nil {
			errs = append(errs, fmt.Errorf("%w: nil %s variable", ErrInvalidRule, role))
			return
		}
		if seen[v.name] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateVariable, v.name))
			return
		}
		seen[v.name] = true
		index[v.name] = len(*list)
		*list = append(*list, v.clone())
	}
	for _, v := range b.antecedents {
		register(v, "antecedent", &e.antecedents, e.antecedentIndex)
	}
	for _, v := range b.consequents {
		register(v, "consequent", &e.consequents, e.consequentIndex)
	}
	if len(e.antecedents) == 0 {
		errs = append(errs, fmt.Errorf("%w: no antecedent variables", ErrInvalidRule))
	}
	if len(e.consequents) == 0 {
		errs = append(errs, fmt.Errorf("%w: no consequent variables", ErrInvalidRule))
	}

	// sample each consequent label once; rules share the curves
	curves := make([]map[string][]float64, len(e.consequents))
	for i, v := range e.consequents {
		curves[i] = make(map[string][]float64, len(v.labels))
		for _, label := range v.labels {
			curves[i][label] = EvaluateAt(v.terms[label], v.universe.points)
		}
	}

	for i, r := range b.rules {
		compiled, ruleErrs := e.compile(r, curves)
		for _, err := range ruleErrs {
			errs = append(errs, fmt.Errorf("rule %s: %w", ruleID(i, r), err))
		}
		if len(ruleErrs) == 0 {
			e.rules = append(e.rules, compiled)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return e, nil
}

func (e *Engine) compile(r Rule, curves []map[string][]float64) (compiledRule, []error) {
	var errs []error

	if !complete(r.Antecedent) {
		errs = append(errs, fmt.Errorf("%w: antecedent is missing or incomplete", ErrInvalidRule))
	}
	for _, t := range TermsOf(r.Antecedent) {
		idx, ok := e.antecedentIndex[t.Variable]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: antecedent variable %q", ErrUnknownTerm, t.Variable))
			continue
		}
		if !e.antecedents[idx].HasLabel(t.Label) {
			errs = append(errs, fmt.Errorf("%w: %s[%s]", ErrUnknownTerm, t.Variable, t.Label))
		}
	}

	if len(r.Consequents) == 0 {
		errs = append(errs, fmt.Errorf("%w: no consequents", ErrInvalidRule))
	}
	compiled := compiledRule{rule: r.clone()}
	for _, c := range r.Consequents {
		idx, ok := e.consequentIndex[c.Variable]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: consequent variable %q", ErrUnknownTerm, c.Variable))
			continue
		}
		curve, ok := curves[idx][c.Label]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s[%s]", ErrUnknownTerm, c.Variable, c.Label))
			continue
		}
		compiled.targets = append(compiled.targets, target{consequent: idx, curve: curve})
	}
	return compiled, errs
}

func ruleID(i int, r Rule) string {
	if r.Name != "" {
		return fmt.Sprintf("%d (%s)", i+1, r.Name)
	}
	return fmt.Sprintf("%d", i+1)
}

// NewSession creates an empty session bound to this engine
func (e *Engine) NewSession() *Session {
	return newSession(e)
}

// Antecedents returns the input variable names in registration order
func (e *Engine) Antecedents() []string {
	return names(e.antecedents)
}

// Consequents returns the output variable names in registration order
func (e *Engine) Consequents() []string {
	return names(e.consequents)
}

// Antecedent returns the named input variable
func (e *Engine) Antecedent(name string) (*Variable, bool) {
	idx, ok := e.antecedentIndex[name]
	if !ok {
		return nil, false
	}
	return e.antecedents[idx], true
}

// Consequent returns the named output variable
func (e *Engine) Consequent(name string) (*Variable, bool) {
	idx, ok := e.consequentIndex[name]
	if !ok {
		return nil, false
	}
	return e.consequents[idx], true
}

// Rules returns a copy of the rules in evaluation order
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.rule.clone()
	}
	return out
}

// RuleCount returns the number of rules
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

func names(vars []*Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.name
	}
	return out
}
