/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rulebase.go
Description: Rule-base documents for the fuzzy inference engine. A rule base is a YAML file
listing antecedent and consequent variables with their labeled shapes, followed by an
ordered list of rules. Documents are decoded strictly and compiled into an immutable engine.
*/

package rulebase

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"gopkg.in/yaml.v3"
)

// Definition is a decoded rule-base document
type Definition struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Antecedents []VariableSpec `yaml:"antecedents"`
	Consequents []VariableSpec `yaml:"consequents"`
	Rules       []RuleSpec     `yaml:"rules"`
}

// VariableSpec describes one linguistic variable
type VariableSpec struct {
	Name     string       `yaml:"name"`
	Unit     string       `yaml:"unit,omitempty"`
	Universe UniverseSpec `yaml:"universe"`
	Terms    []TermSpec   `yaml:"terms"`
}

// UniverseSpec is either an evenly spaced range or an explicit list of points
type UniverseSpec struct {
	Min    float64   `yaml:"min"`
	Max    float64   `yaml:"max"`
	Step   float64   `yaml:"step"`
	Points []float64 `yaml:"points,omitempty"`
}

// TermSpec describes a labeled membership function.
// Shape is triangular, trapezoidal or max; max combines its parts.
type TermSpec struct {
	Label  string     `yaml:"label,omitempty"`
	Shape  string     `yaml:"shape"`
	Params []float64  `yaml:"params,omitempty"`
	Parts  []TermSpec `yaml:"parts,omitempty"`
}

// RuleSpec describes one rule. Exactly one of When and If must be set.
type RuleSpec struct {
	Name string    `yaml:"name,omitempty"`
	When Pairs     `yaml:"when,omitempty"`
	If   *ExprSpec `yaml:"if,omitempty"`
	Then Pairs     `yaml:"then"`
}

// ExprSpec is an antecedent tree node: a term (Var/Is), an All list or an Any list
type ExprSpec struct {
	Var string     `yaml:"var,omitempty"`
	Is  string     `yaml:"is,omitempty"`
	All []ExprSpec `yaml:"all,omitempty"`
	Any []ExprSpec `yaml:"any,omitempty"`
}

// Pair is a "variable: label" entry
type Pair struct {
	Variable string
	Label    string
}

// Pairs is a YAML mapping of variable to label that keeps document order
type Pairs []Pair

// UnmarshalYAML decodes a mapping node in document order
func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of variable to label", node.Line)
	}
	out := make(Pairs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: variable and label must be plain values", key.Line)
		}
		out = append(out, Pair{Variable: key.Value, Label: value.Value})
	}
	*p = out
	return nil
}

// MarshalYAML encodes the pairs as a mapping in order
func (p Pairs) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, pair := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Variable},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Label},
		)
	}
	return node, nil
}

// Parse decodes a rule-base document. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to decode rule base: %w", err)
	}
	return &def, nil
}

// Load reads and decodes a rule-base file
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule base: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Marshal encodes the definition as YAML
func (d *Definition) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode rule base: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build compiles the definition into an engine.
// Every problem in the document is reported in the returned error.
func (d *Definition) Build() (*fuzzy.Engine, error) {
	var errs []error
	builder := fuzzy.NewBuilder()

	for _, spec := range d.Antecedents {
		v, err := spec.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		builder.AddAntecedent(v)
	}
	for _, spec := range d.Consequents {
		v, err := spec.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		builder.AddConsequent(v)
	}
	for i, spec := range d.Rules {
		r, err := spec.build()
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", spec.id(i), err))
			continue
		}
		builder.AddRule(r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return builder.Build()
}

// Unit returns the declared unit of a variable, or "" if none
func (d *Definition) Unit(name string) string {
	for _, specs := range [][]VariableSpec{d.Antecedents, d.Consequents} {
		for _, s := range specs {
			if s.Name == name {
				return s.Unit
			}
		}
	}
	return ""
}

func (s VariableSpec) build() (*fuzzy.Variable, error) {
	universe, err := s.Universe.build()
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", s.Name, err)
	}
	v, err := fuzzy.NewVariable(s.Name, universe)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, term := range s.Terms {
		mf, err := term.build()
		if err != nil {
			errs = append(errs, fmt.Errorf("variable %q label %q: %w", s.Name, term.Label, err))
			continue
		}
		if err := v.RegisterLabel(term.Label, mf); err != nil {
			errs = append(errs, fmt.Errorf("variable %q: %w", s.Name, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return v, nil
}

func (u UniverseSpec) build() (*fuzzy.Universe, error) {
	if len(u.Points) > 0 {
		return fuzzy.NewUniverse(u.Points)
	}
	return fuzzy.Range(u.Min, u.Max, u.Step)
}

func (t TermSpec) build() (fuzzy.MembershipFunction, error) {
	switch t.Shape {
	case "triangular", "trimf":
		if len(t.Params) != 3 {
			return nil, fmt.Errorf("%w: triangular needs 3 params, got %d", fuzzy.ErrInvalidShape, len(t.Params))
		}
		return fuzzy.NewTriangular(t.Params[0], t.Params[1], t.Params[2])
	case "trapezoidal", "trapmf":
		if len(t.Params) != 4 {
			return nil, fmt.Errorf("%w: trapezoidal needs 4 params, got %d", fuzzy.ErrInvalidShape, len(t.Params))
		}
		return fuzzy.NewTrapezoidal(t.Params[0], t.Params[1], t.Params[2], t.Params[3])
	case "max":
		if len(t.Parts) < 2 {
			return nil, fmt.Errorf("%w: max needs at least 2 parts, got %d", fuzzy.ErrInvalidShape, len(t.Parts))
		}
		var mf fuzzy.MembershipFunction
		for i, part := range t.Parts {
			child, err := part.build()
			if err != nil {
				return nil, fmt.Errorf("part %d: %w", i+1, err)
			}
			if mf == nil {
				mf = child
				continue
			}
			mf = fuzzy.Max{Left: mf, Right: child}
		}
		return mf, nil
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", fuzzy.ErrInvalidShape, t.Shape)
	}
}

func (r RuleSpec) build() (fuzzy.Rule, error) {
	var antecedent fuzzy.Expression
	switch {
	case len(r.When) > 0 && r.If != nil:
		return fuzzy.Rule{}, fmt.Errorf("%w: use either when or if, not both", fuzzy.ErrInvalidRule)
	case len(r.When) > 0:
		if err := checkPairs(r.When); err != nil {
			return fuzzy.Rule{}, err
		}
		terms := make([]fuzzy.Expression, len(r.When))
		for i, p := range r.When {
			terms[i] = fuzzy.Is(p.Variable, p.Label)
		}
		antecedent = fuzzy.AllOf(terms[0], terms[1:]...)
	case r.If != nil:
		expr, err := r.If.build()
		if err != nil {
			return fuzzy.Rule{}, err
		}
		antecedent = expr
	default:
		return fuzzy.Rule{}, fmt.Errorf("%w: missing when/if", fuzzy.ErrInvalidRule)
	}

	if err := checkPairs(r.Then); err != nil {
		return fuzzy.Rule{}, err
	}
	consequents := make([]fuzzy.Assignment, len(r.Then))
	for i, p := range r.Then {
		consequents[i] = fuzzy.Then(p.Variable, p.Label)
	}
	return fuzzy.NewRule(r.Name, antecedent, consequents...), nil
}

func (r RuleSpec) id(i int) string {
	if r.Name != "" {
		return fmt.Sprintf("%d (%s)", i+1, r.Name)
	}
	return fmt.Sprintf("%d", i+1)
}

func (e ExprSpec) build() (fuzzy.Expression, error) {
	set := 0
	if e.Var != "" || e.Is != "" {
		set++
	}
	if len(e.All) > 0 {
		set++
	}
	if len(e.Any) > 0 {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: expression needs exactly one of var/is, all, any", fuzzy.ErrInvalidRule)
	}

	switch {
	case len(e.All) > 0:
		children, err := buildAll(e.All)
		if err != nil {
			return nil, err
		}
		return fuzzy.AllOf(children[0], children[1:]...), nil
	case len(e.Any) > 0:
		children, err := buildAll(e.Any)
		if err != nil {
			return nil, err
		}
		return fuzzy.AnyOf(children[0], children[1:]...), nil
	default:
		if e.Var == "" || e.Is == "" {
			return nil, fmt.Errorf("%w: term needs both var and is", fuzzy.ErrInvalidRule)
		}
		return fuzzy.Is(e.Var, e.Is), nil
	}
}

func buildAll(specs []ExprSpec) ([]fuzzy.Expression, error) {
	out := make([]fuzzy.Expression, len(specs))
	for i, s := range specs {
		expr, err := s.build()
		if err != nil {
			return nil, err
		}
		out[i] = expr
	}
	return out, nil
}

func checkPairs(pairs Pairs) error {
	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if seen[p.Variable] {
			return fmt.Errorf("%w: variable %q listed twice", fuzzy.ErrInvalidRule, p.Variable)
		}
		seen[p.Variable] = true
	}
	return nil
}
