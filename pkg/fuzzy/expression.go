/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: expression.go
Description: Rule antecedent expressions. An expression is a small immutable tree of AND/OR
nodes over (variable, label) terms, evaluated with Zadeh min/max against fuzzified inputs.
*/

package fuzzy

import (
	"fmt"
	"math"
)

// Fuzzified holds membership degrees per variable and label
type Fuzzified map[string]map[string]float64

// Expression is a rule antecedent: a Term, an And or an Or.
// The set of implementations is closed to this package.
type Expression interface {
	// Evaluate returns the degree to which the expression holds
	Evaluate(in Fuzzified) (float64, error)
	String() string
	walk(visit func(Term))
}

// Term is a single "variable is label" proposition
type Term struct {
	Variable string
	Label    string
}

// Is builds a Term
func Is(variable, label string) Term {
	return Term{Variable: variable, Label: label}
}

// Evaluate looks up the fuzzified degree of the term
func (t Term) Evaluate(in Fuzzified) (float64, error) {
	degrees, ok := in[t.Variable]
	if !ok {
		return 0, fmt.Errorf("%w: variable %q", ErrUnknownTerm, t.Variable)
	}
	d, ok := degrees[t.Label]
	if !ok {
		return 0, fmt.Errorf("%w: %s[%s]", ErrUnknownTerm, t.Variable, t.Label)
	}
	return d, nil
}

func (t Term) String() string {
	return fmt.Sprintf("%s is %s", t.Variable, t.Label)
}

func (t Term) walk(visit func(Term)) {
	visit(t)
}

// And is the Zadeh intersection (minimum) of two expressions
type And struct {
	Left, Right Expression
}

// Evaluate returns min(Left, Right)
func (a And) Evaluate(in Fuzzified) (float64, error) {
	l, r, err := evaluatePair(a.Left, a.Right, in)
	if err != nil {
		return 0, err
	}
	return math.Min(l, r), nil
}

func (a And) String() string {
	return fmt.Sprintf("(%v AND %v)", a.Left, a.Right)
}

func (a And) walk(visit func(Term)) {
	walkPair(a.Left, a.Right, visit)
}

// Or is the Zadeh union (maximum) of two expressions
type Or struct {
	Left, Right Expression
}

// Evaluate returns max(Left, Right)
func (o Or) Evaluate(in Fuzzified) (float64, error) {
	l, r, err := evaluatePair(o.Left, o.Right, in)
	if err != nil {
		return 0, err
	}
	return math.Max(l, r), nil
}

func (o Or) String() string {
	return fmt.Sprintf("(%v OR %v)", o.Left, o.Right)
}

func (o Or) walk(visit func(Term)) {
	walkPair(o.Left, o.Right, visit)
}

// AllOf folds the expressions left to right into a chain of And nodes
func AllOf(first Expression, rest ...Expression) Expression {
	expr := first
	for _, e := range rest {
		expr = And{Left: expr, Right: e}
	}
	return expr
}

// AnyOf folds the expressions left to right into a chain of Or nodes
func AnyOf(first Expression, rest ...Expression) Expression {
	expr := first
	for _, e := range rest {
		expr = Or{Left: expr, Right: e}
	}
	return expr
}

// TermsOf returns every term of the expression in left-to-right order
func TermsOf(expr Expression) []Term {
	var terms []Term
	if expr != nil {
		expr.walk(func(t Term) { terms = append(terms, t) })
	}
	return terms
}

func evaluatePair(left, right Expression, in Fuzzified) (float64, float64, error) {
	if left == nil || right == nil {
		return 0, 0, fmt.Errorf("%w: incomplete expression", ErrInvalidRule)
	}
	l, err := left.Evaluate(in)
	if err != nil {
		return 0, 0, err
	}
	r, err := right.Evaluate(in)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

func walkPair(left, right Expression, visit func(Term)) {
	if left != nil {
		left.walk(visit)
	}
	if right != nil {
		right.walk(visit)
	}
}

// complete reports whether every node of the tree has both children
func complete(expr Expression) bool {
	switch e := expr.(type) {
	case nil:
		return false
	case Term:
		return true
	case And:
		return complete(e.Left) && complete(e.Right)
	case Or:
		return complete(e.Left) && complete(e.Right)
	default:
		return false
	}
}
