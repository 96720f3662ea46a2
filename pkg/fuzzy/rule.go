/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rule.go
Description: Fuzzy rules. A rule pairs an antecedent expression with one or more
(consequent variable, label) assignments that are clipped at the rule's firing strength.
*/

package fuzzy

import (
	"fmt"
	"strings"
)

// Assignment is one "consequent is label" conclusion of a rule
type Assignment struct {
	Variable string
	Label    string
}

// Then builds an Assignment
func Then(variable, label string) Assignment {
	return Assignment{Variable: variable, Label: label}
}

func (a Assignment) String() string {
	return fmt.Sprintf("%s is %s", a.Variable, a.Label)
}

// Rule is an antecedent and the consequents it sets
type Rule struct {
	Name        string
	Antecedent  Expression
	Consequents []Assignment
}

// NewRule creates a rule
func NewRule(name string, antecedent Expression, consequents ...Assignment) Rule {
	return Rule{Name: name, Antecedent: antecedent, Consequents: consequents}
}

func (r Rule) String() string {
	parts := make([]string, len(r.Consequents))
	for i, c := range r.Consequents {
		parts[i] = c.String()
	}
	return fmt.Sprintf("IF %v THEN %s", r.Antecedent, strings.Join(parts, " AND "))
}

func (r Rule) clone() Rule {
	c := r
	c.Consequents = append([]Assignment(nil), r.Consequents...)
	return c
}
