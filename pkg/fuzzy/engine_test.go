/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for engine construction. Covers reference validation at build time,
error aggregation, immutability of built variables and rule ordering.
*/

package fuzzy_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testVariables returns fresh variables for a reduced cooling controller
func testVariables(t *testing.T) (temperature, timeOfDay, cooling, light *fuzzy.Variable) {
	t.Helper()
	temperature = newTemperature(t)

	hours, err := fuzzy.Range(0, 24, 1)
	require.NoError(t, err)
	timeOfDay, err = fuzzy.NewVariable("timeOfDay", hours)
	require.NoError(t, err)
	require.NoError(t, timeOfDay.RegisterLabel("daytime", fuzzy.Trapezoidal{A: 7, B: 10, C: 17, D: 19}))
	require.NoError(t, timeOfDay.RegisterLabel("nighttime", fuzzy.Max{
		Left:  fuzzy.Trapezoidal{A: 0, B: 0, C: 6, D: 10},
		Right: fuzzy.Trapezoidal{A: 18, B: 20, C: 24, D: 24},
	}))

	kw, err := fuzzy.Range(0, 10, 0.1)
	require.NoError(t, err)
	cooling, err = fuzzy.NewVariable("cooling", kw)
	require.NoError(t, err)
	require.NoError(t, cooling.RegisterLabel("off", fuzzy.Triangular{A: 0, B: 0, C: 0}))
	require.NoError(t, cooling.RegisterLabel("low", fuzzy.Trapezoidal{A: 0, B: 0.1, C: 2, D: 3.5}))
	require.NoError(t, cooling.RegisterLabel("medium", fuzzy.Triangular{A: 3, B: 5, C: 7}))
	require.NoError(t, cooling.RegisterLabel("high", fuzzy.Triangular{A: 6.5, B: 8, C: 9.5}))

	lux, err := fuzzy.Range(0, 1000, 10)
	require.NoError(t, err)
	light, err = fuzzy.NewVariable("light", lux)
	require.NoError(t, err)
	require.NoError(t, light.RegisterLabel("off", fuzzy.Triangular{A: 0, B: 0, C: 0}))
	require.NoError(t, light.RegisterLabel("medium", fuzzy.Triangular{A: 300, B: 500, C: 700}))
	require.NoError(t, light.RegisterLabel("high", fuzzy.Trapezoidal{A: 600, B: 800, C: 1000, D: 1000}))
	return temperature, timeOfDay, cooling, light
}

func testRules() []fuzzy.Rule {
	day := fuzzy.Is("timeOfDay", "daytime")
	return []fuzzy.Rule{
		fuzzy.NewRule("night", fuzzy.Is("timeOfDay", "nighttime"),
			fuzzy.Then("cooling", "off"), fuzzy.Then("light", "off")),
		fuzzy.NewRule("cool-day", fuzzy.AllOf(fuzzy.Is("temperature", "cool"), day),
			fuzzy.Then("cooling", "low"), fuzzy.Then("light", "medium")),
		fuzzy.NewRule("comfortable-day", fuzzy.AllOf(fuzzy.Is("temperature", "comfortable"), day),
			fuzzy.Then("cooling", "low"), fuzzy.Then("light", "medium")),
		fuzzy.NewRule("warm-day", fuzzy.AllOf(fuzzy.Is("temperature", "warm"), day),
			fuzzy.Then("cooling", "medium"), fuzzy.Then("light", "high")),
		fuzzy.NewRule("hot-day", fuzzy.AllOf(fuzzy.Is("temperature", "hot"), day),
			fuzzy.Then("cooling", "high"), fuzzy.Then("light", "high")),
	}
}

func buildTestEngine(t *testing.T, rules []fuzzy.Rule) *fuzzy.Engine {
	t.Helper()
	temperature, timeOfDay, cooling, light := testVariables(t)
	engine, err := fuzzy.NewBuilder().
		AddAntecedent(temperature, timeOfDay).
		AddConsequent(cooling, light).
		AddRule(rules...).
		Build()
	require.NoError(t, err)
	return engine
}

func TestEngineBuild(t *testing.T) {
	engine := buildTestEngine(t, testRules())

	assert.Equal(t, []string{"temperature", "timeOfDay"}, engine.Antecedents())
	assert.Equal(t, []string{"cooling", "light"}, engine.Consequents())
	assert.Equal(t, 5, engine.RuleCount())

	rules := engine.Rules()
	require.Len(t, rules, 5)
	assert.Equal(t, "night", rules[0].Name)
	assert.Equal(t, "hot-day", rules[4].Name)

	rules[0].Consequents[0].Label = "tampered"
	assert.Equal(t, "off", engine.Rules()[0].Consequents[0].Label)

	v, ok := engine.Antecedent("temperature")
	require.True(t, ok)
	assert.Equal(t, 4, len(v.Labels()))
	_, ok = engine.Antecedent("cooling")
	assert.False(t, ok)
	_, ok = engine.Consequent("cooling")
	assert.True(t, ok)
}

func TestEngineRejectsUnknownTerms(t *testing.T) {
	temperature, timeOfDay, cooling, light := testVariables(t)

	_, err := fuzzy.NewBuilder().
		AddAntecedent(temperature, timeOfDay).
		AddConsequent(cooling, light).
		AddRule(
			fuzzy.NewRule("bad-label", fuzzy.Is("temperature", "freezing"), fuzzy.Then("cooling", "off")),
			fuzzy.NewRule("bad-variable", fuzzy.Is("humidity", "high"), fuzzy.Then("cooling", "off")),
			fuzzy.NewRule("bad-output", fuzzy.Is("temperature", "hot"), fuzzy.Then("cooling", "maximum")),
			fuzzy.NewRule("output-as-input", fuzzy.Is("cooling", "off"), fuzzy.Then("light", "off")),
			fuzzy.NewRule("input-as-output", fuzzy.Is("temperature", "hot"), fuzzy.Then("temperature", "cool")),
		).
		Build()

	require.Error(t, err)
	assert.ErrorIs(t, err, fuzzy.ErrUnknownTerm)
	for _, name := range []string{"bad-label", "bad-variable", "bad-output", "output-as-input", "input-as-output"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestEngineRejectsStructuralErrors(t *testing.T) {
	temperature, timeOfDay, cooling, _ := testVariables(t)

	tests := []struct {
		name    string
		builder *fuzzy.Builder
		kind    error
	}{
		{
			name: "duplicate variable",
			builder: fuzzy.NewBuilder().
				AddAntecedent(temperature, temperature).
				AddConsequent(cooling),
			kind: fuzzy.ErrDuplicateVariable,
		},
		{
			name: "name shared by input and output",
			builder: fuzzy.NewBuilder().
				AddAntecedent(cooling).
				AddConsequent(cooling),
			kind: fuzzy.ErrDuplicateVariable,
		},
		{
			name:    "no consequents",
			builder: fuzzy.NewBuilder().AddAntecedent(temperature),
			kind:    fuzzy.ErrInvalidRule,
		},
		{
			name: "nil antecedent expression",
			builder: fuzzy.NewBuilder().
				AddAntecedent(temperature).
				AddConsequent(cooling).
				AddRule(fuzzy.NewRule("empty", nil, fuzzy.Then("cooling", "off"))),
			kind: fuzzy.ErrInvalidRule,
		},
		{
			name: "incomplete tree",
			builder: fuzzy.NewBuilder().
				AddAntecedent(temperature, timeOfDay).
				AddConsequent(cooling).
				AddRule(fuzzy.NewRule("half", fuzzy.And{Left: fuzzy.Is("temperature", "hot")}, fuzzy.Then("cooling", "off"))),
			kind: fuzzy.ErrInvalidRule,
		},
		{
			name: "rule without consequents",
			builder: fuzzy.NewBuilder().
				AddAntecedent(temperature).
				AddConsequent(cooling).
				AddRule(fuzzy.NewRule("dangling", fuzzy.Is("temperature", "hot"))),
			kind: fuzzy.ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := tt.builder.Build()
			assert.Nil(t, engine)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestEngineVariablesAreIsolated(t *testing.T) {
	temperature, timeOfDay, cooling, light := testVariables(t)
	engine, err := fuzzy.NewBuilder().
		AddAntecedent(temperature, timeOfDay).
		AddConsequent(cooling, light).
		AddRule(testRules()...).
		Build()
	require.NoError(t, err)

	require.NoError(t, temperature.RegisterLabel("scorching", fuzzy.Triangular{A: 38, B: 40, C: 40}))
	built, ok := engine.Antecedent("temperature")
	require.True(t, ok)
	assert.False(t, built.HasLabel("scorching"))

	err = built.RegisterLabel("frigid", fuzzy.Triangular{A: 20, B: 20, C: 21})
	assert.ErrorIs(t, err, fuzzy.ErrImmutable)
}

func TestIsEngineError(t *testing.T) {
	assert.True(t, fuzzy.IsEngineError(fuzzy.ErrMissingInput))
	assert.True(t, fuzzy.IsEngineError(fmt.Errorf("wrapped: %w", fuzzy.ErrNotComputed)))
	assert.True(t, fuzzy.IsEngineError(errors.Join(errors.New("other"), fuzzy.ErrUnknownTerm)))
	assert.False(t, fuzzy.IsEngineError(errors.New("disk on fire")))
	assert.False(t, fuzzy.IsEngineError(nil))
}
