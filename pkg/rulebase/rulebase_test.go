/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rulebase_test.go
Description: Tests for rule-base documents: strict decoding, shape and rule forms, error
reporting on build and round-tripping through YAML.
*/

package rulebase_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/kleascm/sems-fuzzy/pkg/rulebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fanDocument = `
name: fan
antecedents:
  - name: temperature
    unit: "°C"
    universe: {min: 0, max: 40, step: 1}
    terms:
      - {label: cold, shape: trapmf, params: [0, 0, 10, 20]}
      - {label: hot, shape: trimf, params: [20, 40, 40]}
  - name: hour
    universe: {points: [0, 6, 12, 18, 24]}
    terms:
      - {label: day, shape: triangular, params: [6, 12, 18]}
      - label: night
        shape: max
        parts:
          - {shape: trapezoidal, params: [0, 0, 4, 8]}
          - {shape: trapezoidal, params: [16, 20, 24, 24]}
consequents:
  - name: speed
    unit: rpm
    universe: {min: 0, max: 100, step: 10}
    terms:
      - {label: "off", shape: triangular, params: [0, 0, 0]}
      - {label: fast, shape: triangular, params: [50, 100, 100]}
rules:
  - name: night
    if: {var: hour, is: night}
    then: {speed: "off"}
  - name: hot-day
    when: {hour: day, temperature: hot}
    then: {speed: fast}
  - name: any
    if:
      any:
        - {var: temperature, is: cold}
        - all:
            - {var: hour, is: night}
            - {var: temperature, is: hot}
    then: {speed: "off"}
`

func TestParseAndBuild(t *testing.T) {
	def, err := rulebase.Parse([]byte(fanDocument))
	require.NoError(t, err)
	assert.Equal(t, "fan", def.Name)
	assert.Equal(t, "°C", def.Unit("temperature"))
	assert.Equal(t, "rpm", def.Unit("speed"))
	assert.Equal(t, "", def.Unit("humidity"))

	engine, err := def.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"temperature", "hour"}, engine.Antecedents())
	assert.Equal(t, []string{"speed"}, engine.Consequents())

	rules := engine.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "hour is night", rules[0].Antecedent.String())
	assert.Equal(t, "(hour is day AND temperature is hot)", rules[1].Antecedent.String())
	assert.Equal(t, "(temperature is cold OR (hour is night AND temperature is hot))", rules[2].Antecedent.String())
	assert.Equal(t, []fuzzy.Assignment{{Variable: "speed", Label: "off"}}, rules[0].Consequents)

	hour, ok := engine.Antecedent("hour")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 6, 12, 18, 24}, hour.Universe().Points())
	night, err := hour.EvaluateAcrossUniverse("night")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5, 0, 0.5, 1}, night)

	s := engine.NewSession()
	require.NoError(t, s.SetInputs(map[string]float64{"temperature": 35, "hour": 12}))
	require.NoError(t, s.Compute())
	speed, err := s.Output("speed")
	require.NoError(t, err)
	assert.Greater(t, speed, 60.0)
}

func TestWhenKeepsDocumentOrder(t *testing.T) {
	doc := `
name: order
antecedents: []
consequents: []
rules:
  - when: {zeta: a, alpha: b, mid: c}
    then: {out: x}
`
	def, err := rulebase.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, def.Rules, 1)
	assert.Equal(t, rulebase.Pairs{
		{Variable: "zeta", Label: "a"},
		{Variable: "alpha", Label: "b"},
		{Variable: "mid", Label: "c"},
	}, def.Rules[0].When)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := rulebase.Parse([]byte("name: x\nantecedents: []\nconsequents: []\nrulez: []\n"))
	assert.Error(t, err)

	_, err = rulebase.Parse([]byte("name: x\nrules:\n  - when: [temperature, hot]\n    then: {speed: fast}\n"))
	assert.Error(t, err)
}

func TestBuildReportsEveryProblem(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		kind     error
		contains []string
	}{
		{
			name: "unknown shape",
			doc: `
name: bad
antecedents:
  - name: t
    universe: {min: 0, max: 10, step: 1}
    terms:
      - {label: hot, shape: gaussian, params: [5, 1]}
consequents: []
rules: []
`,
			kind:     fuzzy.ErrInvalidShape,
			contains: []string{"gaussian", `"hot"`},
		},
		{
			name: "wrong parameter count",
			doc: `
name: bad
antecedents:
  - name: t
    universe: {min: 0, max: 10, step: 1}
    terms:
      - {label: hot, shape: triangular, params: [5, 10]}
      - {label: cold, shape: trapezoidal, params: [0, 0, 5]}
consequents: []
rules: []
`,
			kind:     fuzzy.ErrInvalidShape,
			contains: []string{"hot", "cold"},
		},
		{
			name: "duplicate label",
			doc: `
name: bad
antecedents:
  - name: t
    universe: {min: 0, max: 10, step: 1}
    terms:
      - {label: hot, shape: triangular, params: [5, 10, 10]}
      - {label: hot, shape: triangular, params: [6, 10, 10]}
consequents: []
rules: []
`,
			kind: fuzzy.ErrDuplicateLabel,
		},
		{
			name: "bad universe",
			doc: `
name: bad
antecedents:
  - name: t
    universe: {min: 10, max: 0, step: 1}
    terms: []
consequents: []
rules: []
`,
			kind:     fuzzy.ErrInvalidUniverse,
			contains: []string{`"t"`},
		},
		{
			name: "when and if together",
			doc: `
name: bad
antecedents: []
consequents: []
rules:
  - name: both
    when: {t: hot}
    if: {var: t, is: hot}
    then: {s: fast}
`,
			kind:     fuzzy.ErrInvalidRule,
			contains: []string{"both"},
		},
		{
			name: "missing antecedent",
			doc: `
name: bad
antecedents: []
consequents: []
rules:
  - then: {s: fast}
`,
			kind:     fuzzy.ErrInvalidRule,
			contains: []string{"rule 1"},
		},
		{
			name: "variable listed twice",
			doc: `
name: bad
antecedents: []
consequents: []
rules:
  - name: twice
    when: {t: hot, t: cold}
    then: {s: fast}
`,
			kind: fuzzy.ErrInvalidRule,
		},
		{
			name: "expression with two forms",
			doc: `
name: bad
antecedents: []
consequents: []
rules:
  - if: {var: t, is: hot, any: [{var: t, is: cold}]}
    then: {s: fast}
`,
			kind: fuzzy.ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := rulebase.Parse([]byte(tt.doc))
			if err != nil {
				// duplicate mapping keys are rejected by the decoder itself
				assert.Equal(t, "variable listed twice", tt.name)
				return
			}
			engine, err := def.Build()
			assert.Nil(t, engine)
			assert.ErrorIs(t, err, tt.kind)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestBuildReportsUnknownTerms(t *testing.T) {
	def, err := rulebase.Parse([]byte(fanDocument))
	require.NoError(t, err)
	def.Rules = append(def.Rules, rulebase.RuleSpec{
		Name: "typo",
		When: rulebase.Pairs{{Variable: "temperature", Label: "scorching"}},
		Then: rulebase.Pairs{{Variable: "speed", Label: "fast"}},
	})

	_, err = def.Build()
	assert.ErrorIs(t, err, fuzzy.ErrUnknownTerm)
	assert.Contains(t, err.Error(), "typo")
}

func TestMarshalRoundTrip(t *testing.T) {
	def, err := rulebase.Parse([]byte(fanDocument))
	require.NoError(t, err)

	data, err := def.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "hot-day")

	again, err := rulebase.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, def, again)

	engine, err := again.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, engine.RuleCount())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fanDocument), 0644))

	def, err := rulebase.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fan", def.Name)

	_, err = rulebase.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("name: [unterminated"), 0644))
	_, err = rulebase.Load(broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), broken)
}
