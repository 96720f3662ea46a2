/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sems_test.go
Description: End-to-end tests for the embedded SEMS rule base. Checks the table shape and the
recommended cooling capacity and light intensity for known room conditions.
*/

package sems_test

import (
	"testing"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/kleascm/sems-fuzzy/pkg/sems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedRuleBase(t *testing.T) {
	engine, err := sems.New()
	require.NoError(t, err)

	assert.Equal(t, []string{sems.Temperature, sems.TimeOfDay, sems.OutdoorLight, sems.RoomSize}, engine.Antecedents())
	assert.Equal(t, sems.Outputs(), engine.Consequents())
	assert.Equal(t, 49, engine.RuleCount())

	rules := engine.Rules()
	assert.Equal(t, "night-override", rules[0].Name)
	assert.Equal(t, "timeOfDay is nighttime", rules[0].Antecedent.String())

	again, err := sems.New()
	require.NoError(t, err)
	assert.Same(t, engine, again)

	def, err := sems.Definition()
	require.NoError(t, err)
	assert.Equal(t, "sems", def.Name)
	assert.Equal(t, "kW", def.Unit(sems.CoolingCapacity))
	assert.Equal(t, "lux", def.Unit(sems.IndoorLight))
}

func TestOffLabelsAreStrings(t *testing.T) {
	engine, err := sems.New()
	require.NoError(t, err)

	for _, name := range sems.Outputs() {
		v, ok := engine.Consequent(name)
		require.True(t, ok)
		assert.True(t, v.HasLabel("off"), name)
	}
}

func TestScenarios(t *testing.T) {
	engine, err := sems.New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		inputs map[string]float64
		check  func(t *testing.T, cooling, light float64)
	}{
		{
			name:   "night turns everything off",
			inputs: map[string]float64{sems.Temperature: 30, sems.TimeOfDay: 22, sems.OutdoorLight: 50, sems.RoomSize: 200},
			check: func(t *testing.T, cooling, light float64) {
				assert.InDelta(t, 0.0, cooling, 0.005)
				assert.InDelta(t, 0.0, light, 0.005)
			},
		},
		{
			name:   "hot dark large room in the afternoon",
			inputs: map[string]float64{sems.Temperature: 32, sems.TimeOfDay: 14, sems.OutdoorLight: 20, sems.RoomSize: 450},
			check: func(t *testing.T, cooling, light float64) {
				assert.Greater(t, cooling, 7.5)
				assert.Greater(t, light, 700.0)
			},
		},
		{
			name:   "cool bright small room at noon",
			inputs: map[string]float64{sems.Temperature: 22, sems.TimeOfDay: 12, sems.OutdoorLight: 90, sems.RoomSize: 40},
			check: func(t *testing.T, cooling, light float64) {
				assert.Greater(t, cooling, 0.5)
				assert.Less(t, cooling, 3.0)
				assert.InDelta(t, 0.0, light, 0.005)
			},
		},
		{
			name:   "inputs outside the accepted range are clamped",
			inputs: map[string]float64{sems.Temperature: 45, sems.TimeOfDay: 30, sems.OutdoorLight: -10, sems.RoomSize: 900},
			check: func(t *testing.T, cooling, light float64) {
				// clamped to 40 degrees at hour 24, which is night
				assert.InDelta(t, 0.0, cooling, 0.005)
				assert.InDelta(t, 0.0, light, 0.005)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := engine.NewSession()
			require.NoError(t, s.SetInputs(tt.inputs))
			require.NoError(t, s.Compute())

			cooling, err := s.Output(sems.CoolingCapacity)
			require.NoError(t, err)
			light, err := s.Output(sems.IndoorLight)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, cooling, 0.0)
			assert.LessOrEqual(t, cooling, 10.0)
			assert.GreaterOrEqual(t, light, 0.0)
			assert.LessOrEqual(t, light, 1000.0)
			tt.check(t, cooling, light)
		})
	}
}

func TestMissingInputNamesVariable(t *testing.T) {
	engine, err := sems.New()
	require.NoError(t, err)

	s := engine.NewSession()
	require.NoError(t, s.SetInputs(map[string]float64{sems.Temperature: 30, sems.TimeOfDay: 14, sems.OutdoorLight: 50}))
	err = s.Compute()
	assert.ErrorIs(t, err, fuzzy.ErrMissingInput)
	assert.Contains(t, err.Error(), sems.RoomSize)
}

func TestInputRanges(t *testing.T) {
	ranges := sems.InputRanges()
	require.Len(t, ranges, 4)

	engine, err := sems.New()
	require.NoError(t, err)

	for _, r := range ranges {
		v, ok := engine.Antecedent(r.Name)
		require.True(t, ok, r.Name)
		assert.Equal(t, v.Universe().Min(), r.Min, r.Name)
		assert.Equal(t, v.Universe().Max(), r.Max, r.Name)
		assert.True(t, r.Contains(r.Min))
		assert.False(t, r.Contains(r.Max+1))
	}
	assert.Equal(t, "Temperature (20-40 °C)", ranges[0].String())
}

func TestDocumentIsCopied(t *testing.T) {
	doc := sems.Document()
	require.NotEmpty(t, doc)
	doc[0] = 'X'
	assert.NotEqual(t, byte('X'), sems.Document()[0])
}
