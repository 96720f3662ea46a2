/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: session_test.go
Description: Tests for inference sessions. Covers the input/compute/output state machine,
clamping, centroid fallbacks, order independence of aggregation, buffer reuse and
concurrent sessions over one shared engine.
*/

package fuzzy_test

import (
	"math"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testInputSets = []map[string]float64{
	{"temperature": 32, "timeOfDay": 14},
	{"temperature": 22, "timeOfDay": 22},
	{"temperature": 27.5, "timeOfDay": 8.5},
	{"temperature": 36, "timeOfDay": 18},
	{"temperature": 20, "timeOfDay": 0},
	{"temperature": 40, "timeOfDay": 9.2},
}

func TestSessionStateMachine(t *testing.T) {
	s := buildTestEngine(t, testRules()).NewSession()
	assert.Equal(t, fuzzy.StateEmpty, s.State())

	_, err := s.Output("cooling")
	assert.ErrorIs(t, err, fuzzy.ErrNotComputed)

	require.NoError(t, s.SetInput("temperature", 30))
	assert.Equal(t, fuzzy.StateInputsPartial, s.State())

	err = s.Compute()
	assert.ErrorIs(t, err, fuzzy.ErrMissingInput)
	assert.Contains(t, err.Error(), "timeOfDay")
	assert.NotContains(t, err.Error(), "temperature")

	require.NoError(t, s.SetInput("timeOfDay", 14))
	assert.Equal(t, fuzzy.StateInputsComplete, s.State())

	_, err = s.Output("cooling")
	assert.ErrorIs(t, err, fuzzy.ErrNotComputed)

	require.NoError(t, s.Compute())
	assert.Equal(t, fuzzy.StateComputed, s.State())

	_, err = s.Output("cooling")
	assert.NoError(t, err)
	_, err = s.Output("temperature")
	assert.ErrorIs(t, err, fuzzy.ErrUnknownVariable)

	// new input invalidates outputs until the next compute
	require.NoError(t, s.SetInput("temperature", 35))
	assert.Equal(t, fuzzy.StateInputsComplete, s.State())
	_, err = s.Output("cooling")
	assert.ErrorIs(t, err, fuzzy.ErrNotComputed)
	_, err = s.Outputs()
	assert.ErrorIs(t, err, fuzzy.ErrNotComputed)

	require.NoError(t, s.Compute())
	assert.Equal(t, fuzzy.StateComputed, s.State())

	s.Reset()
	assert.Equal(t, fuzzy.StateEmpty, s.State())
	assert.ErrorIs(t, s.Compute(), fuzzy.ErrMissingInput)
}

func TestSessionInputErrors(t *testing.T) {
	s := buildTestEngine(t, testRules()).NewSession()

	assert.ErrorIs(t, s.SetInput("humidity", 50), fuzzy.ErrUnknownVariable)
	assert.ErrorIs(t, s.SetInput("cooling", 5), fuzzy.ErrUnknownVariable)
	assert.ErrorIs(t, s.SetInput("temperature", math.NaN()), fuzzy.ErrInvalidInput)
	assert.Equal(t, fuzzy.StateEmpty, s.State())

	err := s.SetInputs(map[string]float64{"temperature": 30, "humidity": 10})
	assert.ErrorIs(t, err, fuzzy.ErrUnknownVariable)
	_, ok := s.Input("temperature")
	assert.False(t, ok, "no value is stored when any name is invalid")
}

func TestSessionClampsInputs(t *testing.T) {
	s := buildTestEngine(t, testRules()).NewSession()

	require.NoError(t, s.SetInput("temperature", 55))
	v, ok := s.Input("temperature")
	require.True(t, ok)
	assert.Equal(t, 40.0, v)

	require.NoError(t, s.SetInput("temperature", -3))
	v, _ = s.Input("temperature")
	assert.Equal(t, 20.0, v)

	require.NoError(t, s.SetInput("timeOfDay", 24.0000001))
	v, _ = s.Input("timeOfDay")
	assert.Equal(t, 24.0, v)
}

func TestNighttimeSingletonDominates(t *testing.T) {
	s := buildTestEngine(t, testRules()).NewSession()
	require.NoError(t, s.SetInputs(map[string]float64{"temperature": 30, "timeOfDay": 22}))
	require.NoError(t, s.Compute())

	firing, err := s.FiringStrengths()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 0, 0}, firing)

	cooling, err := s.Output("cooling")
	require.NoError(t, err)
	assert.Equal(t, 0.0, cooling)

	light, err := s.Output("light")
	require.NoError(t, err)
	assert.Equal(t, 0.0, light)

	agg, err := s.Aggregated("cooling")
	require.NoError(t, err)
	assert.Equal(t, 1.0, agg[0])
	for _, a := range agg[1:] {
		assert.Equal(t, 0.0, a)
	}
}

func TestCentroidMidpointFallback(t *testing.T) {
	temperature, timeOfDay, cooling, light := testVariables(t)

	levels, err := fuzzy.Range(0, 10, 1)
	require.NoError(t, err)
	fan, err := fuzzy.NewVariable("fan", levels)
	require.NoError(t, err)
	require.NoError(t, fan.RegisterLabel("fast", fuzzy.Triangular{A: 5, B: 10, C: 10}))

	engine, err := fuzzy.NewBuilder().
		AddAntecedent(temperature, timeOfDay).
		AddConsequent(cooling, light, fan).
		AddRule(testRules()...).
		Build()
	require.NoError(t, err)

	s := engine.NewSession()
	require.NoError(t, s.SetInputs(map[string]float64{"temperature": 32, "timeOfDay": 14}))
	require.NoError(t, s.Compute())

	agg, err := s.Aggregated("fan")
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 11), agg)

	out, err := s.Output("fan")
	require.NoError(t, err)
	assert.Equal(t, 5.0, out)
}

func TestCentroidFallbackWhenNothingFires(t *testing.T) {
	// 22 degrees is not hot, so the only rule fires at strength 0
	rules := []fuzzy.Rule{
		fuzzy.NewRule("hot-day", fuzzy.AllOf(fuzzy.Is("temperature", "hot"), fuzzy.Is("timeOfDay", "daytime")),
			fuzzy.Then("cooling", "high")),
	}
	s := buildTestEngine(t, rules).NewSession()
	require.NoError(t, s.SetInputs(map[string]float64{"temperature": 22, "timeOfDay": 14}))
	require.NoError(t, s.Compute())

	cooling, err := s.Output("cooling")
	require.NoError(t, err)
	assert.Equal(t, 5.0, cooling)

	light, err := s.Output("light")
	require.NoError(t, err)
	assert.Equal(t, 500.0, light)
}

func TestDaytimeWarmScenario(t *testing.T) {
	s := buildTestEngine(t, testRules()).NewSession()
	require.NoError(t, s.SetInputs(map[string]float64{"temperature": 32, "timeOfDay": 14}))
	require.NoError(t, s.Compute())

	firing, err := s.FiringStrengths()
	require.NoError(t, err)
	assert.Equal(t, 0.0, firing[0])
	assert.InDelta(t, 0.6, firing[3], 1e-12)
	assert.InDelta(t, 0.4, firing[4], 1e-12)

	cooling, err := s.Output("cooling")
	require.NoError(t, err)
	assert.Greater(t, cooling, 5.0)
	assert.Less(t, cooling, 8.0)

	light, err := s.Output("light")
	require.NoError(t, err)
	assert.Greater(t, light, 750.0)
}

func TestComputeIsIdempotent(t *testing.T) {
	s := buildTestEngine(t, testRules()).NewSession()
	require.NoError(t, s.SetInputs(testInputSets[2]))

	require.NoError(t, s.Compute())
	first, err := s.Outputs()
	require.NoError(t, err)
	firstAgg, err := s.Aggregated("cooling")
	require.NoError(t, err)

	require.NoError(t, s.Compute())
	second, err := s.Outputs()
	require.NoError(t, err)
	secondAgg, err := s.Aggregated("cooling")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstAgg, secondAgg)
}

func TestAggregationIsOrderIndependent(t *testing.T) {
	rules := testRules()
	reference := buildTestEngine(t, rules)
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 10; round++ {
		shuffled := append([]fuzzy.Rule(nil), rules...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		permuted := buildTestEngine(t, shuffled)

		for _, inputs := range testInputSets {
			want := computeAll(t, reference.NewSession(), inputs)
			got := computeAll(t, permuted.NewSession(), inputs)
			assert.Equal(t, want, got, "round %d inputs %v", round, inputs)
		}
	}
}

func TestSessionReuseDoesNotLeakState(t *testing.T) {
	engine := buildTestEngine(t, testRules())
	reused := engine.NewSession()

	for _, inputs := range testInputSets {
		got := computeAll(t, reused, inputs)
		want := computeAll(t, engine.NewSession(), inputs)
		assert.Equal(t, want, got, "inputs %v", inputs)
	}
}

func TestConcurrentSessions(t *testing.T) {
	engine := buildTestEngine(t, testRules())

	want := make([]result, len(testInputSets))
	for i, inputs := range testInputSets {
		want[i] = computeAll(t, engine.NewSession(), inputs)
	}

	var wg sync.WaitGroup
	got := make([][]result, 8)
	for w := range got {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			s := engine.NewSession()
			for _, inputs := range testInputSets {
				got[w] = append(got[w], computeAllNoAssert(s, inputs))
			}
		}(w)
	}
	wg.Wait()

	for w := range got {
		assert.Equal(t, want, got[w], "worker %d", w)
	}
}

type result struct {
	Outputs    map[string]float64
	Aggregated map[string][]float64
	Firing     []float64
}

func computeAll(t *testing.T, s *fuzzy.Session, inputs map[string]float64) result {
	t.Helper()
	require.NoError(t, s.SetInputs(inputs))
	require.NoError(t, s.Compute())
	return computeAllNoAssert(s, inputs)
}

// computeAllNoAssert is safe to call from goroutines other than the test's
func computeAllNoAssert(s *fuzzy.Session, inputs map[string]float64) result {
	if err := s.SetInputs(inputs); err != nil {
		return result{}
	}
	if err := s.Compute(); err != nil {
		return result{}
	}
	r := result{Aggregated: make(map[string][]float64)}
	r.Outputs, _ = s.Outputs()
	for _, name := range s.Engine().Consequents() {
		r.Aggregated[name], _ = s.Aggregated(name)
	}
	// firing order follows rule order, so compare the sorted multiset
	r.Firing, _ = s.FiringStrengths()
	slices.Sort(r.Firing)
	return r
}
