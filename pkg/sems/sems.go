/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sems.go
Description: Smart Energy Management System configuration. Loads the embedded rule base that
maps temperature, time of day, outdoor light and room size to a recommended cooling capacity
and indoor light intensity, and exposes the accepted input ranges for collectors.
*/

package sems

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/kleascm/sems-fuzzy/pkg/rulebase"
)

// Variable names
const (
	Temperature     = "temperature"
	TimeOfDay       = "timeOfDay"
	OutdoorLight    = "outdoorLight"
	RoomSize        = "roomSize"
	CoolingCapacity = "coolingCapacity"
	IndoorLight     = "indoorLight"
)

//go:embed sems.yaml
var document []byte

var (
	once    sync.Once
	engine  *fuzzy.Engine
	def     *rulebase.Definition
	loadErr error
)

// Document returns the raw embedded rule-base YAML
func Document() []byte {
	out := make([]byte, len(document))
	copy(out, document)
	return out
}

// Definition returns the decoded embedded rule base
func Definition() (*rulebase.Definition, error) {
	load()
	return def, loadErr
}

// New returns the engine built from the embedded rule base.
// The engine is built once and shared; it is immutable and safe for concurrent sessions.
func New() (*fuzzy.Engine, error) {
	load()
	return engine, loadErr
}

func load() {
	once.Do(func() {
		parsed, err := rulebase.Parse(document)
		if err != nil {
			loadErr = fmt.Errorf("embedded rule base: %w", err)
			return
		}
		built, err := parsed.Build()
		if err != nil {
			loadErr = fmt.Errorf("embedded rule base: %w", err)
			return
		}
		def, engine = parsed, built
	})
}

// InputRange is the accepted range of one input, as offered to users
type InputRange struct {
	Name   string
	Prompt string
	Unit   string
	Min    float64
	Max    float64
}

// Contains reports whether x is within the range
func (r InputRange) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

func (r InputRange) String() string {
	return fmt.Sprintf("%s (%g-%g %s)", r.Prompt, r.Min, r.Max, r.Unit)
}

// InputRanges returns the four inputs in prompt order
func InputRanges() []InputRange {
	return []InputRange{
		{Name: Temperature, Prompt: "Temperature", Unit: "°C", Min: 20, Max: 40},
		{Name: TimeOfDay, Prompt: "Time of day", Unit: "hours", Min: 0, Max: 24},
		{Name: OutdoorLight, Prompt: "Outdoor light intensity", Unit: "klux", Min: 0, Max: 100},
		{Name: RoomSize, Prompt: "Room size", Unit: "square meters", Min: 0, Max: 500},
	}
}

// Outputs returns the output variable names in display order
func Outputs() []string {
	return []string{CoolingCapacity, IndoorLight}
}
