/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dashboard.go
Description: HTML and JSON reports for fuzzy inference results. A report carries the membership
curves of every variable, the aggregated output sets and crisp values of a computed session,
the rule activations and any response surfaces, and renders them as an interactive page.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/kleascm/sems-fuzzy/pkg/surface"
	"github.com/sirupsen/logrus"
)

// Version is stamped into every report
const Version = "1.0.0"

// Report contains all data for report generation
type Report struct {
	Title       string           `json:"title"`
	GeneratedAt time.Time        `json:"generated_at"`
	Version     string           `json:"version"`
	SessionID   string           `json:"session_id"`
	Inputs      []Value          `json:"inputs,omitempty"`
	Variables   []VariableChart  `json:"variables"`
	Outputs     []OutputChart    `json:"outputs,omitempty"`
	Rules       []RuleActivation `json:"rules,omitempty"`
	Surfaces    []SurfaceChart   `json:"surfaces,omitempty"`

	units map[string]string
}

// Value is a named crisp value
type Value struct {
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
}

// Curve is one label's membership degrees over its variable's universe
type Curve struct {
	Label   string    `json:"label"`
	Shape   string    `json:"shape"`
	Degrees []float64 `json:"degrees"`
}

// VariableChart holds the membership curves of one variable
type VariableChart struct {
	Name   string    `json:"name"`
	Role   string    `json:"role"`
	Unit   string    `json:"unit,omitempty"`
	Points []float64 `json:"points"`
	Curves []Curve   `json:"curves"`
}

// OutputChart holds a consequent's aggregated set and crisp value
type OutputChart struct {
	Name       string    `json:"name"`
	Unit       string    `json:"unit,omitempty"`
	Points     []float64 `json:"points"`
	Curves     []Curve   `json:"curves"`
	Aggregated []float64 `json:"aggregated"`
	Crisp      float64   `json:"crisp"`
}

// RuleActivation is a rule with its firing strength
type RuleActivation struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Text     string  `json:"text"`
	Strength float64 `json:"strength"`
}

// SurfaceChart is one output of a response surface.
// Values[row][col] is nil where inference failed.
type SurfaceChart struct {
	Output   string       `json:"output"`
	X        string       `json:"x"`
	Y        string       `json:"y"`
	XValues  []float64    `json:"x_values"`
	YValues  []float64    `json:"y_values"`
	Values   [][]*float64 `json:"values"`
	Fixed    []Value      `json:"fixed"`
	Failures int          `json:"failures"`
	Min      float64      `json:"min"`
	Max      float64      `json:"max"`
}

// NewReport creates a report holding the membership curves of every engine variable.
// units maps variable names to display units and may be nil.
func NewReport(title string, engine *fuzzy.Engine, units map[string]string) (*Report, error) {
	r := &Report{
		Title:       title,
		GeneratedAt: time.Now(),
		Version:     Version,
		SessionID:   uuid.New().String(),
		units:       units,
	}

	for _, name := range engine.Antecedents() {
		v, _ := engine.Antecedent(name)
		chart, err := r.variableChart(v, "antecedent")
		if err != nil {
			return nil, err
		}
		r.Variables = append(r.Variables, chart)
	}
	for _, name := range engine.Consequents() {
		v, _ := engine.Consequent(name)
		chart, err := r.variableChart(v, "consequent")
		if err != nil {
			return nil, err
		}
		r.Variables = append(r.Variables, chart)
	}
	return r, nil
}

func (r *Report) variableChart(v *fuzzy.Variable, role string) (VariableChart, error) {
	chart := VariableChart{
		Name:   v.Name(),
		Role:   role,
		Unit:   r.units[v.Name()],
		Points: v.Universe().Points(),
	}
	for _, label := range v.Labels() {
		degrees, err := v.EvaluateAcrossUniverse(label)
		if err != nil {
			return VariableChart{}, err
		}
		mf, _ := v.Term(label)
		chart.Curves = append(chart.Curves, Curve{Label: label, Shape: mf.Shape(), Degrees: degrees})
	}
	return chart, nil
}

// AddSession records the inputs, aggregated sets, crisp outputs and rule activations of a
// computed session
func (r *Report) AddSession(s *fuzzy.Session) error {
	engine := s.Engine()
	firing, err := s.FiringStrengths()
	if err != nil {
		return err
	}

	r.Inputs = r.Inputs[:0]
	for _, name := range engine.Antecedents() {
		x, _ := s.Input(name)
		r.Inputs = append(r.Inputs, Value{Variable: name, Value: x, Unit: r.units[name]})
	}

	r.Outputs = r.Outputs[:0]
	for _, name := range engine.Consequents() {
		crisp, err := s.Output(name)
		if err != nil {
			return err
		}
		aggregated, err := s.Aggregated(name)
		if err != nil {
			return err
		}
		v, _ := engine.Consequent(name)
		chart, err := r.variableChart(v, "consequent")
		if err != nil {
			return err
		}
		r.Outputs = append(r.Outputs, OutputChart{
			Name:       name,
			Unit:       chart.Unit,
			Points:     chart.Points,
			Curves:     chart.Curves,
			Aggregated: aggregated,
			Crisp:      crisp,
		})
	}

	r.Rules = r.Rules[:0]
	for i, rule := range engine.Rules() {
		r.Rules = append(r.Rules, RuleActivation{
			Index:    i + 1,
			Name:     rule.Name,
			Text:     rule.String(),
			Strength: firing[i],
		})
	}
	return nil
}

// AddSurface records every output grid of a sweep
func (r *Report) AddSurface(s *surface.Surface) {
	fixed := make([]Value, 0, len(s.Fixed))
	for _, v := range r.Variables {
		if x, ok := s.Fixed[v.Name]; ok {
			fixed = append(fixed, Value{Variable: v.Name, Value: x, Unit: v.Unit})
		}
	}

	for _, output := range s.Outputs {
		grid := s.Values[output]
		values := make([][]*float64, len(grid))
		for row := range grid {
			values[row] = make([]*float64, len(grid[row]))
			for col, v := range grid[row] {
				if math.IsNaN(v) {
					continue
				}
				values[row][col] = &v
			}
		}
		lo, hi, _ := s.Bounds(output)
		r.Surfaces = append(r.Surfaces, SurfaceChart{
			Output:   output,
			X:        s.X.Variable,
			Y:        s.Y.Variable,
			XValues:  s.XValues,
			YValues:  s.YValues,
			Values:   values,
			Fixed:    fixed,
			Failures: s.Failures,
			Min:      lo,
			Max:      hi,
		})
	}
}

// FiredRules returns the activations with a positive firing strength
func (r *Report) FiredRules() []RuleActivation {
	var fired []RuleActivation
	for _, a := range r.Rules {
		if a.Strength > 0 {
			fired = append(fired, a)
		}
	}
	return fired
}

// Generator writes reports to an output directory
type Generator struct {
	outputDir string
	logger    *logrus.Logger
	templates *template.Template
	width     int64
	height    int64
}

// NewGenerator creates a new report generator
func NewGenerator(outputDir string, logger *logrus.Logger) *Generator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	funcs := template.FuncMap{
		"fmtValue": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"percent":  func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
	}
	return &Generator{
		outputDir: outputDir,
		logger:    logger,
		templates: template.Must(template.New("report").Funcs(funcs).Parse(reportTemplate)),
		width:     1400,
		height:    900,
	}
}

// GenerateHTML renders the report to <outputDir>/<name>.html and returns the path
func (g *Generator) GenerateHTML(r *Report, name string) (string, error) {
	path, file, err := g.create(name + ".html")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := g.templates.Execute(file, r); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"path":     path,
		"session":  r.SessionID,
		"surfaces": len(r.Surfaces),
	}).Info("Report written")
	return path, nil
}

// GenerateJSON writes the report data to <outputDir>/<name>.json and returns the path
func (g *Generator) GenerateJSON(r *Report, name string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path, file, err := g.create(name + ".json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	g.logger.WithField("path", path).Info("Report written")
	return path, file.Close()
}

func (g *Generator) create(filename string) (string, *os.File, error) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(g.outputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return path, file, nil
}
