/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the SEMS commands. Provides configuration loading, logging
setup, rule-base loading and the input handling used across all command implementations.
*/

package commands

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/kleascm/sems-fuzzy/pkg/logging"
	"github.com/kleascm/sems-fuzzy/pkg/reporting"
	"github.com/kleascm/sems-fuzzy/pkg/rulebase"
	"github.com/kleascm/sems-fuzzy/pkg/sems"
	"github.com/kleascm/sems-fuzzy/pkg/surface"
	"github.com/spf13/viper"
)

// embeddedSource names the built-in SEMS rule base in logs and results
const embeddedSource = "embedded"

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("SEMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}

// SetupLogging configures the logging system
func SetupLogging() (*logging.Logger, error) {
	config := logging.DefaultConfig()
	config.Level = logging.LogLevel(viper.GetString("log_level"))
	config.Format = logging.LogFormat(viper.GetString("log_format"))
	config.OutputDir = viper.GetString("log_dir")
	config.MaxFiles = viper.GetInt("log_max_files")
	config.Compress = viper.GetBool("log_compress")

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// workspace is everything a command needs to run inference and write results
type workspace struct {
	logger *logging.Logger
	engine *fuzzy.Engine
	source string
	units  map[string]string
	ranges []sems.InputRange

	outputDir    string
	title        string
	reportFormat string
	screenshot   bool
	steps        int
	workers      int
}

// setup loads configuration, starts logging and loads the configured rule base
func setup() (*workspace, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return nil, err
	}

	ws := &workspace{
		logger:       logger,
		outputDir:    viper.GetString("output_dir"),
		title:        viper.GetString("report.title"),
		reportFormat: viper.GetString("report.format"),
		screenshot:   viper.GetBool("report.screenshot"),
		steps:        viper.GetInt("surface.steps"),
		workers:      viper.GetInt("surface.workers"),
	}
	if err := ws.loadEngine(viper.GetString("rules_file")); err != nil {
		logger.Error("Failed to load rule base", map[string]interface{}{"error": err})
		logger.Close()
		return nil, err
	}
	return ws, nil
}

// loadEngine builds the engine from a rule-base file, or the embedded SEMS rule base when
// path is empty
func (ws *workspace) loadEngine(path string) error {
	var (
		def    *rulebase.Definition
		engine *fuzzy.Engine
		err    error
	)
	if path == "" {
		ws.source = embeddedSource
		if def, err = sems.Definition(); err != nil {
			return err
		}
		if engine, err = sems.New(); err != nil {
			return err
		}
	} else {
		ws.source = path
		if def, err = rulebase.Load(path); err != nil {
			return err
		}
		if engine, err = def.Build(); err != nil {
			return fmt.Errorf("rule base %s: %w", path, err)
		}
	}

	ws.engine = engine
	ws.units = make(map[string]string)
	for _, name := range append(engine.Antecedents(), engine.Consequents()...) {
		if unit := def.Unit(name); unit != "" {
			ws.units[name] = unit
		}
	}
	ws.ranges = inputRanges(engine, ws.units, path == "")

	ws.logger.LogRuleBase(def.Name, ws.source, len(engine.Antecedents()), len(engine.Consequents()), engine.RuleCount())
	return nil
}

func (ws *workspace) close() {
	ws.logger.Close()
}

// inputRanges returns the accepted range of every antecedent. The SEMS rule base uses its
// published limits; other rule bases accept their universes.
func inputRanges(engine *fuzzy.Engine, units map[string]string, embedded bool) []sems.InputRange {
	if embedded {
		return sems.InputRanges()
	}
	ranges := make([]sems.InputRange, 0, len(engine.Antecedents()))
	for _, name := range engine.Antecedents() {
		v, _ := engine.Antecedent(name)
		ranges = append(ranges, sems.InputRange{
			Name:   name,
			Prompt: name,
			Unit:   units[name],
			Min:    v.Universe().Min(),
			Max:    v.Universe().Max(),
		})
	}
	return ranges
}

// findRange looks up an input range by variable name
func findRange(ranges []sems.InputRange, name string) (sems.InputRange, bool) {
	for _, r := range ranges {
		if r.Name == name {
			return r, true
		}
	}
	return sems.InputRange{}, false
}

// parseValue parses a user-supplied number for an input and checks it against its range
func parseValue(r sems.InputRange, raw string, clamp bool) (float64, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(x) {
		return 0, fmt.Errorf("%w: %s: %q is not a number", fuzzy.ErrInvalidInput, r.Name, raw)
	}
	if !clamp && !r.Contains(x) {
		return 0, fmt.Errorf("%w: %s = %g is outside %g-%g", fuzzy.ErrInvalidInput, r.Name, x, r.Min, r.Max)
	}
	return x, nil
}

// Result is the outcome of one inference, as printed and saved
type Result struct {
	RuleBase string                     `json:"rule_base"`
	Inputs   map[string]float64         `json:"inputs"`
	Outputs  map[string]float64         `json:"outputs"`
	Units    map[string]string          `json:"units,omitempty"`
	Fired    []reporting.RuleActivation `json:"fired"`
	Duration time.Duration              `json:"duration"`
}

// compute runs one inference on a fresh session and logs it
func (ws *workspace) compute(values map[string]float64) (*fuzzy.Session, *Result, error) {
	s := ws.engine.NewSession()
	if err := s.SetInputs(values); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	if err := s.Compute(); err != nil {
		return nil, nil, err
	}
	duration := time.Since(start)

	outputs, err := s.Outputs()
	if err != nil {
		return nil, nil, err
	}
	firing, err := s.FiringStrengths()
	if err != nil {
		return nil, nil, err
	}

	result := &Result{
		RuleBase: ws.source,
		Inputs:   make(map[string]float64, len(values)),
		Outputs:  outputs,
		Units:    ws.units,
		Fired:    []reporting.RuleActivation{},
		Duration: duration,
	}
	for _, name := range ws.engine.Antecedents() {
		x, _ := s.Input(name)
		result.Inputs[name] = x
	}
	for i, rule := range ws.engine.Rules() {
		if firing[i] > 0 {
			result.Fired = append(result.Fired, reporting.RuleActivation{
				Index:    i + 1,
				Name:     rule.Name,
				Text:     rule.String(),
				Strength: firing[i],
			})
		}
	}

	ws.logger.LogComputation(result.Inputs, outputs, len(result.Fired), duration)
	return s, result, nil
}

// sweep computes a response surface with the configured resolution and parallelism
func (ws *workspace) sweep(ctx context.Context, req surface.Request) (*surface.Surface, error) {
	steps := ws.steps
	if steps <= 0 {
		steps = surface.DefaultSteps
	}
	if req.X.Steps == 0 {
		req.X.Steps = steps
	}
	if req.Y.Steps == 0 {
		req.Y.Steps = steps
	}
	workers := ws.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	result, err := surface.Sweep(ctx, ws.engine, req,
		surface.WithWorkers(workers),
		surface.WithLogger(ws.logger.GetLogger()),
	)
	if err != nil {
		return nil, err
	}
	ws.logger.LogSweep(result.X.Variable, result.Y.Variable, len(result.XValues)*len(result.YValues), result.Failures, result.Duration)
	return result, nil
}

// newReport starts a report over the engine's variables
func (ws *workspace) newReport(title string) (*reporting.Report, error) {
	if title == "" {
		title = ws.title
	}
	if title == "" {
		title = "Smart Energy Management System"
	}
	return reporting.NewReport(title, ws.engine, ws.units)
}

// writeReport writes a report in the configured formats and returns the written paths.
// The generator logs each file on the workspace logger.
func (ws *workspace) writeReport(ctx context.Context, r *reporting.Report, name string) ([]string, error) {
	generator := reporting.NewGenerator(ws.reportDir(), ws.logger.GetLogger())
	name = fmt.Sprintf("%s_%s", name, time.Now().Format("2006-01-02_15-04-05"))

	var paths []string
	format := ws.reportFormat
	if format == "" {
		format = "html"
	}
	if format == "json" || format == "both" {
		path, err := generator.GenerateJSON(r, name)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if format == "html" || format == "both" {
		path, err := generator.GenerateHTML(r, name)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)

		if ws.screenshot {
			png := filepath.Join(filepath.Dir(path), "snapshots", name+".png")
			if _, err := generator.Snapshot(ctx, path, png); err != nil {
				return paths, err
			}
			paths = append(paths, png)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("unsupported report format %q (html, json, both)", format)
	}
	return paths, nil
}

func (ws *workspace) reportDir() string {
	if ws.outputDir == "" {
		return filepath.Join(".", "reports")
	}
	return filepath.Join(ws.outputDir, "reports")
}
