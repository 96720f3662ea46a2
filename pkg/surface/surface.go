/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: surface.go
Description: Response-surface sweeps. Evaluates an engine over a grid spanning two antecedents
while the remaining antecedents are held fixed, producing one value grid per requested
consequent. Rows are computed in parallel, one inference session per row.
*/

package surface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"time"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultSteps is the number of samples per axis used when an axis leaves Steps unset
const DefaultSteps = 100

// Axis is one swept antecedent. A zero Min and Max span the variable's universe.
type Axis struct {
	Variable string  `json:"variable"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Steps    int     `json:"steps"`
}

// Request describes a sweep
type Request struct {
	X       Axis
	Y       Axis
	Fixed   map[string]float64
	Outputs []string // all consequents when empty
}

// Surface holds the sweep results.
// Values[output][row][col] is the output at (XValues[col], YValues[row]);
// points where inference failed hold NaN, written as null in JSON.
type Surface struct {
	X        Axis                   `json:"x"`
	Y        Axis                   `json:"y"`
	XValues  []float64              `json:"x_values"`
	YValues  []float64              `json:"y_values"`
	Fixed    map[string]float64     `json:"fixed"`
	Outputs  []string               `json:"outputs"`
	Values   map[string][][]float64 `json:"-"`
	Failures int                    `json:"failures"`
	Duration time.Duration          `json:"duration"`
}

// Option configures a sweep
type Option func(*sweeper)

// WithWorkers bounds the number of rows computed concurrently
func WithWorkers(n int) Option {
	return func(s *sweeper) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger used for sweep progress
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type sweeper struct {
	workers int
	logger  logrus.FieldLogger
}

// Sweep evaluates the engine over the request grid.
// Engine errors at a point are recorded as NaN and counted in Failures;
// any other error, including context cancellation, aborts the sweep.
func Sweep(ctx context.Context, engine *fuzzy.Engine, req Request, opts ...Option) (*Surface, error) {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	sw := &sweeper{workers: runtime.GOMAXPROCS(0), logger: quiet}
	for _, opt := range opts {
		opt(sw)
	}

	surface, err := plan(engine, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows := len(surface.YValues)
	failures := make([]int, rows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sw.workers)
	for row := 0; row < rows; row++ {
		g.Go(func() error {
			n, err := surface.computeRow(gctx, engine, row)
			failures[row] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sweep %s x %s: %w", surface.X.Variable, surface.Y.Variable, err)
	}

	for _, n := range failures {
		surface.Failures += n
	}
	surface.Duration = time.Since(start)

	sw.logger.WithFields(logrus.Fields{
		"x":        surface.X.Variable,
		"y":        surface.Y.Variable,
		"points":   len(surface.XValues) * rows,
		"failures": surface.Failures,
		"duration": surface.Duration,
	}).Debug("Surface sweep completed")

	return surface, nil
}

// plan validates the request and allocates the result grids
func plan(engine *fuzzy.Engine, req Request) (*Surface, error) {
	if engine == nil {
		return nil, errors.New("nil engine")
	}
	if req.X.Variable == req.Y.Variable {
		return nil, fmt.Errorf("%w: axes must be distinct, both are %q", fuzzy.ErrInvalidInput, req.X.Variable)
	}

	x, err := resolve(engine, req.X)
	if err != nil {
		return nil, err
	}
	y, err := resolve(engine, req.Y)
	if err != nil {
		return nil, err
	}

	fixed := make(map[string]float64, len(req.Fixed))
	for name, value := range req.Fixed {
		if _, ok := engine.Antecedent(name); !ok {
			return nil, fmt.Errorf("%w: fixed input %q", fuzzy.ErrUnknownVariable, name)
		}
		if name == x.Variable || name == y.Variable {
			continue
		}
		if math.IsNaN(value) {
			return nil, fmt.Errorf("%w: fixed input %q is NaN", fuzzy.ErrInvalidInput, name)
		}
		fixed[name] = value
	}

	outputs := req.Outputs
	if len(outputs) == 0 {
		outputs = engine.Consequents()
	}
	for _, name := range outputs {
		if _, ok := engine.Consequent(name); !ok {
			return nil, fmt.Errorf("%w: output %q", fuzzy.ErrUnknownVariable, name)
		}
	}

	s := &Surface{
		X:       x,
		Y:       y,
		XValues: fuzzy.LinspaceValues(x.Min, x.Max, x.Steps),
		YValues: fuzzy.LinspaceValues(y.Min, y.Max, y.Steps),
		Fixed:   fixed,
		Outputs: append([]string(nil), outputs...),
		Values:  make(map[string][][]float64, len(outputs)),
	}
	for _, name := range outputs {
		grid := make([][]float64, y.Steps)
		for row := range grid {
			grid[row] = make([]float64, x.Steps)
		}
		s.Values[name] = grid
	}
	return s, nil
}

func resolve(engine *fuzzy.Engine, a Axis) (Axis, error) {
	v, ok := engine.Antecedent(a.Variable)
	if !ok {
		return Axis{}, fmt.Errorf("%w: axis %q", fuzzy.ErrUnknownVariable, a.Variable)
	}
	if a.Steps == 0 {
		a.Steps = DefaultSteps
	}
	if a.Steps < 2 {
		return Axis{}, fmt.Errorf("%w: axis %q needs at least 2 steps, got %d", fuzzy.ErrInvalidInput, a.Variable, a.Steps)
	}
	if a.Min == 0 && a.Max == 0 {
		a.Min, a.Max = v.Universe().Min(), v.Universe().Max()
	}
	if !(a.Max > a.Min) {
		return Axis{}, fmt.Errorf("%w: axis %q range [%g, %g] is empty", fuzzy.ErrInvalidInput, a.Variable, a.Min, a.Max)
	}
	return a, nil
}

// computeRow fills one row of every output grid and returns the number of failed points
func (s *Surface) computeRow(ctx context.Context, engine *fuzzy.Engine, row int) (int, error) {
	session := engine.NewSession()
	for name, value := range s.Fixed {
		if err := session.SetInput(name, value); err != nil {
			return 0, err
		}
	}
	if err := session.SetInput(s.Y.Variable, s.YValues[row]); err != nil {
		return 0, err
	}

	failed := 0
	for col, x := range s.XValues {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if err := session.SetInput(s.X.Variable, x); err != nil {
			return failed, err
		}
		err := session.Compute()
		if err == nil {
			err = s.record(session, row, col)
		}
		if err != nil && !fuzzy.IsEngineError(err) {
			return failed, err
		}
		if err != nil {
			failed++
			for _, name := range s.Outputs {
				s.Values[name][row][col] = math.NaN()
			}
		}
	}
	return failed, nil
}

// record copies the computed outputs of a session into the grids at (row, col)
func (s *Surface) record(session *fuzzy.Session, row, col int) error {
	for _, name := range s.Outputs {
		out, err := session.Output(name)
		if err != nil {
			return err
		}
		s.Values[name][row][col] = out
	}
	return nil
}

// MarshalJSON writes the value grids with failed points as null
func (s Surface) MarshalJSON() ([]byte, error) {
	type plain Surface
	values := make(map[string][][]*float64, len(s.Values))
	for name, grid := range s.Values {
		rows := make([][]*float64, len(grid))
		for row := range grid {
			rows[row] = make([]*float64, len(grid[row]))
			for col, v := range grid[row] {
				if !math.IsNaN(v) {
					rows[row][col] = &v
				}
			}
		}
		values[name] = rows
	}
	return json.Marshal(struct {
		plain
		Values map[string][][]*float64 `json:"values"`
	}{plain(s), values})
}

// Bounds returns the smallest and largest finite value of an output grid.
// ok is false when the output is unknown or every point failed.
func (s *Surface) Bounds(output string) (lo, hi float64, ok bool) {
	grid, found := s.Values[output]
	if !found {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	return lo, hi, true
}
