/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: surface.go
Description: Report commands. Sweeps two inputs into a response surface, and renders the
membership curves of every variable, writing HTML or JSON reports with optional snapshots.
*/

package commands

import (
	"fmt"
	"os"

	"github.com/kleascm/sems-fuzzy/pkg/reporting"
	"github.com/kleascm/sems-fuzzy/pkg/surface"
	"github.com/kleascm/sems-fuzzy/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunSurface sweeps two inputs over their ranges and reports the response surface
func RunSurface(cmd *cobra.Command, args []string) error {
	ws, err := setup()
	if err != nil {
		return err
	}
	defer ws.close()

	assignments, err := cmd.Flags().GetStringToString("fixed")
	if err != nil {
		return err
	}
	fixed, err := ws.collectInputs(assignments, false)
	if err != nil {
		return err
	}

	req, err := ws.surfaceRequest(viper.GetString("surface.x"), viper.GetString("surface.y"), fixed)
	if err != nil {
		return err
	}
	req.Outputs = viper.GetStringSlice("surface.outputs")

	fmt.Fprintf(os.Stderr, "Sweeping %s x %s...\n", req.X.Variable, req.Y.Variable)
	result, err := ws.sweep(cmd.Context(), req)
	if err != nil {
		return err
	}
	for _, output := range result.Outputs {
		lo, hi, ok := result.Bounds(output)
		if !ok {
			fmt.Printf("%s: no point could be computed\n", output)
			continue
		}
		fmt.Printf("%s: %.2f to %.2f %s\n", output, lo, hi, ws.units[output])
	}
	fmt.Printf("%d x %d points, %d failed, %s\n", len(result.XValues), len(result.YValues), result.Failures, result.Duration)

	if viper.GetBool("surface.save") {
		path, err := utils.WriteResult(ws.outputDir, "surface", reporting.Version, result)
		if err != nil {
			return err
		}
		ws.logger.LogReport("result", path)
		fmt.Fprintf(os.Stderr, "Result saved to %s\n", path)
	}

	r, err := ws.newReport("")
	if err != nil {
		return err
	}
	r.AddSurface(result)
	paths, err := ws.writeReport(cmd.Context(), r, "surface")
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}
	return nil
}

// surfaceRequest builds a sweep over two inputs across their accepted ranges
func (ws *workspace) surfaceRequest(x, y string, fixed map[string]float64) (surface.Request, error) {
	if x == "" || y == "" {
		return surface.Request{}, fmt.Errorf("both --x and --y are required")
	}
	rx, ok := findRange(ws.ranges, x)
	if !ok {
		return surface.Request{}, fmt.Errorf("unknown x-axis input %q", x)
	}
	ry, ok := findRange(ws.ranges, y)
	if !ok {
		return surface.Request{}, fmt.Errorf("unknown y-axis input %q", y)
	}

	rest := make(map[string]float64, len(fixed))
	for name, v := range fixed {
		if name != x && name != y {
			rest[name] = v
		}
	}
	return surface.Request{
		X:     surface.Axis{Variable: rx.Name, Min: rx.Min, Max: rx.Max},
		Y:     surface.Axis{Variable: ry.Name, Min: ry.Min, Max: ry.Max},
		Fixed: rest,
	}, nil
}

// RunCurves writes a report of every variable's membership curves
func RunCurves(cmd *cobra.Command, args []string) error {
	ws, err := setup()
	if err != nil {
		return err
	}
	defer ws.close()

	r, err := ws.newReport("")
	if err != nil {
		return err
	}
	for _, v := range r.Variables {
		fmt.Printf("%-16s %-11s %d labels over %d points\n", v.Name, v.Role, len(v.Curves), len(v.Points))
	}

	paths, err := ws.writeReport(cmd.Context(), r, "curves")
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}
	return nil
}
