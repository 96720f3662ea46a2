/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: compute.go
Description: Single-shot inference command. Reads the inputs from flags, configuration or
environment, checks them against their limits, computes the outputs and prints, saves or
reports the result.
*/

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/kleascm/sems-fuzzy/pkg/fuzzy"
	"github.com/kleascm/sems-fuzzy/pkg/reporting"
	"github.com/kleascm/sems-fuzzy/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunCompute computes the outputs for one set of inputs
func RunCompute(cmd *cobra.Command, args []string) error {
	ws, err := setup()
	if err != nil {
		return err
	}
	defer ws.close()

	clamp := viper.GetBool("compute.clamp")
	assignments, err := cmd.Flags().GetStringToString("input")
	if err != nil {
		return err
	}
	values, err := ws.collectInputs(assignments, clamp)
	if err != nil {
		return err
	}

	s, result, err := ws.compute(values)
	if err != nil {
		return fmt.Errorf("inference failed: %w", err)
	}

	if viper.GetBool("compute.json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		ws.printResult(os.Stdout, result)
	}

	if viper.GetBool("compute.save") {
		path, err := utils.WriteResult(ws.outputDir, "compute", reporting.Version, result)
		if err != nil {
			return err
		}
		ws.logger.LogReport("result", path)
		fmt.Fprintf(os.Stderr, "Result saved to %s\n", path)
	}

	if viper.GetBool("compute.report") {
		r, err := ws.newReport("")
		if err != nil {
			return err
		}
		if err := r.AddSession(s); err != nil {
			return err
		}
		paths, err := ws.writeReport(cmd.Context(), r, "compute")
		if err != nil {
			return err
		}
		for _, path := range paths {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
		}
	}
	return nil
}

// collectInputs gathers the input values from "inputs.<name>" configuration keys and
// name=value assignments, checking each against its range. Assignments win.
// Inputs left unset are reported by the engine when computing.
func (ws *workspace) collectInputs(assignments map[string]string, clamp bool) (map[string]float64, error) {
	raw := make(map[string]string)
	for _, r := range ws.ranges {
		if key := "inputs." + r.Name; viper.IsSet(key) {
			raw[r.Name] = viper.GetString(key)
		}
	}
	for name, value := range assignments {
		raw[name] = value
	}
	for _, name := range sortedNames(raw) {
		if _, ok := findRange(ws.ranges, name); !ok {
			return nil, fmt.Errorf("%w: %q", fuzzy.ErrUnknownVariable, name)
		}
	}

	values := make(map[string]float64, len(raw))
	for _, r := range ws.ranges {
		value, ok := raw[r.Name]
		if !ok {
			continue
		}
		x, err := parseValue(r, value, clamp)
		if err != nil {
			ws.logger.LogInputRejected(r.Name, value, err.Error())
			return nil, err
		}
		values[r.Name] = x
	}
	return values, nil
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// printResult prints the outputs the way the interactive session shows them
func (ws *workspace) printResult(w io.Writer, result *Result) {
	fmt.Fprintln(w, "\nResults:")
	for _, name := range ws.engine.Consequents() {
		fmt.Fprintf(w, "%s: %.2f %s\n", displayName(name), result.Outputs[name], ws.units[name])
	}
	if len(result.Fired) > 0 {
		fmt.Fprintf(w, "\nRules fired (%d):\n", len(result.Fired))
		for _, a := range result.Fired {
			fmt.Fprintf(w, "  %3.0f%%  %s: %s\n", a.Strength*100, a.Name, a.Text)
		}
	}
}

// displayName turns a camelCase variable name into words: coolingCapacity -> Cooling Capacity
func displayName(name string) string {
	out := make([]rune, 0, len(name)+4)
	for i, c := range name {
		switch {
		case i == 0 && c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		case i > 0 && c >= 'A' && c <= 'Z':
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	return string(out)
}
