/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interactive.go
Description: Interactive SEMS session. Prompts for the room conditions until they are valid,
prints the recommended cooling capacity and lighting, and optionally writes membership-curve
and response-surface reports before asking to go again.
*/

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kleascm/sems-fuzzy/pkg/reporting"
	"github.com/kleascm/sems-fuzzy/pkg/surface"
	"github.com/spf13/cobra"
)

// RunInteractive runs the prompt loop on stdin and stdout
func RunInteractive(cmd *cobra.Command, args []string) error {
	ws, err := setup()
	if err != nil {
		return err
	}
	defer ws.close()

	return ws.interactive(cmd.Context(), os.Stdin, os.Stdout)
}

// prompter reads answers line by line
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// ask prints a question and returns the trimmed answer. io.EOF means the input closed.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; only "yes" or "y" count as yes
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question + " (yes/no): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y", nil
}

// choose asks for a 1-based choice among n options until a valid one is given
func (p *prompter) choose(question string, n int) (int, error) {
	for {
		answer, err := p.ask(fmt.Sprintf("%s (1-%d): ", question, n))
		if err != nil {
			return 0, err
		}
		choice, err := strconv.Atoi(answer)
		if err == nil && choice >= 1 && choice <= n {
			return choice - 1, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d!\n", n)
	}
}

// readInputs prompts for every input and repeats the whole round until all values parse
// and lie within their limits
func (ws *workspace) readInputs(p *prompter) (map[string]float64, error) {
	for {
		raw := make(map[string]string, len(ws.ranges))
		for _, r := range ws.ranges {
			answer, err := p.ask(r.String() + ": ")
			if err != nil {
				return nil, err
			}
			raw[r.Name] = answer
		}

		values, numeric, err := ws.validateRound(raw)
		if err == nil {
			return values, nil
		}
		if numeric {
			fmt.Fprintln(p.out, "Please enter values within the specified limits!")
		} else {
			fmt.Fprintln(p.out, "Please enter valid numeric values!")
		}
		fmt.Fprintln(p.out)
	}
}

// validateRound checks one round of answers. numeric reports whether every answer was a
// number, which separates a limits problem from a parse problem.
func (ws *workspace) validateRound(raw map[string]string) (map[string]float64, bool, error) {
	values := make(map[string]float64, len(raw))
	numeric := true
	var errs []error
	for _, r := range ws.ranges {
		value := raw[r.Name]
		if _, err := parseValue(r, value, true); err != nil {
			numeric = false
		}
		x, err := parseValue(r, value, false)
		if err != nil {
			ws.logger.LogInputRejected(r.Name, value, err.Error())
			errs = append(errs, err)
			continue
		}
		values[r.Name] = x
	}
	if len(errs) > 0 {
		return nil, numeric, errors.Join(errs...)
	}
	return values, numeric, nil
}

// interactive is the session loop. Closing the input ends the session cleanly.
func (ws *workspace) interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	p := &prompter{in: bufio.NewReader(in), out: out}

	rule := strings.Repeat("=", 75)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "\n                 Smart Energy Management System                 ")
	fmt.Fprintln(out, "\n"+rule+"\n")

	err := ws.interactiveRounds(ctx, p)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if err == nil {
		fmt.Fprintln(out, "\nThank you for using the Smart Energy Management System!")
	}
	return err
}

func (ws *workspace) interactiveRounds(ctx context.Context, p *prompter) error {
	for {
		values, err := ws.readInputs(p)
		if err != nil {
			return err
		}

		s, result, err := ws.compute(values)
		if err != nil {
			return fmt.Errorf("inference failed: %w", err)
		}
		ws.printResult(p.out, result)

		curves, err := p.confirm("\nWould you like a membership function report?")
		if err != nil {
			return err
		}
		if curves {
			r, err := ws.newReport("")
			if err != nil {
				return err
			}
			if err := r.AddSession(s); err != nil {
				return err
			}
			if err := ws.announce(ctx, p.out, r, "curves"); err != nil {
				return err
			}
		}

		plot, err := p.confirm("\nWould you like to see a 3D surface plot?")
		if err != nil {
			return err
		}
		if plot {
			if err := ws.interactiveSurface(ctx, p, values); err != nil {
				return err
			}
		}

		again, err := p.confirm("\nWould you like to try again?")
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		fmt.Fprintln(p.out)
	}
}

// interactiveSurface asks for two axes and the outputs, then sweeps with the remaining
// inputs fixed at the values just entered
func (ws *workspace) interactiveSurface(ctx context.Context, p *prompter, values map[string]float64) error {
	if len(ws.ranges) < 2 {
		fmt.Fprintln(p.out, "A surface needs at least two inputs.")
		return nil
	}

	fmt.Fprintln(p.out, "\nSelect variables for 3D plot:")
	fmt.Fprintln(p.out, "Choose first input variable (x-axis):")
	for i, r := range ws.ranges {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, r.Prompt)
	}
	xi, err := p.choose("Enter choice", len(ws.ranges))
	if err != nil {
		return err
	}
	x := ws.ranges[xi]

	remaining := make([]int, 0, len(ws.ranges)-1)
	for i := range ws.ranges {
		if i != xi {
			remaining = append(remaining, i)
		}
	}
	fmt.Fprintln(p.out, "\nChoose second input variable (y-axis):")
	for i, idx := range remaining {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, ws.ranges[idx].Prompt)
	}
	yi, err := p.choose("Enter choice", len(remaining))
	if err != nil {
		return err
	}
	y := ws.ranges[remaining[yi]]

	consequents := ws.engine.Consequents()
	fmt.Fprintln(p.out, "\nWhich output to plot?")
	for i, name := range consequents {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, displayName(name))
	}
	options := len(consequents)
	if options > 1 {
		options++
		if len(consequents) == 2 {
			fmt.Fprintf(p.out, "%d. Both\n", options)
		} else {
			fmt.Fprintf(p.out, "%d. All\n", options)
		}
	}
	oi, err := p.choose("Enter choice", options)
	if err != nil {
		return err
	}
	outputs := consequents
	if oi < len(consequents) {
		outputs = consequents[oi : oi+1]
	}

	fixed := make(map[string]float64, len(values))
	for name, v := range values {
		if name != x.Name && name != y.Name {
			fixed[name] = v
		}
	}

	fmt.Fprintln(p.out, "\nCalculating and plotting 3D graph...")
	result, err := ws.sweep(ctx, surface.Request{
		X:       surface.Axis{Variable: x.Name, Min: x.Min, Max: x.Max},
		Y:       surface.Axis{Variable: y.Name, Min: y.Min, Max: y.Max},
		Fixed:   fixed,
		Outputs: outputs,
	})
	if err != nil {
		return err
	}
	if result.Failures > 0 {
		fmt.Fprintf(p.out, "%d points could not be computed and are left blank.\n", result.Failures)
	}

	r, err := ws.newReport("")
	if err != nil {
		return err
	}
	r.AddSurface(result)
	return ws.announce(ctx, p.out, r, "surface")
}

// announce writes a report and prints where it went
func (ws *workspace) announce(ctx context.Context, out io.Writer, r *reporting.Report, name string) error {
	paths, err := ws.writeReport(ctx, r, name)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(out, "Report written to %s\n", path)
	}
	return nil
}
